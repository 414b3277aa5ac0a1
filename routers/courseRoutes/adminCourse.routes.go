package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the authoring and review routes
func SetupAdminCourseRoutes(app *fiber.App) {
	staff := []string{models.RoleAdmin, models.RoleFaculty}

	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole(staff...))

	// Step-wise course authoring
	adminGroup.Post("/step1", validators.CourseStep1(), controllers.SaveCourseStep1)
	adminGroup.Post("/step2", validators.CourseStep2(), controllers.SaveCourseStep2)
	adminGroup.Get("/list", controllers.GetCoursesByStatus)
	adminGroup.Get("/:id", validators.CourseIDParam(), controllers.GetCourseByID)
	adminGroup.Post("/:id/submit", validators.CourseIDParam(), controllers.SubmitCourseForReview)

	// Review is admin-only
	reviewGroup := app.Group("/admin/review", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))
	reviewGroup.Post("/:id/approve", validators.CourseIDParam(), controllers.ApproveCourse)
	reviewGroup.Post("/:id/reject", validators.CourseIDParam(), validators.RejectCourse(), controllers.RejectCourse)

	// Module management
	moduleGroup := app.Group("/admin/module", middleware.JWTMiddleware, middleware.RequireRole(staff...))
	moduleGroup.Post("/", validators.CreateModule(), controllers.AdminCreateModule)
	moduleGroup.Get("/course/:id", validators.CourseIDParam(), controllers.GetModulesByCourse)
	moduleGroup.Put("/:module_id", validators.ModuleIDParam(), validators.CreateModule(), controllers.AdminUpdateModule)
	moduleGroup.Delete("/:module_id", validators.ModuleIDParam(), controllers.AdminDeleteModule)

	// Content management
	contentGroup := app.Group("/admin/content", middleware.JWTMiddleware, middleware.RequireRole(staff...))
	contentGroup.Post("/", validators.CreateContent(), controllers.AdminCreateContent)
	contentGroup.Put("/:content_id", validators.ContentIDParam(), validators.CreateContent(), controllers.AdminUpdateContent)
	contentGroup.Delete("/:content_id", validators.ContentIDParam(), controllers.AdminDeleteContent)
}
