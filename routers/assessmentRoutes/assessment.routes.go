package assessmentRoutes

import (
	controllers "lms/controllers/assessment"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/assessment"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupAssessmentRoutes(app *fiber.App) {
	staff := []string{models.RoleAdmin, models.RoleFaculty}

	adminGroup := app.Group("/admin/assessment", middleware.JWTMiddleware, middleware.RequireRole(staff...))
	adminGroup.Post("/", validators.CreateAssessment(), controllers.AdminCreateAssessment)
	adminGroup.Get("/course/:id", courseValidator.CourseIDParam(), controllers.GetAssessmentsByCourse)
	adminGroup.Put("/:id", validators.AssessmentIDParam(), validators.CreateAssessment(), controllers.AdminUpdateAssessment)
	adminGroup.Delete("/:id", validators.AssessmentIDParam(), controllers.AdminDeleteAssessment)

	studentGroup := app.Group("/assessment", middleware.JWTMiddleware)
	studentGroup.Get("/:id", validators.AssessmentIDParam(), controllers.GetStudentAssessment)
	studentGroup.Post("/:id/submit", validators.AssessmentIDParam(), validators.SubmitAssessment(), controllers.SubmitAssessment)
	studentGroup.Get("/:id/attempts", validators.AssessmentIDParam(), controllers.GetMyAttempts)
}
