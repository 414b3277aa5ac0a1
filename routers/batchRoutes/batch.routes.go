package batchRoutes

import (
	controllers "lms/controllers/batch"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/batch"

	"github.com/gofiber/fiber/v2"
)

func SetupBatchRoutes(app *fiber.App) {
	staff := []string{models.RoleAdmin, models.RoleFaculty}

	adminGroup := app.Group("/admin/batch", middleware.JWTMiddleware, middleware.RequireRole(staff...))
	adminGroup.Post("/", validators.CreateBatch(), controllers.AdminCreateBatch)
	adminGroup.Get("/list", controllers.AdminGetBatches)
	adminGroup.Get("/:id", validators.BatchIDParam(), controllers.AdminGetBatchDetails)
	adminGroup.Post("/:id/generate", validators.BatchIDParam(), controllers.AdminGenerateBatch)
	adminGroup.Post("/:id/publish", validators.BatchIDParam(), controllers.AdminPublishBatch)
	adminGroup.Patch("/module/:module_id/status", validators.BatchModuleIDParam(), validators.ModuleStatus(), controllers.AdminSetModuleStatus)

	studentGroup := app.Group("/batch", middleware.JWTMiddleware)
	studentGroup.Get("/list", controllers.GetPublishedBatches)
	studentGroup.Get("/:id", validators.BatchIDParam(), controllers.GetStudentBatchDetails)
	studentGroup.Post("/:id/enroll", validators.BatchIDParam(), validators.EnrollBatch(), controllers.EnrollInBatch)
	studentGroup.Post("/module/:module_id/pay", validators.BatchModuleIDParam(), validators.PayModule(), controllers.PayBatchModule)
	studentGroup.Post("/content/:content_id/attendance", validators.BatchContentIDParam(), validators.MarkAttendance(), controllers.MarkMyAttendance)
}
