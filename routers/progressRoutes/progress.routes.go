package progressRoutes

import (
	controllers "lms/controllers/progress"
	"lms/middleware"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/progress", middleware.JWTMiddleware)

	progressGroup.Post("/save", validators.SaveProgress(), controllers.SaveProgress)
	progressGroup.Get("/:ref_type/:ref_id", validators.ContentRefParams(), controllers.GetProgress)
}
