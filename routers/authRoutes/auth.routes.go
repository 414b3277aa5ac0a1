package authRoutes

import (
	authControllers "lms/controllers/auth"
	authValidator "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), authControllers.Register)
	authGroup.Post("/login", authValidator.Login(), authControllers.Login)
}
