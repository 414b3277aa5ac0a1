package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/enrollment"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the current student into a published recorded
// course
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	svc := enrollment.NewService(database.Database.Db, utils.NewGatewayClient())
	created, err := svc.EnrollRecorded(userID, uint(courseID))
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", created)
}

// GetMyEnrollments lists the current student's enrollments
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	err := database.Database.Db.Where("student_id = ? AND is_deleted = ?", userID, false).
		Preload("CompletedModules").
		Preload("ModulePayments").
		Order("enrolled_at desc").
		Find(&enrollments).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// RequestCertificate issues a certificate once every module of the course
// is completed
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	svc := enrollment.NewService(database.Database.Db, utils.NewGatewayClient())
	certificate, err := svc.IssueCertificate(userID, uint(courseID))
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", certificate)
}
