package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/grading"
	assessmentValidator "lms/validators/assessment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubmitAssessment grades one attempt against an assessment
func SubmitAssessment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSubmission").(*assessmentValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	assessmentID := c.Locals("assessmentID").(int)

	var assessment courseModels.Assessment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assessmentID, false).
		First(&assessment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("student_id = ? AND course_id = ? AND is_deleted = ?",
		userID, assessment.CourseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollment!", nil)
	}

	// Installment plans gate batch-module assessments behind payment
	if assessment.BatchModuleID != nil && enrollment.PaymentPlan == courseModels.PlanInstallment {
		var payment courseModels.ModulePayment
		err := database.Database.Db.Where("enrollment_id = ? AND module_type = ? AND module_id = ? AND status = ?",
			enrollment.ID, courseModels.ModRefBatch, *assessment.BatchModuleID, courseModels.PaymentPaid).First(&payment).Error
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Module payment required before taking this assessment!", nil)
		}
	}

	svc := grading.NewService(database.Database.Db)
	result, err := svc.Submit(userID, uint(assessmentID), reqData.Answers)
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment submitted successfully!", result)
}

// GetMyAttempts lists the requesting student's attempts on an assessment
func GetMyAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assessmentID := c.Locals("assessmentID").(int)

	svc := grading.NewService(database.Database.Db)
	attempts, err := svc.Attempts(userID, uint(assessmentID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
