package batchValidator

import (
	"lms/middleware"
	courseModels "lms/models/course"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// BatchRequest is the admin payload for creating a batch
type BatchRequest struct {
	CourseTemplateID uint                        `json:"course_template_id" validate:"required"`
	BatchName        string                      `json:"batch_name" validate:"required,min=3"`
	StartDate        time.Time                   `json:"start_date" validate:"required"`
	EndDate          *time.Time                  `json:"end_date"`
	WeeklySchedule   []courseModels.ScheduleSlot `json:"weekly_schedule" validate:"omitempty,dive"`
	FacultyID        uint                        `json:"faculty_id" validate:"required"`
	MaxStudents      int                         `json:"max_students" validate:"gte=0"`
}

// CreateBatch validates a batch creation payload
func CreateBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BatchRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, flatten(err))
		}

		c.Locals("validatedBatch", reqData)
		return c.Next()
	}
}

// EnrollBatch validates an enrollment payload
func EnrollBatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Plan string `json:"plan"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Plan != "" && reqData.Plan != courseModels.PlanFull && reqData.Plan != courseModels.PlanInstallment {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"plan": "Plan must be full or installment!",
			})
		}

		c.Locals("enrollPlan", reqData.Plan)
		return c.Next()
	}
}

// PayModule validates an installment payment payload
func PayModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TransactionID string `json:"transaction_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.TransactionID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"transaction_id": "Transaction ID is required!",
			})
		}

		c.Locals("transactionID", reqData.TransactionID)
		return c.Next()
	}
}

// MarkAttendance validates an attendance payload
func MarkAttendance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status   string     `json:"status"`
			JoinedAt *time.Time `json:"joined_at"`
			Duration int        `json:"duration"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		switch reqData.Status {
		case "", courseModels.AttendancePresent, courseModels.AttendanceAbsent,
			courseModels.AttendanceLate, courseModels.AttendanceLeftEarly:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Unknown attendance status!",
			})
		}
		if reqData.Duration < 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"duration": "Duration cannot be negative!",
			})
		}

		c.Locals("validatedAttendance", reqData)
		return c.Next()
	}
}

// ModuleStatus validates a batch-module status payload
func ModuleStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		switch reqData.Status {
		case courseModels.BatchUpcoming, courseModels.BatchOngoing, courseModels.BatchCompleted:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be upcoming, ongoing or completed!",
			})
		}

		c.Locals("moduleStatus", reqData.Status)
		return c.Next()
	}
}

// BatchIDParam validates the :id route parameter
func BatchIDParam() fiber.Handler {
	return idParam("id", "batchID")
}

// BatchModuleIDParam validates the :module_id route parameter
func BatchModuleIDParam() fiber.Handler {
	return idParam("module_id", "batchModuleID")
}

// BatchContentIDParam validates the :content_id route parameter
func BatchContentIDParam() fiber.Handler {
	return idParam("content_id", "batchContentID")
}

func idParam(param, local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := strconv.Atoi(c.Params(param))
		if err != nil || value < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+"!", nil)
		}
		c.Locals(local, value)
		return c.Next()
	}
}

func flatten(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			errors[verr.Field()] = "failed on " + verr.Tag() + " validation"
		}
	} else {
		errors["request"] = err.Error()
	}
	return errors
}
