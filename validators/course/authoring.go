package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CourseStep1Request carries the basic-details step of course authoring
type CourseStep1Request struct {
	CourseID    *uint   `json:"course_id"`
	Title       string  `json:"title" validate:"required,min=3"`
	Description string  `json:"description"`
	CourseType  string  `json:"course_type" validate:"required,oneof=recorded live"`
	Price       float64 `json:"price" validate:"gte=0"`
	Duration    int     `json:"duration" validate:"gte=0"`
	FacultyID   uint    `json:"faculty_id"`
}

// CourseStep2Request carries the policies step
type CourseStep2Request struct {
	CourseID                uint   `json:"course_id" validate:"required"`
	UnlockMode              string `json:"unlock_mode" validate:"required,oneof=free_flow sequential graded_unlock"`
	FinalAssessmentRequired bool   `json:"final_assessment_required"`
}

// ModuleRequest carries module create/update payloads
type ModuleRequest struct {
	CourseID          uint    `json:"course_id" validate:"required"`
	Title             string  `json:"title" validate:"required,min=3"`
	Description       string  `json:"description"`
	Order             *int    `json:"order" validate:"omitempty,gte=1"`
	ModuleType        string  `json:"module_type" validate:"omitempty,oneof=recorded live"`
	IsFree            bool    `json:"is_free"`
	UnlockRule        string  `json:"unlock_rule" validate:"omitempty,oneof=none previous_module pass_assessment"`
	PassingScore      float64 `json:"passing_score" validate:"gte=0"`
	WeekNumber        int     `json:"week_number" validate:"gte=0"`
	EstimatedDuration int     `json:"estimated_duration" validate:"gte=0"`
}

// ContentRequest carries content create/update payloads
type ContentRequest struct {
	ModuleID    uint   `json:"module_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=video pdf link notes live_session"`
	ContentURL  string `json:"content_url"`
	Duration    int    `json:"duration" validate:"gte=0"`
	Order       *int   `json:"order" validate:"omitempty,gte=1"`
	PushOthers  bool   `json:"push_others"`
	DayNumber   int    `json:"day_number" validate:"gte=0"`
}

// CourseStep1 validates the step-1 payload
func CourseStep1() fiber.Handler {
	return bodyValidator("validatedCourseStep1", func() interface{} { return new(CourseStep1Request) })
}

// CourseStep2 validates the step-2 payload
func CourseStep2() fiber.Handler {
	return bodyValidator("validatedCourseStep2", func() interface{} { return new(CourseStep2Request) })
}

// CreateModule validates module payloads
func CreateModule() fiber.Handler {
	return bodyValidator("validatedModule", func() interface{} { return new(ModuleRequest) })
}

// CreateContent validates content payloads
func CreateContent() fiber.Handler {
	return bodyValidator("validatedContent", func() interface{} { return new(ContentRequest) })
}

// RejectCourse validates the rejection payload
func RejectCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ReviewNotes string `json:"review_notes"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		c.Locals("reviewNotes", reqData.ReviewNotes)
		return c.Next()
	}
}

// bodyValidator parses the body into the given request struct, runs
// struct-tag validation, and stores the result in Locals under key.
func bodyValidator(key string, newReq func() interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := newReq()

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, ValidationErrors(err))
		}

		c.Locals(key, reqData)
		return c.Next()
	}
}

// ValidationErrors flattens validator.v10 errors into field → message
func ValidationErrors(err error) map[string]string {
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
