package assessmentValidator

import (
	"lms/middleware"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// QuestionInput is one MCQ in an authoring payload
type QuestionInput struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Marks         int      `json:"marks" validate:"gte=1"`
}

// AssessmentRequest is the authoring payload for an assessment
type AssessmentRequest struct {
	CourseID        uint            `json:"course_id" validate:"required"`
	ModuleID        *uint           `json:"module_id"`
	BatchID         *uint           `json:"batch_id"`
	BatchModuleID   *uint           `json:"batch_module_id"`
	Title           string          `json:"title" validate:"required,min=3"`
	AssessmentType  string          `json:"assessment_type" validate:"required,oneof=quiz assignment final"`
	PassingMarks    int             `json:"passing_marks" validate:"gte=0"`
	AttemptsAllowed int             `json:"attempts_allowed" validate:"gte=0"`
	Questions       []QuestionInput `json:"questions" validate:"omitempty,dive"`
}

// CreateAssessment validates an assessment authoring payload
func CreateAssessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AssessmentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, flatten(err))
		}

		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			if q.CorrectOption >= len(q.Options) {
				errors["questions"] = "correct_option out of range for question " + strconv.Itoa(i+1) + "!"
				break
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssessment", reqData)
		return c.Next()
	}
}

// SubmitRequest is one graded attempt
type SubmitRequest struct {
	Answers []int `json:"answers"`
}

// SubmitAssessment validates a submission payload
func SubmitAssessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.Answers) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"answers": "At least one answer is required!",
			})
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// AssessmentIDParam validates the :id route parameter
func AssessmentIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid assessment id!", nil)
		}
		c.Locals("assessmentID", id)
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
