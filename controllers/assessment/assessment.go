package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	assessmentValidator "lms/validators/assessment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminCreateAssessment creates an assessment with its questions in an
// editable course
func AdminCreateAssessment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAssessment").(*assessmentValidator.AssessmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
	}

	totalMarks := 0
	for _, q := range reqData.Questions {
		totalMarks += q.Marks
	}

	assessment := courseModels.Assessment{
		CourseID:        course.ID,
		ModuleID:        reqData.ModuleID,
		BatchID:         reqData.BatchID,
		BatchModuleID:   reqData.BatchModuleID,
		Title:           reqData.Title,
		AssessmentType:  reqData.AssessmentType,
		TotalMarks:      totalMarks,
		PassingMarks:    reqData.PassingMarks,
		AttemptsAllowed: reqData.AttemptsAllowed,
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}
		for i, q := range reqData.Questions {
			question := courseModels.Question{
				AssessmentID:  assessment.ID,
				QuestionText:  q.QuestionText,
				Options:       datatypes.NewJSONSlice(q.Options),
				CorrectOption: q.CorrectOption,
				Marks:         q.Marks,
				OrderIndex:    i + 1,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		if course.CurrentStep < 5 {
			return tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("current_step", 5).Error
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create assessment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment created successfully!", assessment)
}

// AdminUpdateAssessment replaces an assessment's details and its full
// question set in an editable course
func AdminUpdateAssessment(c *fiber.Ctx) error {
	assessmentID := c.Locals("assessmentID").(int)

	reqData, ok := c.Locals("validatedAssessment").(*assessmentValidator.AssessmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var assessment courseModels.Assessment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assessmentID, false).First(&assessment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, assessment.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
	}

	totalMarks := 0
	for _, q := range reqData.Questions {
		totalMarks += q.Marks
	}

	assessment.Title = reqData.Title
	assessment.AssessmentType = reqData.AssessmentType
	assessment.ModuleID = reqData.ModuleID
	assessment.BatchID = reqData.BatchID
	assessment.BatchModuleID = reqData.BatchModuleID
	assessment.TotalMarks = totalMarks
	assessment.PassingMarks = reqData.PassingMarks
	assessment.AttemptsAllowed = reqData.AttemptsAllowed

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&assessment).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ?", assessment.ID).
			Delete(&courseModels.Question{}).Error; err != nil {
			return err
		}
		for i, q := range reqData.Questions {
			question := courseModels.Question{
				AssessmentID:  assessment.ID,
				QuestionText:  q.QuestionText,
				Options:       datatypes.NewJSONSlice(q.Options),
				CorrectOption: q.CorrectOption,
				Marks:         q.Marks,
				OrderIndex:    i + 1,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update assessment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment updated successfully!", assessment)
}

// AdminDeleteAssessment removes an assessment from an editable course
func AdminDeleteAssessment(c *fiber.Ctx) error {
	assessmentID := c.Locals("assessmentID").(int)

	var assessment courseModels.Assessment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assessmentID, false).First(&assessment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, assessment.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot delete assessment - course is not in draft status!", nil)
	}

	if err := database.Database.Db.Model(&assessment).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete assessment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment deleted successfully!", nil)
}

// GetAssessmentsByCourse lists a course's assessments for authoring views,
// correct answers included (admin/faculty only).
func GetAssessmentsByCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var assessments []courseModels.Assessment
	err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc")
		}).
		Find(&assessments).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assessments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessments fetched successfully!", assessments)
}

// StudentAssessmentView is an assessment as a student sees it: questions
// without their correct-option indices.
type StudentAssessmentView struct {
	ID              uint                        `json:"id"`
	CourseID        uint                        `json:"course_id"`
	ModuleID        *uint                       `json:"module_id"`
	BatchModuleID   *uint                       `json:"batch_module_id"`
	Title           string                      `json:"title"`
	AssessmentType  string                      `json:"assessment_type"`
	TotalMarks      int                         `json:"total_marks"`
	PassingMarks    int                         `json:"passing_marks"`
	AttemptsAllowed int                         `json:"attempts_allowed"`
	Questions       []courseModels.SafeQuestion `json:"questions"`
}

// GetStudentAssessment returns one assessment for taking, with answers
// stripped
func GetStudentAssessment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assessmentID := c.Locals("assessmentID").(int)

	var assessment courseModels.Assessment
	err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", assessmentID, false, true).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc")
		}).
		First(&assessment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("student_id = ? AND course_id = ? AND is_deleted = ?",
		userID, assessment.CourseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
	}

	view := StudentAssessmentView{
		ID:              assessment.ID,
		CourseID:        assessment.CourseID,
		ModuleID:        assessment.ModuleID,
		BatchModuleID:   assessment.BatchModuleID,
		Title:           assessment.Title,
		AssessmentType:  assessment.AssessmentType,
		TotalMarks:      assessment.TotalMarks,
		PassingMarks:    assessment.PassingMarks,
		AttemptsAllowed: assessment.AttemptsAllowed,
		Questions:       make([]courseModels.SafeQuestion, len(assessment.Questions)),
	}
	for i := range assessment.Questions {
		view.Questions[i] = assessment.Questions[i].Safe()
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment fetched successfully!", view)
}
