package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/unlock"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SaveCourseStep1 creates a new draft course or updates the basic details
// of an existing editable one.
func SaveCourseStep1(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourseStep1").(*courseValidator.CourseStep1Request)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course

	if reqData.CourseID != nil {
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", *reqData.CourseID, false).First(&course).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		if !course.Editable() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
		}

		course.Title = reqData.Title
		course.Description = reqData.Description
		course.CourseType = reqData.CourseType
		course.Price = reqData.Price
		course.Duration = reqData.Duration
		course.FacultyID = reqData.FacultyID
		if course.CurrentStep < 1 {
			course.CurrentStep = 1
		}
	} else {
		course = courseModels.Course{
			Title:       reqData.Title,
			Description: reqData.Description,
			CourseType:  reqData.CourseType,
			Price:       reqData.Price,
			Duration:    reqData.Duration,
			FacultyID:   reqData.FacultyID,
			CreatedByID: userID,
			CurrentStep: 1,
			Status:      courseModels.StatusDraft,
		}
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step 1 saved successfully!", course)
}

// SaveCourseStep2 updates course-wide policies
func SaveCourseStep2(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseStep2").(*courseValidator.CourseStep2Request)
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

	course.UnlockMode = reqData.UnlockMode
	course.FinalAssessmentRequired = reqData.FinalAssessmentRequired
	if course.CurrentStep < 2 {
		course.CurrentStep = 2
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step 2 saved successfully!", course)
}

// SubmitCourseForReview moves an editable course to in_review. Courses with
// graded unlock must have an assessment in every module that gates a next
// one, otherwise students would hit a dead end no grade can open.
func SubmitCourseForReview(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course already submitted or published!", nil)
	}

	if course.UnlockMode == courseModels.UnlockGradedUnlock {
		evaluator := unlock.NewService(database.Database.Db)
		if err := evaluator.ValidateGradedUnlockAuthoring(course.ID); err != nil {
			return middleware.ServiceError(c, err)
		}
	}

	course.Status = courseModels.StatusInReview
	course.IsComplete = true
	course.ReviewNotes = ""

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course submitted for admin review!", course)
}

// ApproveCourse publishes a course that is in review
func ApproveCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.Status != courseModels.StatusInReview {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not in review status!", nil)
	}

	course.Status = courseModels.StatusPublished
	course.ReviewNotes = ""

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course approved and published!", course)
}

// RejectCourse sends a course in review back to its author
func RejectCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.Status != courseModels.StatusInReview {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not in review status!", nil)
	}

	notes, _ := c.Locals("reviewNotes").(string)
	if notes == "" {
		notes = "Course needs corrections"
	}

	course.Status = courseModels.StatusRejected
	course.ReviewNotes = notes

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rejected!", course)
}

// GetCoursesByStatus lists courses, optionally filtered by lifecycle
// status. Faculty only see their own courses.
func GetCoursesByStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)

	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if user.Role == models.RoleFaculty {
		db = db.Where("created_by_id = ? OR faculty_id = ?", userID, userID)
	}

	var courses []courseModels.Course
	if err := db.Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// GetCourseByID returns one course with its modules for authoring views
func GetCourseByID(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc").Find(&modules)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":  course,
		"modules": modules,
	})
}
