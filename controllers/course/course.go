package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/unlock"

	"github.com/gofiber/fiber/v2"
)

// GetPublishedCourses lists published courses for the catalog page
func GetPublishedCourses(c *fiber.Ctx) error {
	page, _ := c.Locals("page").(int)
	limit, _ := c.Locals("limit").(int)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false)

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// ModuleView is one module as a student sees it: lock state, completion,
// and content only when visible.
type ModuleView struct {
	courseModels.Module
	IsLocked    bool                   `json:"is_locked"`
	IsCompleted bool                   `json:"is_completed"`
	Content     []courseModels.Content `json:"content"`
}

// GetStudentCourseDetails renders the published course page for a student:
// every module with its evaluated lock state, content hidden behind locks.
// Unenrolled students only see free modules.
func GetStudentCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?",
		courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollment courseModels.Enrollment
	var enrollmentPtr *courseModels.Enrollment
	err := database.Database.Db.Where("student_id = ? AND course_id = ? AND is_deleted = ?",
		userID, course.ID, false).First(&enrollment).Error
	isEnrolled := err == nil
	if isEnrolled {
		enrollmentPtr = &enrollment
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc").Find(&modules)

	if !isEnrolled {
		free := modules[:0]
		for _, module := range modules {
			if module.IsFree {
				free = append(free, module)
			}
		}
		modules = free
	}

	evaluator := unlock.NewService(database.Database.Db)
	states, err := evaluator.LockStates(userID, &course, modules, enrollmentPtr)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to evaluate module access!", nil)
	}

	views := make([]ModuleView, len(modules))
	for i, module := range modules {
		state := states[module.ID]
		views[i] = ModuleView{
			Module:      module,
			IsLocked:    state.Locked,
			IsCompleted: state.Completed,
			Content:     []courseModels.Content{},
		}

		if !state.Locked && (isEnrolled || module.IsFree) {
			database.Database.Db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
				Order("order_index asc").Find(&views[i].Content)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":      course,
		"modules":     views,
		"is_enrolled": isEnrolled,
		"enrollment":  enrollmentPtr,
	})
}
