package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/catalog"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateModule creates a new module in an editable course. An explicit
// order inserts at that position and shifts the rest down in one statement;
// omitting it appends.
func AdminCreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
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

	cat := catalog.NewService(database.Database.Db)

	if course.CourseType == courseModels.TypeLive {
		if err := cat.CheckWeekOverlap(course.ID, reqData.WeekNumber, reqData.EstimatedDuration, 0); err != nil {
			return middleware.ServiceError(c, err)
		}
	}

	nextOrder, err := cat.NextModuleOrder(course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	order := nextOrder
	if reqData.Order != nil {
		if *reqData.Order > nextOrder {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Order would leave a gap in the module sequence!", nil)
		}
		order = *reqData.Order
	}

	moduleType := reqData.ModuleType
	if moduleType == "" {
		moduleType = course.CourseType
	}
	unlockRule := reqData.UnlockRule
	if unlockRule == "" {
		unlockRule = courseModels.UnlockRulePreviousModule
	}

	module := courseModels.Module{
		CourseID:          course.ID,
		Title:             reqData.Title,
		Description:       reqData.Description,
		OrderIndex:        order,
		ModuleType:        moduleType,
		WeekNumber:        reqData.WeekNumber,
		EstimatedDuration: reqData.EstimatedDuration,
		IsFree:            reqData.IsFree,
		UnlockRule:        unlockRule,
		PassingScore:      reqData.PassingScore,
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if order < nextOrder {
			if err := cat.ShiftModulesFrom(tx, course.ID, order); err != nil {
				return err
			}
		}
		if err := tx.Create(&module).Error; err != nil {
			return err
		}
		if course.CurrentStep < 3 {
			return tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("current_step", 3).Error
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module created successfully!", module)
}

// AdminUpdateModule updates an allow-listed set of module fields
func AdminUpdateModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(int)

	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit module - course is not in draft status!", nil)
	}

	cat := catalog.NewService(database.Database.Db)
	if course.CourseType == courseModels.TypeLive {
		if err := cat.CheckWeekOverlap(course.ID, reqData.WeekNumber, reqData.EstimatedDuration, module.ID); err != nil {
			return middleware.ServiceError(c, err)
		}
	}

	// Explicit field list so a payload cannot inject order or course moves
	updates := map[string]interface{}{
		"title":              reqData.Title,
		"description":        reqData.Description,
		"is_free":            reqData.IsFree,
		"passing_score":      reqData.PassingScore,
		"week_number":        reqData.WeekNumber,
		"estimated_duration": reqData.EstimatedDuration,
	}
	if reqData.UnlockRule != "" {
		updates["unlock_rule"] = reqData.UnlockRule
	}

	if err := database.Database.Db.Model(&module).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeleteModule soft-deletes a module and repacks sibling order. A
// module whose content already has watch progress cannot be removed.
func AdminDeleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.Editable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot delete module - course is not in draft status!", nil)
	}

	cat := catalog.NewService(database.Database.Db)
	referenced, err := cat.ModuleHasProgress(module.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	if referenced {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Module content has student progress and cannot be deleted!", nil)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&courseModels.Content{}).
			Where("module_id = ?", module.ID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&module).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return cat.RepackModulesAfter(tx, course.ID, module.OrderIndex)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// GetModulesByCourse lists a course's modules with their content
func GetModulesByCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	type moduleWithContent struct {
		courseModels.Module
		Content []courseModels.Content `json:"content"`
	}

	result := make([]moduleWithContent, len(modules))
	for i, module := range modules {
		result[i].Module = module
		database.Database.Db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
			Order("order_index asc").Find(&result[i].Content)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", result)
}
