package controllers

import (
	"fmt"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/catalog"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateContent adds a content unit to a module. Content edits are
// also allowed on published courses so faculty can patch material without
// a re-review; structure edits stay draft-only.
func AdminCreateContent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContent").(*courseValidator.ContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.ModuleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.ContentEditable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
	}

	if reqData.ContentURL == "" && reqData.ContentType != courseModels.ContentLiveSession {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content URL is required!", nil)
	}

	dayNumber := 0
	if course.CourseType == courseModels.TypeLive {
		if reqData.DayNumber < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "day_number must be at least 1 for live courses!", nil)
		}
		weeks := module.EstimatedDuration
		if weeks < 1 {
			weeks = 1
		}
		maxDays := weeks * 7
		if reqData.DayNumber > maxDays {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("day_number cannot exceed %d for this module!", maxDays), nil)
		}
		dayNumber = reqData.DayNumber
	}

	cat := catalog.NewService(database.Database.Db)

	nextOrder, err := cat.NextContentOrder(module.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	order := nextOrder
	shift := false
	if reqData.Order != nil {
		order = *reqData.Order
		if order < nextOrder {
			var existing courseModels.Content
			taken := database.Database.Db.Where("module_id = ? AND order_index = ? AND is_deleted = ?",
				module.ID, order, false).First(&existing).Error == nil
			if taken && !reqData.PushOthers {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
					"Order already used. Set push_others=true to shift others!", nil)
			}
			shift = taken
		} else if order > nextOrder {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Order would leave a gap in the content sequence!", nil)
		}
	}

	content := courseModels.Content{
		ModuleID:    module.ID,
		Title:       reqData.Title,
		ContentType: reqData.ContentType,
		ContentURL:  reqData.ContentURL,
		Duration:    reqData.Duration,
		OrderIndex:  order,
		DayNumber:   dayNumber,
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if shift {
			if err := cat.ShiftContentsFrom(tx, module.ID, order); err != nil {
				return err
			}
		}
		if err := tx.Create(&content).Error; err != nil {
			return err
		}
		if course.CurrentStep < 4 {
			return tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("current_step", 4).Error
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content created successfully!", content)
}

// AdminUpdateContent updates an allow-listed set of content fields
func AdminUpdateContent(c *fiber.Ctx) error {
	contentID := c.Locals("contentID").(int)

	reqData, ok := c.Locals("validatedContent").(*courseValidator.ContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var content courseModels.Content
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.First(&module, content.ModuleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.ContentEditable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
	}

	updates := map[string]interface{}{
		"title":        reqData.Title,
		"content_type": reqData.ContentType,
		"content_url":  reqData.ContentURL,
		"duration":     reqData.Duration,
	}
	if course.CourseType == courseModels.TypeLive && reqData.DayNumber >= 1 {
		updates["day_number"] = reqData.DayNumber
	}

	if err := database.Database.Db.Model(&content).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", content)
}

// AdminDeleteContent soft-deletes a content unit and closes the order gap
// with a single bulk decrement. Content referenced by watch progress stays.
func AdminDeleteContent(c *fiber.Ctx) error {
	contentID := c.Locals("contentID").(int)

	var content courseModels.Content
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.First(&module, content.ModuleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.ContentEditable() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot edit course in current status!", nil)
	}

	cat := catalog.NewService(database.Database.Db)
	referenced, err := cat.ContentHasProgress(content.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}
	if referenced {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content has student progress and cannot be deleted!", nil)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&content).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return cat.RepackContentsAfter(tx, module.ID, content.OrderIndex)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}
