package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/batchgen"
	batchValidator "lms/validators/batch"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateBatch creates a batch over a published live course template
func AdminCreateBatch(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBatch").(*batchValidator.BatchRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.CourseTemplateID, false).
		First(&course).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course template not found!", nil)
	}
	if course.CourseType != courseModels.TypeLive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Batches can only be created for live courses!", nil)
	}
	if course.Status != courseModels.StatusPublished {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course template must be published first!", nil)
	}

	var faculty models.User
	err = database.Database.Db.Where("id = ? AND role = ? AND is_deleted = ?",
		reqData.FacultyID, models.RoleFaculty, false).First(&faculty).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Faculty not found!", nil)
	}

	batch := courseModels.Batch{
		CourseTemplateID: course.ID,
		BatchName:        reqData.BatchName,
		StartDate:        reqData.StartDate,
		EndDate:          reqData.EndDate,
		WeeklySchedule:   reqData.WeeklySchedule,
		FacultyID:        reqData.FacultyID,
		MaxStudents:      reqData.MaxStudents,
		Status:           courseModels.BatchUpcoming,
	}

	if err := database.Database.Db.Create(&batch).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create batch!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch created successfully!", batch)
}

// AdminGenerateBatch materializes batch modules and contents from the
// course template
func AdminGenerateBatch(c *fiber.Ctx) error {
	batchID := c.Locals("batchID").(int)

	svc := batchgen.NewService(database.Database.Db)
	if err := svc.Generate(uint(batchID)); err != nil {
		return middleware.ServiceError(c, err)
	}

	var modules []courseModels.BatchModule
	err := database.Database.Db.Where("batch_id = ?", batchID).
		Order("week_number asc").Find(&modules).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch generated modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch execution generated successfully!", modules)
}

// AdminPublishBatch makes a generated batch visible to students
func AdminPublishBatch(c *fiber.Ctx) error {
	batchID := c.Locals("batchID").(int)

	var batch courseModels.Batch
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", batchID, false).First(&batch).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Batch not found!", nil)
	}
	if !batch.ExecutionGenerated {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Generate the batch execution before publishing!", nil)
	}

	err = database.Database.Db.Model(&courseModels.Batch{}).
		Where("id = ?", batch.ID).Update("is_published", true).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish batch!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch published successfully!", nil)
}

// AdminSetModuleStatus moves a batch module between upcoming, ongoing and
// completed
func AdminSetModuleStatus(c *fiber.Ctx) error {
	batchModuleID := c.Locals("batchModuleID").(int)
	status := c.Locals("moduleStatus").(string)

	svc := batchgen.NewService(database.Database.Db)
	if err := svc.SetModuleStatus(uint(batchModuleID), status); err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch module status updated successfully!", nil)
}

// AdminGetBatches lists batches, optionally filtered by course template
func AdminGetBatches(c *fiber.Ctx) error {
	query := database.Database.Db.Where("is_deleted = ?", false)
	if courseID := c.QueryInt("course_id"); courseID > 0 {
		query = query.Where("course_template_id = ?", courseID)
	}

	var batches []courseModels.Batch
	err := query.Preload("CourseTemplate").Order("start_date desc").Find(&batches).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batches!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batches fetched successfully!", batches)
}

// AdminGetBatchDetails returns one batch with its modules and contents
func AdminGetBatchDetails(c *fiber.Ctx) error {
	batchID := c.Locals("batchID").(int)

	var batch courseModels.Batch
	err := database.Database.Db.Preload("CourseTemplate").
		Where("id = ? AND is_deleted = ?", batchID, false).First(&batch).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Batch not found!", nil)
	}

	var modules []courseModels.BatchModule
	err = database.Database.Db.Preload("TemplateModule").
		Where("batch_id = ?", batch.ID).Order("week_number asc").Find(&modules).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch modules!", nil)
	}

	views := make([]fiber.Map, 0, len(modules))
	for _, module := range modules {
		var contents []courseModels.BatchContent
		err := database.Database.Db.Preload("TemplateContent", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false)
		}).Where("batch_module_id = ?", module.ID).Find(&contents).Error
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch contents!", nil)
		}
		views = append(views, fiber.Map{
			"module":   module,
			"contents": contents,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch fetched successfully!", fiber.Map{
		"batch":   batch,
		"modules": views,
	})
}
