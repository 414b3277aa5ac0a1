package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/enrollment"
	"lms/services/unlock"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetPublishedBatches lists the batches students can enroll in
func GetPublishedBatches(c *fiber.Ctx) error {
	var batches []courseModels.Batch
	err := database.Database.Db.Preload("CourseTemplate").
		Where("is_published = ? AND is_deleted = ? AND status <> ?",
			true, false, courseModels.BatchCancelled).
		Order("start_date asc").Find(&batches).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batches!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batches fetched successfully!", batches)
}

// BatchModuleView is one batch module with student lock state and its
// contents (only when visible)
type BatchModuleView struct {
	Module    courseModels.BatchModule    `json:"module"`
	Locked    bool                        `json:"locked"`
	Completed bool                        `json:"completed"`
	Contents  []courseModels.BatchContent `json:"contents,omitempty"`
}

// GetStudentBatchDetails returns a batch with its modules evaluated
// through the course's unlock mode for the requesting student. Contents of
// locked modules are withheld.
func GetStudentBatchDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	batchID := c.Locals("batchID").(int)

	var batch courseModels.Batch
	err := database.Database.Db.Preload("CourseTemplate").
		Where("id = ? AND is_published = ? AND is_deleted = ?", batchID, true, false).
		First(&batch).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Batch not found!", nil)
	}

	var modules []courseModels.BatchModule
	err = database.Database.Db.Preload("TemplateModule").
		Where("batch_id = ?", batch.ID).Order("week_number asc").Find(&modules).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch modules!", nil)
	}

	var enrollmentRow *courseModels.Enrollment
	var found courseModels.Enrollment
	err = database.Database.Db.Where("student_id = ? AND batch_id = ? AND is_deleted = ?",
		userID, batch.ID, false).First(&found).Error
	if err == nil {
		enrollmentRow = &found
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollment!", nil)
	}

	states, err := unlock.NewService(database.Database.Db).
		BatchLockStates(userID, batch.CourseTemplate, modules, enrollmentRow)
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	views := make([]BatchModuleView, 0, len(modules))
	for _, module := range modules {
		state := states[module.ID]
		view := BatchModuleView{
			Module:    module,
			Locked:    state.Locked,
			Completed: state.Completed,
		}

		if enrollmentRow != nil && !state.Locked {
			var contents []courseModels.BatchContent
			err := database.Database.Db.Preload("TemplateContent", func(db *gorm.DB) *gorm.DB {
				return db.Where("is_deleted = ?", false)
			}).Where("batch_module_id = ?", module.ID).Find(&contents).Error
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch contents!", nil)
			}
			view.Contents = contents
		}

		views = append(views, view)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch fetched successfully!", fiber.Map{
		"batch":    batch,
		"enrolled": enrollmentRow != nil,
		"modules":  views,
	})
}

// EnrollInBatch enrolls the requesting student with a full or installment
// plan
func EnrollInBatch(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	batchID := c.Locals("batchID").(int)
	plan := c.Locals("enrollPlan").(string)

	svc := enrollment.NewService(database.Database.Db, utils.NewGatewayClient())
	row, err := svc.EnrollBatch(userID, uint(batchID), plan)
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in batch successfully!", row)
}

// PayBatchModule settles one installment and lifts the module's payment
// block
func PayBatchModule(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	batchModuleID := c.Locals("batchModuleID").(int)
	transactionID := c.Locals("transactionID").(string)

	svc := enrollment.NewService(database.Database.Db, utils.NewGatewayClient())
	if err := svc.PayModule(userID, uint(batchModuleID), transactionID); err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module payment recorded successfully!", nil)
}

// MarkMyAttendance records the requesting student's attendance for a live
// session
func MarkMyAttendance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	batchContentID := c.Locals("batchContentID").(int)
	reqData := c.Locals("validatedAttendance").(*struct {
		Status   string     `json:"status"`
		JoinedAt *time.Time `json:"joined_at"`
		Duration int        `json:"duration"`
	})

	status := reqData.Status
	if status == "" {
		status = courseModels.AttendancePresent
	}
	joinedAt := time.Now()
	if reqData.JoinedAt != nil {
		joinedAt = *reqData.JoinedAt
	}

	svc := enrollment.NewService(database.Database.Db, utils.NewGatewayClient())
	if err := svc.MarkAttendance(userID, uint(batchContentID), status, joinedAt, reqData.Duration); err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance marked successfully!", nil)
}
