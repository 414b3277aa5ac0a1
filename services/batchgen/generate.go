package batchgen

import (
	"errors"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"gorm.io/gorm"
)

// Service materializes batch modules/contents from a live course template
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Generate copies the template's modules and contents into per-batch rows.
// The ExecutionGenerated flag rejects a second full run; inside the
// transaction each step checks its own postcondition (row already there →
// skip), so a run that died halfway can be replayed to completion by
// clearing nothing.
func (s *Service) Generate(batchID uint) error {
	var batch courseModels.Batch
	err := s.db.Preload("CourseTemplate").
		Where("id = ? AND is_deleted = ?", batchID, false).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if batch.CourseTemplate == nil || batch.CourseTemplate.CourseType != courseModels.TypeLive {
		return apperr.InvalidStatef("batches can only be generated for live course templates")
	}
	if batch.ExecutionGenerated {
		return apperr.InvalidStatef("batch execution has already been generated")
	}

	var modules []courseModels.Module
	err = s.db.Where("course_id = ? AND is_deleted = ?", batch.CourseTemplateID, false).
		Order("week_number asc, order_index asc").Find(&modules).Error
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, module := range modules {
			batchModule, err := findOrCreateBatchModule(tx, batch.ID, module)
			if err != nil {
				return err
			}

			var contents []courseModels.Content
			err = tx.Where("module_id = ? AND is_deleted = ?", module.ID, false).
				Order("day_number asc, order_index asc").Find(&contents).Error
			if err != nil {
				return err
			}

			for _, content := range contents {
				if err := findOrCreateBatchContent(tx, batch.ID, batchModule.ID, content.ID); err != nil {
					return err
				}
			}
		}

		return tx.Model(&courseModels.Batch{}).
			Where("id = ?", batch.ID).
			Update("execution_generated", true).Error
	})
}

// SetModuleStatus moves a batch module through upcoming → ongoing →
// completed. When a module goes ongoing, full-plan enrollments lose their
// block on it; installment enrollments stay blocked until the module is
// paid.
func (s *Service) SetModuleStatus(batchModuleID uint, status string) error {
	switch status {
	case courseModels.BatchUpcoming, courseModels.BatchOngoing, courseModels.BatchCompleted:
	default:
		return apperr.Validationf("unknown batch module status")
	}

	var module courseModels.BatchModule
	if err := s.db.First(&module, batchModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	err := s.db.Model(&courseModels.BatchModule{}).
		Where("id = ?", batchModuleID).
		Update("status", status).Error
	if err != nil {
		return err
	}

	if status != courseModels.BatchOngoing {
		return nil
	}

	var enrollmentIDs []uint
	err = s.db.Model(&courseModels.Enrollment{}).
		Where("batch_id = ? AND payment_plan = ? AND is_deleted = ?",
			module.BatchID, courseModels.PlanFull, false).
		Pluck("id", &enrollmentIDs).Error
	if err != nil {
		return err
	}
	if len(enrollmentIDs) == 0 {
		return nil
	}

	return s.db.Where("enrollment_id IN ? AND module_type = ? AND module_id = ?",
		enrollmentIDs, courseModels.ModRefBatch, batchModuleID).
		Delete(&courseModels.BlockedModule{}).Error
}

func findOrCreateBatchModule(tx *gorm.DB, batchID uint, module courseModels.Module) (*courseModels.BatchModule, error) {
	var existing courseModels.BatchModule
	err := tx.Where("batch_id = ? AND template_module_id = ?", batchID, module.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := courseModels.BatchModule{
		BatchID:          batchID,
		TemplateModuleID: module.ID,
		WeekNumber:       module.WeekNumber,
	}
	if err := tx.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

func findOrCreateBatchContent(tx *gorm.DB, batchID, batchModuleID, templateContentID uint) error {
	var existing courseModels.BatchContent
	err := tx.Where("batch_module_id = ? AND template_content_id = ?",
		batchModuleID, templateContentID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&courseModels.BatchContent{
		BatchID:           batchID,
		BatchModuleID:     batchModuleID,
		TemplateContentID: templateContentID,
	}).Error
}
