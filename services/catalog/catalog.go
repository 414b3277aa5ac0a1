package catalog

import (
	"fmt"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"gorm.io/gorm"
)

// Service holds the ordering and scheduling invariants of the course
// catalog: contiguous order indexes and non-overlapping module week ranges.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NextModuleOrder returns the append position for a new module
func (s *Service) NextModuleOrder(courseID uint) (int, error) {
	return s.nextOrder(&courseModels.Module{}, "course_id", courseID)
}

// NextContentOrder returns the append position for a new content unit
func (s *Service) NextContentOrder(moduleID uint) (int, error) {
	return s.nextOrder(&courseModels.Content{}, "module_id", moduleID)
}

func (s *Service) nextOrder(model interface{}, column string, ownerID uint) (int, error) {
	var max int
	err := s.db.Model(model).
		Where(fmt.Sprintf("%s = ? AND is_deleted = ?", column), ownerID, false).
		Select("COALESCE(MAX(order_index), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ShiftModulesFrom makes room at the given order index with one bulk
// update. A single positional statement cannot leave gaps or duplicates the
// way per-row resave loops can.
func (s *Service) ShiftModulesFrom(tx *gorm.DB, courseID uint, order int) error {
	return tx.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ? AND order_index >= ?", courseID, false, order).
		Update("order_index", gorm.Expr("order_index + 1")).Error
}

// ShiftContentsFrom makes room at the given order index within a module
func (s *Service) ShiftContentsFrom(tx *gorm.DB, moduleID uint, order int) error {
	return tx.Model(&courseModels.Content{}).
		Where("module_id = ? AND is_deleted = ? AND order_index >= ?", moduleID, false, order).
		Update("order_index", gorm.Expr("order_index + 1")).Error
}

// RepackContentsAfter closes the hole a deletion leaves behind
func (s *Service) RepackContentsAfter(tx *gorm.DB, moduleID uint, order int) error {
	return tx.Model(&courseModels.Content{}).
		Where("module_id = ? AND is_deleted = ? AND order_index > ?", moduleID, false, order).
		Update("order_index", gorm.Expr("order_index - 1")).Error
}

// RepackModulesAfter closes the hole a module deletion leaves behind
func (s *Service) RepackModulesAfter(tx *gorm.DB, courseID uint, order int) error {
	return tx.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ? AND order_index > ?", courseID, false, order).
		Update("order_index", gorm.Expr("order_index - 1")).Error
}

// CheckWeekOverlap rejects a live module whose week range collides with a
// sibling. excludeModuleID skips the module being updated.
func (s *Service) CheckWeekOverlap(courseID uint, weekNumber, estimatedDuration int, excludeModuleID uint) error {
	if weekNumber < 1 {
		return apperr.Validationf("week_number must be at least 1")
	}

	candidate := courseModels.Module{WeekNumber: weekNumber, EstimatedDuration: estimatedDuration}
	start, end := candidate.WeekRange()

	var siblings []courseModels.Module
	query := s.db.Where("course_id = ? AND is_deleted = ?", courseID, false)
	if excludeModuleID != 0 {
		query = query.Where("id <> ?", excludeModuleID)
	}
	if err := query.Find(&siblings).Error; err != nil {
		return err
	}

	for _, sibling := range siblings {
		if sibling.WeekNumber == 0 {
			continue
		}
		sStart, sEnd := sibling.WeekRange()
		if start <= sEnd && sStart <= end {
			return apperr.Validationf(fmt.Sprintf(
				"week range %d-%d overlaps module %q (%d-%d)", start, end, sibling.Title, sStart, sEnd))
		}
	}

	return nil
}

// ContentHasProgress reports whether any progress record references the
// content unit. Referenced units must not be deleted.
func (s *Service) ContentHasProgress(contentID uint) (bool, error) {
	var count int64
	err := s.db.Model(&courseModels.ContentProgress{}).
		Where("ref_type = ? AND ref_id = ?", courseModels.RefRecorded, contentID).
		Count(&count).Error
	return count > 0, err
}

// ModuleHasProgress reports whether any content of the module is referenced
// by a progress record
func (s *Service) ModuleHasProgress(moduleID uint) (bool, error) {
	var contentIDs []uint
	err := s.db.Model(&courseModels.Content{}).
		Where("module_id = ?", moduleID).
		Pluck("id", &contentIDs).Error
	if err != nil {
		return false, err
	}
	if len(contentIDs) == 0 {
		return false, nil
	}

	var count int64
	err = s.db.Model(&courseModels.ContentProgress{}).
		Where("ref_type = ? AND ref_id IN ?", courseModels.RefRecorded, contentIDs).
		Count(&count).Error
	return count > 0, err
}
