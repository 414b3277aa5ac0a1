package progress

import (
	"errors"

	courseModels "lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// propagateVideoCompletion runs when a video first transitions to
// completed. It is a reconciliation scan, not a counter: it re-lists the
// module's videos and this student's completed rows among them, so replayed
// or out-of-order watch events converge on the same answer.
func (s *Service) propagateVideoCompletion(studentID uint, ref courseModels.ContentRef, resolved resolvedContent) error {
	if ref.IsLive() {
		return s.propagateBatchModule(studentID, resolved)
	}
	return s.propagateTemplateModule(studentID, resolved)
}

func (s *Service) propagateTemplateModule(studentID uint, resolved resolvedContent) error {
	var videoIDs []uint
	err := s.db.Model(&courseModels.Content{}).
		Where("module_id = ? AND content_type = ? AND is_deleted = ?",
			resolved.moduleID, courseModels.ContentVideo, false).
		Pluck("id", &videoIDs).Error
	if err != nil {
		return err
	}
	if len(videoIDs) == 0 {
		return nil
	}

	var completedCount int64
	err = s.db.Model(&courseModels.ContentProgress{}).
		Where("student_id = ? AND ref_type = ? AND ref_id IN ? AND completed = ?",
			studentID, courseModels.RefRecorded, videoIDs, true).
		Count(&completedCount).Error
	if err != nil {
		return err
	}
	if completedCount != int64(len(videoIDs)) {
		return nil
	}

	var enrollment courseModels.Enrollment
	err = s.db.Where("student_id = ? AND course_id = ? AND is_deleted = ?",
		studentID, resolved.courseID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unenrolled viewers (free modules) have nothing to update
			return nil
		}
		return err
	}

	if err := s.addCompletedModule(enrollment.ID, courseModels.TemplateModuleRef(resolved.moduleID)); err != nil {
		return err
	}
	return s.refreshOverallProgress(&enrollment)
}

func (s *Service) propagateBatchModule(studentID uint, resolved resolvedContent) error {
	var videoIDs []uint
	err := s.db.Model(&courseModels.BatchContent{}).
		Joins("JOIN contents ON contents.id = batch_contents.template_content_id").
		Where("batch_contents.batch_module_id = ? AND contents.content_type = ?",
			resolved.batchModuleID, courseModels.ContentVideo).
		Pluck("batch_contents.id", &videoIDs).Error
	if err != nil {
		return err
	}
	if len(videoIDs) == 0 {
		return nil
	}

	var completedCount int64
	err = s.db.Model(&courseModels.ContentProgress{}).
		Where("student_id = ? AND ref_type = ? AND ref_id IN ? AND completed = ?",
			studentID, courseModels.RefLive, videoIDs, true).
		Count(&completedCount).Error
	if err != nil {
		return err
	}
	if completedCount != int64(len(videoIDs)) {
		return nil
	}

	var enrollment courseModels.Enrollment
	err = s.db.Where("student_id = ? AND batch_id = ? AND is_deleted = ?",
		studentID, resolved.batchID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return s.addCompletedModule(enrollment.ID, courseModels.BatchModuleRef(resolved.batchModuleID))
}

// addCompletedModule is the idempotent set-add on the enrollment's
// completed-module set. The unique index turns a redundant insert from a
// concurrent propagation run into a no-op.
func (s *Service) addCompletedModule(enrollmentID uint, ref courseModels.ModuleRef) error {
	row := courseModels.CompletedModule{
		EnrollmentID: enrollmentID,
		ModuleType:   ref.ModuleType,
		ModuleID:     ref.ModuleID,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// refreshOverallProgress recomputes the enrollment's completed-module share.
// Single-column update so it cannot clobber concurrent payment writes.
func (s *Service) refreshOverallProgress(enrollment *courseModels.Enrollment) error {
	var totalModules int64
	err := s.db.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ?", enrollment.CourseID, false).
		Count(&totalModules).Error
	if err != nil || totalModules == 0 {
		return err
	}

	var completedModules int64
	err = s.db.Model(&courseModels.CompletedModule{}).
		Where("enrollment_id = ?", enrollment.ID).
		Count(&completedModules).Error
	if err != nil {
		return err
	}

	overall := float64(completedModules) / float64(totalModules) * 100

	return s.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Update("overall_progress", overall).Error
}
