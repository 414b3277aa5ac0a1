package progress

import (
	"errors"
	"log"
	"math"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// completionThreshold is the watched fraction at which a unit counts as done
const completionThreshold = 0.7

// casAttempts bounds the optimistic-lock retry loop
const casAttempts = 3

// Service owns per-(student, content) progress records
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Snapshot is the caller-facing view of one progress record
type Snapshot struct {
	LastPosition   float64 `json:"last_position"`
	TotalWatchTime float64 `json:"total_watch_time"`
	Completed      bool    `json:"completed"`
	Percentage     int     `json:"percentage"`
}

// WatchUpdate is one "student watched N seconds" event
type WatchUpdate struct {
	Ref      courseModels.ContentRef
	Segment  *courseModels.Segment // nil when only the position moved
	Position float64
	Duration float64
}

// resolvedContent is what RecordWatch learns about the unit being watched
type resolvedContent struct {
	contentType   string
	moduleID      uint // recorded
	courseID      uint // recorded
	batchID       uint // live
	batchModuleID uint // live
}

// RecordWatch appends a watched segment, re-merges the stored list and
// recomputes completion. Completion latches: once a record reports
// completed it never reverts, even if a later duration correction would
// put the watched fraction below the threshold.
//
// The merge-and-write step races with itself for the same (student,
// content) pair, so it runs as a compare-and-set on the record's version,
// retried a bounded number of times before surfacing ErrConflict.
func (s *Service) RecordWatch(studentID uint, upd WatchUpdate) (Snapshot, error) {
	if upd.Segment != nil {
		if err := ValidateSegment(*upd.Segment); err != nil {
			return Snapshot{}, err
		}
	}

	resolved, err := s.resolveContent(upd.Ref)
	if err != nil {
		return Snapshot{}, err
	}

	var (
		snap           Snapshot
		becameComplete bool
	)

	for attempt := 0; ; attempt++ {
		rec, err := s.fetchOrCreate(studentID, upd.Ref, resolved)
		if err != nil {
			return Snapshot{}, err
		}

		segments := []courseModels.Segment(rec.WatchedSegments)
		if upd.Segment != nil {
			segments = append(segments, *upd.Segment)
		}
		merged := MergeSegments(segments)
		total := TotalWatchTime(merged)

		duration := upd.Duration
		if duration <= 0 {
			duration = rec.Duration
		}

		ratio := 0.0
		if duration > 0 {
			ratio = total / duration
		}

		completed := rec.Completed || (duration > 0 && ratio >= completionThreshold)
		becameComplete = completed && !rec.Completed

		res := s.db.Model(&courseModels.ContentProgress{}).
			Where("id = ? AND version = ?", rec.ID, rec.Version).
			Updates(map[string]interface{}{
				"last_position":    upd.Position,
				"duration":         duration,
				"watched_segments": datatypes.NewJSONSlice(merged),
				"total_watch_time": total,
				"completed":        completed,
				"version":          rec.Version + 1,
			})
		if res.Error != nil {
			return Snapshot{}, res.Error
		}
		if res.RowsAffected > 0 {
			snap = Snapshot{
				LastPosition:   upd.Position,
				TotalWatchTime: total,
				Completed:      completed,
				Percentage:     int(math.Round(ratio * 100)),
			}
			break
		}
		if attempt >= casAttempts-1 {
			return Snapshot{}, apperr.ErrConflict
		}
		// Version moved under us, re-read and re-merge
	}

	// Module completion is a best-effort reconciliation; the next watch
	// event re-runs it, so a failure here must not fail the save.
	if becameComplete && resolved.contentType == courseModels.ContentVideo {
		if err := s.propagateVideoCompletion(studentID, upd.Ref, resolved); err != nil {
			log.Printf("Warning: module completion propagation failed: %v", err)
		}
	}

	return snap, nil
}

// GetProgress returns the stored snapshot, or a zero-valued one when the
// student has not touched this content yet. Absence is not an error.
func (s *Service) GetProgress(studentID uint, ref courseModels.ContentRef) (Snapshot, error) {
	var rec courseModels.ContentProgress
	err := s.db.Where("student_id = ? AND ref_type = ? AND ref_id = ?",
		studentID, ref.RefType, ref.RefID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}

	percentage := 0
	if rec.Duration > 0 {
		percentage = int(math.Round(rec.TotalWatchTime / rec.Duration * 100))
	}

	return Snapshot{
		LastPosition:   rec.LastPosition,
		TotalWatchTime: rec.TotalWatchTime,
		Completed:      rec.Completed,
		Percentage:     percentage,
	}, nil
}

// resolveContent loads the referenced unit and its owning module/batch.
// A dangling reference is NotFound and nothing gets created.
func (s *Service) resolveContent(ref courseModels.ContentRef) (resolvedContent, error) {
	if ref.IsLive() {
		var bc courseModels.BatchContent
		err := s.db.Preload("TemplateContent").First(&bc, ref.RefID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return resolvedContent{}, apperr.ErrNotFound
			}
			return resolvedContent{}, err
		}
		resolved := resolvedContent{
			batchID:       bc.BatchID,
			batchModuleID: bc.BatchModuleID,
		}
		if bc.TemplateContent != nil {
			resolved.contentType = bc.TemplateContent.ContentType
		}
		return resolved, nil
	}

	var content courseModels.Content
	err := s.db.Where("id = ? AND is_deleted = ?", ref.RefID, false).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resolvedContent{}, apperr.ErrNotFound
		}
		return resolvedContent{}, err
	}

	var module courseModels.Module
	if err := s.db.First(&module, content.ModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resolvedContent{}, apperr.ErrNotFound
		}
		return resolvedContent{}, err
	}

	return resolvedContent{
		contentType: content.ContentType,
		moduleID:    content.ModuleID,
		courseID:    module.CourseID,
	}, nil
}

// fetchOrCreate returns the progress row for (student, ref), creating an
// empty one if needed. Creation uses an on-conflict no-op so two concurrent
// first events for the same pair both land on the same row.
func (s *Service) fetchOrCreate(studentID uint, ref courseModels.ContentRef, resolved resolvedContent) (*courseModels.ContentProgress, error) {
	var rec courseModels.ContentProgress
	err := s.db.Where("student_id = ? AND ref_type = ? AND ref_id = ?",
		studentID, ref.RefType, ref.RefID).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := courseModels.ContentProgress{
		StudentID:     studentID,
		ContentRef:    ref,
		BatchModuleID: resolved.batchModuleID,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	// Re-read: the insert may have been a no-op against a concurrent writer
	err = s.db.Where("student_id = ? AND ref_type = ? AND ref_id = ?",
		studentID, ref.RefType, ref.RefID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
