package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentRef kinds
const (
	RefRecorded = "content"       // recorded course content
	RefLive     = "batch_content" // live batch content
)

// ContentRef points at exactly one learnable unit: a recorded Content row or
// a live BatchContent row. Keeping the kind next to the id makes the
// "exactly one populated" rule structural instead of two nullable columns.
type ContentRef struct {
	RefType string `json:"ref_type" gorm:"not null;uniqueIndex:idx_student_content_ref"`
	RefID   uint   `json:"ref_id" gorm:"not null;uniqueIndex:idx_student_content_ref"`
}

// RecordedRef builds a reference to a recorded content unit
func RecordedRef(contentID uint) ContentRef {
	return ContentRef{RefType: RefRecorded, RefID: contentID}
}

// LiveRef builds a reference to a live batch content unit
func LiveRef(batchContentID uint) ContentRef {
	return ContentRef{RefType: RefLive, RefID: batchContentID}
}

// IsLive reports whether the reference targets batch content
func (r ContentRef) IsLive() bool {
	return r.RefType == RefLive
}

// Segment is a half-open-ish [start,end] second range reported as watched.
// Stored lists are kept merged: sorted, pairwise disjoint.
type Segment [2]float64

func (s Segment) Start() float64 { return s[0] }
func (s Segment) End() float64   { return s[1] }

// ContentProgress tracks one student's watch state for one content unit
type ContentProgress struct {
	gorm.Model
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_student_content_ref"`
	ContentRef

	BatchModuleID uint `json:"batch_module_id"` // live refs only

	LastPosition    float64                      `json:"last_position" gorm:"default:0"`
	Duration        float64                      `json:"duration" gorm:"default:0"`
	WatchedSegments datatypes.JSONSlice[Segment] `json:"watched_segments"`
	TotalWatchTime  float64                      `json:"total_watch_time" gorm:"default:0"`
	Completed       bool                         `json:"completed" gorm:"default:false"`

	// Optimistic lock for the merge-and-latch write path
	Version int `json:"-" gorm:"default:0"`
}
