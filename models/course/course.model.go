package course

import "gorm.io/gorm"

// Course types
const (
	TypeRecorded = "recorded"
	TypeLive     = "live"
)

// Course lifecycle statuses
const (
	StatusDraft     = "draft"
	StatusInReview  = "in_review"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// Course unlock modes
const (
	UnlockFreeFlow     = "free_flow"
	UnlockSequential   = "sequential"
	UnlockGradedUnlock = "graded_unlock"
)

// Course is the template a student enrolls into, either directly (recorded)
// or through a scheduled batch (live).
type Course struct {
	gorm.Model
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description"`
	CourseType  string  `json:"course_type" gorm:"not null"` // recorded, live
	Price       float64 `json:"price" gorm:"default:0"`
	Duration    int     `json:"duration"` // total weeks, live templates only

	CreatedByID uint `json:"created_by_id" gorm:"index"`
	FacultyID   uint `json:"faculty_id" gorm:"index"`

	// Global course policies
	UnlockMode              string `json:"unlock_mode" gorm:"default:'sequential'"` // free_flow, sequential, graded_unlock
	FinalAssessmentRequired bool   `json:"final_assessment_required" gorm:"default:false"`

	// Review workflow
	Status      string `json:"status" gorm:"default:'draft';index"` // draft, in_review, published, rejected
	CurrentStep int    `json:"current_step" gorm:"default:1"`
	IsComplete  bool   `json:"is_complete" gorm:"default:false"`
	ReviewNotes string `json:"review_notes"`

	IsDeleted bool `json:"-" gorm:"default:false"`
}

// Editable reports whether course structure (modules, assessments, policies)
// may still be changed.
func (c *Course) Editable() bool {
	return c.Status == StatusDraft || c.Status == StatusRejected
}

// ContentEditable reports whether content rows may be changed. Content edits
// are additionally allowed on published courses so faculty can patch material
// without a re-review cycle.
func (c *Course) ContentEditable() bool {
	return c.Editable() || c.Status == StatusPublished
}
