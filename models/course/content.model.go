package course

import "gorm.io/gorm"

// Content types
const (
	ContentVideo       = "video"
	ContentPDF         = "pdf"
	ContentLink        = "link"
	ContentNotes       = "notes"
	ContentLiveSession = "live_session"
)

// Content is one piece of learnable material inside a module
type Content struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	ContentType string `json:"content_type" gorm:"not null"` // video, pdf, link, notes, live_session
	ContentURL  string `json:"content_url"`
	Duration    int    `json:"duration" gorm:"default:0"` // nominal length in seconds
	OrderIndex  int    `json:"order_index" gorm:"not null"`
	DayNumber   int    `json:"day_number"` // live courses only, 1..weeks*7

	IsDeleted bool `json:"-" gorm:"default:false"`
}
