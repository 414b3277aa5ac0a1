package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch statuses
const (
	BatchUpcoming  = "upcoming"
	BatchOngoing   = "ongoing"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
)

// ScheduleSlot is one recurring weekly meeting of a batch
type ScheduleSlot struct {
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday
	StartTime string `json:"start_time"`  // "18:30"
	Duration  int    `json:"duration"`    // minutes
}

// Batch is a scheduled, dated run of a live course template
type Batch struct {
	gorm.Model
	CourseTemplateID uint       `json:"course_template_id" gorm:"index;not null"`
	CourseTemplate   *Course    `json:"course_template,omitempty" gorm:"foreignKey:CourseTemplateID"`
	BatchName        string     `json:"batch_name" gorm:"not null"`
	StartDate        time.Time  `json:"start_date" gorm:"not null"`
	EndDate          *time.Time `json:"end_date"`

	WeeklySchedule datatypes.JSONSlice[ScheduleSlot] `json:"weekly_schedule"`

	FacultyID   uint   `json:"faculty_id" gorm:"index;not null"`
	MaxStudents int    `json:"max_students" gorm:"default:0"`
	Status      string `json:"status" gorm:"default:'upcoming'"` // upcoming, ongoing, completed, cancelled
	IsPublished bool   `json:"is_published" gorm:"default:false;index"`
	CurrentWeek int    `json:"current_week" gorm:"default:1"`

	// Guards against generating batch modules/contents twice
	ExecutionGenerated bool `json:"execution_generated" gorm:"default:false"`

	IsDeleted bool `json:"-" gorm:"default:false"`
}

// BatchModule is the per-run copy of a template module
type BatchModule struct {
	gorm.Model
	BatchID          uint    `json:"batch_id" gorm:"index;not null;uniqueIndex:idx_batch_template_module"`
	TemplateModuleID uint    `json:"template_module_id" gorm:"not null;uniqueIndex:idx_batch_template_module"`
	TemplateModule   *Module `json:"template_module,omitempty" gorm:"foreignKey:TemplateModuleID"`
	WeekNumber       int     `json:"week_number" gorm:"not null"`
	Status           string  `json:"status" gorm:"default:'upcoming'"` // upcoming, ongoing, completed
}

// Batch content statuses
const (
	BatchContentScheduled = "scheduled"
	BatchContentReleased  = "released"
)

// BatchContent is the per-run copy of a template content unit
type BatchContent struct {
	gorm.Model
	BatchID           uint     `json:"batch_id" gorm:"index;not null"`
	BatchModuleID     uint     `json:"batch_module_id" gorm:"index;not null;uniqueIndex:idx_batch_module_template_content"`
	TemplateContentID uint     `json:"template_content_id" gorm:"not null;uniqueIndex:idx_batch_module_template_content"`
	TemplateContent   *Content `json:"template_content,omitempty" gorm:"foreignKey:TemplateContentID"`

	ScheduledDate *time.Time `json:"scheduled_date"`
	ContentStatus string     `json:"content_status" gorm:"default:'scheduled'"` // scheduled, released
	Unlocked      bool       `json:"unlocked" gorm:"default:false"`
}
