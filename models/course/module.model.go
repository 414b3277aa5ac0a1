package course

import "gorm.io/gorm"

// Module unlock rules
const (
	UnlockRuleNone           = "none"
	UnlockRulePreviousModule = "previous_module"
	UnlockRulePassAssessment = "pass_assessment"
)

// Module represents an ordered section of a course template
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"not null"` // 1-based, contiguous per course
	ModuleType  string `json:"module_type"`                 // recorded, live

	// Live template mapping
	WeekNumber        int `json:"week_number"`        // starting week of this module
	EstimatedDuration int `json:"estimated_duration"` // number of weeks this module runs

	// Access control
	IsFree       bool    `json:"is_free" gorm:"default:false"`
	UnlockRule   string  `json:"unlock_rule" gorm:"default:'previous_module'"` // none, previous_module, pass_assessment
	PassingScore float64 `json:"passing_score" gorm:"default:0"`

	IsDeleted bool `json:"-" gorm:"default:false"`
}

// WeekRange returns the inclusive week span this module occupies in a live
// course template. Duration below one week counts as one.
func (m *Module) WeekRange() (int, int) {
	weeks := m.EstimatedDuration
	if weeks < 1 {
		weeks = 1
	}
	return m.WeekNumber, m.WeekNumber + weeks - 1
}
