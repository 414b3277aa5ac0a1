package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment types
const (
	AssessmentQuiz       = "quiz"
	AssessmentAssignment = "assignment"
	AssessmentFinal      = "final"
)

// Assessment is a quiz/assignment attached to a module, a batch module, or
// to the course as a whole (nil module = final exam).
type Assessment struct {
	gorm.Model
	CourseID      uint  `json:"course_id" gorm:"index;not null"`
	ModuleID      *uint `json:"module_id" gorm:"index"` // nil = final exam
	BatchID       *uint `json:"batch_id" gorm:"index"`
	BatchModuleID *uint `json:"batch_module_id" gorm:"index"`

	Title          string `json:"title" gorm:"not null"`
	AssessmentType string `json:"assessment_type" gorm:"not null"` // quiz, assignment, final
	TotalMarks     int    `json:"total_marks"`
	PassingMarks   int    `json:"passing_marks"`
	AttemptsAllowed int   `json:"attempts_allowed" gorm:"default:3"`
	IsPublished    bool   `json:"is_published" gorm:"default:true"`

	IsDeleted bool `json:"-" gorm:"default:false"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
}

// Question is one MCQ in an assessment. CorrectOption is never serialized
// toward students; student-facing reads go through SafeQuestion.
type Question struct {
	gorm.Model
	AssessmentID  uint                        `json:"assessment_id" gorm:"index;not null"`
	QuestionText  string                      `json:"question_text" gorm:"not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectOption int                         `json:"correct_option"` // index into Options
	Marks         int                         `json:"marks" gorm:"default:1"`
	OrderIndex    int                         `json:"order_index" gorm:"default:0"`
}

// SafeQuestion is the student-facing projection of a question
type SafeQuestion struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Marks        int      `json:"marks"`
	OrderIndex   int      `json:"order_index"`
}

// Safe strips the correct-option index for student reads
func (q *Question) Safe() SafeQuestion {
	return SafeQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Marks:        q.Marks,
		OrderIndex:   q.OrderIndex,
	}
}

// Submission is one graded attempt against an assessment
type Submission struct {
	gorm.Model
	AssessmentID uint `json:"assessment_id" gorm:"index;not null"`
	StudentID    uint `json:"student_id" gorm:"index;not null"`

	Answers       datatypes.JSONSlice[int] `json:"answers"` // selected option index per question
	Score         int                      `json:"score"`
	TotalMarks    int                      `json:"total_marks"`
	Percentage    float64                  `json:"percentage"`
	Passed        bool                     `json:"passed"`
	AttemptNumber int                      `json:"attempt_number"`
}
