package grading

import (
	"errors"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service grades assessment submissions and enforces attempt limits
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Result is what the student gets back after a graded attempt
type Result struct {
	Score         int     `json:"score"`
	TotalMarks    int     `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	Passed        bool    `json:"passed"`
	AttemptNumber int     `json:"attempt_number"`
}

// Submit grades one attempt. The attempt cap is checked before any
// grading; answers[i] is the selected option index for question i in
// order-index order. Every question's marks count toward the total whether
// or not it was answered correctly.
func (s *Service) Submit(studentID, assessmentID uint, answers []int) (Result, error) {
	var assessment courseModels.Assessment
	err := s.db.Where("id = ? AND is_deleted = ?", assessmentID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, id asc")
		}).
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.ErrNotFound
		}
		return Result{}, err
	}

	var priorAttempts int64
	err = s.db.Model(&courseModels.Submission{}).
		Where("student_id = ? AND assessment_id = ?", studentID, assessmentID).
		Count(&priorAttempts).Error
	if err != nil {
		return Result{}, err
	}

	if assessment.AttemptsAllowed > 0 && priorAttempts >= int64(assessment.AttemptsAllowed) {
		return Result{}, apperr.ErrLimitExceeded
	}

	score := 0
	totalMarks := 0
	for i, question := range assessment.Questions {
		totalMarks += question.Marks
		if i < len(answers) && answers[i] == question.CorrectOption {
			score += question.Marks
		}
	}

	percentage := 0.0
	if totalMarks > 0 {
		percentage = float64(score) / float64(totalMarks) * 100
	}
	passed := score >= assessment.PassingMarks

	submission := courseModels.Submission{
		AssessmentID:  assessmentID,
		StudentID:     studentID,
		Answers:       datatypes.NewJSONSlice(answers),
		Score:         score,
		TotalMarks:    totalMarks,
		Percentage:    percentage,
		Passed:        passed,
		AttemptNumber: int(priorAttempts) + 1,
	}

	if err := s.db.Create(&submission).Error; err != nil {
		return Result{}, err
	}

	return Result{
		Score:         score,
		TotalMarks:    totalMarks,
		Percentage:    percentage,
		Passed:        passed,
		AttemptNumber: submission.AttemptNumber,
	}, nil
}

// Attempts lists a student's prior submissions for an assessment, newest
// first.
func (s *Service) Attempts(studentID, assessmentID uint) ([]courseModels.Submission, error) {
	var submissions []courseModels.Submission
	err := s.db.Where("student_id = ? AND assessment_id = ?", studentID, assessmentID).
		Order("attempt_number desc").Find(&submissions).Error
	return submissions, err
}
