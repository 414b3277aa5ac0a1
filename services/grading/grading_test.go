package grading

import (
	"testing"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&courseModels.Assessment{},
		&courseModels.Question{},
		&courseModels.Submission{},
	)
	require.NoError(t, err)

	return db
}

// seedQuiz builds an assessment with one question per mark value; the
// correct option is always index 1.
func seedQuiz(t *testing.T, db *gorm.DB, passingMarks, attemptsAllowed int, marks ...int) courseModels.Assessment {
	t.Helper()

	assessment := courseModels.Assessment{
		CourseID:        1,
		Title:           "Checkpoint",
		AssessmentType:  courseModels.AssessmentQuiz,
		PassingMarks:    passingMarks,
		AttemptsAllowed: attemptsAllowed,
	}
	require.NoError(t, db.Create(&assessment).Error)

	for i, m := range marks {
		require.NoError(t, db.Create(&courseModels.Question{
			AssessmentID:  assessment.ID,
			QuestionText:  "Pick B",
			Options:       datatypes.NewJSONSlice([]string{"A", "B", "C"}),
			CorrectOption: 1,
			Marks:         m,
			OrderIndex:    i + 1,
		}).Error)
	}
	return assessment
}

func TestSubmitScoresAgainstKey(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 5, 3, 2, 3, 5)
	svc := NewService(db)

	// Correct, wrong, correct
	result, err := svc.Submit(1, quiz.ID, []int{1, 0, 1})
	require.NoError(t, err)
	require.Equal(t, 7, result.Score)
	require.Equal(t, 10, result.TotalMarks)
	require.InDelta(t, 70.0, result.Percentage, 0.01)
	require.True(t, result.Passed)
	require.Equal(t, 1, result.AttemptNumber)
}

func TestSubmitFailsBelowPassingMarks(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 8, 3, 2, 3, 5)
	svc := NewService(db)

	result, err := svc.Submit(1, quiz.ID, []int{1, 1, 0})
	require.NoError(t, err)
	require.Equal(t, 5, result.Score)
	require.False(t, result.Passed)
}

func TestSubmitShortAnswerListCountsMissingAsWrong(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 0, 3, 4, 4)
	svc := NewService(db)

	result, err := svc.Submit(1, quiz.ID, []int{1})
	require.NoError(t, err)
	require.Equal(t, 4, result.Score)
	require.Equal(t, 8, result.TotalMarks)
}

func TestSubmitEnforcesAttemptCap(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 10, 2, 5)
	svc := NewService(db)

	for want := 1; want <= 2; want++ {
		result, err := svc.Submit(1, quiz.ID, []int{0})
		require.NoError(t, err)
		require.Equal(t, want, result.AttemptNumber)
	}

	_, err := svc.Submit(1, quiz.ID, []int{1})
	require.ErrorIs(t, err, apperr.ErrLimitExceeded)

	// The cap is per student
	_, err = svc.Submit(2, quiz.ID, []int{1})
	require.NoError(t, err)
}

func TestSubmitUnlimitedAttemptsWhenCapIsZero(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 1, 0, 5)
	svc := NewService(db)

	for i := 0; i < 5; i++ {
		_, err := svc.Submit(1, quiz.ID, []int{0})
		require.NoError(t, err)
	}
}

func TestSubmitUnknownAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Submit(1, 42, []int{0})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAttemptsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db, 0, 3, 5)
	svc := NewService(db)

	_, err := svc.Submit(1, quiz.ID, []int{0})
	require.NoError(t, err)
	_, err = svc.Submit(1, quiz.ID, []int{1})
	require.NoError(t, err)

	attempts, err := svc.Attempts(1, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, 2, attempts[0].AttemptNumber)
	require.Equal(t, 1, attempts[1].AttemptNumber)
}
