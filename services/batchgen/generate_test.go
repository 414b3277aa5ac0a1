package batchgen

import (
	"testing"
	"time"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"github.com/stretchr/testify/require"
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
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Content{},
		&courseModels.Batch{},
		&courseModels.BatchModule{},
		&courseModels.BatchContent{},
		&courseModels.Enrollment{},
		&courseModels.BlockedModule{},
	)
	require.NoError(t, err)

	return db
}

// seedLiveTemplate builds a live course with two modules of two contents
// each, plus a batch over it.
func seedLiveTemplate(t *testing.T, db *gorm.DB) (courseModels.Course, courseModels.Batch) {
	t.Helper()

	course := courseModels.Course{
		Title:      "Evening cohort course",
		CourseType: courseModels.TypeLive,
		Status:     courseModels.StatusPublished,
		Duration:   2,
	}
	require.NoError(t, db.Create(&course).Error)

	for week := 1; week <= 2; week++ {
		module := courseModels.Module{
			CourseID:   course.ID,
			Title:      "Week module",
			OrderIndex: week,
			WeekNumber: week,
		}
		require.NoError(t, db.Create(&module).Error)

		for day := 1; day <= 2; day++ {
			require.NoError(t, db.Create(&courseModels.Content{
				ModuleID:    module.ID,
				Title:       "Session",
				ContentType: courseModels.ContentLiveSession,
				OrderIndex:  day,
				DayNumber:   (week-1)*7 + day,
			}).Error)
		}
	}

	batch := courseModels.Batch{
		CourseTemplateID: course.ID,
		BatchName:        "Cohort A",
		StartDate:        time.Now(),
		FacultyID:        3,
	}
	require.NoError(t, db.Create(&batch).Error)

	return course, batch
}

func TestGenerate(t *testing.T) {
	db := newTestDB(t)
	_, batch := seedLiveTemplate(t, db)
	svc := NewService(db)

	require.NoError(t, svc.Generate(batch.ID))

	var modules []courseModels.BatchModule
	require.NoError(t, db.Where("batch_id = ?", batch.ID).Order("week_number").Find(&modules).Error)
	require.Len(t, modules, 2)
	require.Equal(t, 1, modules[0].WeekNumber)
	require.Equal(t, 2, modules[1].WeekNumber)

	var contentCount int64
	require.NoError(t, db.Model(&courseModels.BatchContent{}).
		Where("batch_id = ?", batch.ID).Count(&contentCount).Error)
	require.EqualValues(t, 4, contentCount)

	var refreshed courseModels.Batch
	require.NoError(t, db.First(&refreshed, batch.ID).Error)
	require.True(t, refreshed.ExecutionGenerated)
}

func TestGenerateTwiceRejected(t *testing.T) {
	db := newTestDB(t)
	_, batch := seedLiveTemplate(t, db)
	svc := NewService(db)

	require.NoError(t, svc.Generate(batch.ID))
	err := svc.Generate(batch.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	// No duplicate rows from the second attempt
	var moduleCount int64
	require.NoError(t, db.Model(&courseModels.BatchModule{}).
		Where("batch_id = ?", batch.ID).Count(&moduleCount).Error)
	require.EqualValues(t, 2, moduleCount)
}

func TestGenerateResumesHalfDoneRun(t *testing.T) {
	db := newTestDB(t)
	course, batch := seedLiveTemplate(t, db)
	svc := NewService(db)

	// Simulate a run that died after the first module: the flag never got
	// set, so a replay must fill in the rest without duplicating week 1
	var firstModule courseModels.Module
	require.NoError(t, db.Where("course_id = ? AND week_number = ?", course.ID, 1).
		First(&firstModule).Error)
	require.NoError(t, db.Create(&courseModels.BatchModule{
		BatchID:          batch.ID,
		TemplateModuleID: firstModule.ID,
		WeekNumber:       1,
	}).Error)

	require.NoError(t, svc.Generate(batch.ID))

	var moduleCount int64
	require.NoError(t, db.Model(&courseModels.BatchModule{}).
		Where("batch_id = ?", batch.ID).Count(&moduleCount).Error)
	require.EqualValues(t, 2, moduleCount)

	var contentCount int64
	require.NoError(t, db.Model(&courseModels.BatchContent{}).
		Where("batch_id = ?", batch.ID).Count(&contentCount).Error)
	require.EqualValues(t, 4, contentCount)
}

func TestGenerateRejectsRecordedTemplate(t *testing.T) {
	db := newTestDB(t)

	course := courseModels.Course{
		Title:      "Recorded course",
		CourseType: courseModels.TypeRecorded,
		Status:     courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&course).Error)

	batch := courseModels.Batch{
		CourseTemplateID: course.ID,
		BatchName:        "Should not exist",
		StartDate:        time.Now(),
		FacultyID:        3,
	}
	require.NoError(t, db.Create(&batch).Error)

	err := NewService(db).Generate(batch.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestSetModuleStatusUnblocksFullPlanEnrollments(t *testing.T) {
	db := newTestDB(t)
	_, batch := seedLiveTemplate(t, db)
	svc := NewService(db)
	require.NoError(t, svc.Generate(batch.ID))

	var modules []courseModels.BatchModule
	require.NoError(t, db.Where("batch_id = ?", batch.ID).Order("week_number").Find(&modules).Error)

	fullPlan := courseModels.Enrollment{
		StudentID: 1, CourseID: batch.CourseTemplateID, BatchID: &batch.ID,
		PaymentStatus: courseModels.PaymentPaid, PaymentPlan: courseModels.PlanFull,
	}
	installment := courseModels.Enrollment{
		StudentID: 2, CourseID: batch.CourseTemplateID, BatchID: &batch.ID,
		PaymentStatus: courseModels.PaymentPending, PaymentPlan: courseModels.PlanInstallment,
	}
	require.NoError(t, db.Create(&fullPlan).Error)
	require.NoError(t, db.Create(&installment).Error)

	for _, e := range []courseModels.Enrollment{fullPlan, installment} {
		require.NoError(t, db.Create(&courseModels.BlockedModule{
			EnrollmentID: e.ID,
			ModuleType:   courseModels.ModRefBatch,
			ModuleID:     modules[1].ID,
		}).Error)
	}

	require.NoError(t, svc.SetModuleStatus(modules[1].ID, courseModels.BatchOngoing))

	var refreshed courseModels.BatchModule
	require.NoError(t, db.First(&refreshed, modules[1].ID).Error)
	require.Equal(t, courseModels.BatchOngoing, refreshed.Status)

	// Full-plan block lifted, installment block kept until payment
	var fullBlocked, instBlocked int64
	require.NoError(t, db.Model(&courseModels.BlockedModule{}).
		Where("enrollment_id = ?", fullPlan.ID).Count(&fullBlocked).Error)
	require.NoError(t, db.Model(&courseModels.BlockedModule{}).
		Where("enrollment_id = ?", installment.ID).Count(&instBlocked).Error)
	require.Zero(t, fullBlocked)
	require.EqualValues(t, 1, instBlocked)
}

func TestSetModuleStatusRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	_, batch := seedLiveTemplate(t, db)
	svc := NewService(db)
	require.NoError(t, svc.Generate(batch.ID))

	var module courseModels.BatchModule
	require.NoError(t, db.Where("batch_id = ?", batch.ID).First(&module).Error)

	err := svc.SetModuleStatus(module.ID, "paused")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
