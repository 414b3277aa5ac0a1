package progress

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func enroll(t *testing.T, db *gorm.DB, studentID, courseID uint, batchID *uint) courseModels.Enrollment {
	t.Helper()
	row := courseModels.Enrollment{
		StudentID:     studentID,
		CourseID:      courseID,
		BatchID:       batchID,
		PaymentStatus: courseModels.PaymentPaid,
		PaymentPlan:   courseModels.PlanFull,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func completedModules(t *testing.T, db *gorm.DB, enrollmentID uint) []courseModels.CompletedModule {
	t.Helper()
	var rows []courseModels.CompletedModule
	require.NoError(t, db.Where("enrollment_id = ?", enrollmentID).Find(&rows).Error)
	return rows
}

func TestModuleCompletesWhenAllVideosComplete(t *testing.T) {
	db := newTestDB(t)
	course, module, contents := seedRecordedModule(t, db, 100, 100)
	enrollment := enroll(t, db, 1, course.ID, nil)
	svc := NewService(db)

	// First video done: module must not complete yet
	_, err := svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[0].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)
	require.Empty(t, completedModules(t, db, enrollment.ID))

	// Second video done: exactly one completed-module row appears
	_, err = svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[1].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)

	rows := completedModules(t, db, enrollment.ID)
	require.Len(t, rows, 1)
	require.Equal(t, courseModels.ModRefTemplate, rows[0].ModuleType)
	require.Equal(t, module.ID, rows[0].ModuleID)

	// Replaying a completing event keeps the set at one row
	_, err = svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[1].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)
	require.Len(t, completedModules(t, db, enrollment.ID), 1)
}

func TestModuleCompletionIgnoresNonVideoContent(t *testing.T) {
	db := newTestDB(t)
	course, _, contents := seedRecordedModule(t, db, 100)
	enrollment := enroll(t, db, 1, course.ID, nil)

	// A PDF in the same module must not count toward video completion
	pdf := courseModels.Content{
		ModuleID:    contents[0].ModuleID,
		Title:       "Slides",
		ContentType: courseModels.ContentPDF,
		ContentURL:  "https://cdn.example.com/slides.pdf",
		OrderIndex:  2,
	}
	require.NoError(t, db.Create(&pdf).Error)

	svc := NewService(db)
	_, err := svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[0].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)

	require.Len(t, completedModules(t, db, enrollment.ID), 1)
}

func TestModuleCompletionSkipsUnenrolledViewer(t *testing.T) {
	db := newTestDB(t)
	_, _, contents := seedRecordedModule(t, db, 100)
	svc := NewService(db)

	// Free-module preview without an enrollment: progress saves, no
	// completed-module row anywhere
	_, err := svc.RecordWatch(9, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[0].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&courseModels.CompletedModule{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestModuleCompletionRefreshesOverallProgress(t *testing.T) {
	db := newTestDB(t)
	course, _, contents := seedRecordedModule(t, db, 100)

	second := courseModels.Module{CourseID: course.ID, Title: "Advanced", OrderIndex: 2}
	require.NoError(t, db.Create(&second).Error)

	enrollment := enroll(t, db, 1, course.ID, nil)
	svc := NewService(db)

	_, err := svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.RecordedRef(contents[0].ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)

	var refreshed courseModels.Enrollment
	require.NoError(t, db.First(&refreshed, enrollment.ID).Error)
	require.InDelta(t, 50.0, refreshed.OverallProgress, 0.01)
}

func TestBatchModuleCompletion(t *testing.T) {
	db := newTestDB(t)
	course, module, contents := seedRecordedModule(t, db, 100)
	require.NoError(t, db.Model(&courseModels.Course{}).
		Where("id = ?", course.ID).Update("course_type", courseModels.TypeLive).Error)

	batch := courseModels.Batch{
		CourseTemplateID: course.ID, BatchName: "Jan cohort", FacultyID: 2,
	}
	require.NoError(t, db.Create(&batch).Error)

	batchModule := courseModels.BatchModule{
		BatchID: batch.ID, TemplateModuleID: module.ID, WeekNumber: 1,
	}
	require.NoError(t, db.Create(&batchModule).Error)

	batchContent := courseModels.BatchContent{
		BatchID: batch.ID, BatchModuleID: batchModule.ID, TemplateContentID: contents[0].ID,
	}
	require.NoError(t, db.Create(&batchContent).Error)

	enrollment := enroll(t, db, 1, course.ID, &batch.ID)
	svc := NewService(db)

	_, err := svc.RecordWatch(1, WatchUpdate{
		Ref: courseModels.LiveRef(batchContent.ID), Segment: seg(0, 100), Position: 100, Duration: 100,
	})
	require.NoError(t, err)

	rows := completedModules(t, db, enrollment.ID)
	require.Len(t, rows, 1)
	require.Equal(t, courseModels.ModRefBatch, rows[0].ModuleType)
	require.Equal(t, batchModule.ID, rows[0].ModuleID)
}
