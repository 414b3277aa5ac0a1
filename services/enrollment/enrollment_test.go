package enrollment

import (
	"errors"
	"testing"
	"time"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubVerifier records calls and returns a canned verdict
type stubVerifier struct {
	calls []string
	err   error
}

func (s *stubVerifier) VerifyTransaction(transactionID string, amount float64) error {
	s.calls = append(s.calls, transactionID)
	return s.err
}

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
		&courseModels.Batch{},
		&courseModels.BatchModule{},
		&courseModels.BatchContent{},
		&courseModels.Enrollment{},
		&courseModels.ModulePayment{},
		&courseModels.CompletedModule{},
		&courseModels.BlockedModule{},
		&courseModels.Attendance{},
		&courseModels.Certificate{},
	)
	require.NoError(t, err)

	return db
}

func seedRecordedCourse(t *testing.T, db *gorm.DB, price float64, status string) courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Title:      "SQL deep dive",
		CourseType: courseModels.TypeRecorded,
		Price:      price,
		Status:     status,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

// seedBatch builds a live course with one batch holding three modules in
// the given statuses.
func seedBatch(t *testing.T, db *gorm.DB, price float64, moduleStatuses ...string) (courseModels.Batch, []courseModels.BatchModule) {
	t.Helper()

	course := courseModels.Course{
		Title:      "Live bootcamp",
		CourseType: courseModels.TypeLive,
		Price:      price,
		Status:     courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&course).Error)

	batch := courseModels.Batch{
		CourseTemplateID:   course.ID,
		BatchName:          "Spring cohort",
		StartDate:          time.Now(),
		FacultyID:          9,
		IsPublished:        true,
		ExecutionGenerated: true,
	}
	require.NoError(t, db.Create(&batch).Error)

	modules := make([]courseModels.BatchModule, 0, len(moduleStatuses))
	for i, status := range moduleStatuses {
		m := courseModels.BatchModule{
			BatchID:          batch.ID,
			TemplateModuleID: uint(100 + i),
			WeekNumber:       i + 1,
			Status:           status,
		}
		require.NoError(t, db.Create(&m).Error)
		modules = append(modules, m)
	}
	return batch, modules
}

func TestEnrollRecorded(t *testing.T) {
	db := newTestDB(t)
	course := seedRecordedCourse(t, db, 49.99, courseModels.StatusPublished)
	svc := NewService(db, &stubVerifier{})

	row, err := svc.EnrollRecorded(1, course.ID)
	require.NoError(t, err)
	require.Equal(t, courseModels.PaymentPaid, row.PaymentStatus)
	require.Equal(t, courseModels.PlanFull, row.PaymentPlan)

	// Double enrollment is rejected
	_, err = svc.EnrollRecorded(1, course.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestEnrollRecordedFreeCourse(t *testing.T) {
	db := newTestDB(t)
	course := seedRecordedCourse(t, db, 0, courseModels.StatusPublished)
	svc := NewService(db, &stubVerifier{})

	row, err := svc.EnrollRecorded(1, course.ID)
	require.NoError(t, err)
	require.Equal(t, courseModels.PaymentFree, row.PaymentStatus)
}

func TestEnrollRecordedRequiresPublishedCourse(t *testing.T) {
	db := newTestDB(t)
	course := seedRecordedCourse(t, db, 10, courseModels.StatusDraft)
	svc := NewService(db, &stubVerifier{})

	_, err := svc.EnrollRecorded(1, course.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEnrollBatchFullPlanBlocksUpcomingOnly(t *testing.T) {
	db := newTestDB(t)
	batch, modules := seedBatch(t, db, 300,
		courseModels.BatchCompleted, courseModels.BatchOngoing, courseModels.BatchUpcoming)
	svc := NewService(db, &stubVerifier{})

	row, err := svc.EnrollBatch(1, batch.ID, courseModels.PlanFull)
	require.NoError(t, err)
	require.Equal(t, courseModels.PaymentPaid, row.PaymentStatus)
	require.Empty(t, row.ModulePayments)

	var blocked []courseModels.BlockedModule
	require.NoError(t, db.Where("enrollment_id = ?", row.ID).Find(&blocked).Error)
	require.Len(t, blocked, 1)
	require.Equal(t, modules[2].ID, blocked[0].ModuleID)
}

func TestEnrollBatchInstallmentPlan(t *testing.T) {
	db := newTestDB(t)
	batch, modules := seedBatch(t, db, 300,
		courseModels.BatchUpcoming, courseModels.BatchOngoing, courseModels.BatchUpcoming)
	svc := NewService(db, &stubVerifier{})

	row, err := svc.EnrollBatch(1, batch.ID, courseModels.PlanInstallment)
	require.NoError(t, err)
	require.Equal(t, courseModels.PaymentPending, row.PaymentStatus)
	require.Len(t, row.ModulePayments, 3)

	// The currently ongoing module counts as paid immediately; every other
	// module starts blocked
	byModule := make(map[uint]courseModels.ModulePayment)
	for _, p := range row.ModulePayments {
		require.InDelta(t, 100.0, p.Amount, 0.01)
		byModule[p.ModuleID] = p
	}
	require.Equal(t, courseModels.PaymentPaid, byModule[modules[1].ID].Status)
	require.Equal(t, courseModels.PaymentPending, byModule[modules[0].ID].Status)
	require.Equal(t, courseModels.PaymentPending, byModule[modules[2].ID].Status)

	var blocked []courseModels.BlockedModule
	require.NoError(t, db.Where("enrollment_id = ?", row.ID).Find(&blocked).Error)
	require.Len(t, blocked, 2)
}

func TestEnrollBatchRejectsCancelled(t *testing.T) {
	db := newTestDB(t)
	batch, _ := seedBatch(t, db, 100, courseModels.BatchUpcoming)
	require.NoError(t, db.Model(&courseModels.Batch{}).
		Where("id = ?", batch.ID).Update("status", courseModels.BatchCancelled).Error)

	_, err := NewService(db, &stubVerifier{}).EnrollBatch(1, batch.ID, courseModels.PlanFull)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestEnrollBatchDefaultsToFullPlan(t *testing.T) {
	db := newTestDB(t)
	batch, _ := seedBatch(t, db, 100, courseModels.BatchOngoing)

	row, err := NewService(db, &stubVerifier{}).EnrollBatch(1, batch.ID, "")
	require.NoError(t, err)
	require.Equal(t, courseModels.PlanFull, row.PaymentPlan)
}

func TestPayModuleLiftsBlock(t *testing.T) {
	db := newTestDB(t)
	batch, modules := seedBatch(t, db, 200,
		courseModels.BatchOngoing, courseModels.BatchUpcoming)
	verifier := &stubVerifier{}
	svc := NewService(db, verifier)

	row, err := svc.EnrollBatch(1, batch.ID, courseModels.PlanInstallment)
	require.NoError(t, err)

	require.NoError(t, svc.PayModule(1, modules[1].ID, "txn_123"))
	require.Equal(t, []string{"txn_123"}, verifier.calls)

	var payment courseModels.ModulePayment
	require.NoError(t, db.Where("enrollment_id = ? AND module_id = ?", row.ID, modules[1].ID).
		First(&payment).Error)
	require.Equal(t, courseModels.PaymentPaid, payment.Status)
	require.Equal(t, "txn_123", payment.TransactionID)
	require.NotNil(t, payment.PaidAt)

	var blockedCount int64
	require.NoError(t, db.Model(&courseModels.BlockedModule{}).
		Where("enrollment_id = ?", row.ID).Count(&blockedCount).Error)
	require.Zero(t, blockedCount)

	// Paying twice is rejected before the gateway is hit again
	err = svc.PayModule(1, modules[1].ID, "txn_456")
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	require.Len(t, verifier.calls, 1)
}

func TestPayModuleFailedVerification(t *testing.T) {
	db := newTestDB(t)
	batch, modules := seedBatch(t, db, 200, courseModels.BatchUpcoming)
	svc := NewService(db, &stubVerifier{err: errors.New("transaction not found")})

	_, err := svc.EnrollBatch(1, batch.ID, courseModels.PlanInstallment)
	require.NoError(t, err)

	err = svc.PayModule(1, modules[0].ID, "txn_bad")
	require.ErrorIs(t, err, apperr.ErrValidation)

	var payment courseModels.ModulePayment
	require.NoError(t, db.Where("module_id = ?", modules[0].ID).First(&payment).Error)
	require.Equal(t, courseModels.PaymentPending, payment.Status)
}

func TestMarkAttendanceUpserts(t *testing.T) {
	db := newTestDB(t)
	batch, modules := seedBatch(t, db, 0, courseModels.BatchOngoing)
	svc := NewService(db, &stubVerifier{})

	content := courseModels.BatchContent{
		BatchID: batch.ID, BatchModuleID: modules[0].ID, TemplateContentID: 55,
	}
	require.NoError(t, db.Create(&content).Error)

	row, err := svc.EnrollBatch(1, batch.ID, courseModels.PlanFull)
	require.NoError(t, err)

	joined := time.Now()
	require.NoError(t, svc.MarkAttendance(1, content.ID, courseModels.AttendanceLate, joined, 30))
	require.NoError(t, svc.MarkAttendance(1, content.ID, courseModels.AttendancePresent, joined, 55))

	var rows []courseModels.Attendance
	require.NoError(t, db.Where("enrollment_id = ?", row.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, courseModels.AttendancePresent, rows[0].Status)
	require.Equal(t, 55, rows[0].Duration)
}

func TestIssueCertificate(t *testing.T) {
	db := newTestDB(t)
	course := seedRecordedCourse(t, db, 0, courseModels.StatusPublished)

	var modules []courseModels.Module
	for i := 1; i <= 2; i++ {
		m := courseModels.Module{CourseID: course.ID, Title: "M", OrderIndex: i}
		require.NoError(t, db.Create(&m).Error)
		modules = append(modules, m)
	}

	svc := NewService(db, &stubVerifier{})
	row, err := svc.EnrollRecorded(1, course.ID)
	require.NoError(t, err)

	// Incomplete course: no certificate
	_, err = svc.IssueCertificate(1, course.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	for _, m := range modules {
		require.NoError(t, db.Create(&courseModels.CompletedModule{
			EnrollmentID: row.ID,
			ModuleType:   courseModels.ModRefTemplate,
			ModuleID:     m.ID,
		}).Error)
	}

	cert, err := svc.IssueCertificate(1, course.ID)
	require.NoError(t, err)
	require.NotEmpty(t, cert.Serial)

	var refreshed courseModels.Enrollment
	require.NoError(t, db.First(&refreshed, row.ID).Error)
	require.True(t, refreshed.CertificateIssued)

	// Re-requesting returns the same certificate
	again, err := svc.IssueCertificate(1, course.ID)
	require.NoError(t, err)
	require.Equal(t, cert.Serial, again.Serial)
}
