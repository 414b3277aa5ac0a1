package enrollment

import (
	"errors"
	"time"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentVerifier checks a transaction reference against the payment
// gateway. The concrete client lives in utils; tests stub it.
type PaymentVerifier interface {
	VerifyTransaction(transactionID string, amount float64) error
}

// Service owns enrollment records and their payment/blocking state
type Service struct {
	db       *gorm.DB
	payments PaymentVerifier
}

func NewService(db *gorm.DB, payments PaymentVerifier) *Service {
	return &Service{db: db, payments: payments}
}

// EnrollRecorded enrolls a student directly into a published recorded
// course. Free courses are auto-approved.
func (s *Service) EnrollRecorded(studentID, courseID uint) (*courseModels.Enrollment, error) {
	var course courseModels.Course
	err := s.db.Where("id = ? AND is_deleted = ? AND status = ?",
		courseID, false, courseModels.StatusPublished).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	var existing courseModels.Enrollment
	err = s.db.Where("student_id = ? AND course_id = ? AND batch_id IS NULL AND is_deleted = ?",
		studentID, courseID, false).First(&existing).Error
	if err == nil {
		return nil, apperr.InvalidStatef("already enrolled in this course")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	paymentStatus := courseModels.PaymentPaid
	if course.Price == 0 {
		paymentStatus = courseModels.PaymentFree
	}

	enrollment := courseModels.Enrollment{
		StudentID:     studentID,
		CourseID:      courseID,
		PaymentStatus: paymentStatus,
		PaymentPlan:   courseModels.PlanFull,
	}

	if err := s.db.Create(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrollBatch enrolls a student into a live batch, computing the initial
// blocked-module set from the chosen plan:
//   - installment: a payment line per batch module; currently ongoing
//     modules count as paid immediately, everything else starts blocked.
//   - full: only upcoming modules start blocked, they unblock as the batch
//     reaches them.
func (s *Service) EnrollBatch(studentID, batchID uint, plan string) (*courseModels.Enrollment, error) {
	if plan == "" {
		plan = courseModels.PlanFull
	}
	if plan != courseModels.PlanFull && plan != courseModels.PlanInstallment {
		return nil, apperr.Validationf("unknown payment plan")
	}

	var batch courseModels.Batch
	err := s.db.Preload("CourseTemplate").
		Where("id = ? AND is_deleted = ?", batchID, false).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if batch.Status == courseModels.BatchCancelled {
		return nil, apperr.InvalidStatef("batch has been cancelled")
	}

	var existing courseModels.Enrollment
	err = s.db.Where("student_id = ? AND batch_id = ? AND is_deleted = ?",
		studentID, batchID, false).First(&existing).Error
	if err == nil {
		return nil, apperr.InvalidStatef("already enrolled in this batch")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var modules []courseModels.BatchModule
	err = s.db.Where("batch_id = ?", batchID).Order("week_number asc").Find(&modules).Error
	if err != nil {
		return nil, err
	}

	price := 0.0
	if batch.CourseTemplate != nil {
		price = batch.CourseTemplate.Price
	}

	enrollment := courseModels.Enrollment{
		StudentID:   studentID,
		CourseID:    batch.CourseTemplateID,
		BatchID:     &batch.ID,
		PaymentPlan: plan,
	}

	now := time.Now()

	var blocked []courseModels.BlockedModule
	var payments []courseModels.ModulePayment

	if plan == courseModels.PlanInstallment {
		enrollment.PaymentStatus = courseModels.PaymentPending

		perModule := price
		if len(modules) > 0 {
			perModule = price / float64(len(modules))
		}

		for _, m := range modules {
			payment := courseModels.ModulePayment{
				ModuleType: courseModels.ModRefBatch,
				ModuleID:   m.ID,
				Amount:     perModule,
				Status:     courseModels.PaymentPending,
			}
			if m.Status == courseModels.BatchOngoing {
				payment.Status = courseModels.PaymentPaid
				paidAt := now
				payment.PaidAt = &paidAt
			} else {
				blocked = append(blocked, courseModels.BlockedModule{
					ModuleType: courseModels.ModRefBatch,
					ModuleID:   m.ID,
				})
			}
			payments = append(payments, payment)
		}
	} else {
		if price == 0 {
			enrollment.PaymentStatus = courseModels.PaymentFree
		} else {
			enrollment.PaymentStatus = courseModels.PaymentPaid
		}

		for _, m := range modules {
			if m.Status == courseModels.BatchUpcoming {
				blocked = append(blocked, courseModels.BlockedModule{
					ModuleType: courseModels.ModRefBatch,
					ModuleID:   m.ID,
				})
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		for i := range payments {
			payments[i].EnrollmentID = enrollment.ID
		}
		for i := range blocked {
			blocked[i].EnrollmentID = enrollment.ID
		}
		if len(payments) > 0 {
			if err := tx.Create(&payments).Error; err != nil {
				return err
			}
		}
		if len(blocked) > 0 {
			if err := tx.Create(&blocked).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enrollment.ModulePayments = payments
	enrollment.BlockedModules = blocked
	return &enrollment, nil
}

// PayModule verifies a transaction against the gateway, marks the module's
// installment paid, and lifts the payment block. Mutations are field-level
// so they cannot clobber a concurrent completion-propagation write.
func (s *Service) PayModule(studentID, batchModuleID uint, transactionID string) error {
	if transactionID == "" {
		return apperr.Validationf("transaction id is required")
	}

	var module courseModels.BatchModule
	if err := s.db.First(&module, batchModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	var enrollment courseModels.Enrollment
	err := s.db.Where("student_id = ? AND batch_id = ? AND is_deleted = ?",
		studentID, module.BatchID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	var payment courseModels.ModulePayment
	err = s.db.Where("enrollment_id = ? AND module_type = ? AND module_id = ?",
		enrollment.ID, courseModels.ModRefBatch, batchModuleID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if payment.Status == courseModels.PaymentPaid {
		return apperr.InvalidStatef("module is already paid")
	}

	if s.payments != nil {
		if err := s.payments.VerifyTransaction(transactionID, payment.Amount); err != nil {
			return apperr.Validationf("payment verification failed: " + err.Error())
		}
	}

	now := time.Now()
	err = s.db.Model(&courseModels.ModulePayment{}).
		Where("id = ? AND status = ?", payment.ID, courseModels.PaymentPending).
		Updates(map[string]interface{}{
			"status":         courseModels.PaymentPaid,
			"transaction_id": transactionID,
			"paid_at":        now,
		}).Error
	if err != nil {
		return err
	}

	return s.db.Where("enrollment_id = ? AND module_type = ? AND module_id = ?",
		enrollment.ID, courseModels.ModRefBatch, batchModuleID).
		Delete(&courseModels.BlockedModule{}).Error
}

// MarkAttendance records a student's presence at a live batch content.
// Re-marking the same content updates the existing row.
func (s *Service) MarkAttendance(studentID, batchContentID uint, status string, joinedAt time.Time, duration int) error {
	var content courseModels.BatchContent
	if err := s.db.First(&content, batchContentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	var enrollment courseModels.Enrollment
	err := s.db.Where("student_id = ? AND batch_id = ? AND is_deleted = ?",
		studentID, content.BatchID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	row := courseModels.Attendance{
		EnrollmentID:   enrollment.ID,
		BatchContentID: batchContentID,
		Status:         status,
		JoinedAt:       &joinedAt,
		Duration:       duration,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "batch_content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "joined_at", "duration"}),
	}).Create(&row).Error
}

// IssueCertificate issues a certificate once every module of the course is
// in the enrollment's completed set. Idempotent per enrollment.
func (s *Service) IssueCertificate(studentID, courseID uint) (*courseModels.Certificate, error) {
	var enrollment courseModels.Enrollment
	err := s.db.Where("student_id = ? AND course_id = ? AND is_deleted = ?",
		studentID, courseID, false).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	var existing courseModels.Certificate
	if err := s.db.Where("enrollment_id = ?", enrollment.ID).First(&existing).Error; err == nil {
		return &existing, nil
	}

	var totalModules int64
	err = s.db.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&totalModules).Error
	if err != nil {
		return nil, err
	}

	var completedModules int64
	err = s.db.Model(&courseModels.CompletedModule{}).
		Where("enrollment_id = ? AND module_type = ?", enrollment.ID, courseModels.ModRefTemplate).
		Count(&completedModules).Error
	if err != nil {
		return nil, err
	}

	if totalModules == 0 || completedModules < totalModules {
		return nil, apperr.InvalidStatef("course is not fully completed yet")
	}

	certificate := courseModels.Certificate{
		EnrollmentID: enrollment.ID,
		Serial:       uuid.NewString(),
		IssuedAt:     time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&certificate).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.Enrollment{}).
			Where("id = ?", enrollment.ID).
			Update("certificate_issued", true).Error
	})
	if err != nil {
		return nil, err
	}

	return &certificate, nil
}
