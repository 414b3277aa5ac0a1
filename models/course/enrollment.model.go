package course

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFree    = "free"
)

// Payment plans
const (
	PlanFull        = "full"
	PlanInstallment = "installment"
)

// Enrollment binds one student to one course, and for live courses to one
// batch. At most one row exists per (student, course, batch).
type Enrollment struct {
	gorm.Model
	StudentID uint  `json:"student_id" gorm:"not null;uniqueIndex:idx_student_course_batch"`
	CourseID  uint  `json:"course_id" gorm:"not null;uniqueIndex:idx_student_course_batch"`
	BatchID   *uint `json:"batch_id" gorm:"uniqueIndex:idx_student_course_batch"` // live courses only

	PaymentStatus string `json:"payment_status" gorm:"default:'pending'"` // pending, paid, free
	PaymentPlan   string `json:"payment_plan" gorm:"default:'full'"`      // full, installment

	CurrentWeek       int        `json:"current_week" gorm:"default:1"`
	OverallProgress   float64    `json:"overall_progress" gorm:"default:0"`
	CompletedAt       *time.Time `json:"completed_at"`
	CertificateIssued bool       `json:"certificate_issued" gorm:"default:false"`
	EnrolledAt        time.Time  `json:"enrolled_at" gorm:"autoCreateTime"`

	IsDeleted bool `json:"-" gorm:"default:false"`

	ModulePayments   []ModulePayment   `json:"module_payments,omitempty" gorm:"foreignKey:EnrollmentID"`
	CompletedModules []CompletedModule `json:"completed_modules,omitempty" gorm:"foreignKey:EnrollmentID"`
	BlockedModules   []BlockedModule   `json:"blocked_modules,omitempty" gorm:"foreignKey:EnrollmentID"`
}

// ModuleRef points at a template module (recorded) or a batch module (live).
// Same structural rule as ContentRef.
type ModuleRef struct {
	ModuleType string `json:"module_type" gorm:"not null"`
	ModuleID   uint   `json:"module_id" gorm:"not null"`
}

// Module ref kinds
const (
	ModRefTemplate = "module"
	ModRefBatch    = "batch_module"
)

// TemplateModuleRef builds a reference to a course template module
func TemplateModuleRef(moduleID uint) ModuleRef {
	return ModuleRef{ModuleType: ModRefTemplate, ModuleID: moduleID}
}

// BatchModuleRef builds a reference to a batch module
func BatchModuleRef(batchModuleID uint) ModuleRef {
	return ModuleRef{ModuleType: ModRefBatch, ModuleID: batchModuleID}
}

// CompletedModule is a member of an enrollment's completed-module set.
// The unique index makes redundant inserts from concurrent propagation
// runs no-ops.
type CompletedModule struct {
	gorm.Model
	EnrollmentID uint   `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_enrollment_completed_module"`
	ModuleType   string `json:"module_type" gorm:"not null;uniqueIndex:idx_enrollment_completed_module"`
	ModuleID     uint   `json:"module_id" gorm:"not null;uniqueIndex:idx_enrollment_completed_module"`
}

// BlockedModule is a student-specific lock override, used for module-wise
// payment gating on live batches.
type BlockedModule struct {
	gorm.Model
	EnrollmentID uint   `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_enrollment_blocked_module"`
	ModuleType   string `json:"module_type" gorm:"not null;uniqueIndex:idx_enrollment_blocked_module"`
	ModuleID     uint   `json:"module_id" gorm:"not null;uniqueIndex:idx_enrollment_blocked_module"`
}

// ModulePayment is one installment line of a module-wise payment plan
type ModulePayment struct {
	gorm.Model
	EnrollmentID  uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_enrollment_module_payment"`
	ModuleType    string     `json:"module_type" gorm:"not null;uniqueIndex:idx_enrollment_module_payment"`
	ModuleID      uint       `json:"module_id" gorm:"not null;uniqueIndex:idx_enrollment_module_payment"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status" gorm:"default:'pending'"` // pending, paid
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at"`
	DueDate       *time.Time `json:"due_date"`
}

// Attendance statuses
const (
	AttendancePresent   = "present"
	AttendanceAbsent    = "absent"
	AttendanceLate      = "late"
	AttendanceLeftEarly = "left_early"
)

// Attendance records one student's presence at one live batch content
type Attendance struct {
	gorm.Model
	EnrollmentID   uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_enrollment_batch_content"`
	BatchContentID uint       `json:"batch_content_id" gorm:"not null;uniqueIndex:idx_enrollment_batch_content"`
	Status         string     `json:"status" gorm:"default:'present'"` // present, absent, late, left_early
	JoinedAt       *time.Time `json:"joined_at"`
	Duration       int        `json:"duration"` // minutes attended
}

// Certificate is issued once every module of the enrollment's course is
// completed.
type Certificate struct {
	gorm.Model
	EnrollmentID uint      `json:"enrollment_id" gorm:"not null;uniqueIndex"`
	Serial       string    `json:"serial" gorm:"unique;not null"`
	IssuedAt     time.Time `json:"issued_at"`
}
