package apperr

import "errors"

// Sentinel errors shared by the service layer. Controllers map these onto
// HTTP statuses; services never touch the transport.
var (
	// ErrNotFound means a referenced record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState means the entity is in a lifecycle state that forbids
	// the operation (editing a published course, regenerating a batch, ...)
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrLimitExceeded means an attempt cap was reached
	ErrLimitExceeded = errors.New("attempt limit exceeded")

	// ErrValidation means the input was rejected before any write
	ErrValidation = errors.New("validation failed")

	// ErrConflict means optimistic write contention persisted past the
	// internal retry budget
	ErrConflict = errors.New("write conflict, please retry")
)

// Validationf wraps ErrValidation with a detail message
func Validationf(msg string) error {
	return &detailed{err: ErrValidation, msg: msg}
}

// InvalidStatef wraps ErrInvalidState with a detail message
func InvalidStatef(msg string) error {
	return &detailed{err: ErrInvalidState, msg: msg}
}

type detailed struct {
	err error
	msg string
}

func (d *detailed) Error() string { return d.msg }
func (d *detailed) Unwrap() error { return d.err }
