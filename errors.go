package receivables

import (
	"errors"
	"fmt"

	"github.com/xraph/receivables/accrual"
	"github.com/xraph/receivables/apply"
	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/crypt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("receivables: not found")
	ErrAlreadyExists = errors.New("receivables: already exists")
	ErrInvalidInput  = errors.New("receivables: invalid input")

	// Idempotency and integrity errors
	ErrDuplicateDescription = errors.New("receivables: duplicate description")
	ErrUnknownReference     = errors.New("receivables: unknown reference")
	ErrInUse                = errors.New("receivables: record is still referenced")

	// Not-found errors per kind
	ErrEntityNotFound       = fmt.Errorf("%w: entity", ErrNotFound)
	ErrAccountNotFound      = fmt.Errorf("%w: account", ErrNotFound)
	ErrDenominationNotFound = fmt.Errorf("%w: denomination", ErrNotFound)
	ErrRelationshipNotFound = fmt.Errorf("%w: relationship", ErrNotFound)
	ErrFeeScheduleNotFound  = fmt.Errorf("%w: fee schedule", ErrNotFound)
	ErrChargeNotFound       = fmt.Errorf("%w: charge", ErrNotFound)
	ErrPaymentNotFound      = fmt.Errorf("%w: payment", ErrNotFound)

	// Engine errors, owned by the packages that raise them
	ErrInvalidSchedule      = accrual.ErrInvalidSchedule
	ErrAmountOverflow       = accrual.ErrOverflow
	ErrNoOutstandingCharges = apply.ErrNoOutstandingCharges
	ErrUnderfunded          = apply.ErrUnderfunded
	ErrRateUnavailable      = conversion.ErrRateUnavailable
	ErrEncryption           = crypt.ErrEncryption
	ErrDecryption           = crypt.ErrDecryption

	// Store errors
	ErrStorageUnavailable = errors.New("receivables: storage unavailable")
	ErrStoreClosed        = errors.New("receivables: store is closed")
	ErrMigrationFailed    = errors.New("receivables: migration failed")
)

// UnderfundedError is re-exported from the application engine.
type UnderfundedError = apply.UnderfundedError

// DuplicateError reports a unique field that already holds Value. Callers
// should read it as "this already happened", not as a reason to retry with
// a fresh description.
type DuplicateError struct {
	Kind  string
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("receivables: %s with %s %q already exists", e.Kind, e.Field, e.Value)
}

// Unwrap returns ErrDuplicateDescription for description fields and
// ErrAlreadyExists for other unique fields.
func (e *DuplicateError) Unwrap() error {
	if e.Field == "description" {
		return ErrDuplicateDescription
	}
	return ErrAlreadyExists
}

// ReferenceError reports a foreign key whose target does not exist.
type ReferenceError struct {
	Kind  string
	Field string
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("receivables: %s.%s references unknown %s", e.Kind, e.Field, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrUnknownReference }

// StorageError wraps a connection or transaction failure. The whole
// operation it belonged to was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("receivables: storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorageUnavailable, e.Err} }

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("receivables: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate returns true if the error reports an already submitted record.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateDescription) || errors.Is(err, ErrAlreadyExists)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried. Duplicates and reference errors never are.
func IsRetryable(err error) bool {
	if IsDuplicate(err) || errors.Is(err, ErrUnknownReference) {
		return false
	}
	return errors.Is(err, ErrStorageUnavailable)
}
