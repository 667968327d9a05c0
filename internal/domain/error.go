package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// Batch jobs never surface these to end users; they drive logging, metrics
// and the admin run summary.
const (
	ECONFLICT = "conflict"  // Concurrent modification or duplicate key
	EINTERNAL = "internal"  // Store or collaborator failure
	EINVALID  = "invalid"   // Bad template or schedule configuration
	ENOTFOUND = "not_found" // Referenced record is missing
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable description of the failure.
	Message string

	// Op is the operation where the error occurred (e.g., "recurring.generate").
	Op string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a domain error with the same code and message.
// This lets sentinel values such as ErrScheduleConflict match after being
// re-created with an Op attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for non-domain errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return EINTERNAL
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}

	return ""
}

// Errorf creates a new domain error with formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// NotFound creates a not found error for a resource.
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// Invalid creates a validation error for a single issue.
func Invalid(op, message string) error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error wrapping the underlying cause.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// =============================================================================
// Multi-tenant and scheduling errors
// =============================================================================

var (
	// ErrTenantMismatch indicates an attempt to touch a record owned by another tenant.
	ErrTenantMismatch = &Error{
		Code:    EINTERNAL,
		Message: "record belongs to a different tenant",
	}

	// ErrScheduleConflict is returned when a template's next run date changed
	// between the scan and the generation transaction. The transaction is
	// rolled back and no invoice is written.
	ErrScheduleConflict = &Error{
		Code:    ECONFLICT,
		Message: "recurring invoice schedule was advanced concurrently",
	}

	// ErrTemplateInactive is returned when a template was deactivated after it was scanned.
	ErrTemplateInactive = &Error{
		Code:    ECONFLICT,
		Message: "recurring invoice template is no longer active",
	}

	// ErrDuplicateInvoiceNumber is returned when the tenant-scoped invoice
	// number is already taken.
	ErrDuplicateInvoiceNumber = &Error{
		Code:    ECONFLICT,
		Message: "invoice number already exists",
	}
)
