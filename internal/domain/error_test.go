package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "message only",
			err: &Error{
				Code:    EINVALID,
				Message: "invalid frequency",
			},
			expected: "invalid frequency",
		},
		{
			name: "with operation",
			err: &Error{
				Code:    EINVALID,
				Op:      "schedule.compute",
				Message: "invalid frequency",
			},
			expected: "schedule.compute: invalid frequency",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "invoice.create",
				Message: "failed to insert invoice",
				Err:     errors.New("connection reset"),
			},
			expected: "invoice.create: failed to insert invoice: connection reset",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to insert invoice",
				Err:     errors.New("connection reset"),
			},
			expected: "failed to insert invoice: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:    EINTERNAL,
		Message: "wrapped",
		Err:     underlying,
	}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", unwrapped, underlying)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

func TestError_IsMatchesSentinelByCodeAndMessage(t *testing.T) {
	recreated := &Error{
		Code:    ErrScheduleConflict.Code,
		Op:      "recurring.advance",
		Message: ErrScheduleConflict.Message,
		Err:     errors.New("0 rows affected"),
	}

	if !errors.Is(fmt.Errorf("generate: %w", recreated), ErrScheduleConflict) {
		t.Error("re-created sentinel with op should match ErrScheduleConflict")
	}
	if errors.Is(recreated, ErrTemplateInactive) {
		t.Error("same code with different message must not match")
	}
	if errors.Is(recreated, errors.New(ErrScheduleConflict.Message)) {
		t.Error("non-domain target must not match")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "domain error",
			err:      &Error{Code: EINVALID, Message: "test"},
			expected: EINVALID,
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("wrapped: %w", &Error{Code: ENOTFOUND, Message: "test"}),
			expected: ENOTFOUND,
		},
		{
			name:     "non-domain error",
			err:      errors.New("some error"),
			expected: EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "domain error with op",
			err:      &Error{Code: EINVALID, Op: "recurring.generate", Message: "test"},
			expected: "recurring.generate",
		},
		{
			name:     "domain error without op",
			err:      &Error{Code: EINVALID, Message: "test"},
			expected: "",
		},
		{
			name:     "non-domain error",
			err:      errors.New("test"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorOp(tt.err); got != tt.expected {
				t.Errorf("ErrorOp() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "schedule.compute", "interval must be at least 1, got %d", 0)

	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatal("Errorf should return *Error")
	}

	if domainErr.Code != EINVALID {
		t.Errorf("Code = %q, want %q", domainErr.Code, EINVALID)
	}
	if domainErr.Op != "schedule.compute" {
		t.Errorf("Op = %q, want %q", domainErr.Op, "schedule.compute")
	}
	if domainErr.Message != "interval must be at least 1, got 0" {
		t.Errorf("Message = %q, want %q", domainErr.Message, "interval must be at least 1, got 0")
	}
}

func TestWrapError(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		underlying := errors.New("db error")
		err := WrapError(underlying, EINTERNAL, "report.create", "failed to store weekly report")

		var domainErr *Error
		if !errors.As(err, &domainErr) {
			t.Fatal("WrapError should return *Error")
		}
		if domainErr.Code != EINTERNAL {
			t.Errorf("Code = %q, want %q", domainErr.Code, EINTERNAL)
		}
		if !errors.Is(err, underlying) {
			t.Error("should wrap underlying error")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapError(nil, EINTERNAL, "test", "test"); err != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", err)
		}
	})
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{name: "matching code", err: &Error{Code: ENOTFOUND, Message: "test"}, code: ENOTFOUND, expected: true},
		{name: "different code", err: &Error{Code: ENOTFOUND, Message: "test"}, code: ECONFLICT, expected: false},
		{name: "plain error is internal", err: errors.New("boom"), code: EINTERNAL, expected: true},
		{name: "nil error", err: nil, code: EINTERNAL, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := NotFound("recurring.lock", "recurring template", "abc")
		if ErrorCode(err) != ENOTFOUND {
			t.Errorf("code = %q, want %q", ErrorCode(err), ENOTFOUND)
		}
		if err.Error() != "recurring.lock: recurring template not found: abc" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if err := Invalid("schedule.compute", "bad"); ErrorCode(err) != EINVALID {
			t.Errorf("code = %q, want %q", ErrorCode(err), EINVALID)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		if err := Conflict("invoice.create", "taken"); ErrorCode(err) != ECONFLICT {
			t.Errorf("code = %q, want %q", ErrorCode(err), ECONFLICT)
		}
	})

	t.Run("Internal", func(t *testing.T) {
		cause := errors.New("timeout")
		err := Internal(cause, "tenant.list_active", "failed to list tenants")
		if ErrorCode(err) != EINTERNAL {
			t.Errorf("code = %q, want %q", ErrorCode(err), EINTERNAL)
		}
		if !errors.Is(err, cause) {
			t.Error("Internal should wrap its cause")
		}
	})
}

func TestPreDefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "ErrTenantMismatch", err: ErrTenantMismatch, code: EINTERNAL},
		{name: "ErrScheduleConflict", err: ErrScheduleConflict, code: ECONFLICT},
		{name: "ErrTemplateInactive", err: ErrTemplateInactive, code: ECONFLICT},
		{name: "ErrDuplicateInvoiceNumber", err: ErrDuplicateInvoiceNumber, code: ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.code {
				t.Errorf("%s code = %q, want %q", tt.name, got, tt.code)
			}
		})
	}
}
