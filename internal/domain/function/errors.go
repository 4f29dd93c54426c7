package function

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure category that callers branch on.
type ErrorCode string

const (
	ErrCodePrecondition       ErrorCode = "PRECONDITION_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeArtifactNotFound   ErrorCode = "ARTIFACT_NOT_FOUND"
	ErrCodeArtifactPermission ErrorCode = "ARTIFACT_PERMISSION_DENIED"
	ErrCodeArtifactUnreadable ErrorCode = "ARTIFACT_UNREADABLE"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited        ErrorCode = "REMOTE_RATE_LIMITED"
	ErrCodeServerError        ErrorCode = "REMOTE_SERVER_ERROR"
	ErrCodePermissionDenied   ErrorCode = "REMOTE_PERMISSION_DENIED"
	ErrCodeUnclassified       ErrorCode = "REMOTE_UNCLASSIFIED"
	ErrCodeConvergenceTimeout ErrorCode = "CONVERGENCE_TIMEOUT"
	ErrCodeConvergenceFailed  ErrorCode = "CONVERGENCE_FAILED"
	ErrCodeCancelled          ErrorCode = "CANCELLED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// IsArtifact reports whether the code belongs to the artifact family.
func (c ErrorCode) IsArtifact() bool {
	return c == ErrCodeArtifactNotFound || c == ErrCodeArtifactPermission || c == ErrCodeArtifactUnreadable
}

// IsRemote reports whether the code was produced by a control-plane call.
func (c ErrorCode) IsRemote() bool {
	switch c {
	case ErrCodeNotFound, ErrCodeRateLimited, ErrCodeServerError, ErrCodePermissionDenied, ErrCodeUnclassified:
		return true
	}
	return false
}

// DomainError is a typed error enriched with contextual data.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another DomainError carrying the same code. A target without a
// message matches on code alone.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	if e.Code != other.Code {
		return false
	}
	return other.Message == "" || other.Message == e.Message
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// NewError constructs a DomainError.
func NewError(code ErrorCode, message string, cause error, context map[string]interface{}) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause, Context: context}
}

// CodeOf returns the code of the first DomainError in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsCode reports whether err carries the supplied code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Sentinel values for errors.Is comparisons on code alone.
var (
	ErrPrecondition       = &DomainError{Code: ErrCodePrecondition}
	ErrValidation         = &DomainError{Code: ErrCodeValidation}
	ErrNotFound           = &DomainError{Code: ErrCodeNotFound}
	ErrConvergenceTimeout = &DomainError{Code: ErrCodeConvergenceTimeout}
)

func newValidationError(field, message string) *DomainError {
	return NewError(ErrCodeValidation, fmt.Sprintf("%s: %s", field, message), nil, map[string]interface{}{
		"field": field,
	})
}
