// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ErrorCode classifies workflow failures so handlers can map them to HTTP
// statuses without matching on message strings.
type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeInvalidState    ErrorCode = "INVALID_STATE"
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeUpstreamPayment ErrorCode = "UPSTREAM_PAYMENT_ERROR"
)

type WorkflowError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func NotFoundError(resource string) error {
	return &WorkflowError{Code: CodeNotFound, Message: resource + " not found"}
}

func ForbiddenError(message string) error {
	return &WorkflowError{Code: CodeForbidden, Message: message}
}

func InvalidStateError(message string) error {
	return &WorkflowError{Code: CodeInvalidState, Message: message}
}

func ValidationError(message string, err error) error {
	return &WorkflowError{Code: CodeValidation, Message: message, Err: err}
}

func ConflictError(message string) error {
	return &WorkflowError{Code: CodeConflict, Message: message}
}

func UpstreamPaymentError(message string, err error) error {
	return &WorkflowError{Code: CodeUpstreamPayment, Message: message, Err: err}
}

// CodeOf extracts the classification from an error chain, or "" when the
// error is not a workflow error.
func CodeOf(err error) ErrorCode {
	var wErr *WorkflowError
	if errors.As(err, &wErr) {
		return wErr.Code
	}
	return ""
}
