// internal/services/errors_test.go
package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{NotFoundError("book"), CodeNotFound},
		{ForbiddenError("nope"), CodeForbidden},
		{InvalidStateError("bad state"), CodeInvalidState},
		{ValidationError("bad input", nil), CodeValidation},
		{ConflictError("taken"), CodeConflict},
		{UpstreamPaymentError("stripe down", errors.New("boom")), CodeUpstreamPayment},
		{errors.New("plain"), ""},
		{nil, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, CodeOf(tc.err))
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("while accepting: %w", ConflictError("book is no longer available"))
	assert.Equal(t, CodeConflict, CodeOf(wrapped))
}

func TestWorkflowErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamPaymentError("failed to create payment intent", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
