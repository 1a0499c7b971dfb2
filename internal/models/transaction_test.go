// internal/models/transaction_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusTerminal(t *testing.T) {
	assert.True(t, TransactionStatusCompleted.Terminal())
	assert.True(t, TransactionStatusCancelled.Terminal())

	open := []TransactionStatus{
		TransactionStatusInitiated, TransactionStatusPaymentPending,
		TransactionStatusPaymentCompleted, TransactionStatusShipped,
		TransactionStatusDelivered, TransactionStatusDisputed,
	}
	for _, s := range open {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestTransactionStatusCanTransition(t *testing.T) {
	assert.True(t, TransactionStatusInitiated.CanTransition(TransactionStatusPaymentPending))
	assert.True(t, TransactionStatusPaymentPending.CanTransition(TransactionStatusPaymentCompleted))
	assert.True(t, TransactionStatusPaymentCompleted.CanTransition(TransactionStatusShipped))
	assert.True(t, TransactionStatusShipped.CanTransition(TransactionStatusDelivered))
	assert.True(t, TransactionStatusDelivered.CanTransition(TransactionStatusCompleted))

	// Cannot ship before the payment settles.
	assert.False(t, TransactionStatusInitiated.CanTransition(TransactionStatusShipped))
	assert.False(t, TransactionStatusPaymentPending.CanTransition(TransactionStatusShipped))
	// Cannot cancel once shipped; disputes are the only way out.
	assert.False(t, TransactionStatusShipped.CanTransition(TransactionStatusCancelled))
	// Terminal states admit nothing.
	assert.False(t, TransactionStatusCompleted.CanTransition(TransactionStatusDisputed))
	assert.False(t, TransactionStatusCancelled.CanTransition(TransactionStatusInitiated))
}
