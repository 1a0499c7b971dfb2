// internal/models/exchange_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecomputeFairnessInitiatorPays(t *testing.T) {
	// Requesting a $30 book while offering a $20 one leaves the initiator
	// $10 short, which is over the threshold.
	e := &Exchange{
		RequestedBookValue: 30,
		OfferedBookValue:   20,
	}
	e.RecomputeFairness()

	assert.Equal(t, 10.0, e.ValueDifference)
	assert.True(t, e.PaymentRequired)
	assert.Equal(t, PaymentDirectionInitiatorPays, e.PaymentDirection)
	assert.Equal(t, 10.0, e.AdditionalAmount)
}

func TestRecomputeFairnessReceiverPays(t *testing.T) {
	e := &Exchange{
		RequestedBookValue: 12,
		OfferedBookValue:   25,
	}
	e.RecomputeFairness()

	assert.Equal(t, -13.0, e.ValueDifference)
	assert.True(t, e.PaymentRequired)
	assert.Equal(t, PaymentDirectionReceiverPays, e.PaymentDirection)
	assert.Equal(t, 13.0, e.AdditionalAmount)
}

func TestRecomputeFairnessWithinThreshold(t *testing.T) {
	// A gap of exactly the threshold does not trigger a payment; the
	// comparison is strict.
	e := &Exchange{
		RequestedBookValue: 25,
		OfferedBookValue:   20,
	}
	e.RecomputeFairness()

	assert.Equal(t, 5.0, e.ValueDifference)
	assert.False(t, e.PaymentRequired)
	assert.Equal(t, PaymentDirectionNone, e.PaymentDirection)
	assert.Equal(t, 0.0, e.AdditionalAmount)
}

func TestRecomputeFairnessClearsStalePayment(t *testing.T) {
	e := &Exchange{
		RequestedBookValue: 20,
		OfferedBookValue:   20,
		PaymentRequired:    true,
		PaymentDirection:   PaymentDirectionInitiatorPays,
		AdditionalAmount:   10,
	}
	e.RecomputeFairness()

	assert.False(t, e.PaymentRequired)
	assert.Equal(t, PaymentDirectionNone, e.PaymentDirection)
	assert.Equal(t, 0.0, e.AdditionalAmount)
}

func TestExchangeStatusTerminal(t *testing.T) {
	terminal := []ExchangeStatus{ExchangeStatusCompleted, ExchangeStatusRejected, ExchangeStatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	open := []ExchangeStatus{
		ExchangeStatusPending, ExchangeStatusAccepted, ExchangeStatusCounterOffered,
		ExchangeStatusPaymentPending, ExchangeStatusInProgress,
	}
	for _, s := range open {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestExchangeStatusCanTransition(t *testing.T) {
	assert.True(t, ExchangeStatusPending.CanTransition(ExchangeStatusAccepted))
	assert.True(t, ExchangeStatusPending.CanTransition(ExchangeStatusCounterOffered))
	assert.True(t, ExchangeStatusCounterOffered.CanTransition(ExchangeStatusAccepted))
	assert.True(t, ExchangeStatusPaymentPending.CanTransition(ExchangeStatusInProgress))
	assert.True(t, ExchangeStatusInProgress.CanTransition(ExchangeStatusCompleted))

	// Counter-offering twice is not allowed.
	assert.False(t, ExchangeStatusCounterOffered.CanTransition(ExchangeStatusCounterOffered))
	// A completed exchange admits nothing, completing again included.
	assert.False(t, ExchangeStatusCompleted.CanTransition(ExchangeStatusCompleted))
	assert.False(t, ExchangeStatusCompleted.CanTransition(ExchangeStatusCancelled))
	// Terminal rejections stay rejected.
	assert.False(t, ExchangeStatusRejected.CanTransition(ExchangeStatusPending))
	// No skipping the payment leg.
	assert.False(t, ExchangeStatusPending.CanTransition(ExchangeStatusCompleted))
	// Acceptance lands directly on in-progress or payment-pending; accepted
	// is a target only and has no outgoing transitions of its own.
	assert.False(t, ExchangeStatusAccepted.CanTransition(ExchangeStatusInProgress))
	assert.False(t, ExchangeStatusAccepted.CanTransition(ExchangeStatusPaymentPending))
	assert.False(t, ExchangeStatusAccepted.CanTransition(ExchangeStatusCancelled))
}

func TestExchangePayerID(t *testing.T) {
	initiator := uuid.New()
	receiver := uuid.New()

	e := &Exchange{InitiatorID: initiator, ReceiverID: receiver}

	e.PaymentDirection = PaymentDirectionInitiatorPays
	assert.Equal(t, initiator, *e.PayerID())

	e.PaymentDirection = PaymentDirectionReceiverPays
	assert.Equal(t, receiver, *e.PayerID())

	e.PaymentDirection = PaymentDirectionNone
	assert.Nil(t, e.PayerID())
}

func TestExchangeOtherParty(t *testing.T) {
	initiator := uuid.New()
	receiver := uuid.New()

	e := &Exchange{InitiatorID: initiator, ReceiverID: receiver}

	assert.Equal(t, receiver, e.OtherParty(initiator))
	assert.Equal(t, initiator, e.OtherParty(receiver))
}
