// internal/models/exchange.go
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentThreshold is the largest value gap (in currency units) an exchange
// may carry before a balancing payment is required.
const PaymentThreshold = 5.0

type CounterOffer struct {
	AdditionalAmount float64    `json:"additional_amount"`
	Message          string     `json:"message"`
	OfferedAt        *time.Time `json:"offered_at"`
}

type NegotiationEntry struct {
	Action    string    `json:"action"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchange is a barter proposal between two users, each offering one book.
// The fairness fields (ValueDifference, PaymentRequired, PaymentDirection,
// AdditionalAmount) are derived from the two book values and recomputed
// before every persisted mutation; they are never client-settable.
type Exchange struct {
	BaseModel
	ExchangeID         string           `json:"exchange_id" gorm:"uniqueIndex;size:40;not null"`
	InitiatorID        uuid.UUID        `json:"initiator_id" gorm:"type:uuid;not null;index:idx_exchanges_initiator_status"`
	ReceiverID         uuid.UUID        `json:"receiver_id" gorm:"type:uuid;not null;index:idx_exchanges_receiver_status"`
	RequestedBookID    uuid.UUID        `json:"requested_book_id" gorm:"type:uuid;not null"`
	OfferedBookID      uuid.UUID        `json:"offered_book_id" gorm:"type:uuid;not null"`
	RequestedBookValue float64          `json:"requested_book_value" gorm:"type:decimal(10,2);not null"`
	OfferedBookValue   float64          `json:"offered_book_value" gorm:"type:decimal(10,2);not null"`
	ValueDifference    float64          `json:"value_difference" gorm:"type:decimal(10,2);default:0"`
	AdditionalAmount   float64          `json:"additional_amount" gorm:"type:decimal(10,2);default:0"`
	PaymentRequired    bool             `json:"payment_required" gorm:"default:false"`
	PaymentDirection   PaymentDirection `json:"payment_direction" gorm:"type:varchar(20);default:'none'"`
	PaymentStatus      PaymentStatus    `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	PaymentIntentID    string           `json:"payment_intent_id,omitempty" gorm:"size:255"`
	Status             ExchangeStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index:idx_exchanges_initiator_status;index:idx_exchanges_receiver_status"`
	CounterOffer       JSONB            `json:"counter_offer,omitempty" gorm:"type:jsonb"`
	NegotiationHistory JSONBArray       `json:"negotiation_history,omitempty" gorm:"type:jsonb"`
	Notes              string           `json:"notes" gorm:"type:text"`
	CompletedAt        *time.Time       `json:"completed_at"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	CancelledBy        *uuid.UUID       `json:"cancelled_by" gorm:"type:uuid"`
	CancellationReason string           `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Relationships
	Initiator     User `json:"initiator,omitempty" gorm:"foreignKey:InitiatorID"`
	Receiver      User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	RequestedBook Book `json:"requested_book,omitempty" gorm:"foreignKey:RequestedBookID"`
	OfferedBook   Book `json:"offered_book,omitempty" gorm:"foreignKey:OfferedBookID"`
}

// RecomputeFairness derives the balancing-payment fields from the two book
// values. Direction follows the sign of the gap: the initiator pays when the
// book they asked for is worth more than the one they offered.
func (e *Exchange) RecomputeFairness() {
	e.ValueDifference = e.RequestedBookValue - e.OfferedBookValue

	if math.Abs(e.ValueDifference) > PaymentThreshold {
		e.PaymentRequired = true
		e.AdditionalAmount = math.Abs(e.ValueDifference)
		if e.ValueDifference > 0 {
			e.PaymentDirection = PaymentDirectionInitiatorPays
		} else {
			e.PaymentDirection = PaymentDirectionReceiverPays
		}
	} else {
		e.PaymentRequired = false
		e.AdditionalAmount = 0
		e.PaymentDirection = PaymentDirectionNone
	}
}

// PayerID resolves the payment direction to the party owing the balancing
// amount, or nil when no payment is required.
func (e *Exchange) PayerID() *uuid.UUID {
	switch e.PaymentDirection {
	case PaymentDirectionInitiatorPays:
		return &e.InitiatorID
	case PaymentDirectionReceiverPays:
		return &e.ReceiverID
	}
	return nil
}

// OtherParty returns the counterparty of the given user.
func (e *Exchange) OtherParty(userID uuid.UUID) uuid.UUID {
	if e.InitiatorID == userID {
		return e.ReceiverID
	}
	return e.InitiatorID
}

// BeforeSave keeps the derived fields consistent on every persisted write.
func (e *Exchange) BeforeSave(tx *gorm.DB) error {
	e.RecomputeFairness()
	return nil
}

// Terminal reports whether the status admits no further transition.
func (s ExchangeStatus) Terminal() bool {
	switch s {
	case ExchangeStatusCompleted, ExchangeStatusRejected, ExchangeStatusCancelled:
		return true
	}
	return false
}

// Accepted only ever appears as a target: acceptance lands directly on
// in-progress or payment-pending, so it is never persisted as a source state.
var exchangeTransitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeStatusPending: {
		ExchangeStatusAccepted, ExchangeStatusRejected,
		ExchangeStatusCounterOffered, ExchangeStatusCancelled,
	},
	ExchangeStatusCounterOffered: {
		ExchangeStatusAccepted, ExchangeStatusRejected, ExchangeStatusCancelled,
	},
	ExchangeStatusPaymentPending: {
		ExchangeStatusInProgress, ExchangeStatusCompleted, ExchangeStatusCancelled,
	},
	ExchangeStatusInProgress: {
		ExchangeStatusCompleted, ExchangeStatusCancelled,
	},
}

// CanTransition reports whether moving from s to next is a legal step of the
// negotiation state machine.
func (s ExchangeStatus) CanTransition(next ExchangeStatus) bool {
	for _, allowed := range exchangeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
