// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Transaction is a cash purchase of one book. The fee split is frozen at
// creation: SellerAmount + PlatformFee always equals Amount, and neither is
// recomputed after the record exists.
type Transaction struct {
	BaseModel
	TransactionID   string            `json:"transaction_id" gorm:"uniqueIndex;size:40;not null"`
	BuyerID         uuid.UUID         `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID        uuid.UUID         `json:"seller_id" gorm:"type:uuid;not null;index"`
	BookID          uuid.UUID         `json:"book_id" gorm:"type:uuid;not null;index"`
	Amount          float64           `json:"amount" gorm:"type:decimal(10,2);not null"`
	PlatformFee     float64           `json:"platform_fee" gorm:"type:decimal(10,2);default:0"`
	SellerAmount    float64           `json:"seller_amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod   PaymentMethod     `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty" gorm:"size:255"`
	Status          TransactionStatus `json:"status" gorm:"type:varchar(20);default:'initiated';index"`
	Address         JSONB             `json:"shipping_address" gorm:"type:jsonb"`
	TrackingNumber  string            `json:"tracking_number,omitempty" gorm:"size:100"`
	Carrier         string            `json:"carrier,omitempty" gorm:"size:50"`
	ShippingStatus  ShippingStatus    `json:"shipping_status" gorm:"type:varchar(20);default:'pending'"`
	ShippedAt       *time.Time        `json:"shipped_at"`
	DeliveredAt     *time.Time        `json:"delivered_at"`
	RefundedAt      *time.Time        `json:"refunded_at"`
	RefundReason    string            `json:"refund_reason,omitempty" gorm:"type:text"`
	Notes           string            `json:"notes,omitempty" gorm:"type:text"`
	CompletedAt     *time.Time        `json:"completed_at"`
	CancelledAt     *time.Time        `json:"cancelled_at"`

	// Relationships
	Buyer  User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Book   Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}

// Terminal reports whether the lifecycle status admits no further transition.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusInitiated: {
		TransactionStatusPaymentPending, TransactionStatusPaymentCompleted,
		TransactionStatusCancelled, TransactionStatusDisputed,
	},
	TransactionStatusPaymentPending: {
		TransactionStatusPaymentCompleted, TransactionStatusCancelled, TransactionStatusDisputed,
	},
	TransactionStatusPaymentCompleted: {
		TransactionStatusShipped, TransactionStatusCancelled, TransactionStatusDisputed,
	},
	TransactionStatusShipped: {
		TransactionStatusDelivered, TransactionStatusDisputed,
	},
	TransactionStatusDelivered: {
		TransactionStatusCompleted, TransactionStatusDisputed,
	},
	TransactionStatusDisputed: {
		TransactionStatusCancelled, TransactionStatusCompleted,
	},
}

// CanTransition reports whether moving from s to next is legal.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
