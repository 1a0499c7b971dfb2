// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeMember UserType = "member"
	UserTypeAdmin  UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type BookCondition string

const (
	BookConditionNew     BookCondition = "new"
	BookConditionLikeNew BookCondition = "like-new"
	BookConditionGood    BookCondition = "good"
	BookConditionFair    BookCondition = "fair"
	BookConditionPoor    BookCondition = "poor"
)

type ListingType string

const (
	ListingTypeSale     ListingType = "sale"
	ListingTypeExchange ListingType = "exchange"
	ListingTypeBoth     ListingType = "both"
)

// BookStatus is the availability state of a listing. Sold and exchanged are
// terminal; reserved is the temporary hold taken by both workflows.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusReserved  BookStatus = "reserved"
	BookStatusSold      BookStatus = "sold"
	BookStatusExchanged BookStatus = "exchanged"
	BookStatusInactive  BookStatus = "inactive"
)

type ExchangeStatus string

const (
	ExchangeStatusPending        ExchangeStatus = "pending"
	ExchangeStatusAccepted       ExchangeStatus = "accepted"
	ExchangeStatusRejected       ExchangeStatus = "rejected"
	ExchangeStatusCounterOffered ExchangeStatus = "counter-offered"
	ExchangeStatusPaymentPending ExchangeStatus = "payment-pending"
	ExchangeStatusInProgress     ExchangeStatus = "in-progress"
	ExchangeStatusCompleted      ExchangeStatus = "completed"
	ExchangeStatusCancelled      ExchangeStatus = "cancelled"
)

type PaymentDirection string

const (
	PaymentDirectionInitiatorPays PaymentDirection = "initiator-pays"
	PaymentDirectionReceiverPays  PaymentDirection = "receiver-pays"
	PaymentDirectionNone          PaymentDirection = "none"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type TransactionStatus string

const (
	TransactionStatusInitiated        TransactionStatus = "initiated"
	TransactionStatusPaymentPending   TransactionStatus = "payment-pending"
	TransactionStatusPaymentCompleted TransactionStatus = "payment-completed"
	TransactionStatusShipped          TransactionStatus = "shipped"
	TransactionStatusDelivered        TransactionStatus = "delivered"
	TransactionStatusCompleted        TransactionStatus = "completed"
	TransactionStatusCancelled        TransactionStatus = "cancelled"
	TransactionStatusDisputed         TransactionStatus = "disputed"
)

type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "pending"
	ShippingStatusShipped   ShippingStatus = "shipped"
	ShippingStatusInTransit ShippingStatus = "in-transit"
	ShippingStatusDelivered ShippingStatus = "delivered"
	ShippingStatusFailed    ShippingStatus = "failed"
)

// AuditLog records every mutating request, persisted asynchronously by the
// logging middleware.
type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:100;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:500"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
}

// JSONBArray is a jsonb column holding an ordered list of objects, used for
// append-only logs like an exchange's negotiation history.
type JSONBArray []map[string]interface{}

func (j JSONBArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}
