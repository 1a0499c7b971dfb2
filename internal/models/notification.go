// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeExchangeRequest  NotificationType = "exchange-request"
	NotificationTypeExchangeAccepted NotificationType = "exchange-accepted"
	NotificationTypeExchangeRejected NotificationType = "exchange-rejected"
	NotificationTypeExchangeCounter  NotificationType = "exchange-counter"
	NotificationTypeExchangeUpdate   NotificationType = "exchange-update"
	NotificationTypeTransaction      NotificationType = "transaction"
	NotificationTypePayment          NotificationType = "payment"
	NotificationTypeShipping         NotificationType = "shipping"
	NotificationTypeReview           NotificationType = "review"
	NotificationTypeSystem           NotificationType = "system"
)

type Notification struct {
	BaseModel
	UserID       uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index:idx_notifications_user_read"`
	Type         NotificationType `json:"type" gorm:"type:varchar(30);not null;index"`
	Title        string           `json:"title" gorm:"size:100;not null"`
	Message      string           `json:"message" gorm:"size:500;not null"`
	RelatedID    *uuid.UUID       `json:"related_id" gorm:"type:uuid"`
	RelatedModel string           `json:"related_model,omitempty" gorm:"size:30"`
	IsRead       bool             `json:"is_read" gorm:"default:false;index:idx_notifications_user_read"`
	ReadAt       *time.Time       `json:"read_at"`
}
