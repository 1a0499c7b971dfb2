// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

// Review rates the counterparty of one settled transaction. A reviewer may
// review a given transaction at most once.
type Review struct {
	BaseModel
	ReviewerID     uuid.UUID  `json:"reviewer_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_reviewer_txn"`
	ReviewedUserID uuid.UUID  `json:"reviewed_user_id" gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID  `json:"transaction_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_reviewer_txn"`
	BookID         *uuid.UUID `json:"book_id" gorm:"type:uuid;index"`
	Rating         int        `json:"rating" gorm:"not null"`
	Title          string     `json:"title" gorm:"size:100"`
	Comment        string     `json:"comment" gorm:"type:text"`
	IsVerified     bool       `json:"is_verified" gorm:"default:true"`

	// Relationships
	Reviewer User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}
