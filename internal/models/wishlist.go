// internal/models/wishlist.go
package models

import (
	"github.com/google/uuid"
)

type WishlistItem struct {
	BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book"`
	BookID uuid.UUID `json:"book_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book"`

	// Relationships
	Book Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}
