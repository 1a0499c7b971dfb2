// internal/models/book.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Book struct {
	BaseModel
	SellerID        uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title           string         `json:"title" gorm:"size:200;not null"`
	Author          string         `json:"author" gorm:"size:100;not null"`
	ISBN            string         `json:"isbn,omitempty" gorm:"size:20;index"`
	Description     string         `json:"description" gorm:"type:text"`
	Condition       BookCondition  `json:"condition" gorm:"type:varchar(20);not null"`
	Category        string         `json:"category" gorm:"size:50;index"`
	Genres          pq.StringArray `json:"genres" gorm:"type:text[]"`
	Language        string         `json:"language" gorm:"size:50;default:'English'"`
	PublicationYear int            `json:"publication_year"`
	Publisher       string         `json:"publisher" gorm:"size:100"`
	Pages           int            `json:"pages"`
	Format          string         `json:"format" gorm:"size:20"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]"`
	Price           float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice   float64        `json:"original_price" gorm:"type:decimal(10,2)"`
	EstimatedValue  float64        `json:"estimated_value" gorm:"type:decimal(10,2)"`
	ListingType     ListingType    `json:"listing_type" gorm:"type:varchar(20);not null"`
	Status          BookStatus     `json:"status" gorm:"type:varchar(20);default:'available';index"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	ViewCount       int64          `json:"view_count" gorm:"default:0"`
	FavoriteCount   int64          `json:"favorite_count" gorm:"default:0"`
	SoldAt          *time.Time     `json:"sold_at"`
	ExchangedAt     *time.Time     `json:"exchanged_at"`

	// Relationships
	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// TradeValue is the worth used when negotiating an exchange: the computed
// valuation when present, otherwise the listed price.
func (b *Book) TradeValue() float64 {
	if b.EstimatedValue > 0 {
		return b.EstimatedValue
	}
	return b.Price
}

// Terminal reports whether the availability status admits no further
// lifecycle transition.
func (s BookStatus) Terminal() bool {
	return s == BookStatusSold || s == BookStatusExchanged
}
