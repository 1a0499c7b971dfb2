// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username        string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	UserType        UserType   `json:"user_type" gorm:"type:varchar(20);default:'member'"`
	Status          UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData     JSONB      `json:"profile_data" gorm:"type:jsonb"`
	Rating          float64    `json:"rating" gorm:"type:decimal(3,2);default:0"`
	RatingCount     int64      `json:"rating_count" gorm:"default:0"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Books     []Book     `json:"books,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Transaction `json:"purchases,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// NextRating returns the seller aggregate after folding in one more rating.
// The persisted update happens in a single UPDATE expression; this mirrors it
// for callers and tests.
func NextRating(oldAverage float64, oldCount int64, newRating int) (float64, int64) {
	count := oldCount + 1
	return (oldAverage*float64(oldCount) + float64(newRating)) / float64(count), count
}
