// internal/services/wishlist_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type WishlistService struct {
	db *gorm.DB
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// AddToWishlist favorites a book for the user. The book's favorite counter
// feeds its demand score, so it is bumped atomically alongside the row.
func (s *WishlistService) AddToWishlist(userID, bookID uuid.UUID) (*models.WishlistItem, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}

	if book.SellerID == userID {
		return nil, ValidationError("cannot wishlist your own book", nil)
	}

	item := &models.WishlistItem{
		UserID: userID,
		BookID: bookID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return ConflictError("book is already on your wishlist")
		}

		return tx.Model(&models.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).Error
	})
	if err != nil {
		if CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return item, nil
}

// RemoveFromWishlist unfavorites a book. The counter never drops below zero.
func (s *WishlistService) RemoveFromWishlist(userID, bookID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND book_id = ?", userID, bookID).
			Delete(&models.WishlistItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove from wishlist: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NotFoundError("wishlist item")
		}

		return tx.Model(&models.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count - 1, 0)")).Error
	})
}

// GetWishlist lists the user's favorited books.
func (s *WishlistService) GetWishlist(userID uuid.UUID, params utils.PaginationParams) ([]models.WishlistItem, int64, error) {
	query := s.db.Model(&models.WishlistItem{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	query = query.Preload("Book").Preload("Book.Seller").Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var items []models.WishlistItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	return items, total, nil
}
