// internal/services/review_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReviewService(db *gorm.DB, notifications *NotificationService) *ReviewService {
	return &ReviewService{
		db:            db,
		notifications: notifications,
	}
}

type CreateReviewRequest struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
	Rating        int       `json:"rating" binding:"required,min=1,max=5"`
	Comment       string    `json:"comment" binding:"max=2000"`
}

// CreateReview records a rating from one party of a delivered or completed
// purchase about the other. The reviewee's average rating is folded in with a
// single UPDATE against the stored count, so concurrent reviews never lose a
// contribution. One review per reviewer per transaction.
func (s *ReviewService) CreateReview(reviewerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", req.TransactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.BuyerID != reviewerID && transaction.SellerID != reviewerID {
		return nil, ForbiddenError("you are not a party to this transaction")
	}
	if transaction.Status != models.TransactionStatusDelivered &&
		transaction.Status != models.TransactionStatusCompleted {
		return nil, InvalidStateError("transaction is not delivered yet")
	}

	reviewedUserID := transaction.SellerID
	if reviewerID == transaction.SellerID {
		reviewedUserID = transaction.BuyerID
	}

	var existing int64
	if err := s.db.Model(&models.Review{}).
		Where("reviewer_id = ? AND transaction_id = ?", reviewerID, req.TransactionID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}
	if existing > 0 {
		return nil, ConflictError("you already reviewed this transaction")
	}

	review := &models.Review{
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewedUserID,
		TransactionID:  req.TransactionID,
		BookID:         &transaction.BookID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return ConflictError("you already reviewed this transaction")
		}

		// Postgres evaluates both expressions against the old row, so the
		// average and the count stay in lockstep under concurrency.
		return tx.Model(&models.User{}).
			Where("id = ?", reviewedUserID).
			Updates(map[string]interface{}{
				"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", req.Rating),
				"rating_count": gorm.Expr("rating_count + 1"),
			}).Error
	})
	if err != nil {
		if CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	go s.notifications.Notify(reviewedUserID, models.NotificationTypeReview,
		"New review", fmt.Sprintf("You received a %d-star review", req.Rating),
		&review.ID, "review")

	return review, nil
}

// GetUserReviews lists reviews written about a user.
func (s *ReviewService) GetUserReviews(userID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("reviewed_user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = query.Preload("Reviewer").Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// GetBookReviews lists reviews attached to purchases of a book.
func (s *ReviewService) GetBookReviews(bookID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("book_id = ?", bookID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = query.Preload("Reviewer").Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}
