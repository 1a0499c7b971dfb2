// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type UserService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UpdateUserProfileRequest struct {
	Username    string                 `json:"username,omitempty" validate:"omitempty,username"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

func NewUserService(db *gorm.DB, storageService *StorageService) *UserService {
	return &UserService{
		db:             db,
		storageService: storageService,
	}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("user")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// GetPublicProfile exposes the subset of a user other members may see,
// including the rating aggregate shown next to their listings.
func (s *UserService) GetPublicProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Select("id, username, user_type, profile_data, rating, rating_count, created_at").
		First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("user")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, ValidationError("validation failed", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFoundError("user")
	}

	// Check username uniqueness if updating
	if req.Username != "" && req.Username != user.Username {
		var existingUser models.User
		if err := s.db.Where("username = ? AND id != ?", req.Username, userID).First(&existingUser).Error; err == nil {
			return nil, ConflictError("username already taken")
		}
	}

	if req.Username != "" {
		user.Username = req.Username
	}

	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		// Merge with existing profile data
		for key, value := range req.ProfileData {
			user.ProfileData[key] = value
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

// DeleteAccount soft-deletes a user after re-checking the password. Accounts
// holding reserved books or open negotiations must settle them first.
func (s *UserService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFoundError("user")
	}

	if err := user.CheckPassword(password); err != nil {
		return ForbiddenError("invalid password")
	}

	var reservedBooks, openExchanges, openTransactions int64
	s.db.Model(&models.Book{}).
		Where("seller_id = ? AND status = ?", userID, models.BookStatusReserved).
		Count(&reservedBooks)

	s.db.Model(&models.Exchange{}).
		Where("(initiator_id = ? OR receiver_id = ?) AND status NOT IN ?", userID, userID,
			[]string{string(models.ExchangeStatusCompleted), string(models.ExchangeStatusRejected), string(models.ExchangeStatusCancelled)}).
		Count(&openExchanges)

	s.db.Model(&models.Transaction{}).
		Where("(buyer_id = ? OR seller_id = ?) AND status NOT IN ?", userID, userID,
			[]string{string(models.TransactionStatusCompleted), string(models.TransactionStatusCancelled)}).
		Count(&openTransactions)

	if reservedBooks > 0 || openExchanges > 0 || openTransactions > 0 {
		return InvalidStateError("cannot delete account with open exchanges or transactions")
	}

	if err := s.db.Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return nil
}
