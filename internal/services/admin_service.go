// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type AdminService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type AdminDashboardStats struct {
	TotalUsers           int64   `json:"total_users"`
	ActiveUsers          int64   `json:"active_users"`
	TotalBooks           int64   `json:"total_books"`
	AvailableBooks       int64   `json:"available_books"`
	ReservedBooks        int64   `json:"reserved_books"`
	TotalExchanges       int64   `json:"total_exchanges"`
	CompletedExchanges   int64   `json:"completed_exchanges"`
	TotalTransactions    int64   `json:"total_transactions"`
	CompletedSales       int64   `json:"completed_sales"`
	GrossSalesVolume     float64 `json:"gross_sales_volume"`
	PlatformFeeCollected float64 `json:"platform_fee_collected"`
}

type AdminUserFilter struct {
	Status   string
	UserType string
	Search   string
	Params   utils.PaginationParams
}

type AdminTransactionFilter struct {
	Status        string
	PaymentStatus string
	Params        utils.PaginationParams
}

func NewAdminService(db *gorm.DB, notifications *NotificationService) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
	}
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.Book{}).Count(&stats.TotalBooks)
	s.db.Model(&models.Book{}).Where("status = ?", models.BookStatusAvailable).Count(&stats.AvailableBooks)
	s.db.Model(&models.Book{}).Where("status = ?", models.BookStatusReserved).Count(&stats.ReservedBooks)
	s.db.Model(&models.Exchange{}).Count(&stats.TotalExchanges)
	s.db.Model(&models.Exchange{}).Where("status = ?", models.ExchangeStatusCompleted).Count(&stats.CompletedExchanges)
	s.db.Model(&models.Transaction{}).Count(&stats.TotalTransactions)
	s.db.Model(&models.Transaction{}).Where("status = ?", models.TransactionStatusCompleted).Count(&stats.CompletedSales)

	row := s.db.Model(&models.Transaction{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0), COALESCE(SUM(platform_fee), 0)").Row()
	if err := row.Scan(&stats.GrossSalesVolume, &stats.PlatformFeeCollected); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales volume: %w", err)
	}

	return stats, nil
}

func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserType != "" {
		query = query.Where("user_type = ?", filter.UserType)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, filter.Params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UpdateUserStatus suspends, bans, or reinstates an account and records the
// change in the audit log.
func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("user")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.UserType == models.UserTypeAdmin {
		return ForbiddenError("cannot change the status of an admin account")
	}

	oldStatus := user.Status
	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.createAuditLog(adminID, "user_status_change", "user", &userID, map[string]interface{}{
		"old_status": oldStatus,
		"new_status": status,
		"reason":     reason,
	})

	go s.notifications.Notify(userID, models.NotificationTypeSystem,
		"Account status changed",
		fmt.Sprintf("Your account is now %s", status),
		nil, "")

	return nil
}

func (s *AdminService) GetTransactions(filter AdminTransactionFilter) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query = query.Preload("Book").Preload("Buyer").Preload("Seller").
		Order("created_at DESC")
	query = utils.ApplyPagination(query, filter.Params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}

// GetAnalytics aggregates daily signups, listings and sales over a window.
func (s *AdminService) GetAnalytics(startDate, endDate time.Time) (map[string]interface{}, error) {
	analytics := make(map[string]interface{})

	type dailyCount struct {
		Date  time.Time `json:"date"`
		Count int64     `json:"count"`
	}

	var signups []dailyCount
	err := s.db.Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").Order("date").
		Scan(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate signups: %w", err)
	}
	analytics["signups"] = signups

	var listings []dailyCount
	err = s.db.Model(&models.Book{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").Order("date").
		Scan(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate listings: %w", err)
	}
	analytics["listings"] = listings

	type dailyVolume struct {
		Date   time.Time `json:"date"`
		Count  int64     `json:"count"`
		Volume float64   `json:"volume"`
	}

	var sales []dailyVolume
	err = s.db.Model(&models.Transaction{}).
		Select("DATE(created_at) as date, COUNT(*) as count, COALESCE(SUM(amount), 0) as volume").
		Where("payment_status = ? AND created_at BETWEEN ? AND ?", models.PaymentStatusCompleted, startDate, endDate).
		Group("DATE(created_at)").Order("date").
		Scan(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	analytics["sales"] = sales

	return analytics, nil
}

func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, newValues map[string]interface{}) {
	log := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    models.JSONB(newValues),
	}
	s.db.Create(log)
}
