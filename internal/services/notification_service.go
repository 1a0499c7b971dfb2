// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/config"
	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

// NotificationService is the best-effort event sink for workflow transitions.
// Delivery failures are logged and never surfaced to the caller; a failed
// notification must not roll back the state change that produced it.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Notify persists an in-app notification row. Safe to call from a goroutine;
// errors are swallowed after logging.
func (s *NotificationService) Notify(userID uuid.UUID, nType models.NotificationType, title, message string, relatedID *uuid.UUID, relatedModel string) {
	notification := &models.Notification{
		UserID:       userID,
		Type:         nType,
		Title:        title,
		Message:      message,
		RelatedID:    relatedID,
		RelatedModel: relatedModel,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    nType,
		}).Error("Failed to create notification")
	}
}

// NotifyWithEmail also sends a plain email when SMTP is configured. The
// money-movement transitions (payment settled, refund, exchange completed)
// go through here; everything else stays in-app only.
func (s *NotificationService) NotifyWithEmail(userID uuid.UUID, nType models.NotificationType, title, message string, relatedID *uuid.UUID, relatedModel string) {
	s.Notify(userID, nType, title, message, relatedID, relatedModel)

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		logrus.WithError(err).Warn("Notification email skipped: user not found")
		return
	}

	if err := s.sendEmail(user.Email, title, message); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to send notification email")
	}
}

func (s *NotificationService) GetUserNotifications(userID uuid.UUID, unreadOnly bool, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFoundError("notification")
	}

	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		}).Error
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\n\r\n%s",
		to, s.config.Email.FromName, s.config.Email.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
