// internal/services/transaction_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/config"
	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

// TransactionService drives cash purchases: reserve the book, collect
// payment, track shipping, settle. The platform fee split is computed exactly
// once at creation and frozen on the record.
type TransactionService struct {
	db            *gorm.DB
	config        *config.Config
	payments      *PaymentService
	notifications *NotificationService
}

func NewTransactionService(db *gorm.DB, config *config.Config, payments *PaymentService, notifications *NotificationService) *TransactionService {
	return &TransactionService{
		db:            db,
		config:        config,
		payments:      payments,
		notifications: notifications,
	}
}

type CreatePurchaseRequest struct {
	BookID          uuid.UUID               `json:"book_id" binding:"required"`
	PaymentMethod   string                  `json:"payment_method" binding:"required,oneof=card wallet cash"`
	ShippingAddress *models.ShippingAddress `json:"shipping_address" binding:"required"`
	Notes           string                  `json:"notes" binding:"max=1000"`
}

type PurchaseResponse struct {
	Transaction  *models.Transaction `json:"transaction"`
	ClientSecret string              `json:"client_secret,omitempty"`
}

type UpdateTransactionStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=shipped delivered completed"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
	Carrier        string `json:"carrier" binding:"omitempty,max=50"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CreatePurchase reserves the book and opens the transaction. The reservation
// is a conditional update on status=available, so of two concurrent buyers
// exactly one wins and the other gets a conflict. For card payments the
// processor intent is created inside the same database transaction; a
// processor failure rolls the reservation back.
func (s *TransactionService) CreatePurchase(buyerID uuid.UUID, req *CreatePurchaseRequest) (*PurchaseResponse, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", req.BookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}

	if book.SellerID == buyerID {
		return nil, ValidationError("cannot buy your own book", nil)
	}
	if book.ListingType != models.ListingTypeSale && book.ListingType != models.ListingTypeBoth {
		return nil, InvalidStateError("book is not listed for sale")
	}
	if book.Status != models.BookStatusAvailable {
		return nil, InvalidStateError("book is not available")
	}

	split := SplitAmount(book.Price, s.config.Payment.PlatformFeePercent)
	method := models.PaymentMethod(req.PaymentMethod)

	address := models.JSONB{
		"name":     req.ShippingAddress.Name,
		"street":   req.ShippingAddress.Street,
		"city":     req.ShippingAddress.City,
		"state":    req.ShippingAddress.State,
		"zip_code": req.ShippingAddress.ZipCode,
		"country":  req.ShippingAddress.Country,
		"phone":    req.ShippingAddress.Phone,
	}

	transaction := &models.Transaction{
		TransactionID: utils.NewCorrelationID(utils.TransactionPrefix),
		BuyerID:       buyerID,
		SellerID:      book.SellerID,
		BookID:        book.ID,
		Amount:        split.Amount,
		PlatformFee:   split.PlatformFee,
		SellerAmount:  split.SellerAmount,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.TransactionStatusInitiated,
		Address:       address,
		Notes:         req.Notes,
	}

	var clientSecret string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", book.ID, models.BookStatusAvailable).
			Update("status", models.BookStatusReserved)
		if result.Error != nil {
			return fmt.Errorf("failed to reserve book: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("book is no longer available")
		}

		if method == models.PaymentMethodCard {
			intent, err := s.payments.CreateIntent(split.Amount, "usd", transaction.TransactionID, map[string]string{
				"kind":    "purchase",
				"book_id": book.ID.String(),
			})
			if err != nil {
				return err
			}
			transaction.PaymentIntentID = intent.IntentID
			transaction.Status = models.TransactionStatusPaymentPending
			clientSecret = intent.ClientSecret
		}

		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Notify(book.SellerID, models.NotificationTypeTransaction,
		"Book purchased",
		fmt.Sprintf("\"%s\" has a buyer", book.Title),
		&transaction.ID, "transaction")

	return &PurchaseResponse{Transaction: transaction, ClientSecret: clientSecret}, nil
}

// VerifyPayment confirms a card payment with the processor. On success the
// payment leg completes and the book moves from reserved to sold. A
// not-yet-settled intent changes nothing, so the buyer can retry.
func (s *TransactionService) VerifyPayment(transactionID string, buyerID uuid.UUID, paymentIntentID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "transaction_id = ?", transactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.BuyerID != buyerID {
		return nil, ForbiddenError("only the buyer can verify payment")
	}
	if !transaction.Status.CanTransition(models.TransactionStatusPaymentCompleted) {
		return nil, InvalidStateError(fmt.Sprintf("cannot verify payment for a transaction in status %s", transaction.Status))
	}
	if transaction.PaymentIntentID == "" || transaction.PaymentIntentID != paymentIntentID {
		return nil, ValidationError("payment intent does not belong to this transaction", nil)
	}

	succeeded, err := s.payments.IntentSucceeded(paymentIntentID)
	if err != nil {
		return nil, err
	}
	if !succeeded {
		return nil, UpstreamPaymentError("payment has not settled yet", nil)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", transaction.ID, transaction.Status).
			Updates(map[string]interface{}{
				"status":         models.TransactionStatusPaymentCompleted,
				"payment_status": models.PaymentStatusCompleted,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to record payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("transaction was modified concurrently")
		}

		result = tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", transaction.BookID, models.BookStatusReserved).
			Updates(map[string]interface{}{
				"status":  models.BookStatusSold,
				"sold_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark book sold: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("book reservation was lost")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.NotifyWithEmail(transaction.SellerID, models.NotificationTypePayment,
		"Payment received", "Payment for your book has settled", &transaction.ID, "transaction")

	return s.reload(transaction.ID)
}

// UpdateStatus advances fulfilment. Only the seller ships; completion closes
// the lifecycle once the book is delivered.
func (s *TransactionService) UpdateStatus(transactionID string, sellerID uuid.UUID, req *UpdateTransactionStatusRequest) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "transaction_id = ?", transactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.SellerID != sellerID {
		return nil, ForbiddenError("only the seller can update fulfilment status")
	}

	target := models.TransactionStatus(req.Status)
	if !transaction.Status.CanTransition(target) {
		return nil, InvalidStateError(fmt.Sprintf("cannot move a transaction from %s to %s", transaction.Status, target))
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}

	switch target {
	case models.TransactionStatusShipped:
		if req.TrackingNumber == "" {
			return nil, ValidationError("tracking number is required when shipping", nil)
		}
		updates["shipping_status"] = models.ShippingStatusShipped
		updates["tracking_number"] = req.TrackingNumber
		updates["carrier"] = req.Carrier
		updates["shipped_at"] = now
	case models.TransactionStatusDelivered:
		updates["shipping_status"] = models.ShippingStatusDelivered
		updates["delivered_at"] = now
	case models.TransactionStatusCompleted:
		updates["completed_at"] = now
	}

	result := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transaction.ID, transaction.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ConflictError("transaction was modified concurrently")
	}

	go s.notifications.Notify(transaction.BuyerID, models.NotificationTypeShipping,
		"Order update", fmt.Sprintf("Your order is now %s", target), &transaction.ID, "transaction")

	return s.reload(transaction.ID)
}

// CancelPurchase aborts a purchase before payment has settled and releases
// the book back to the marketplace. Either party may cancel at this stage.
func (s *TransactionService) CancelPurchase(transactionID string, userID uuid.UUID, reason string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "transaction_id = ?", transactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.BuyerID != userID && transaction.SellerID != userID {
		return nil, ForbiddenError("you are not a party to this transaction")
	}
	if transaction.Status != models.TransactionStatusInitiated &&
		transaction.Status != models.TransactionStatusPaymentPending {
		return nil, InvalidStateError(fmt.Sprintf("cannot cancel a transaction in status %s", transaction.Status))
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", transaction.ID, transaction.Status).
			Updates(map[string]interface{}{
				"status":       models.TransactionStatusCancelled,
				"cancelled_at": now,
				"notes":        reason,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("transaction was modified concurrently")
		}

		if err := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", transaction.BookID, models.BookStatusReserved).
			Update("status", models.BookStatusAvailable).Error; err != nil {
			return fmt.Errorf("failed to release book: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	other := transaction.SellerID
	if userID == transaction.SellerID {
		other = transaction.BuyerID
	}
	go s.notifications.Notify(other, models.NotificationTypeTransaction,
		"Purchase cancelled", "The purchase was cancelled before payment", &transaction.ID, "transaction")

	return s.reload(transaction.ID)
}

// Refund reverses a settled card payment. Admin only; the transaction must
// not already be refunded.
func (s *TransactionService) Refund(transactionID string, req *RefundRequest) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "transaction_id = ?", transactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.PaymentStatus != models.PaymentStatusCompleted {
		return nil, InvalidStateError("transaction has no settled payment to refund")
	}
	if transaction.PaymentIntentID == "" {
		return nil, InvalidStateError("transaction was not paid by card")
	}

	if err := s.payments.RefundIntent(transaction.PaymentIntentID, transaction.Amount); err != nil {
		return nil, err
	}

	now := time.Now()
	err := s.db.Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusRefunded,
			"refunded_at":    now,
			"refund_reason":  req.Reason,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	go s.notifications.NotifyWithEmail(transaction.BuyerID, models.NotificationTypePayment,
		"Refund issued", "Your payment has been refunded", &transaction.ID, "transaction")

	return s.reload(transaction.ID)
}

// ReleaseStaleReservations frees books held by purchases whose payment never
// settled within the reservation window. Run on demand by an administrator;
// returns how many purchases were cancelled.
func (s *TransactionService) ReleaseStaleReservations() (int64, error) {
	cutoff := time.Now().Add(-time.Duration(s.config.Payment.ReservationTTLHours) * time.Hour)

	var stale []models.Transaction
	err := s.db.Where("status IN ? AND created_at < ?",
		[]string{string(models.TransactionStatusInitiated), string(models.TransactionStatusPaymentPending)},
		cutoff).Find(&stale).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find stale reservations: %w", err)
	}

	var released int64
	now := time.Now()
	for _, t := range stale {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", t.ID, t.Status).
				Updates(map[string]interface{}{
					"status":       models.TransactionStatusCancelled,
					"cancelled_at": now,
					"notes":        "reservation expired",
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Advanced concurrently, leave it alone.
				return nil
			}

			if err := tx.Model(&models.Book{}).
				Where("id = ? AND status = ?", t.BookID, models.BookStatusReserved).
				Update("status", models.BookStatusAvailable).Error; err != nil {
				return err
			}

			released++
			return nil
		})
		if err != nil {
			return released, fmt.Errorf("failed to release reservation %s: %w", t.TransactionID, err)
		}
	}

	return released, nil
}

// GetTransaction returns one purchase to either of its parties.
func (s *TransactionService) GetTransaction(transactionID string, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Book").Preload("Buyer").Preload("Seller").
		First(&transaction, "transaction_id = ?", transactionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("transaction")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if transaction.BuyerID != userID && transaction.SellerID != userID {
		return nil, ForbiddenError("you are not a party to this transaction")
	}

	return &transaction, nil
}

// GetUserTransactions lists the user's purchases, sales, or both.
func (s *TransactionService) GetUserTransactions(userID uuid.UUID, role, status string, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{})

	switch role {
	case "purchases":
		query = query.Where("buyer_id = ?", userID)
	case "sales":
		query = query.Where("seller_id = ?", userID)
	default:
		query = query.Where("buyer_id = ? OR seller_id = ?", userID, userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query = query.Preload("Book").Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}

func (s *TransactionService) reload(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Book").First(&transaction, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}
	return &transaction, nil
}
