// internal/services/exchange_service.go
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

// ExchangeService drives the barter negotiation workflow: propose, negotiate,
// reserve both books on acceptance, settle any balancing payment, then swap
// ownership states. Book reservations are taken with conditional updates so
// two competing workflows can never hold the same copy.
type ExchangeService struct {
	db            *gorm.DB
	config        *config.Config
	payments      *PaymentService
	notifications *NotificationService
}

func NewExchangeService(db *gorm.DB, config *config.Config, payments *PaymentService, notifications *NotificationService) *ExchangeService {
	return &ExchangeService{
		db:            db,
		config:        config,
		payments:      payments,
		notifications: notifications,
	}
}

type CreateExchangeRequest struct {
	RequestedBookID uuid.UUID `json:"requested_book_id" binding:"required"`
	OfferedBookID   uuid.UUID `json:"offered_book_id" binding:"required"`
	Notes           string    `json:"notes" binding:"max=1000"`
}

type CounterOfferRequest struct {
	AdditionalAmount float64 `json:"additional_amount" binding:"gte=0"`
	Message          string  `json:"message" binding:"max=1000"`
}

type RejectExchangeRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// CreateExchange opens a negotiation. The initiator must own the offered book
// and must not own the requested one; both books must currently be listed for
// exchange. Book values are snapshotted here and stay fixed for the life of
// the negotiation.
func (s *ExchangeService) CreateExchange(initiatorID uuid.UUID, req *CreateExchangeRequest) (*models.Exchange, error) {
	if req.RequestedBookID == req.OfferedBookID {
		return nil, ValidationError("cannot exchange a book for itself", nil)
	}

	var requested, offered models.Book
	if err := s.db.First(&requested, "id = ?", req.RequestedBookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch requested book: %w", err)
	}
	if err := s.db.First(&offered, "id = ?", req.OfferedBookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch offered book: %w", err)
	}

	if offered.SellerID != initiatorID {
		return nil, ForbiddenError("you can only offer a book you own")
	}
	if requested.SellerID == initiatorID {
		return nil, ValidationError("cannot request your own book", nil)
	}
	if requested.Status != models.BookStatusAvailable {
		return nil, InvalidStateError("requested book is not available")
	}
	if offered.Status != models.BookStatusAvailable {
		return nil, InvalidStateError("offered book is not available")
	}
	if !exchangeable(requested.ListingType) {
		return nil, InvalidStateError("requested book is not listed for exchange")
	}
	if !exchangeable(offered.ListingType) {
		return nil, InvalidStateError("offered book is not listed for exchange")
	}

	now := time.Now()
	exchange := &models.Exchange{
		ExchangeID:         utils.NewCorrelationID(utils.ExchangePrefix),
		InitiatorID:        initiatorID,
		ReceiverID:         requested.SellerID,
		RequestedBookID:    requested.ID,
		OfferedBookID:      offered.ID,
		RequestedBookValue: requested.TradeValue(),
		OfferedBookValue:   offered.TradeValue(),
		Status:             models.ExchangeStatusPending,
		Notes:              req.Notes,
		NegotiationHistory: models.JSONBArray{historyEntry("proposed", initiatorID, 0, req.Notes, now)},
	}
	exchange.RecomputeFairness()

	if err := s.db.Create(exchange).Error; err != nil {
		return nil, fmt.Errorf("failed to create exchange: %w", err)
	}

	go s.notifications.Notify(exchange.ReceiverID, models.NotificationTypeExchangeRequest,
		"New exchange request",
		fmt.Sprintf("Someone wants to trade for \"%s\"", requested.Title),
		&exchange.ID, "exchange")

	return exchange, nil
}

// GetExchange returns one negotiation to either of its parties.
func (s *ExchangeService) GetExchange(exchangeID, userID uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	err := s.db.Preload("RequestedBook").Preload("OfferedBook").
		Preload("Initiator").Preload("Receiver").
		First(&exchange, "id = ?", exchangeID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.InitiatorID != userID && exchange.ReceiverID != userID {
		return nil, ForbiddenError("you are not a party to this exchange")
	}

	return &exchange, nil
}

// AcceptExchange moves a pending or counter-offered negotiation forward and
// reserves both books. When the value gap demands a balancing payment the
// exchange lands on payment-pending, otherwise it goes straight to
// in-progress.
func (s *ExchangeService) AcceptExchange(exchangeID, userID uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.ReceiverID != userID {
		return nil, ForbiddenError("only the receiver can accept an exchange")
	}
	if !exchange.Status.CanTransition(models.ExchangeStatusAccepted) {
		return nil, InvalidStateError(fmt.Sprintf("cannot accept an exchange in status %s", exchange.Status))
	}

	exchange.RecomputeFairness()
	target := models.ExchangeStatusInProgress
	if exchange.PaymentRequired {
		target = models.ExchangeStatusPaymentPending
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, bookID := range []uuid.UUID{exchange.RequestedBookID, exchange.OfferedBookID} {
			result := tx.Model(&models.Book{}).
				Where("id = ? AND status = ?", bookID, models.BookStatusAvailable).
				Update("status", models.BookStatusReserved)
			if result.Error != nil {
				return fmt.Errorf("failed to reserve book: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ConflictError("book is no longer available")
			}
		}

		now := time.Now()
		result := tx.Model(&models.Exchange{}).
			Where("id = ? AND status IN ?", exchange.ID,
				[]string{string(models.ExchangeStatusPending), string(models.ExchangeStatusCounterOffered)}).
			Updates(map[string]interface{}{
				"status":              target,
				"value_difference":    exchange.ValueDifference,
				"payment_required":    exchange.PaymentRequired,
				"payment_direction":   exchange.PaymentDirection,
				"additional_amount":   exchange.AdditionalAmount,
				"negotiation_history": append(exchange.NegotiationHistory, historyEntry("accepted", userID, 0, "", now)),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to accept exchange: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("exchange was modified concurrently")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Notify(exchange.InitiatorID, models.NotificationTypeExchangeAccepted,
		"Exchange accepted", "Your exchange request was accepted", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// RejectExchange ends a negotiation before any books were reserved.
func (s *ExchangeService) RejectExchange(exchangeID, userID uuid.UUID, req *RejectExchangeRequest) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.ReceiverID != userID {
		return nil, ForbiddenError("only the receiver can reject an exchange")
	}
	if !exchange.Status.CanTransition(models.ExchangeStatusRejected) {
		return nil, InvalidStateError(fmt.Sprintf("cannot reject an exchange in status %s", exchange.Status))
	}

	now := time.Now()
	result := s.db.Model(&models.Exchange{}).
		Where("id = ? AND status = ?", exchange.ID, exchange.Status).
		Updates(map[string]interface{}{
			"status":              models.ExchangeStatusRejected,
			"cancellation_reason": req.Reason,
			"negotiation_history": append(exchange.NegotiationHistory, historyEntry("rejected", userID, 0, req.Reason, now)),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reject exchange: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ConflictError("exchange was modified concurrently")
	}

	go s.notifications.Notify(exchange.InitiatorID, models.NotificationTypeExchangeRejected,
		"Exchange rejected", "Your exchange request was rejected", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// MakeCounterOffer lets the receiver propose a different balancing amount.
// Only a pending exchange can be countered, and countering never touches book
// reservations.
func (s *ExchangeService) MakeCounterOffer(exchangeID, userID uuid.UUID, req *CounterOfferRequest) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.ReceiverID != userID {
		return nil, ForbiddenError("only the receiver can make a counter-offer")
	}
	if exchange.Status != models.ExchangeStatusPending {
		return nil, InvalidStateError(fmt.Sprintf("cannot counter an exchange in status %s", exchange.Status))
	}

	now := time.Now()
	counter := models.JSONB{
		"additional_amount": req.AdditionalAmount,
		"message":           req.Message,
		"offered_at":        now,
	}

	result := s.db.Model(&models.Exchange{}).
		Where("id = ? AND status = ?", exchange.ID, models.ExchangeStatusPending).
		Updates(map[string]interface{}{
			"status":              models.ExchangeStatusCounterOffered,
			"counter_offer":       counter,
			"negotiation_history": append(exchange.NegotiationHistory, historyEntry("counter-offered", userID, req.AdditionalAmount, req.Message, now)),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record counter-offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ConflictError("exchange was modified concurrently")
	}

	go s.notifications.Notify(exchange.InitiatorID, models.NotificationTypeExchangeCounter,
		"Counter-offer received", "The other party made a counter-offer", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// PayBalance opens a payment intent for the balancing amount of an exchange
// waiting on payment. Only the party the fairness calculation points at may
// pay.
func (s *ExchangeService) PayBalance(exchangeID, userID uuid.UUID) (*PaymentIntentResponse, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.Status != models.ExchangeStatusPaymentPending {
		return nil, InvalidStateError(fmt.Sprintf("exchange in status %s has no balance due", exchange.Status))
	}
	if payer := exchange.PayerID(); payer == nil || *payer != userID {
		return nil, ForbiddenError("you are not the paying party of this exchange")
	}

	intent, err := s.payments.CreateIntent(exchange.AdditionalAmount, "usd", exchange.ExchangeID, map[string]string{
		"kind": "exchange-balance",
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Exchange{}).
		Where("id = ?", exchange.ID).
		Updates(map[string]interface{}{
			"payment_intent_id": intent.IntentID,
			"payment_status":    models.PaymentStatusProcessing,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record payment intent: %w", err)
	}

	return intent, nil
}

// VerifyBalancePayment confirms the balancing payment with the processor and
// moves the exchange from payment-pending to in-progress. Safe to retry: a
// not-yet-settled intent leaves the exchange untouched.
func (s *ExchangeService) VerifyBalancePayment(exchangeID, userID uuid.UUID, paymentIntentID string) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.InitiatorID != userID && exchange.ReceiverID != userID {
		return nil, ForbiddenError("you are not a party to this exchange")
	}
	if exchange.Status != models.ExchangeStatusPaymentPending {
		return nil, InvalidStateError(fmt.Sprintf("exchange in status %s is not awaiting payment", exchange.Status))
	}
	if exchange.PaymentIntentID == "" || exchange.PaymentIntentID != paymentIntentID {
		return nil, ValidationError("payment intent does not belong to this exchange", nil)
	}

	succeeded, err := s.payments.IntentSucceeded(paymentIntentID)
	if err != nil {
		return nil, err
	}
	if !succeeded {
		return nil, UpstreamPaymentError("payment has not settled yet", nil)
	}

	now := time.Now()
	result := s.db.Model(&models.Exchange{}).
		Where("id = ? AND status = ?", exchange.ID, models.ExchangeStatusPaymentPending).
		Updates(map[string]interface{}{
			"status":              models.ExchangeStatusInProgress,
			"payment_status":      models.PaymentStatusCompleted,
			"negotiation_history": append(exchange.NegotiationHistory, historyEntry("balance-paid", userID, exchange.AdditionalAmount, "", now)),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record balance payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ConflictError("exchange was modified concurrently")
	}

	go s.notifications.NotifyWithEmail(exchange.OtherParty(userID), models.NotificationTypePayment,
		"Balance payment received", "The balancing payment for your exchange has settled", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// CompleteExchange finishes an in-progress swap: both books move from
// reserved to exchanged and the negotiation closes. Completing twice is an
// invalid-state error, not a silent no-op.
func (s *ExchangeService) CompleteExchange(exchangeID, userID uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.InitiatorID != userID && exchange.ReceiverID != userID {
		return nil, ForbiddenError("you are not a party to this exchange")
	}
	if exchange.Status != models.ExchangeStatusInProgress {
		return nil, InvalidStateError(fmt.Sprintf("cannot complete an exchange in status %s", exchange.Status))
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, bookID := range []uuid.UUID{exchange.RequestedBookID, exchange.OfferedBookID} {
			result := tx.Model(&models.Book{}).
				Where("id = ? AND status = ?", bookID, models.BookStatusReserved).
				Updates(map[string]interface{}{
					"status":       models.BookStatusExchanged,
					"exchanged_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to mark book exchanged: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ConflictError("book reservation was lost")
			}
		}

		result := tx.Model(&models.Exchange{}).
			Where("id = ? AND status = ?", exchange.ID, models.ExchangeStatusInProgress).
			Updates(map[string]interface{}{
				"status":              models.ExchangeStatusCompleted,
				"completed_at":        now,
				"negotiation_history": append(exchange.NegotiationHistory, historyEntry("completed", userID, 0, "", now)),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete exchange: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("exchange was modified concurrently")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.NotifyWithEmail(exchange.OtherParty(userID), models.NotificationTypeExchangeUpdate,
		"Exchange completed", "Your book exchange is complete", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// CancelExchange aborts a non-terminal negotiation. Either party may cancel;
// any books reserved for the swap go back to available.
func (s *ExchangeService) CancelExchange(exchangeID, userID uuid.UUID, reason string) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.First(&exchange, "id = ?", exchangeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("exchange")
		}
		return nil, fmt.Errorf("failed to fetch exchange: %w", err)
	}

	if exchange.InitiatorID != userID && exchange.ReceiverID != userID {
		return nil, ForbiddenError("you are not a party to this exchange")
	}
	if !exchange.Status.CanTransition(models.ExchangeStatusCancelled) {
		return nil, InvalidStateError(fmt.Sprintf("cannot cancel an exchange in status %s", exchange.Status))
	}

	reserved := exchange.Status == models.ExchangeStatusPaymentPending ||
		exchange.Status == models.ExchangeStatusInProgress

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Exchange{}).
			Where("id = ? AND status = ?", exchange.ID, exchange.Status).
			Updates(map[string]interface{}{
				"status":              models.ExchangeStatusCancelled,
				"cancelled_at":        now,
				"cancelled_by":        userID,
				"cancellation_reason": reason,
				"negotiation_history": append(exchange.NegotiationHistory, historyEntry("cancelled", userID, 0, reason, now)),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel exchange: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ConflictError("exchange was modified concurrently")
		}

		if reserved {
			for _, bookID := range []uuid.UUID{exchange.RequestedBookID, exchange.OfferedBookID} {
				if err := tx.Model(&models.Book{}).
					Where("id = ? AND status = ?", bookID, models.BookStatusReserved).
					Update("status", models.BookStatusAvailable).Error; err != nil {
					return fmt.Errorf("failed to release book: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.notifications.Notify(exchange.OtherParty(userID), models.NotificationTypeExchangeUpdate,
		"Exchange cancelled", "The exchange was cancelled", &exchange.ID, "exchange")

	return s.reload(exchange.ID)
}

// GetSentExchanges lists negotiations the user initiated.
func (s *ExchangeService) GetSentExchanges(userID uuid.UUID, status string, params utils.PaginationParams) ([]models.Exchange, int64, error) {
	return s.listExchanges("initiator_id", userID, status, params)
}

// GetReceivedExchanges lists negotiations aimed at the user's books.
func (s *ExchangeService) GetReceivedExchanges(userID uuid.UUID, status string, params utils.PaginationParams) ([]models.Exchange, int64, error) {
	return s.listExchanges("receiver_id", userID, status, params)
}

func (s *ExchangeService) listExchanges(column string, userID uuid.UUID, status string, params utils.PaginationParams) ([]models.Exchange, int64, error) {
	query := s.db.Model(&models.Exchange{}).Where(column+" = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exchanges: %w", err)
	}

	query = query.Preload("RequestedBook").Preload("OfferedBook").
		Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var exchanges []models.Exchange
	if err := query.Find(&exchanges).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch exchanges: %w", err)
	}

	return exchanges, total, nil
}

func (s *ExchangeService) reload(id uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.Preload("RequestedBook").Preload("OfferedBook").
		First(&exchange, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload exchange: %w", err)
	}
	return &exchange, nil
}

func exchangeable(t models.ListingType) bool {
	return t == models.ListingTypeExchange || t == models.ListingTypeBoth
}

func historyEntry(action string, userID uuid.UUID, amount float64, message string, at time.Time) map[string]interface{} {
	entry := map[string]interface{}{
		"action":    action,
		"user_id":   userID.String(),
		"timestamp": at.UTC().Format(time.RFC3339),
	}
	if amount > 0 {
		entry["amount"] = amount
	}
	if message != "" {
		entry["message"] = message
	}
	return entry
}
