// internal/handlers/exchange.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bookswap/bookswap-backend/internal/i18n"
	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type ExchangeHandler struct {
	exchangeService *services.ExchangeService
}

func NewExchangeHandler(exchangeService *services.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeService: exchangeService,
	}
}

// POST /exchanges
func (h *ExchangeHandler) CreateExchange(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	exchange, err := h.exchangeService.CreateExchange(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeCreated),
		"exchange": exchange,
	})
}

// GET /exchanges/:id
func (h *ExchangeHandler) GetExchange(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	exchange, err := h.exchangeService.GetExchange(exchangeID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"exchange": exchange})
}

// POST /exchanges/:id/accept
func (h *ExchangeHandler) AcceptExchange(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	exchange, err := h.exchangeService.AcceptExchange(exchangeID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeAccepted),
		"exchange": exchange,
	})
}

// POST /exchanges/:id/reject
func (h *ExchangeHandler) RejectExchange(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.RejectExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	exchange, err := h.exchangeService.RejectExchange(exchangeID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeRejected),
		"exchange": exchange,
	})
}

// POST /exchanges/:id/counter
func (h *ExchangeHandler) MakeCounterOffer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	exchange, err := h.exchangeService.MakeCounterOffer(exchangeID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeCountered),
		"exchange": exchange,
	})
}

// POST /exchanges/:id/pay
func (h *ExchangeHandler) PayBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	intent, err := h.exchangeService.PayBalance(exchangeID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payment_intent_id": intent.IntentID,
		"client_secret":     intent.ClientSecret,
	})
}

// POST /exchanges/:id/verify-payment
func (h *ExchangeHandler) VerifyBalancePayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	exchange, err := h.exchangeService.VerifyBalancePayment(exchangeID, userID, req.PaymentIntentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"exchange": exchange})
}

// POST /exchanges/:id/complete
func (h *ExchangeHandler) CompleteExchange(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	exchange, err := h.exchangeService.CompleteExchange(exchangeID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeCompleted),
		"exchange": exchange,
	})
}

// POST /exchanges/:id/cancel
func (h *ExchangeHandler) CancelExchange(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"max=1000"`
	}
	// Reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	exchange, err := h.exchangeService.CancelExchange(exchangeID, userID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyExchangeCancelled),
		"exchange": exchange,
	})
}

// GET /exchanges/sent
func (h *ExchangeHandler) GetSentExchanges(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	exchanges, total, err := h.exchangeService.GetSentExchanges(userID, c.Query("status"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(exchanges, total, params))
}

// GET /exchanges/received
func (h *ExchangeHandler) GetReceivedExchanges(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	exchanges, total, err := h.exchangeService.GetReceivedExchanges(userID, c.Query("status"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(exchanges, total, params))
}
