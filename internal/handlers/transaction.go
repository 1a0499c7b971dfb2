// internal/handlers/transaction.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bookswap/bookswap-backend/internal/i18n"
	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// POST /transactions
func (h *TransactionHandler) CreatePurchase(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	resp, err := h.transactionService.CreatePurchase(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyTransactionCreated),
		"transaction":   resp.Transaction,
		"client_secret": resp.ClientSecret,
	})
}

// GET /transactions/:txn_id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Param("txn_id"), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction": transaction})
}

// POST /transactions/:txn_id/verify-payment
func (h *TransactionHandler) VerifyPayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
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

	transaction, err := h.transactionService.VerifyPayment(c.Param("txn_id"), userID, req.PaymentIntentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransactionVerified),
		"transaction": transaction,
	})
}

// PUT /transactions/:txn_id/status
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	transaction, err := h.transactionService.UpdateStatus(c.Param("txn_id"), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransactionUpdated),
		"transaction": transaction,
	})
}

// POST /transactions/:txn_id/cancel
func (h *TransactionHandler) CancelPurchase(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"max=1000"`
	}
	_ = c.ShouldBindJSON(&req)

	transaction, err := h.transactionService.CancelPurchase(c.Param("txn_id"), userID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransactionCancelled),
		"transaction": transaction,
	})
}

// GET /transactions
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.transactionService.GetUserTransactions(
		userID, c.DefaultQuery("role", "all"), c.Query("status"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(transactions, total, params))
}
