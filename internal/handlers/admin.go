// internal/handlers/admin.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type AdminHandler struct {
	adminService       *services.AdminService
	transactionService *services.TransactionService
}

func NewAdminHandler(adminService *services.AdminService, transactionService *services.TransactionService) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		transactionService: transactionService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.adminService.GetUsers(services.AdminUserFilter{
		Status:   c.Query("status"),
		UserType: c.Query("user_type"),
		Search:   params.Search,
		Params:   params,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active suspended banned"`
		Reason string `json:"reason" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid status update", err.Error())
		return
	}

	if err := h.adminService.UpdateUserStatus(userID, models.UserStatus(req.Status), adminID, req.Reason); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "user status updated"})
}

// GET /admin/transactions
func (h *AdminHandler) GetTransactions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	transactions, total, err := h.adminService.GetTransactions(services.AdminTransactionFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Params:        params,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(transactions, total, params))
}

// POST /admin/transactions/:txn_id/refund
func (h *AdminHandler) RefundTransaction(c *gin.Context) {
	var req services.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "refund reason is required", err.Error())
		return
	}

	transaction, err := h.transactionService.Refund(c.Param("txn_id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     "refund issued",
		"transaction": transaction,
	})
}

// POST /admin/maintenance/release-reservations
func (h *AdminHandler) ReleaseStaleReservations(c *gin.Context) {
	released, err := h.transactionService.ReleaseStaleReservations()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"released": released})
}

// GET /admin/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, -1, 0)

	if s := c.Query("start_date"); s != "" {
		if parsed, err := time.Parse("2006-01-02", s); err == nil {
			startDate = parsed
		}
	}
	if e := c.Query("end_date"); e != "" {
		if parsed, err := time.Parse("2006-01-02", e); err == nil {
			endDate = parsed
		}
	}

	analytics, err := h.adminService.GetAnalytics(startDate, endDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"analytics": analytics})
}
