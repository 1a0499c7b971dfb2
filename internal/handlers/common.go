// internal/handlers/common.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

// handleServiceError translates workflow error codes to HTTP statuses.
// Anything unclassified is a 500 with the detail kept out of the response.
func handleServiceError(c *gin.Context, err error) {
	switch services.CodeOf(err) {
	case services.CodeNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case services.CodeForbidden:
		utils.ForbiddenResponse(c, err.Error())
	case services.CodeInvalidState:
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case services.CodeConflict:
		utils.ConflictResponse(c, err.Error())
	case services.CodeValidation:
		utils.BadRequestResponse(c, err.Error(), nil)
	case services.CodeUpstreamPayment:
		utils.ErrorResponse(c, http.StatusBadGateway, "UPSTREAM_PAYMENT_ERROR", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	return userID, true
}

// pathUUID parses a uuid path parameter, replying 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
