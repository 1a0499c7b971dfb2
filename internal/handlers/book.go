// internal/handlers/book.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookswap/bookswap-backend/internal/i18n"
	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

type BookHandler struct {
	bookService    *services.BookService
	storageService *services.StorageService
}

func NewBookHandler(bookService *services.BookService, storageService *services.StorageService) *BookHandler {
	return &BookHandler{
		bookService:    bookService,
		storageService: storageService,
	}
}

// POST /books
func (h *BookHandler) CreateBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	book, err := h.bookService.CreateBook(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookCreated),
		"book":    book,
	})
}

// GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var viewerID *uuid.UUID
	if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
		if id, err := uuid.Parse(userIDStr); err == nil {
			viewerID = &id
		}
	}

	book, err := h.bookService.GetBook(bookID, viewerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"book": book})
}

// PUT /books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	book, err := h.bookService.UpdateBook(bookID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookUpdated),
		"book":    book,
	})
}

// DELETE /books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(bookID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookDeleted),
	})
}

// POST /books/:id/delist
func (h *BookHandler) DelistBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.DelistBook(bookID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "book delisted"})
}

// POST /books/:id/relist
func (h *BookHandler) RelistBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.RelistBook(bookID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "book relisted"})
}

// GET /books
func (h *BookHandler) SearchBooks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)

	filters := services.BookSearchFilters{
		Query:       params.Search,
		Category:    params.Category,
		Condition:   c.Query("condition"),
		ListingType: c.Query("listing_type"),
		Language:    c.Query("language"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
	}
	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		if sellerID, err := uuid.Parse(sellerIDStr); err == nil {
			filters.SellerID = &sellerID
		}
	}

	books, total, err := h.bookService.SearchBooks(filters, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(books, total, params))
}

// GET /books/mine
func (h *BookHandler) GetMyBooks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	books, total, err := h.bookService.GetSellerBooks(userID, c.Query("status"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(books, total, params))
}

// POST /books/images
func (h *BookHandler) UploadImage(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "image file is required", nil)
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("books")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"upload": result})
}
