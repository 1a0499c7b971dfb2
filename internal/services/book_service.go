// internal/services/book_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/config"
	"github.com/bookswap/bookswap-backend/internal/models"
	"github.com/bookswap/bookswap-backend/internal/utils"
	"github.com/bookswap/bookswap-backend/internal/valuation"
)

type BookService struct {
	db     *gorm.DB
	config *config.Config
}

func NewBookService(db *gorm.DB, config *config.Config) *BookService {
	return &BookService{
		db:     db,
		config: config,
	}
}

type CreateBookRequest struct {
	Title           string   `json:"title" binding:"required,min=1,max=200"`
	Author          string   `json:"author" binding:"required,min=1,max=100"`
	ISBN            string   `json:"isbn" binding:"omitempty,max=20"`
	Description     string   `json:"description" binding:"max=2000"`
	Condition       string   `json:"condition" binding:"required,oneof=new like-new good fair poor"`
	Category        string   `json:"category" binding:"max=50"`
	Genres          []string `json:"genres"`
	Language        string   `json:"language" binding:"omitempty,max=50"`
	PublicationYear int      `json:"publication_year" binding:"omitempty,min=1400,max=2100"`
	Publisher       string   `json:"publisher" binding:"omitempty,max=100"`
	Pages           int      `json:"pages" binding:"omitempty,min=1"`
	Format          string   `json:"format" binding:"omitempty,max=20"`
	Images          []string `json:"images"`
	Price           float64  `json:"price" binding:"required,gt=0"`
	OriginalPrice   float64  `json:"original_price" binding:"omitempty,gt=0"`
	ListingType     string   `json:"listing_type" binding:"required,oneof=sale exchange both"`
	Tags            []string `json:"tags"`
}

type UpdateBookRequest struct {
	Title           *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Author          *string  `json:"author" binding:"omitempty,min=1,max=100"`
	ISBN            *string  `json:"isbn" binding:"omitempty,max=20"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	Condition       *string  `json:"condition" binding:"omitempty,oneof=new like-new good fair poor"`
	Category        *string  `json:"category" binding:"omitempty,max=50"`
	Genres          []string `json:"genres"`
	Language        *string  `json:"language" binding:"omitempty,max=50"`
	PublicationYear *int     `json:"publication_year" binding:"omitempty,min=1400,max=2100"`
	Publisher       *string  `json:"publisher" binding:"omitempty,max=100"`
	Pages           *int     `json:"pages" binding:"omitempty,min=1"`
	Format          *string  `json:"format" binding:"omitempty,max=20"`
	Images          []string `json:"images"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	OriginalPrice   *float64 `json:"original_price" binding:"omitempty,gt=0"`
	ListingType     *string  `json:"listing_type" binding:"omitempty,oneof=sale exchange both"`
	Tags            []string `json:"tags"`
}

type BookSearchFilters struct {
	Query       string
	Category    string
	Condition   string
	ListingType string
	Language    string
	MinPrice    float64
	MaxPrice    float64
	SellerID    *uuid.UUID
}

// CreateBook lists a new book. The estimated trade value is always computed
// server side; clients cannot supply it.
func (s *BookService) CreateBook(sellerID uuid.UUID, req *CreateBookRequest) (*models.Book, error) {
	originalPrice := req.OriginalPrice
	if originalPrice <= 0 {
		originalPrice = req.Price
	}

	language := req.Language
	if language == "" {
		language = "English"
	}

	book := &models.Book{
		SellerID:        sellerID,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            req.ISBN,
		Description:     req.Description,
		Condition:       models.BookCondition(req.Condition),
		Category:        req.Category,
		Genres:          pq.StringArray(req.Genres),
		Language:        language,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		Pages:           req.Pages,
		Format:          req.Format,
		Images:          pq.StringArray(req.Images),
		Price:           req.Price,
		OriginalPrice:   originalPrice,
		ListingType:     models.ListingType(req.ListingType),
		Status:          models.BookStatusAvailable,
		Tags:            pq.StringArray(req.Tags),
	}
	book.EstimatedValue = valuation.ForBook(book)

	if err := s.db.Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// GetBook fetches a single listing. Views by anyone but the seller bump the
// view counter with a single UPDATE so concurrent reads never lose counts.
func (s *BookService) GetBook(bookID uuid.UUID, viewerID *uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := s.db.Preload("Seller").First(&book, "id = ?", bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}

	if viewerID == nil || *viewerID != book.SellerID {
		if err := s.db.Model(&models.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err == nil {
			book.ViewCount++
		}
	}

	return &book, nil
}

// UpdateBook applies an allow-listed partial update. Status, ownership and
// the computed valuation are never client-settable; the valuation is
// recomputed when an input to it changes.
func (s *BookService) UpdateBook(bookID, sellerID uuid.UUID, req *UpdateBookRequest) (*models.Book, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundError("book")
		}
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}

	if book.SellerID != sellerID {
		return nil, ForbiddenError("only the seller can update this book")
	}
	if book.Status.Terminal() {
		return nil, InvalidStateError("cannot update a sold or exchanged book")
	}

	revalue := false
	updates := map[string]interface{}{}

	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		updates["author"] = strings.TrimSpace(*req.Author)
	}
	if req.ISBN != nil {
		updates["isbn"] = *req.ISBN
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
		book.Condition = models.BookCondition(*req.Condition)
		revalue = true
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Genres != nil {
		updates["genres"] = pq.StringArray(req.Genres)
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.PublicationYear != nil {
		updates["publication_year"] = *req.PublicationYear
		book.PublicationYear = *req.PublicationYear
		revalue = true
	}
	if req.Publisher != nil {
		updates["publisher"] = *req.Publisher
	}
	if req.Pages != nil {
		updates["pages"] = *req.Pages
	}
	if req.Format != nil {
		updates["format"] = *req.Format
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	// Price is not a valuation input; changing it alone does not re-estimate.
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
		book.OriginalPrice = *req.OriginalPrice
		revalue = true
	}
	if req.ListingType != nil {
		updates["listing_type"] = *req.ListingType
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	if len(updates) == 0 {
		return &book, nil
	}

	if revalue {
		updates["estimated_value"] = valuation.ForBook(&book)
	}

	if err := s.db.Model(&book).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return &book, nil
}

// DelistBook pulls an available listing from the marketplace without deleting
// it. Reserved or terminal books cannot be delisted.
func (s *BookService) DelistBook(bookID, sellerID uuid.UUID) error {
	return s.setListingStatus(bookID, sellerID, models.BookStatusAvailable, models.BookStatusInactive)
}

// RelistBook returns an inactive listing to the marketplace.
func (s *BookService) RelistBook(bookID, sellerID uuid.UUID) error {
	return s.setListingStatus(bookID, sellerID, models.BookStatusInactive, models.BookStatusAvailable)
}

func (s *BookService) setListingStatus(bookID, sellerID uuid.UUID, from, to models.BookStatus) error {
	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NotFoundError("book")
		}
		return fmt.Errorf("failed to fetch book: %w", err)
	}

	if book.SellerID != sellerID {
		return ForbiddenError("only the seller can change this listing")
	}

	result := s.db.Model(&models.Book{}).
		Where("id = ? AND status = ?", bookID, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update listing status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return InvalidStateError(fmt.Sprintf("book is not %s", from))
	}

	return nil
}

// DeleteBook soft-deletes a listing. A book held by an active exchange or
// purchase must be released first.
func (s *BookService) DeleteBook(bookID, sellerID uuid.UUID) error {
	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NotFoundError("book")
		}
		return fmt.Errorf("failed to fetch book: %w", err)
	}

	if book.SellerID != sellerID {
		return ForbiddenError("only the seller can delete this book")
	}
	if book.Status == models.BookStatusReserved {
		return InvalidStateError("cannot delete a reserved book")
	}

	if err := s.db.Delete(&book).Error; err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return nil
}

// SearchBooks lists available books matching the filters. Only available
// listings are surfaced to the marketplace.
func (s *BookService) SearchBooks(filters BookSearchFilters, params utils.PaginationParams) ([]models.Book, int64, error) {
	query := s.db.Model(&models.Book{}).
		Preload("Seller").
		Where("status = ?", models.BookStatusAvailable)

	if filters.Query != "" {
		term := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR isbn = ?", term, term, filters.Query)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Condition != "" {
		query = query.Where("condition = ?", filters.Condition)
	}
	if filters.ListingType != "" {
		// "sale" also matches "both", and likewise for "exchange".
		query = query.Where("listing_type IN ?", []string{filters.ListingType, string(models.ListingTypeBoth)})
	}
	if filters.Language != "" {
		query = query.Where("language = ?", filters.Language)
	}
	if filters.MinPrice > 0 {
		query = query.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		query = query.Where("price <= ?", filters.MaxPrice)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "estimated_value", "view_count", "favorite_count", "title"})
	query = utils.ApplyPagination(query, params)

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}

	return books, total, nil
}

// GetSellerBooks lists every listing belonging to a seller, including
// inactive and terminal ones.
func (s *BookService) GetSellerBooks(sellerID uuid.UUID, status string, params utils.PaginationParams) ([]models.Book, int64, error) {
	query := s.db.Model(&models.Book{}).Where("seller_id = ?", sellerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch books: %w", err)
	}

	return books, total, nil
}
