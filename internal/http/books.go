package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

type BooksController struct {
	catalog      CatalogService
	lending      LendingService
	auditService *audit.Service
}

func NewBooksController(catalog CatalogService, lending LendingService, auditService *audit.Service) *BooksController {
	return &BooksController{
		catalog:      catalog,
		lending:      lending,
		auditService: auditService,
	}
}

type SearchBooksQuery struct {
	Title     string `form:"title"`
	Author    string `form:"author"`
	ISBN      string `form:"isbn"`
	Category  string `form:"category"`
	Year      int    `form:"year"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=title author year createdAt"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,max=500"`
	Author      string `json:"author" binding:"required,max=200"`
	ISBN        string `json:"isbn" binding:"required,isbn_format"`
	Year        int    `json:"year" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"max=100"`
	Publisher   string `json:"publisher" binding:"max=200"`
	Language    string `json:"language" binding:"max=50"`
	Pages       int    `json:"pages" binding:"omitempty,min=1"`
	CoverImage  string `json:"coverImage"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=500"`
	Author      *string `json:"author" binding:"omitempty,min=1,max=200"`
	ISBN        *string `json:"isbn" binding:"omitempty,isbn_format"`
	Year        *int    `json:"year"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Publisher   *string `json:"publisher" binding:"omitempty,max=200"`
	Language    *string `json:"language" binding:"omitempty,max=50"`
	Pages       *int    `json:"pages" binding:"omitempty,min=1"`
}

type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CoverRequest struct {
	CoverImage string `json:"coverImage" binding:"required"`
}

// SearchBooks handles GET /api/books
func (bc *BooksController) SearchBooks(c *gin.Context) {
	var q SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindingError(c, err)
		return
	}

	page, err := bc.catalog.SearchBooks(c.Request.Context(), entities.BookFilter{
		Title:     q.Title,
		Author:    q.Author,
		ISBN:      q.ISBN,
		Category:  q.Category,
		Year:      q.Year,
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		respondServiceError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := bc.catalog.CreateBook(c.Request.Context(), catalog.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Year:        req.Year,
		Quantity:    req.Quantity,
		Description: req.Description,
		Category:    req.Category,
		Publisher:   req.Publisher,
		Language:    req.Language,
		Pages:       req.Pages,
		CoverImage:  req.CoverImage,
	})
	bookID := ""
	if book != nil {
		bookID = book.ID
	}
	bc.auditService.LogCatalog(auth.GetUserID(c), "book_create", bookID, "Created book '"+req.Title+"'", err)
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// UpdateBook handles PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	id := c.Param("id")
	book, err := bc.catalog.UpdateBook(c.Request.Context(), id, catalog.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Year:        req.Year,
		Quantity:    req.Quantity,
		Description: req.Description,
		Category:    req.Category,
		Publisher:   req.Publisher,
		Language:    req.Language,
		Pages:       req.Pages,
	})
	bc.auditService.LogCatalog(auth.GetUserID(c), "book_update", id, "Updated book "+id, err)
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// SetQuantity handles PUT /api/books/:id/quantity
func (bc *BooksController) SetQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	id := c.Param("id")
	book, err := bc.lending.ChangeQuantity(c.Request.Context(), id, *req.Quantity)
	bc.auditService.LogQuantityChange(auth.GetUserID(c), id, *req.Quantity, err)
	if err != nil {
		respondServiceError(c, err, "change quantity")
		return
	}
	c.JSON(http.StatusOK, book)
}

// SetCover handles PUT /api/books/:id/cover
func (bc *BooksController) SetCover(c *gin.Context) {
	var req CoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := bc.catalog.SetCoverImage(c.Request.Context(), c.Param("id"), req.CoverImage)
	if err != nil {
		respondServiceError(c, err, "set cover image")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id
// Refused while any copy is on loan; the book's returned history is removed with it.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	name := id
	if book, err := bc.catalog.GetBook(ctx, id); err == nil {
		name = book.Title
	}

	err := bc.lending.RemoveBook(ctx, id)
	bc.auditService.LogDelete(auth.GetUserID(c), "book", id, name, err)
	if err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
