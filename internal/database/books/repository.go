// Package books provides database operations for the book catalog,
// including the conditional counter updates the lending engine relies on.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, found, err := repo.FindBook(ctx, id)
//	taken, err := repo.TakeCopy(ctx, id)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var sortColumns = map[string]string{
	"title":     "title",
	"author":    "author",
	"year":      "year",
	"createdAt": "created_at",
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindBook retrieves a book by ID.
func (r *Repository) FindBook(ctx context.Context, id string) (*entities.Book, bool, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &book, true, nil
}

// FindBookByISBN retrieves a book by its exact ISBN.
func (r *Repository) FindBookByISBN(ctx context.Context, isbn string) (*entities.Book, bool, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &book, true, nil
}

// ListBookIDs returns the IDs of every book, oldest first.
func (r *Repository) ListBookIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Order("created_at ASC, id ASC").Pluck("id", &ids).Error
	return ids, err
}

// CountBooks returns the number of books in the catalog.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// CreateBook inserts a new book. A colliding ISBN yields lending.ErrDuplicateISBN.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isDuplicateKey(err) {
			return lending.ErrDuplicateISBN
		}
		return err
	}
	return nil
}

// UpdateBookDetails writes the descriptive fields of a book. The quantity
// counters are never touched here.
func (r *Repository) UpdateBookDetails(ctx context.Context, book *entities.Book) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Select("title", "author", "isbn", "year", "description", "category", "publisher", "language", "pages").
		Updates(book)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return false, lending.ErrDuplicateISBN
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetCoverImage stores a reference to the book's cover.
func (r *Repository) SetCoverImage(ctx context.Context, id, ref string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Update("cover_image", ref)
	return result.RowsAffected > 0, result.Error
}

// SearchBooks returns one page of books matching the filter and the total
// number of matches.
func (r *Repository) SearchBooks(ctx context.Context, filter entities.BookFilter) ([]entities.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Book{})
	if filter.Title != "" {
		query = query.Where("title LIKE ?", "%"+filter.Title+"%")
	}
	if filter.Author != "" {
		query = query.Where("author LIKE ?", "%"+filter.Author+"%")
	}
	if filter.ISBN != "" {
		query = query.Where("isbn LIKE ?", "%"+filter.ISBN+"%")
	}
	if filter.Category != "" {
		query = query.Where("category LIKE ?", "%"+filter.Category+"%")
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var books []entities.Book
	err := query.Order(orderClause(filter.SortBy, filter.SortOrder)).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&books).Error
	return books, total, err
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id ASC", column, direction)
}

// TakeCopy decrements available_quantity when a copy is left.
func (r *Repository) TakeCopy(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND available_quantity > 0", id).
		Update("available_quantity", gorm.Expr("available_quantity - 1"))
	return result.RowsAffected > 0, result.Error
}

// ReleaseCopy increments available_quantity up to quantity.
func (r *Repository) ReleaseCopy(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND available_quantity < quantity", id).
		Update("available_quantity", gorm.Expr("available_quantity + 1"))
	return result.RowsAffected > 0, result.Error
}

// Resize sets quantity and moves available_quantity by the same amount,
// refusing to drop below the copies currently on loan.
func (r *Repository) Resize(ctx context.Context, id string, newQuantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND quantity - available_quantity <= ?", id, newQuantity).
		Updates(map[string]interface{}{
			"quantity":           newQuantity,
			"available_quantity": gorm.Expr("? - (quantity - available_quantity)", newQuantity),
		})
	return result.RowsAffected > 0, result.Error
}

// SetAvailable overwrites available_quantity when it differs from the value.
func (r *Repository) SetAvailable(ctx context.Context, id string, available int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND available_quantity <> ?", id, available).
		Update("available_quantity", available)
	return result.RowsAffected > 0, result.Error
}

// DeleteIfIdle deletes the book unless an active borrow record references it.
func (r *Repository) DeleteIfIdle(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("NOT EXISTS (SELECT 1 FROM borrow_records WHERE borrow_records.book_id = books.id AND borrow_records.status = ?)",
			entities.BorrowStatusBorrowed).
		Delete(&entities.Book{})
	return result.RowsAffected > 0, result.Error
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
