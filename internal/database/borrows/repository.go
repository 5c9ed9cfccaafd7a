// Package borrows provides database operations for borrow records.
//
// # Usage
//
//	repo := borrows.NewRepository(db)
//	records, err := repo.ListActive(ctx)
package borrows

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
)

// Repository handles all borrow record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrows repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBorrowRecord inserts a new record.
func (r *Repository) CreateBorrowRecord(ctx context.Context, record *entities.BorrowRecord) error {
	return r.db.WithContext(ctx).Omit("Book").Create(record).Error
}

// FindBorrowRecord retrieves a record by ID.
func (r *Repository) FindBorrowRecord(ctx context.Context, id string) (*entities.BorrowRecord, bool, error) {
	var record entities.BorrowRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// LatestActiveForBook returns the active record with the most recent borrow date.
func (r *Repository) LatestActiveForBook(ctx context.Context, bookID string) (*entities.BorrowRecord, bool, error) {
	var record entities.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, entities.BorrowStatusBorrowed).
		Order("borrow_date DESC, created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// MarkReturned closes the record if it is still borrowed.
func (r *Repository) MarkReturned(ctx context.Context, id string, returnedAt time.Time, condition entities.BookCondition, notes string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.BorrowRecord{}).
		Where("id = ? AND status = ?", id, entities.BorrowStatusBorrowed).
		Updates(map[string]interface{}{
			"status":             entities.BorrowStatusReturned,
			"actual_return_date": returnedAt,
			"condition":          condition,
			"notes":              notes,
		})
	return result.RowsAffected > 0, result.Error
}

// CountActiveForBook counts the book's records that are still borrowed.
func (r *Repository) CountActiveForBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BorrowRecord{}).
		Where("book_id = ? AND status = ?", bookID, entities.BorrowStatusBorrowed).
		Count(&count).Error
	return count, err
}

// ListForBook returns the book's records, most recent borrow date first.
func (r *Repository) ListForBook(ctx context.Context, bookID string) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("borrow_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// ListActive returns all borrowed records with their book.
func (r *Repository) ListActive(ctx context.Context) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.WithContext(ctx).Preload("Book").
		Where("status = ?", entities.BorrowStatusBorrowed).
		Order("borrow_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// ListReturned returns all returned records with their book, most recent
// return first.
func (r *Repository) ListReturned(ctx context.Context) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.WithContext(ctx).Preload("Book").
		Where("status = ?", entities.BorrowStatusReturned).
		Order("actual_return_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// ListOverdue returns borrowed records whose expected return date is before now.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.WithContext(ctx).Preload("Book").
		Where("status = ? AND expected_return_date < ?", entities.BorrowStatusBorrowed, now).
		Order("expected_return_date ASC").
		Find(&records).Error
	return records, err
}

// DeleteReturnedForBook removes the closed records of a book.
func (r *Repository) DeleteReturnedForBook(ctx context.Context, bookID string) error {
	return r.db.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, entities.BorrowStatusReturned).
		Delete(&entities.BorrowRecord{}).Error
}
