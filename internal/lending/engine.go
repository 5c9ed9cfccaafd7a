// Package lending implements the borrow/return lifecycle and keeps each
// book's available copy counter consistent with its active borrow records.
//
// For every book the following holds after each operation commits:
//
//	availableQuantity == quantity - count(borrow records with status "borrowed")
//
// All counter writes go through compare-and-update operations on the
// BookStore inside a single unit of work, so two concurrent borrows of the
// last copy cannot both succeed.
package lending

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/library/internal/entities"
)

// BorrowRequest carries the borrower-supplied fields of a new loan.
type BorrowRequest struct {
	BorrowerName       string
	BorrowerEmail      string
	BorrowDate         time.Time
	ExpectedReturnDate time.Time
}

// ReturnRequest carries the fields recorded when a copy comes back.
// RecordID is optional; when empty the most recently borrowed active record
// of the book is closed.
type ReturnRequest struct {
	RecordID   string
	ReturnDate time.Time
	Condition  entities.BookCondition
	Notes      string
}

// Engine is the only writer of Book.AvailableQuantity in response to
// borrowing activity.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates a lending engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Borrow lends one copy of the book and returns the new borrow record.
func (e *Engine) Borrow(ctx context.Context, bookID string, req BorrowRequest) (*entities.BorrowRecord, error) {
	if strings.TrimSpace(req.BorrowerName) == "" {
		return nil, ErrBorrowerRequired
	}
	if req.BorrowDate.IsZero() {
		req.BorrowDate = e.now()
	}
	// Stored timestamps are compared as text, so keep them all in UTC.
	req.BorrowDate = req.BorrowDate.UTC()
	req.ExpectedReturnDate = req.ExpectedReturnDate.UTC()
	if req.ExpectedReturnDate.Before(req.BorrowDate) {
		return nil, ErrReturnBeforeLoan
	}

	var record *entities.BorrowRecord
	err := e.store.Atomic(ctx, func(tx Tx) error {
		taken, err := tx.Books().TakeCopy(ctx, bookID)
		if err != nil {
			return fmt.Errorf("take copy: %w", err)
		}
		if !taken {
			_, found, err := tx.Books().FindBook(ctx, bookID)
			if err != nil {
				return fmt.Errorf("load book: %w", err)
			}
			if !found {
				return ErrBookNotFound
			}
			return ErrNotAvailable
		}

		rec := &entities.BorrowRecord{
			BookID:             bookID,
			BorrowerName:       strings.TrimSpace(req.BorrowerName),
			BorrowerEmail:      strings.TrimSpace(req.BorrowerEmail),
			BorrowDate:         req.BorrowDate,
			ExpectedReturnDate: req.ExpectedReturnDate,
			Status:             entities.BorrowStatusBorrowed,
		}
		if err := tx.Borrows().CreateBorrowRecord(ctx, rec); err != nil {
			return fmt.Errorf("create borrow record: %w", err)
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Return closes an active borrow record of the book and puts the copy back
// into circulation.
func (e *Engine) Return(ctx context.Context, bookID string, req ReturnRequest) (*entities.BorrowRecord, error) {
	if !req.Condition.Valid() {
		return nil, ErrInvalidCondition
	}
	if req.ReturnDate.IsZero() {
		req.ReturnDate = e.now()
	}
	req.ReturnDate = req.ReturnDate.UTC()

	var record *entities.BorrowRecord
	err := e.store.Atomic(ctx, func(tx Tx) error {
		_, found, err := tx.Books().FindBook(ctx, bookID)
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		if !found {
			return ErrBookNotFound
		}

		rec, err := selectActiveRecord(ctx, tx, bookID, req.RecordID)
		if err != nil {
			return err
		}

		closed, err := tx.Borrows().MarkReturned(ctx, rec.ID, req.ReturnDate, req.Condition, req.Notes)
		if err != nil {
			return fmt.Errorf("close borrow record: %w", err)
		}
		if !closed {
			return ErrNoActiveBorrow
		}

		released, err := tx.Books().ReleaseCopy(ctx, bookID)
		if err != nil {
			return fmt.Errorf("release copy: %w", err)
		}
		if !released {
			// The counter was already at quantity, so it had drifted before
			// this return. Rebuild it from the records instead.
			if _, _, err := reconcileBook(ctx, tx, bookID); err != nil {
				return err
			}
		}

		returnedAt := req.ReturnDate
		rec.ActualReturnDate = &returnedAt
		rec.Condition = req.Condition
		rec.Notes = req.Notes
		rec.Status = entities.BorrowStatusReturned
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func selectActiveRecord(ctx context.Context, tx Tx, bookID, recordID string) (*entities.BorrowRecord, error) {
	if recordID == "" {
		rec, found, err := tx.Borrows().LatestActiveForBook(ctx, bookID)
		if err != nil {
			return nil, fmt.Errorf("load active borrow record: %w", err)
		}
		if !found {
			return nil, ErrNoActiveBorrow
		}
		return rec, nil
	}

	rec, found, err := tx.Borrows().FindBorrowRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("load borrow record: %w", err)
	}
	if !found || rec.BookID != bookID || !rec.IsActive() {
		return nil, ErrNoActiveBorrow
	}
	return rec, nil
}

// ChangeQuantity sets the number of owned copies, keeping the copies on
// loan untouched.
func (e *Engine) ChangeQuantity(ctx context.Context, bookID string, newQuantity int) (*entities.Book, error) {
	if newQuantity < 1 {
		return nil, ErrQuantityTooLow
	}

	var book *entities.Book
	err := e.store.Atomic(ctx, func(tx Tx) error {
		resized, err := tx.Books().Resize(ctx, bookID, newQuantity)
		if err != nil {
			return fmt.Errorf("resize stock: %w", err)
		}

		b, found, err := tx.Books().FindBook(ctx, bookID)
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		if !found {
			return ErrBookNotFound
		}
		if !resized {
			return ErrBelowBorrowed
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook writes the descriptive fields of book and, when newQuantity is
// set, resizes it within the same unit of work. Either both changes are
// stored or neither is.
func (e *Engine) UpdateBook(ctx context.Context, book *entities.Book, newQuantity *int) (*entities.Book, error) {
	if newQuantity != nil && *newQuantity < 1 {
		return nil, ErrQuantityTooLow
	}

	var updated *entities.Book
	err := e.store.Atomic(ctx, func(tx Tx) error {
		current, found, err := tx.Books().FindBook(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		if !found {
			return ErrBookNotFound
		}

		if newQuantity != nil && *newQuantity != current.Quantity {
			resized, err := tx.Books().Resize(ctx, book.ID, *newQuantity)
			if err != nil {
				return fmt.Errorf("resize stock: %w", err)
			}
			if !resized {
				return ErrBelowBorrowed
			}
		}

		written, err := tx.Books().UpdateBookDetails(ctx, book)
		if err != nil {
			if IsConflict(err) {
				return err
			}
			return fmt.Errorf("update details: %w", err)
		}
		if !written {
			return ErrBookNotFound
		}

		b, _, err := tx.Books().FindBook(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("reload book: %w", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveBook deletes a book that has no copies on loan, together with its
// closed borrow records.
func (e *Engine) RemoveBook(ctx context.Context, bookID string) error {
	return e.store.Atomic(ctx, func(tx Tx) error {
		_, found, err := tx.Books().FindBook(ctx, bookID)
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		if !found {
			return ErrBookNotFound
		}

		if err := tx.Borrows().DeleteReturnedForBook(ctx, bookID); err != nil {
			return fmt.Errorf("delete borrow history: %w", err)
		}
		deleted, err := tx.Books().DeleteIfIdle(ctx, bookID)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if !deleted {
			return ErrActiveBorrows
		}
		return nil
	})
}

// GetBorrowHistory returns every borrow record of the book, most recent
// borrow date first.
func (e *Engine) GetBorrowHistory(ctx context.Context, bookID string) ([]entities.BorrowRecord, error) {
	_, found, err := e.store.Books().FindBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	if !found {
		return nil, ErrBookNotFound
	}
	return e.store.Borrows().ListForBook(ctx, bookID)
}

// ListActiveBorrows returns records not yet returned, joined with their book.
func (e *Engine) ListActiveBorrows(ctx context.Context) ([]entities.BorrowRecord, error) {
	return e.store.Borrows().ListActive(ctx)
}

// ListReturned returns closed records joined with their book, most recent
// return first.
func (e *Engine) ListReturned(ctx context.Context) ([]entities.BorrowRecord, error) {
	return e.store.Borrows().ListReturned(ctx)
}

// ListOverdue returns active records whose expected return date has passed.
func (e *Engine) ListOverdue(ctx context.Context) ([]entities.BorrowRecord, error) {
	return e.store.Borrows().ListOverdue(ctx, e.now().UTC())
}
