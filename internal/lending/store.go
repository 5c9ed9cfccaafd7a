package lending

import (
	"context"
	"time"

	"github.com/mrlokans/library/internal/entities"
)

// BookStore is the catalog side of a unit of work. The counter mutations are
// compare-and-update operations: each reports false instead of writing when
// its precondition does not hold at write time.
type BookStore interface {
	FindBook(ctx context.Context, id string) (*entities.Book, bool, error)
	ListBookIDs(ctx context.Context) ([]string, error)
	// UpdateBookDetails writes the descriptive fields, leaving the counters
	// alone.
	UpdateBookDetails(ctx context.Context, book *entities.Book) (bool, error)

	// TakeCopy decrements available_quantity when it is above zero.
	TakeCopy(ctx context.Context, id string) (bool, error)
	// ReleaseCopy increments available_quantity when it is below quantity.
	ReleaseCopy(ctx context.Context, id string) (bool, error)
	// Resize sets quantity to newQuantity and shifts available_quantity by
	// the same delta, when newQuantity covers the copies on loan.
	Resize(ctx context.Context, id string, newQuantity int) (bool, error)
	// SetAvailable writes available_quantity only when it differs.
	SetAvailable(ctx context.Context, id string, available int) (bool, error)
	// DeleteIfIdle deletes the book when no active borrow references it.
	DeleteIfIdle(ctx context.Context, id string) (bool, error)
}

// BorrowStore is the borrow-record side of a unit of work.
type BorrowStore interface {
	CreateBorrowRecord(ctx context.Context, record *entities.BorrowRecord) error
	FindBorrowRecord(ctx context.Context, id string) (*entities.BorrowRecord, bool, error)
	LatestActiveForBook(ctx context.Context, bookID string) (*entities.BorrowRecord, bool, error)
	// MarkReturned closes the record when it is still active.
	MarkReturned(ctx context.Context, id string, returnedAt time.Time, condition entities.BookCondition, notes string) (bool, error)
	CountActiveForBook(ctx context.Context, bookID string) (int64, error)
	ListForBook(ctx context.Context, bookID string) ([]entities.BorrowRecord, error)
	ListActive(ctx context.Context) ([]entities.BorrowRecord, error)
	ListReturned(ctx context.Context) ([]entities.BorrowRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]entities.BorrowRecord, error)
	DeleteReturnedForBook(ctx context.Context, bookID string) error
}

// Tx exposes both stores bound to the same unit of work.
type Tx interface {
	Books() BookStore
	Borrows() BorrowStore
}

// Store opens units of work. Its own Books/Borrows run outside any
// transaction and are only used for reads.
type Store interface {
	Tx
	// Atomic runs fn in a single unit of work. The writes made through tx
	// are committed when fn returns nil and rolled back otherwise.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
