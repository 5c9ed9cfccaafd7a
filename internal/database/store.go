package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/borrows"
	"github.com/mrlokans/library/internal/lending"
)

// LendingStore binds the books and borrows repositories to a single gorm
// handle. Inside Atomic both repositories share one transaction.
type LendingStore struct {
	db      *gorm.DB
	books   *books.Repository
	borrows *borrows.Repository
}

func NewLendingStore(db *gorm.DB) *LendingStore {
	return &LendingStore{
		db:      db,
		books:   books.NewRepository(db),
		borrows: borrows.NewRepository(db),
	}
}

func (s *LendingStore) Books() lending.BookStore {
	return s.books
}

func (s *LendingStore) Borrows() lending.BorrowStore {
	return s.borrows
}

func (s *LendingStore) Atomic(ctx context.Context, fn func(tx lending.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLendingStore(tx))
	})
}
