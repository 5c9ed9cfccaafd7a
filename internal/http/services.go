package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/settingsstore"
)

// Each controller depends on the narrow interface below rather than on the
// concrete services, so handlers can be tested with fakes.

// CatalogService manages book details.
type CatalogService interface {
	CreateBook(ctx context.Context, input catalog.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, id string, patch catalog.BookPatch) (*entities.Book, error)
	GetBook(ctx context.Context, id string) (*entities.Book, error)
	SearchBooks(ctx context.Context, filter entities.BookFilter) (*catalog.Page, error)
	SetCoverImage(ctx context.Context, id, ref string) (*entities.Book, error)
}

// LendingService runs the borrow/return lifecycle.
type LendingService interface {
	Borrow(ctx context.Context, bookID string, req lending.BorrowRequest) (*entities.BorrowRecord, error)
	Return(ctx context.Context, bookID string, req lending.ReturnRequest) (*entities.BorrowRecord, error)
	ChangeQuantity(ctx context.Context, bookID string, newQuantity int) (*entities.Book, error)
	RemoveBook(ctx context.Context, bookID string) error
	GetBorrowHistory(ctx context.Context, bookID string) ([]entities.BorrowRecord, error)
	ListActiveBorrows(ctx context.Context) ([]entities.BorrowRecord, error)
	ListReturned(ctx context.Context) ([]entities.BorrowRecord, error)
	ListOverdue(ctx context.Context) ([]entities.BorrowRecord, error)
}

// InventoryReconciler repairs availability counters.
type InventoryReconciler interface {
	ReconcileAll(ctx context.Context) (*lending.ReconcileResult, error)
	ReconcileBook(ctx context.Context, bookID string) (*entities.Book, *lending.Correction, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ReconcileSettingsStore reads and writes the reconciliation schedule.
type ReconcileSettingsStore interface {
	GetReconcileConfigInfo() settingsstore.ReconcileConfigInfo
	GetReconcileStatus() settingsstore.ReconcileStatus
	SetReconcileEnabled(enabled bool) error
	SetReconcileSchedule(schedule string) error
}

// Rescheduler applies a changed reconciliation schedule.
type Rescheduler interface {
	Reschedule(ctx context.Context) error
}
