package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

// InventoryReconciler recomputes availability counters from borrow records.
type InventoryReconciler interface {
	ReconcileAll(ctx context.Context) (*lending.ReconcileResult, error)
	ReconcileBook(ctx context.Context, bookID string) (*entities.Book, *lending.Correction, error)
}

// ReconcileRecorder records the outcome of a reconciliation run.
type ReconcileRecorder interface {
	LogReconcile(userID uint, bookID string, checked, corrected int, err error)
}

// ReconcileInventoryTask reconciles one book, or the whole catalog when
// BookID is empty.
type ReconcileInventoryTask struct {
	BookID      string `json:"book_id,omitempty"`
	RequestedBy uint   `json:"requested_by"`
}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileInventoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_inventory",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileInventoryProcessor creates a processor for ReconcileInventoryTask.
// recorder may be nil. A book that no longer exists is not retried.
func ReconcileInventoryProcessor(reconciler InventoryReconciler, recorder ReconcileRecorder) backlite.QueueProcessor[ReconcileInventoryTask] {
	return func(ctx context.Context, task ReconcileInventoryTask) error {
		if reconciler == nil {
			return fmt.Errorf("reconciler not configured")
		}

		if task.BookID != "" {
			book, correction, err := reconciler.ReconcileBook(ctx, task.BookID)
			if lending.IsNotFound(err) {
				log.Printf("[TASK] Reconcile skipped, book %s no longer exists", task.BookID)
				return nil
			}
			if recorder != nil {
				corrected := 0
				if correction != nil {
					corrected = 1
				}
				recorder.LogReconcile(task.RequestedBy, task.BookID, 1, corrected, err)
			}
			if err != nil {
				return fmt.Errorf("reconcile book %s: %w", task.BookID, err)
			}
			log.Printf("[TASK] Reconciled book %s (%s): %d of %d available",
				book.ID, book.Title, book.AvailableQuantity, book.Quantity)
			return nil
		}

		result, err := reconciler.ReconcileAll(ctx)
		if recorder != nil && result != nil {
			recorder.LogReconcile(task.RequestedBy, "", result.Checked, result.Corrected, err)
		}
		if err != nil {
			return fmt.Errorf("reconcile inventory: %w", err)
		}
		log.Printf("[TASK] Reconciled inventory: checked %d books, corrected %d", result.Checked, result.Corrected)
		return nil
	}
}

// NewReconcileInventoryQueue creates a backlite queue for reconciliation tasks.
func NewReconcileInventoryQueue(reconciler InventoryReconciler, recorder ReconcileRecorder) backlite.Queue {
	return backlite.NewQueue(ReconcileInventoryProcessor(reconciler, recorder))
}
