package lending

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/library/internal/entities"
)

// Expected returns the available copy count implied by the number of owned
// copies and the number of active borrows. More active borrows than copies
// means the records themselves are corrupt; the result is clamped at zero.
func Expected(quantity int, active int64) int {
	expected := int64(quantity) - active
	if expected < 0 {
		log.Printf("[RECONCILE] %d active borrows exceed quantity %d, clamping availability to 0", active, quantity)
		return 0
	}
	return int(expected)
}

// Correction describes one book whose counter was rewritten.
type Correction struct {
	BookID        string `json:"bookId"`
	Title         string `json:"title"`
	Previous      int    `json:"previous"`
	Corrected     int    `json:"corrected"`
	ActiveBorrows int64  `json:"activeBorrows"`
}

// ReconcileResult summarizes a full sweep.
type ReconcileResult struct {
	Checked     int          `json:"checked"`
	Corrected   int          `json:"corrected"`
	Failed      int          `json:"failed"`
	Corrections []Correction `json:"corrections"`
}

// Reconciler recomputes availableQuantity from the borrow records.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// ReconcileAll repairs every book in its own unit of work. A failure on one
// book does not stop the sweep; all failures are returned joined together
// alongside the partial summary.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*ReconcileResult, error) {
	ids, err := r.store.Books().ListBookIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := &ReconcileResult{Corrections: []Correction{}}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var correction *Correction
		err := r.store.Atomic(ctx, func(tx Tx) error {
			_, c, err := reconcileBook(ctx, tx, id)
			correction = c
			return err
		})
		if errors.Is(err, ErrBookNotFound) {
			// Removed between listing and reconciling.
			continue
		}
		result.Checked++
		if err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("book %s: %w", id, err))
			continue
		}
		if correction != nil {
			result.Corrected++
			result.Corrections = append(result.Corrections, *correction)
		}
	}

	if result.Corrected > 0 {
		log.Printf("[RECONCILE] Corrected %d of %d books", result.Corrected, result.Checked)
	}
	return result, errors.Join(errs...)
}

// ReconcileOne repairs a single book and returns it.
func (r *Reconciler) ReconcileOne(ctx context.Context, bookID string) (*entities.Book, error) {
	book, _, err := r.ReconcileBook(ctx, bookID)
	return book, err
}

// ReconcileBook is ReconcileOne that also reports the correction it made,
// or nil when the counter was already right.
func (r *Reconciler) ReconcileBook(ctx context.Context, bookID string) (*entities.Book, *Correction, error) {
	var (
		book       *entities.Book
		correction *Correction
	)
	err := r.store.Atomic(ctx, func(tx Tx) error {
		var err error
		book, correction, err = reconcileBook(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return book, correction, nil
}

// reconcileBook recomputes one book inside tx. It returns the book as it is
// after the write, and a correction when the stored value changed.
func reconcileBook(ctx context.Context, tx Tx, bookID string) (*entities.Book, *Correction, error) {
	book, found, err := tx.Books().FindBook(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("load book: %w", err)
	}
	if !found {
		return nil, nil, ErrBookNotFound
	}

	active, err := tx.Borrows().CountActiveForBook(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("count active borrows: %w", err)
	}

	expected := Expected(book.Quantity, active)
	changed, err := tx.Books().SetAvailable(ctx, bookID, expected)
	if err != nil {
		return nil, nil, fmt.Errorf("set available quantity: %w", err)
	}
	if !changed {
		return book, nil, nil
	}

	log.Printf("[RECONCILE] Book %s (%q): available %d -> %d (quantity %d, active borrows %d)",
		book.ID, book.Title, book.AvailableQuantity, expected, book.Quantity, active)

	correction := &Correction{
		BookID:        book.ID,
		Title:         book.Title,
		Previous:      book.AvailableQuantity,
		Corrected:     expected,
		ActiveBorrows: active,
	}
	book.AvailableQuantity = expected
	return book, correction, nil
}
