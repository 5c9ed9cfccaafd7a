package lending_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

func TestExpected(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		active   int64
		want     int
	}{
		{"no borrows", 3, 0, 3},
		{"some borrowed", 5, 3, 2},
		{"all borrowed", 2, 2, 0},
		{"corrupt data clamps to zero", 1, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lending.Expected(tt.quantity, tt.active))
		})
	}
}

func (e *testEnv) setAvailable(t *testing.T, id string, available int) {
	t.Helper()
	require.NoError(t, e.db.DB.Model(&entities.Book{}).Where("id = ?", id).
		Update("available_quantity", available).Error)
}

func TestReconciler_ReconcileAll(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	consistent := env.createBook(t, 2, 2)
	drifted := env.createBook(t, 4, 4)
	_, err := env.engine.Borrow(ctx, drifted.ID, borrowReq("alice", time.Now()))
	require.NoError(t, err)
	env.setAvailable(t, drifted.ID, 1)

	result, err := env.reconciler.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Corrected)
	assert.Zero(t, result.Failed)
	require.Len(t, result.Corrections, 1)

	c := result.Corrections[0]
	assert.Equal(t, drifted.ID, c.BookID)
	assert.Equal(t, 1, c.Previous)
	assert.Equal(t, 3, c.Corrected)
	assert.Equal(t, int64(1), c.ActiveBorrows)

	env.assertInvariant(t, consistent.ID)
	env.assertInvariant(t, drifted.ID)
}

func TestReconciler_ReconcileAllIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	book := env.createBook(t, 3, 3)
	env.setAvailable(t, book.ID, 0)

	first, err := env.reconciler.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Corrected)
	updatedAt := env.reload(t, book.ID).UpdatedAt

	second, err := env.reconciler.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Checked)
	assert.Zero(t, second.Corrected)
	assert.Empty(t, second.Corrections)
	assert.True(t, updatedAt.Equal(env.reload(t, book.ID).UpdatedAt), "second sweep rewrote the book")
}

func TestReconciler_ReconcileAllEmptyCatalog(t *testing.T) {
	env := setupTestEnv(t)

	result, err := env.reconciler.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Checked)
	assert.NotNil(t, result.Corrections)
}

func TestReconciler_ReconcileOne(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs the book", func(t *testing.T) {
		env := setupTestEnv(t)
		book := env.createBook(t, 3, 3)
		_, err := env.engine.Borrow(ctx, book.ID, borrowReq("alice", time.Now()))
		require.NoError(t, err)
		env.setAvailable(t, book.ID, 3)

		repaired, err := env.reconciler.ReconcileOne(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, repaired.AvailableQuantity)
		env.assertInvariant(t, book.ID)
	})

	t.Run("consistent book is returned unchanged", func(t *testing.T) {
		env := setupTestEnv(t)
		book := env.createBook(t, 3, 3)

		got, err := env.reconciler.ReconcileOne(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.AvailableQuantity)
	})

	t.Run("clamps when active borrows exceed quantity", func(t *testing.T) {
		env := setupTestEnv(t)
		book := env.createBook(t, 2, 2)
		for _, name := range []string{"alice", "bob"} {
			_, err := env.engine.Borrow(ctx, book.ID, borrowReq(name, time.Now()))
			require.NoError(t, err)
		}
		require.NoError(t, env.db.DB.Model(&entities.Book{}).Where("id = ?", book.ID).
			Updates(map[string]interface{}{"quantity": 1, "available_quantity": 1}).Error)

		got, err := env.reconciler.ReconcileOne(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableQuantity)
	})

	t.Run("unknown book is not found", func(t *testing.T) {
		env := setupTestEnv(t)
		_, err := env.reconciler.ReconcileOne(ctx, "missing")
		assert.ErrorIs(t, err, lending.ErrBookNotFound)
	})
}

func TestReconciler_ReconcileBookReportsCorrection(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	book := env.createBook(t, 4, 1)

	_, correction, err := env.reconciler.ReconcileBook(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, correction)
	assert.Equal(t, 1, correction.Previous)
	assert.Equal(t, 4, correction.Corrected)
	assert.Zero(t, correction.ActiveBorrows)

	_, correction, err = env.reconciler.ReconcileBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, correction)
}
