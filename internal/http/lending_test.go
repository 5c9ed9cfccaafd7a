package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

func farFuture() time.Time {
	return time.Now().Add(14 * 24 * time.Hour).UTC()
}

func TestLendingController_BorrowAndReturn(t *testing.T) {
	srv := newTestServer(t, config.AuthModeNone, nil)
	book := srv.createBook(t, 1)

	borrow := BorrowBookRequest{
		BorrowerName:       "Alice",
		BorrowerEmail:      "alice@example.com",
		ExpectedReturnDate: farFuture(),
	}

	w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", borrow, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	record := decode[entities.BorrowRecord](t, w)
	assert.Equal(t, book.ID, record.BookID)
	assert.Equal(t, entities.BorrowStatusBorrowed, record.Status)

	t.Run("last copy already out", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", borrow, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/books/missing/borrow", borrow, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		bad := borrow
		bad.BorrowerEmail = "not-an-email"
		w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", ReturnBookRequest{Condition: entities.BookConditionGood, Notes: "fine"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	returned := decode[entities.BorrowRecord](t, w)
	assert.Equal(t, record.ID, returned.ID)
	assert.Equal(t, entities.BorrowStatusReturned, returned.Status)
	assert.NotNil(t, returned.ActualReturnDate)

	got, err := srv.catalog.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableQuantity)

	t.Run("nothing left to return", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown condition", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", map[string]string{"condition": "soggy"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLendingController_ReturnSpecificRecord(t *testing.T) {
	srv := newTestServer(t, config.AuthModeNone, nil)
	book := srv.createBook(t, 2)

	first, err := srv.engine.Borrow(context.Background(), book.ID, lending.BorrowRequest{BorrowerName: "a", ExpectedReturnDate: farFuture()})
	require.NoError(t, err)
	_, err = srv.engine.Borrow(context.Background(), book.ID, lending.BorrowRequest{BorrowerName: "b", ExpectedReturnDate: farFuture()})
	require.NoError(t, err)

	w := srv.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", ReturnBookRequest{RecordID: first.ID}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, first.ID, decode[entities.BorrowRecord](t, w).ID)
}

func TestLendingController_Listings(t *testing.T) {
	srv := newTestServer(t, config.AuthModeNone, nil)
	book := srv.createBook(t, 3)
	ctx := context.Background()

	past := time.Now().Add(-30 * 24 * time.Hour)
	_, err := srv.engine.Borrow(ctx, book.ID, lending.BorrowRequest{
		BorrowerName:       "late",
		BorrowDate:         past,
		ExpectedReturnDate: past.Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = srv.engine.Borrow(ctx, book.ID, lending.BorrowRequest{BorrowerName: "on time", ExpectedReturnDate: farFuture()})
	require.NoError(t, err)
	done, err := srv.engine.Borrow(ctx, book.ID, lending.BorrowRequest{BorrowerName: "done", ExpectedReturnDate: farFuture()})
	require.NoError(t, err)
	_, err = srv.engine.Return(ctx, book.ID, lending.ReturnRequest{RecordID: done.ID})
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/api/borrows/active", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[[]BorrowRecordResponse](t, w)
	assert.Len(t, active, 2)

	w = srv.do(t, http.MethodGet, "/api/borrows/overdue", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	overdue := decode[[]BorrowRecordResponse](t, w)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].BorrowerName)
	assert.True(t, overdue[0].IsOverdue)
	assert.Equal(t, entities.BorrowStatusOverdue, overdue[0].Status)

	w = srv.do(t, http.MethodGet, "/api/borrows/returned", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	returned := decode[[]BorrowRecordResponse](t, w)
	require.Len(t, returned, 1)
	assert.False(t, returned[0].IsOverdue)

	w = srv.do(t, http.MethodGet, "/api/books/"+book.ID+"/borrow-history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]BorrowRecordResponse](t, w), 3)

	w = srv.do(t, http.MethodGet, "/api/books/missing/borrow-history", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
