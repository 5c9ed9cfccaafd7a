package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

type LendingController struct {
	lending      LendingService
	auditService *audit.Service
	now          func() time.Time
}

func NewLendingController(lending LendingService, auditService *audit.Service) *LendingController {
	return &LendingController{
		lending:      lending,
		auditService: auditService,
		now:          time.Now,
	}
}

type BorrowBookRequest struct {
	BorrowerName       string     `json:"borrowerName" binding:"required,max=200"`
	BorrowerEmail      string     `json:"borrowerEmail" binding:"omitempty,email,max=200"`
	BorrowDate         *time.Time `json:"borrowDate"`
	ExpectedReturnDate time.Time  `json:"expectedReturnDate" binding:"required"`
}

type ReturnBookRequest struct {
	RecordID   string                 `json:"recordId"`
	ReturnDate *time.Time             `json:"returnDate"`
	Condition  entities.BookCondition `json:"condition" binding:"omitempty,oneof=excellent good fair poor"`
	Notes      string                 `json:"notes"`
}

// BorrowRecordResponse is a borrow record with its overdue state resolved.
type BorrowRecordResponse struct {
	entities.BorrowRecord
	Status    entities.BorrowStatus `json:"status"`
	IsOverdue bool                  `json:"isOverdue"`
}

func (lc *LendingController) present(records []entities.BorrowRecord) []BorrowRecordResponse {
	now := lc.now()
	out := make([]BorrowRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, BorrowRecordResponse{
			BorrowRecord: r,
			Status:       r.EffectiveStatus(now),
			IsOverdue:    r.IsOverdue(now),
		})
	}
	return out
}

// Borrow handles POST /api/books/:id/borrow
func (lc *LendingController) Borrow(c *gin.Context) {
	var req BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	borrow := lending.BorrowRequest{
		BorrowerName:       req.BorrowerName,
		BorrowerEmail:      req.BorrowerEmail,
		ExpectedReturnDate: req.ExpectedReturnDate,
	}
	if req.BorrowDate != nil {
		borrow.BorrowDate = *req.BorrowDate
	}

	bookID := c.Param("id")
	record, err := lc.lending.Borrow(c.Request.Context(), bookID, borrow)
	lc.auditService.LogBorrow(auth.GetUserID(c), bookID, req.BorrowerName, record, err)
	if err != nil {
		respondServiceError(c, err, "borrow book")
		return
	}
	respondCreated(c, record)
}

// Return handles POST /api/books/:id/return
// Without recordId the most recent active loan of the book is closed.
func (lc *LendingController) Return(c *gin.Context) {
	var req ReturnBookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}
	}

	ret := lending.ReturnRequest{
		RecordID:  req.RecordID,
		Condition: req.Condition,
		Notes:     req.Notes,
	}
	if req.ReturnDate != nil {
		ret.ReturnDate = *req.ReturnDate
	}

	bookID := c.Param("id")
	record, err := lc.lending.Return(c.Request.Context(), bookID, ret)
	lc.auditService.LogReturn(auth.GetUserID(c), bookID, record, err)
	if err != nil {
		respondServiceError(c, err, "return book")
		return
	}
	c.JSON(http.StatusOK, record)
}

// BorrowHistory handles GET /api/books/:id/borrow-history
func (lc *LendingController) BorrowHistory(c *gin.Context) {
	records, err := lc.lending.GetBorrowHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "borrow history")
		return
	}
	c.JSON(http.StatusOK, lc.present(records))
}

// ActiveBorrows handles GET /api/borrows/active
func (lc *LendingController) ActiveBorrows(c *gin.Context) {
	lc.list(c, lc.lending.ListActiveBorrows, "active borrows")
}

// ReturnedBorrows handles GET /api/borrows/returned
func (lc *LendingController) ReturnedBorrows(c *gin.Context) {
	lc.list(c, lc.lending.ListReturned, "returned borrows")
}

// OverdueBorrows handles GET /api/borrows/overdue
func (lc *LendingController) OverdueBorrows(c *gin.Context) {
	lc.list(c, lc.lending.ListOverdue, "overdue borrows")
}

func (lc *LendingController) list(c *gin.Context, fetch func(ctx context.Context) ([]entities.BorrowRecord, error), what string) {
	records, err := fetch(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, what)
		return
	}
	c.JSON(http.StatusOK, lc.present(records))
}
