package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

// sampleLoan borrows a copy of sampleBooks[book].
type sampleLoan struct {
	book       int
	borrower   string
	email      string
	borrowDate time.Time
	dueDate    time.Time
	returned   bool
	condition  entities.BookCondition
}

var sampleBooks = []catalog.BookInput{
	{
		Title: "สามก๊ก", Author: "ลัวกวนจง", ISBN: "978-974-286-123-4", Year: 1925, Quantity: 5,
		Description: "นวนิยายประวัติศาสตร์จีนที่เล่าเรื่องราวในยุคสามก๊ก",
		Category:    "นวนิยายประวัติศาสตร์", Publisher: "สำนักพิมพ์แสงแดด", Language: "Thai", Pages: 1200,
	},
	{
		Title: "เพชรพระอุมา", Author: "ครูเหลียม", ISBN: "978-974-286-124-1", Year: 1937, Quantity: 3,
		Category: "นวนิยายรัก", Publisher: "โรงพิมพ์ไทย", Language: "Thai", Pages: 456,
	},
	{
		Title: "คู่กรรม", Author: "ทมยันตี", ISBN: "978-974-286-125-8", Year: 1973, Quantity: 4,
		Category: "นวนิยายรัก", Publisher: "สำนักพิมพ์บรรณกิจ", Language: "Thai", Pages: 380,
	},
	{
		Title: "ผู้ชนะสิบทิศ", Author: "ยาขอบ", ISBN: "978-974-286-126-5", Year: 1986, Quantity: 2,
		Category: "นวนิยายผจญภัย", Publisher: "สำนักพิมพ์ดอกหญ้า", Language: "Thai", Pages: 520,
	},
	{
		Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "978-0-441-47812-5", Year: 1969, Quantity: 2,
		Category: "Science Fiction", Publisher: "Ace Books", Language: "English", Pages: 304,
	},
}

func sampleLoans(now time.Time) []sampleLoan {
	day := 24 * time.Hour
	return []sampleLoan{
		{book: 0, borrower: "สมชาย ใจดี", email: "somchai@example.com", borrowDate: now.Add(-40 * day), dueDate: now.Add(-10 * day)},
		{book: 0, borrower: "สมหญิง รักการอ่าน", email: "somying@example.com", borrowDate: now.Add(-5 * day), dueDate: now.Add(25 * day)},
		{book: 1, borrower: "วิชัย สุขใจ", borrowDate: now.Add(-20 * day), dueDate: now.Add(10 * day)},
		{book: 3, borrower: "มาลี ดีใจ", borrowDate: now.Add(-30 * day), dueDate: now.Add(-16 * day), returned: true, condition: entities.BookConditionGood},
		{book: 4, borrower: "Alice", email: "alice@example.com", borrowDate: now.Add(-3 * day), dueDate: now.Add(11 * day)},
	}
}

type seedSummary struct {
	BooksCreated int
	BooksSkipped int
	Loans        int
	Returns      int
}

// BookCreator is the part of the catalog the seeder needs.
type BookCreator interface {
	CreateBook(ctx context.Context, input catalog.BookInput) (*entities.Book, error)
}

// Lender is the part of the lending engine the seeder needs.
type Lender interface {
	Borrow(ctx context.Context, bookID string, req lending.BorrowRequest) (*entities.BorrowRecord, error)
	Return(ctx context.Context, bookID string, req lending.ReturnRequest) (*entities.BorrowRecord, error)
}

// seedLibrary adds the sample catalog and loans. Books whose ISBN already
// exists are left alone, and their loans are not repeated.
func seedLibrary(ctx context.Context, books BookCreator, lender Lender, now time.Time) (seedSummary, error) {
	var summary seedSummary
	created := make(map[int]string)

	for i, input := range sampleBooks {
		book, err := books.CreateBook(ctx, input)
		if lending.IsConflict(err) {
			summary.BooksSkipped++
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("create %q: %w", input.Title, err)
		}
		created[i] = book.ID
		summary.BooksCreated++
	}

	for _, loan := range sampleLoans(now) {
		bookID, found := created[loan.book]
		if !found {
			continue
		}
		record, err := lender.Borrow(ctx, bookID, lending.BorrowRequest{
			BorrowerName:       loan.borrower,
			BorrowerEmail:      loan.email,
			BorrowDate:         loan.borrowDate,
			ExpectedReturnDate: loan.dueDate,
		})
		if err != nil {
			return summary, fmt.Errorf("borrow %q: %w", sampleBooks[loan.book].Title, err)
		}
		summary.Loans++

		if !loan.returned {
			continue
		}
		if _, err := lender.Return(ctx, bookID, lending.ReturnRequest{
			RecordID:   record.ID,
			ReturnDate: loan.dueDate.Add(-24 * time.Hour),
			Condition:  loan.condition,
		}); err != nil {
			return summary, fmt.Errorf("return %q: %w", sampleBooks[loan.book].Title, err)
		}
		summary.Returns++
	}

	return summary, nil
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a sample catalog with a few loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			summary, err := seedLibrary(context.Background(), svc.Catalog, svc.Engine, time.Now())
			if err != nil {
				return err
			}
			ok("Created %d books, %d loans (%d returned)", summary.BooksCreated, summary.Loans, summary.Returns)
			if summary.BooksSkipped > 0 {
				warn("Skipped %d books that already exist", summary.BooksSkipped)
			}
			return nil
		},
	}
}
