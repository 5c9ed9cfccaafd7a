// Package catalog manages the descriptive side of books: creating, editing,
// searching and attaching cover references. ISBNs are stored in their
// compact form. Edits are written through the lending engine so the
// availability counter stays consistent with the borrow records.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

const (
	MinYear        = 1000
	maxTitleLen    = 500
	maxAuthorLen   = 200
	maxCategoryLen = 100
	maxLanguageLen = 50
)

// Repository is the catalog's view of the book store.
type Repository interface {
	FindBook(ctx context.Context, id string) (*entities.Book, bool, error)
	FindBookByISBN(ctx context.Context, isbn string) (*entities.Book, bool, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBookDetails(ctx context.Context, book *entities.Book) (bool, error)
	SetCoverImage(ctx context.Context, id, ref string) (bool, error)
	SearchBooks(ctx context.Context, filter entities.BookFilter) ([]entities.Book, int64, error)
}

// BookUpdater stores edits to a book, resizing it when newQuantity is set,
// in one unit of work.
type BookUpdater interface {
	UpdateBook(ctx context.Context, book *entities.Book, newQuantity *int) (*entities.Book, error)
}

// BookInput describes a new book.
type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	Year        int
	Quantity    int
	Description string
	Category    string
	Publisher   string
	Language    string
	Pages       int
	CoverImage  string
}

// BookPatch lists the fields to change on an existing book. Nil fields are
// left untouched.
type BookPatch struct {
	Title       *string
	Author      *string
	ISBN        *string
	Year        *int
	Quantity    *int
	Description *string
	Category    *string
	Publisher   *string
	Language    *string
	Pages       *int
}

// Page is one page of search results.
type Page struct {
	Books      []entities.Book `json:"books"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type Service struct {
	books   Repository
	updater BookUpdater
	now     func() time.Time
}

func NewService(books Repository, updater BookUpdater) *Service {
	return &Service{
		books:   books,
		updater: updater,
		now:     time.Now,
	}
}

// CreateBook validates the input and stores a new book with every copy
// available.
func (s *Service) CreateBook(ctx context.Context, input BookInput) (*entities.Book, error) {
	book := &entities.Book{
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		ISBN:        strings.TrimSpace(input.ISBN),
		Year:        input.Year,
		Quantity:    input.Quantity,
		Description: input.Description,
		Category:    input.Category,
		Publisher:   input.Publisher,
		Language:    input.Language,
		Pages:       input.Pages,
		CoverImage:  input.CoverImage,
	}
	if err := s.validate(book); err != nil {
		return nil, err
	}
	if book.Quantity < 1 {
		return nil, lending.ErrQuantityTooLow
	}
	book.ISBN, _ = NormalizeISBN(book.ISBN)
	book.AvailableQuantity = book.Quantity

	if _, found, err := s.books.FindBookByISBN(ctx, book.ISBN); err != nil {
		return nil, fmt.Errorf("failed to check ISBN: %w", err)
	} else if found {
		return nil, lending.ErrDuplicateISBN
	}

	if err := s.books.CreateBook(ctx, book); err != nil {
		if lending.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// UpdateBook applies patch to the book. A quantity change and the
// descriptive fields are stored together by the lending engine, so a failed
// write leaves the book as it was.
func (s *Service) UpdateBook(ctx context.Context, id string, patch BookPatch) (*entities.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(book, patch)
	if err := s.validate(book); err != nil {
		return nil, err
	}
	book.ISBN, _ = NormalizeISBN(book.ISBN)

	if patch.ISBN != nil {
		other, found, err := s.books.FindBookByISBN(ctx, book.ISBN)
		if err != nil {
			return nil, fmt.Errorf("failed to check ISBN: %w", err)
		}
		if found && other.ID != book.ID {
			return nil, lending.ErrDuplicateISBN
		}
	}

	var quantity *int
	if patch.Quantity != nil && *patch.Quantity != book.Quantity {
		quantity = patch.Quantity
	}
	return s.updater.UpdateBook(ctx, book, quantity)
}

// GetBook returns the book or lending.ErrBookNotFound.
func (s *Service) GetBook(ctx context.Context, id string) (*entities.Book, error) {
	book, found, err := s.books.FindBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", id, err)
	}
	if !found {
		return nil, lending.ErrBookNotFound
	}
	return book, nil
}

// SearchBooks returns the requested page of books matching filter.
func (s *Service) SearchBooks(ctx context.Context, filter entities.BookFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.ISBN = stripISBNSeparators(filter.ISBN)

	books, total, err := s.books.SearchBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	if books == nil {
		books = []entities.Book{}
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &Page{
		Books:      books,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// SetCoverImage stores ref as the book's cover reference.
func (s *Service) SetCoverImage(ctx context.Context, id, ref string) (*entities.Book, error) {
	updated, err := s.books.SetCoverImage(ctx, id, strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to set cover image: %w", err)
	}
	if !updated {
		return nil, lending.ErrBookNotFound
	}
	return s.GetBook(ctx, id)
}

func (s *Service) validate(book *entities.Book) error {
	switch {
	case book.Title == "" || len(book.Title) > maxTitleLen:
		return rejected("title must be between 1 and %d characters", maxTitleLen)
	case book.Author == "" || len(book.Author) > maxAuthorLen:
		return rejected("author must be between 1 and %d characters", maxAuthorLen)
	case !ValidISBN(book.ISBN):
		return rejected("invalid ISBN format")
	case len(book.Category) > maxCategoryLen:
		return rejected("category must be at most %d characters", maxCategoryLen)
	case len(book.Language) > maxLanguageLen:
		return rejected("language must be at most %d characters", maxLanguageLen)
	case book.Pages < 0:
		return rejected("pages must be positive")
	}

	if maxYear := s.now().Year() + 1; book.Year < MinYear || book.Year > maxYear {
		return rejected("year must be between %d and %d", MinYear, maxYear)
	}
	return nil
}

func applyPatch(book *entities.Book, patch BookPatch) {
	if patch.Title != nil {
		book.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Author != nil {
		book.Author = strings.TrimSpace(*patch.Author)
	}
	if patch.ISBN != nil {
		book.ISBN = strings.TrimSpace(*patch.ISBN)
	}
	if patch.Year != nil {
		book.Year = *patch.Year
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.Category != nil {
		book.Category = *patch.Category
	}
	if patch.Publisher != nil {
		book.Publisher = *patch.Publisher
	}
	if patch.Language != nil {
		book.Language = *patch.Language
	}
	if patch.Pages != nil {
		book.Pages = *patch.Pages
	}
}

func rejected(format string, args ...any) error {
	return &lending.Error{Kind: lending.ErrRejected, Msg: fmt.Sprintf(format, args...)}
}
