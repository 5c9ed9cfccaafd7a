package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	// BorrowStatusOverdue is never stored; see BorrowRecord.EffectiveStatus.
	BorrowStatusOverdue BorrowStatus = "overdue"
)

type BookCondition string

const (
	BookConditionExcellent BookCondition = "excellent"
	BookConditionGood      BookCondition = "good"
	BookConditionFair      BookCondition = "fair"
	BookConditionPoor      BookCondition = "poor"
)

// Valid reports whether c is one of the known conditions. The empty
// condition is valid and means "not recorded".
func (c BookCondition) Valid() bool {
	switch c {
	case "", BookConditionExcellent, BookConditionGood, BookConditionFair, BookConditionPoor:
		return true
	}
	return false
}

type Book struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Title             string    `gorm:"index:idx_books_title_author;size:500;not null" json:"title"`
	Author            string    `gorm:"index:idx_books_title_author;size:200;not null" json:"author"`
	ISBN              string    `gorm:"uniqueIndex;size:20;not null" json:"isbn"`
	Year              int       `json:"year"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	AvailableQuantity int       `gorm:"not null" json:"availableQuantity"`
	Description       string    `gorm:"type:text" json:"description,omitempty"`
	Category          string    `gorm:"index;size:100" json:"category,omitempty"`
	Publisher         string    `gorm:"size:200" json:"publisher,omitempty"`
	Language          string    `gorm:"size:50;default:'Thai'" json:"language,omitempty"`
	Pages             int       `json:"pages,omitempty"`
	CoverImage        string    `gorm:"type:text" json:"coverImage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BorrowedCount is the number of copies currently on loan according to the
// stored counter.
func (b *Book) BorrowedCount() int {
	return b.Quantity - b.AvailableQuantity
}

type BorrowRecord struct {
	ID                 string        `gorm:"primaryKey;size:36" json:"id"`
	BookID             string        `gorm:"index;size:36;not null" json:"bookId"`
	BorrowerName       string        `gorm:"size:200;not null" json:"borrowerName"`
	BorrowerEmail      string        `gorm:"size:200" json:"borrowerEmail,omitempty"`
	BorrowDate         time.Time     `gorm:"index;not null" json:"borrowDate"`
	ExpectedReturnDate time.Time     `gorm:"not null" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time    `gorm:"index" json:"actualReturnDate,omitempty"`
	Condition          BookCondition `gorm:"size:20" json:"condition,omitempty"`
	Notes              string        `gorm:"type:text" json:"notes,omitempty"`
	Status             BorrowStatus  `gorm:"index;size:20;not null" json:"status"`
	Book               *Book         `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

func (r *BorrowRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = BorrowStatusBorrowed
	}
	return nil
}

// IsActive reports whether the copy is still on loan.
func (r *BorrowRecord) IsActive() bool {
	return r.Status == BorrowStatusBorrowed
}

// IsOverdue reports whether an active loan is past its expected return date.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.IsActive() && now.After(r.ExpectedReturnDate)
}

// EffectiveStatus reports overdue for late active loans and the stored
// status otherwise.
func (r *BorrowRecord) EffectiveStatus(now time.Time) BorrowStatus {
	if r.IsOverdue(now) {
		return BorrowStatusOverdue
	}
	return r.Status
}

// BookFilter narrows a catalog search. Text fields match as substrings;
// Year matches exactly when non-zero.
type BookFilter struct {
	Title     string
	Author    string
	ISBN      string
	Category  string
	Year      int
	Page      int
	Limit     int
	SortBy    string // title, author, year or createdAt
	SortOrder string // asc or desc
}
