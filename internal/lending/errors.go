package lending

import "errors"

// Error kinds. Every error returned by this package for a business reason
// wraps exactly one of these, so callers can branch with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrRejected = errors.New("rejected")
	ErrConflict = errors.New("conflict")
)

// Error is a business error of a given kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrBookNotFound     = newError(ErrNotFound, "book not found")
	ErrNoActiveBorrow   = newError(ErrNotFound, "no active borrow record found for this book")
	ErrNotAvailable     = newError(ErrRejected, "book is not available for borrowing")
	ErrBelowBorrowed    = newError(ErrRejected, "cannot reduce quantity below borrowed amount")
	ErrQuantityTooLow   = newError(ErrRejected, "quantity must be at least 1")
	ErrActiveBorrows    = newError(ErrRejected, "cannot delete book with active borrows")
	ErrBorrowerRequired = newError(ErrRejected, "borrower name is required")
	ErrReturnBeforeLoan = newError(ErrRejected, "expected return date must not be before borrow date")
	ErrInvalidCondition = newError(ErrRejected, "condition must be one of excellent, good, fair, poor")
	ErrDuplicateISBN    = newError(ErrConflict, "book with this ISBN already exists")
)

// IsNotFound reports whether err is of the NotFound kind.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRejected reports whether err is a business-rule rejection.
func IsRejected(err error) bool { return errors.Is(err, ErrRejected) }

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
