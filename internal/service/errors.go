package service

import (
	"errors"
	"fmt"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the current password")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
)

// ===== User Errors =====
var (
	ErrUserNotFound = errors.New("user not found")
)

// ===== Book Errors =====
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrBookNameRequired = errors.New("book name is required")
	ErrAuthorRequired   = errors.New("author is required")
	ErrNegativeCopies   = errors.New("copies must not be negative")
)

// ===== Loan Errors =====
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrBookUnavailable     = errors.New("no copies of this book are available")
	ErrLoanLimitReached    = errors.New("maximum number of open loans reached")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrNotLoanOwner        = errors.New("loan belongs to another user")
)

// LoanLimitError reports that a borrower has hit the open-loan cap.
// It carries the cap and the borrower's current count so handlers can
// surface both. errors.Is(err, ErrLoanLimitReached) matches it.
type LoanLimitError struct {
	Limit   int
	Current int
}

func (e *LoanLimitError) Error() string {
	return fmt.Sprintf("maximum of %d open loans reached (currently %d)", e.Limit, e.Current)
}

func (e *LoanLimitError) Is(target error) bool {
	return target == ErrLoanLimitReached
}
