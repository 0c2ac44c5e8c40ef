package service

import (
	"context"
	"errors"
	"time"

	"github.com/openshelf/libris/internal/cache"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/repository"
)

// LoanRepository defines the interface for loan storage
type LoanRepository interface {
	CreateWithDecrement(ctx context.Context, loan *model.Loan) error
	MarkReturnedAndIncrement(ctx context.Context, loanID, bookID string, returnedAt time.Time) error
	GetByID(ctx context.Context, id string) (*model.Loan, error)
	CountOpenByUser(ctx context.Context, userID string) (int, error)
	FindByUser(ctx context.Context, userID string) ([]model.Loan, error)
	FindAll(ctx context.Context) ([]model.Loan, error)
}

// LoanService handles the loan lifecycle: checkout, return, queries.
// The book copy counter is never read-modified-written here; the
// repository's conditional transactions own it.
type LoanService struct {
	loanRepo LoanRepository
	bookRepo BookRepository
	userRepo UserRepository
	cache    *cache.Store
	maxOpen  int
	period   time.Duration
	now      func() time.Time
}

// LoanServiceConfig holds configuration for the loan service
type LoanServiceConfig struct {
	LoanRepo LoanRepository
	BookRepo BookRepository
	UserRepo UserRepository
	Cache    *cache.Store
	MaxOpen  int           // Max open loans per user (default 3)
	Period   time.Duration // Loan period (default 14 days)
	Now      func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(cfg LoanServiceConfig) *LoanService {
	if cfg.MaxOpen == 0 {
		cfg.MaxOpen = 3
	}
	if cfg.Period == 0 {
		cfg.Period = 14 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LoanService{
		loanRepo: cfg.LoanRepo,
		bookRepo: cfg.BookRepo,
		userRepo: cfg.UserRepo,
		cache:    cfg.Cache,
		maxOpen:  cfg.MaxOpen,
		period:   cfg.Period,
		now:      cfg.Now,
	}
}

// today returns the current date at midnight UTC. Loans are dated by
// day, matching how due dates are communicated to members.
func (s *LoanService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// CreateLoan checks a book out to a user. The availability pre-checks
// give precise errors; the decrement inside the storage transaction is
// the authoritative guard, so losing a race on the last copy surfaces
// as ErrBookUnavailable rather than a negative counter.
func (s *LoanService) CreateLoan(ctx context.Context, userID, bookID string) (*model.Loan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if !book.Available() {
		return nil, ErrBookUnavailable
	}

	open, err := s.loanRepo.CountOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open >= s.maxOpen {
		return nil, &LoanLimitError{Limit: s.maxOpen, Current: open}
	}

	today := s.today()
	loan := &model.Loan{
		UserID:   userID,
		BookID:   bookID,
		LoanDate: today,
		DueDate:  today.Add(s.period),
	}

	if err := s.loanRepo.CreateWithDecrement(ctx, loan); err != nil {
		if errors.Is(err, repository.ErrNoCopies) {
			return nil, ErrBookUnavailable
		}
		return nil, err
	}

	s.invalidateBook(bookID)
	return loan, nil
}

// ReturnLoan closes a loan and restores the book's copy counter.
// Members may only return their own loans; admins may return any.
// Returning twice fails with ErrLoanAlreadyReturned and never
// increments the counter a second time.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID, actorID string, isAdmin bool) (*model.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	if !isAdmin && loan.UserID != actorID {
		return nil, ErrNotLoanOwner
	}
	if !loan.Open() {
		return nil, ErrLoanAlreadyReturned
	}

	if err := s.loanRepo.MarkReturnedAndIncrement(ctx, loanID, loan.BookID, s.today()); err != nil {
		// Concurrent double return: the open check above raced
		if errors.Is(err, repository.ErrAlreadyReturned) {
			return nil, ErrLoanAlreadyReturned
		}
		return nil, err
	}

	s.invalidateBook(loan.BookID)

	closed, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, ErrLoanNotFound
	}
	return closed, nil
}

// GetLoan retrieves a loan. Members only see their own loans.
func (s *LoanService) GetLoan(ctx context.Context, loanID, actorID string, isAdmin bool) (*model.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	if !isAdmin && loan.UserID != actorID {
		return nil, ErrNotLoanOwner
	}
	return loan, nil
}

// ListLoansForUser retrieves a user's loans, newest first. Members only
// list their own loans.
func (s *LoanService) ListLoansForUser(ctx context.Context, userID, actorID string, isAdmin bool) ([]model.Loan, error) {
	if !isAdmin && userID != actorID {
		return nil, ErrNotLoanOwner
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.loanRepo.FindByUser(ctx, userID)
}

// ListLoans retrieves every loan, newest first. Admin only; the route
// gate enforces it.
func (s *LoanService) ListLoans(ctx context.Context) ([]model.Loan, error) {
	return s.loanRepo.FindAll(ctx)
}

// ListOverdueLoans retrieves every open loan past its due date.
func (s *LoanService) ListOverdueLoans(ctx context.Context) ([]model.Loan, error) {
	loans, err := s.loanRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	var overdue []model.Loan
	for _, loan := range loans {
		if loan.Overdue(now) {
			overdue = append(overdue, loan)
		}
	}
	return overdue, nil
}

// invalidateBook drops cached catalog views after loan activity changed
// a copy counter
func (s *LoanService) invalidateBook(bookID string) {
	if s.cache != nil {
		s.cache.Invalidate(booksCacheKey, bookCacheKey(bookID))
	}
}
