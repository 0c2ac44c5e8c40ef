package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/model"
)

// Sentinel errors raised by the atomic loan transactions. The THROW
// markers inside the SurrealQL map back to these so callers can use
// errors.Is instead of string matching.
var (
	// ErrNoCopies indicates the book had no copies on the shelf at
	// decrement time.
	ErrNoCopies = errors.New("no copies available")

	// ErrAlreadyReturned indicates the loan's return date was already set.
	ErrAlreadyReturned = errors.New("loan already returned")
)

const (
	throwNoCopies        = "no_copies"
	throwAlreadyReturned = "already_returned"
)

// LoanRepository handles loan data access
type LoanRepository struct {
	db database.Database
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db database.Database) *LoanRepository {
	return &LoanRepository{db: db}
}

// CreateWithDecrement creates a loan and decrements the book's copy
// counter in one transaction. The decrement is conditional on copies
// being positive; when the book is out of stock the whole transaction
// aborts and ErrNoCopies is returned. Under concurrent checkouts of
// the last copy exactly one caller wins.
func (r *LoanRepository) CreateWithDecrement(ctx context.Context, loan *model.Loan) error {
	tb := database.NewTxBuilder()

	tb.Add(
		`LET $decremented = (UPDATE type::record($book) SET copies -= 1, updated_on = time::now() WHERE copies > 0)`,
		map[string]interface{}{"book": loan.BookID},
	)
	tb.AddRaw(`IF array::len($decremented) == 0 { THROW "` + throwNoCopies + `" }`)
	tb.Add(
		`CREATE loan CONTENT {
			user_id: $user,
			book_id: $item,
			loan_date: <datetime>$loaned,
			due_date: <datetime>$due,
			return_date: NONE,
			created_on: time::now(),
			updated_on: time::now()
		}`,
		map[string]interface{}{
			"user":   loan.UserID,
			"item":   loan.BookID,
			"loaned": loan.LoanDate.Format(time.RFC3339),
			"due":    loan.DueDate.Format(time.RFC3339),
		},
	)

	results, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		if strings.Contains(err.Error(), throwNoCopies) {
			return ErrNoCopies
		}
		return err
	}

	// The CREATE is the last statement that yields a record
	for i := len(results) - 1; i >= 0; i-- {
		created, perr := parseLoanResult(results[i])
		if perr == nil {
			loan.ID = created.ID
			loan.CreatedOn = created.CreatedOn
			loan.UpdatedOn = created.UpdatedOn
			return nil
		}
	}

	return errors.New("no loan record returned")
}

// MarkReturnedAndIncrement closes a loan and restores the book's copy
// counter in one transaction. The close is guarded on return_date still
// being unset, so returning twice aborts with ErrAlreadyReturned and
// the counter is incremented exactly once per loan.
func (r *LoanRepository) MarkReturnedAndIncrement(ctx context.Context, loanID, bookID string, returnedAt time.Time) error {
	tb := database.NewTxBuilder()

	tb.Add(
		`LET $closed = (UPDATE type::record($loan) SET return_date = <datetime>$returned, updated_on = time::now() WHERE return_date IS NONE)`,
		map[string]interface{}{
			"loan":     loanID,
			"returned": returnedAt.Format(time.RFC3339),
		},
	)
	tb.AddRaw(`IF array::len($closed) == 0 { THROW "` + throwAlreadyReturned + `" }`)
	tb.Add(
		`UPDATE type::record($book) SET copies += 1, updated_on = time::now()`,
		map[string]interface{}{"book": bookID},
	)

	_, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		if strings.Contains(err.Error(), throwAlreadyReturned) {
			return ErrAlreadyReturned
		}
		return err
	}
	return nil
}

// GetByID retrieves a loan by ID. Returns nil, nil when absent.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*model.Loan, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	loan, err := parseLoanResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return loan, nil
}

// CountOpenByUser counts a user's loans that have not been returned
func (r *LoanRepository) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT count() FROM loan WHERE user_id = $user_id AND return_date IS NONE GROUP ALL`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// FindByUser retrieves a user's loans, newest first
func (r *LoanRepository) FindByUser(ctx context.Context, userID string) ([]model.Loan, error) {
	query := `SELECT * FROM loan WHERE user_id = $user_id ORDER BY loan_date DESC`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseLoanList(result)
}

// FindAll retrieves every loan, newest first
func (r *LoanRepository) FindAll(ctx context.Context) ([]model.Loan, error) {
	query := `SELECT * FROM loan ORDER BY loan_date DESC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return parseLoanList(result)
}

func parseLoanList(result []interface{}) ([]model.Loan, error) {
	records, ok := extractQueryResults(result)
	if !ok {
		return []model.Loan{}, nil
	}

	loans := make([]model.Loan, 0, len(records))
	for _, record := range records {
		loan, err := parseLoanResult(record)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, nil
}

func parseLoanResult(result interface{}) (*model.Loan, error) {
	data, ok := unwrapSingle(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	loan := &model.Loan{
		ID:     convertSurrealID(data["id"]),
		UserID: getString(data, "user_id"),
		BookID: getString(data, "book_id"),
	}
	if loan.ID == "" || loan.UserID == "" {
		return nil, database.ErrNotFound
	}
	if t := getTime(data, "loan_date"); t != nil {
		loan.LoanDate = *t
	}
	if t := getTime(data, "due_date"); t != nil {
		loan.DueDate = *t
	}
	loan.ReturnDate = getTime(data, "return_date")
	if t := getTime(data, "created_on"); t != nil {
		loan.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		loan.UpdatedOn = *t
	}

	return loan, nil
}
