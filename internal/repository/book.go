package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/model"
)

// ErrCopiesBelowZero indicates a withdrawal would have taken the copy
// counter below zero, so the adjustment was refused.
var ErrCopiesBelowZero = errors.New("copy counter would go below zero")

const throwNegativeCopies = "negative_copies"

// BookRepository handles catalog data access
type BookRepository struct {
	db database.Database
}

// NewBookRepository creates a new book repository
func NewBookRepository(db database.Database) *BookRepository {
	return &BookRepository{db: db}
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		CREATE book CONTENT {
			name: $name,
			author: $author,
			publication_date: <datetime>$publication_date,
			copies: $copies,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":             book.Name,
		"author":           book.Author,
		"publication_date": book.PublicationDate.Format(time.RFC3339),
		"copies":           book.Copies,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: book already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	book.ID = created.ID
	book.CreatedOn = created.CreatedOn
	book.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a book by ID. Returns nil, nil when absent.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	book, err := parseBookResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

// FindAll retrieves the full catalog ordered by name
func (r *BookRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	query := `SELECT * FROM book ORDER BY name ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return []model.Book{}, nil
	}

	books := make([]model.Book, 0, len(records))
	for _, record := range records {
		book, err := parseBookResult(record)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}
		books = append(books, *book)
	}
	return books, nil
}

// Update updates a book's catalog fields. The copy counter is not
// touched here; lending adjusts it through the loan transactions and
// restocking goes through AddCopies.
func (r *BookRepository) Update(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			author = $author,
			publication_date = <datetime>$publication_date,
			updated_on = time::now()
	`

	vars := map[string]interface{}{
		"id":               book.ID,
		"name":             book.Name,
		"author":           book.Author,
		"publication_date": book.PublicationDate.Format(time.RFC3339),
	}

	return r.db.Execute(ctx, query, vars)
}

// AddCopies adjusts a book's copy counter by delta in one guarded
// statement, so concurrent adjustments never lose updates. When the
// guard rejects a withdrawal the transaction aborts and
// ErrCopiesBelowZero is returned instead of silently matching zero rows.
func (r *BookRepository) AddCopies(ctx context.Context, id string, delta int) error {
	tb := database.NewTxBuilder()

	tb.Add(
		`LET $adjusted = (UPDATE type::record($book) SET copies += $delta, updated_on = time::now() WHERE copies + $delta >= 0)`,
		map[string]interface{}{"book": id, "delta": delta},
	)
	tb.AddRaw(`IF array::len($adjusted) == 0 { THROW "` + throwNegativeCopies + `" }`)

	_, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		if strings.Contains(err.Error(), throwNegativeCopies) {
			return ErrCopiesBelowZero
		}
		return err
	}
	return nil
}

func parseBookResult(result interface{}) (*model.Book, error) {
	data, ok := unwrapSingle(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	book := &model.Book{
		ID:     convertSurrealID(data["id"]),
		Name:   getString(data, "name"),
		Author: getString(data, "author"),
		Copies: getInt(data, "copies"),
	}
	if t := getTime(data, "publication_date"); t != nil {
		book.PublicationDate = *t
	}
	if t := getTime(data, "created_on"); t != nil {
		book.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		book.UpdatedOn = *t
	}

	return book, nil
}
