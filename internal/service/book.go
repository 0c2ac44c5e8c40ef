package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openshelf/libris/internal/cache"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/repository"
)

const booksCacheKey = "books:all"

func bookCacheKey(id string) string {
	return "book:" + id
}

// BookRepository defines the interface for catalog storage
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, book *model.Book) error
	AddCopies(ctx context.Context, id string, delta int) error
}

// BookService handles catalog reads and admin catalog management
type BookService struct {
	bookRepo BookRepository
	cache    *cache.Store
}

// NewBookService creates a new book service
func NewBookService(bookRepo BookRepository, store *cache.Store) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		cache:    store,
	}
}

// GetBook retrieves a book by ID, served from cache when fresh
func (s *BookService) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(bookCacheKey(bookID)); ok {
			if book, ok := v.(*model.Book); ok {
				return book, nil
			}
		}
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	if s.cache != nil {
		s.cache.Set(bookCacheKey(bookID), book)
	}
	return book, nil
}

// ListBooks retrieves the full catalog. The listing is cached; catalog
// writes and loan activity invalidate it.
func (s *BookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(booksCacheKey); ok {
			if books, ok := v.([]model.Book); ok {
				return books, nil
			}
		}
	}

	books, err := s.bookRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(booksCacheKey, books)
	}
	return books, nil
}

// CreateBookRequest represents a new catalog entry
type CreateBookRequest struct {
	Name            string
	Author          string
	PublicationDate time.Time
	Copies          int
}

// CreateBook adds a book to the catalog
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*model.Book, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrBookNameRequired
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, ErrAuthorRequired
	}
	if req.Copies < 0 {
		return nil, ErrNegativeCopies
	}

	book := &model.Book{
		Name:            name,
		Author:          author,
		PublicationDate: req.PublicationDate,
		Copies:          req.Copies,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(booksCacheKey)
	}
	return book, nil
}

// UpdateBookRequest represents a catalog update. CopiesDelta adjusts
// the copy counter relative to its current value (restocking or
// withdrawing copies); zero leaves it alone.
type UpdateBookRequest struct {
	Name            string
	Author          string
	PublicationDate time.Time
	CopiesDelta     int
}

// UpdateBook updates a book's catalog fields and optionally adjusts
// its copy counter
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*model.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrBookNameRequired
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, ErrAuthorRequired
	}
	if book.Copies+req.CopiesDelta < 0 {
		return nil, ErrNegativeCopies
	}

	book.Name = name
	book.Author = author
	book.PublicationDate = req.PublicationDate

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	if req.CopiesDelta != 0 {
		if err := s.bookRepo.AddCopies(ctx, bookID, req.CopiesDelta); err != nil {
			// Concurrent withdrawal: the counter check above raced
			if errors.Is(err, repository.ErrCopiesBelowZero) {
				return nil, ErrNegativeCopies
			}
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(booksCacheKey, bookCacheKey(bookID))
	}

	// Re-read so the caller sees the post-adjustment counter
	updated, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrBookNotFound
	}
	return updated, nil
}
