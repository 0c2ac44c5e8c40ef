package handler

import (
	"net/http"
	"time"

	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/service"
)

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	svc *service.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(svc *service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

// CreateBookRequest represents the create book request body
type CreateBookRequest struct {
	Name            string `json:"name"`
	Author          string `json:"author"`
	PublicationDate string `json:"publication_date"`
	Copies          int    `json:"copies"`
}

// UpdateBookRequest represents the update book request body.
// CopiesDelta adjusts the available copy count relative to its current
// value; it is never an absolute overwrite.
type UpdateBookRequest struct {
	Name            string `json:"name"`
	Author          string `json:"author"`
	PublicationDate string `json:"publication_date"`
	CopiesDelta     int    `json:"copies_delta"`
}

// List handles GET /v1/books - list the catalog
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, books, nil)
}

// Get handles GET /v1/books/{bookId} - get book details
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookId")
	if bookID == "" {
		WriteError(w, model.NewBadRequestError("book ID required"))
		return
	}

	book, err := h.svc.GetBook(r.Context(), bookID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, book, nil)
}

// Create handles POST /v1/books - add a book to the catalog
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	pubDate, ok := parsePublicationDate(w, req.PublicationDate)
	if !ok {
		return
	}

	book, err := h.svc.CreateBook(r.Context(), service.CreateBookRequest{
		Name:            req.Name,
		Author:          req.Author,
		PublicationDate: pubDate,
		Copies:          req.Copies,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, book, map[string]string{
		"self": "/v1/books/" + book.ID,
	})
}

// Update handles PATCH /v1/books/{bookId} - update catalog fields and
// optionally restock or withdraw copies
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookId")
	if bookID == "" {
		WriteError(w, model.NewBadRequestError("book ID required"))
		return
	}

	var req UpdateBookRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	pubDate, ok := parsePublicationDate(w, req.PublicationDate)
	if !ok {
		return
	}

	book, err := h.svc.UpdateBook(r.Context(), bookID, service.UpdateBookRequest{
		Name:            req.Name,
		Author:          req.Author,
		PublicationDate: pubDate,
		CopiesDelta:     req.CopiesDelta,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, book, nil)
}

// parsePublicationDate accepts either a bare date or full RFC 3339
// timestamp. An empty string parses to the zero time.
func parsePublicationDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	WriteError(w, model.NewValidationError([]model.FieldError{
		{Field: "publication_date", Message: "must be YYYY-MM-DD or RFC 3339"},
	}))
	return time.Time{}, false
}
