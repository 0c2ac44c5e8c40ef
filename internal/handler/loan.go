package handler

import (
	"context"
	"net/http"

	"github.com/openshelf/libris/internal/middleware"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/service"
)

// LoanHandler handles loan lifecycle HTTP requests
type LoanHandler struct {
	svc *service.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(svc *service.LoanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

// CreateLoanRequest represents the checkout request body. UserID is
// optional; when empty the authenticated member borrows for themselves.
// Only admins may check out on behalf of another member.
type CreateLoanRequest struct {
	BookID string `json:"book_id"`
	UserID string `json:"user_id,omitempty"`
}

// Create handles POST /v1/loans - check out a book
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req CreateLoanRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if req.BookID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "book_id", Message: "book_id is required"},
		}))
		return
	}

	borrowerID := actorID
	if req.UserID != "" && req.UserID != actorID {
		claims := middleware.GetClaims(ctx)
		if claims == nil || !claims.IsAdmin() {
			WriteError(w, model.NewForbiddenError("cannot borrow on behalf of another member"))
			return
		}
		borrowerID = req.UserID
	}

	loan, err := h.svc.CreateLoan(ctx, borrowerID, req.BookID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, loan, map[string]string{
		"self":   "/v1/loans/" + loan.ID,
		"return": "/v1/loans/" + loan.ID + "/return",
	})
}

// Get handles GET /v1/loans/{loanId} - get loan details
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	loanID := r.PathValue("loanId")
	if loanID == "" {
		WriteError(w, model.NewBadRequestError("loan ID required"))
		return
	}

	loan, err := h.svc.GetLoan(ctx, loanID, actorID, isAdmin(ctx))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, loan, nil)
}

// List handles GET /v1/loans - list every loan in the system
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, loans, nil)
}

// ListForUser handles GET /v1/users/{userId}/loans - a member's loan history
func (h *LoanHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	loans, err := h.svc.ListLoansForUser(ctx, userID, actorID, isAdmin(ctx))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, loans, nil)
}

// Return handles POST /v1/loans/{loanId}/return - return a borrowed book
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	loanID := r.PathValue("loanId")
	if loanID == "" {
		WriteError(w, model.NewBadRequestError("loan ID required"))
		return
	}

	loan, err := h.svc.ReturnLoan(ctx, loanID, actorID, isAdmin(ctx))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, loan, nil)
}

func isAdmin(ctx context.Context) bool {
	claims := middleware.GetClaims(ctx)
	return claims != nil && claims.IsAdmin()
}
