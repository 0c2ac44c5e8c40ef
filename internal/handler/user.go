package handler

import (
	"net/http"

	"github.com/openshelf/libris/internal/middleware"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/service"
)

// UserHandler handles member account HTTP requests
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest represents the update user request body
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List handles GET /v1/users - list all members
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, users, nil)
}

// Get handles GET /v1/users/{userId} - get member details
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// Update handles PATCH /v1/users/{userId} - update a member's profile.
// Members may only update their own account; admins may update anyone.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	claims := middleware.GetClaims(ctx)
	if userID != actorID && (claims == nil || !claims.IsAdmin()) {
		WriteError(w, model.NewForbiddenError("cannot update another member's account"))
		return
	}

	var req UpdateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.svc.UpdateUser(ctx, userID, service.UpdateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}
