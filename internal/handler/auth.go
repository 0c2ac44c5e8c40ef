package handler

import (
	"net/http"

	"github.com/openshelf/libris/internal/middleware"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents the register endpoint request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login endpoint request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenResponse represents a token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthResponse pairs the account with its freshly issued token
type AuthResponse struct {
	User  *model.User   `json:"user"`
	Token TokenResponse `json:"token"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	response := AuthResponse{
		User:  result.User,
		Token: toTokenResponse(result.AccessToken),
	}

	WriteData(w, http.StatusCreated, response, map[string]string{
		"self": "/v1/users/" + result.User.ID,
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	response := AuthResponse{
		User:  result.User,
		Token: toTokenResponse(result.AccessToken),
	}

	WriteData(w, http.StatusOK, response, map[string]string{
		"self": "/v1/users/" + result.User.ID,
	})
}

// ChangePassword handles PATCH /v1/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.authService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

func toTokenResponse(token *service.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	}
}
