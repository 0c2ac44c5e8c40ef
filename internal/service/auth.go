package service

import (
	"context"
	"errors"
	"strings"

	"github.com/openshelf/libris/internal/cache"
	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/model"
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, hash string) error
}

// AuthService handles registration, login, and password changes
type AuthService struct {
	userRepo     UserRepository
	tokenService *TokenService
	hasher       PasswordHasher
	cache        *cache.Store
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
	Hasher       PasswordHasher
	Cache        *cache.Store
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &AuthService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
		hasher:       hasher,
		cache:        cfg.Cache,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult represents a successful registration
type RegisterResult struct {
	User        *model.User
	AccessToken *AccessToken
}

// Register creates a new member account with email/password
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	email := normalizeEmail(req.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	// Check if email already exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:  name,
		Email: email,
		Hash:  &hash,
		Role:  model.UserRoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The pre-check above races with concurrent registrations; the
		// unique index is authoritative.
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(usersCacheKey)
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		User:        user,
		AccessToken: token,
	}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult represents a successful login
type LoginResult struct {
	User        *model.User
	AccessToken *AccessToken
}

// Login authenticates a user with email/password. All credential
// failures return ErrInvalidCredentials so callers cannot distinguish
// an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:        user,
		AccessToken: token,
	}, nil
}

// ChangePassword replaces a user's password after verifying the
// current one. The current-password check runs before the same-password
// check, so a wrong current password is always reported first.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Hash == nil || *user.Hash == "" {
		return ErrIncorrectPassword
	}

	if !s.hasher.Verify(currentPassword, *user.Hash) {
		return ErrIncorrectPassword
	}

	if s.hasher.Verify(newPassword, *user.Hash) {
		return ErrSamePassword
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// ValidateAccessToken validates an access token and returns the claims
func (s *AuthService) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	claims, err := s.tokenService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &model.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// Helper functions

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func isValidEmail(email string) bool {
	// Basic email validation
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}
