package service

import (
	"context"
	"errors"
	"strings"

	"github.com/openshelf/libris/internal/cache"
	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/model"
)

const usersCacheKey = "users:all"

// UserService handles member account reads and profile updates
type UserService struct {
	userRepo UserRepository
	cache    *cache.Store
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, store *cache.Store) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    store,
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers retrieves every user. The listing is cached; any write to
// the user table invalidates it.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(usersCacheKey); ok {
			if users, ok := v.([]model.User); ok {
				return users, nil
			}
		}
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(usersCacheKey, users)
	}
	return users, nil
}

// UpdateUserRequest represents a profile update
type UpdateUserRequest struct {
	Name  string
	Email string
}

// UpdateUser updates a user's name and email. The email is normalized
// the same way registration normalizes it.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	email := normalizeEmail(req.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrEmailInUse
		}
	}

	user.Name = name
	user.Email = email

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(usersCacheKey)
	}
	return user, nil
}
