package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// UserRepository handles member account data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Email uniqueness is enforced by the
// database; violations surface as database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	// Default to user role if not specified
	role := user.Role
	if role == "" {
		role = model.UserRoleUser
	}

	query := `
		CREATE user CONTENT {
			name: $name,
			email: $email,
			hash: $hash,
			role: $role,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	var hash interface{}
	if user.Hash != nil {
		hash = *user.Hash
	}

	vars := map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
		"hash":  hash,
		"role":  role,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.CreatedOn = created.CreatedOn
	user.UpdatedOn = created.UpdatedOn
	user.Role = role
	return nil
}

// GetByID retrieves a user by ID. Returns nil, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email. Returns nil, nil when absent.
// Callers lowercase the email before lookup.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUserResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindAll retrieves every user ordered by name
func (r *UserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT * FROM user ORDER BY name ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(result)
	if !ok {
		return []model.User{}, nil
	}

	users := make([]model.User, 0, len(records))
	for _, record := range records {
		user, err := parseUserResult(record)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// Update updates a user's profile fields
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			email = $email,
			updated_on = time::now()
	`

	vars := map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// UpdatePassword updates a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	query := `UPDATE type::record($id) SET hash = $hash, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":   userID,
		"hash": hash,
	}

	return r.db.Execute(ctx, query, vars)
}

// Helper functions

type createdRecord struct {
	ID        string
	CreatedOn time.Time
	UpdatedOn time.Time
}

func extractCreatedRecord(result []interface{}) (*createdRecord, error) {
	if len(result) == 0 {
		return nil, errors.New("no result returned")
	}

	// Navigate through SurrealDB response structure
	first := result[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if resultData, ok := resp["result"].([]interface{}); ok && len(resultData) > 0 {
			first = resultData[0]
		}
	}

	data, ok := first.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	record := &createdRecord{}

	// Handle SurrealDB's complex ID format
	if id, ok := data["id"]; ok {
		record.ID = convertSurrealID(id)
	}
	if createdOn, ok := data["created_on"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdOn); err == nil {
			record.CreatedOn = t
		} else if t, err := time.Parse(time.RFC3339Nano, createdOn); err == nil {
			record.CreatedOn = t
		}
	} else if createdOn, ok := data["created_on"].(time.Time); ok {
		record.CreatedOn = createdOn
	} else if dt, ok := data["created_on"].(models.CustomDateTime); ok {
		record.CreatedOn = dt.Time
	} else if dt, ok := data["created_on"].(*models.CustomDateTime); ok && dt != nil {
		record.CreatedOn = dt.Time
	}
	if updatedOn, ok := data["updated_on"].(string); ok {
		if t, err := time.Parse(time.RFC3339, updatedOn); err == nil {
			record.UpdatedOn = t
		} else if t, err := time.Parse(time.RFC3339Nano, updatedOn); err == nil {
			record.UpdatedOn = t
		}
	} else if updatedOn, ok := data["updated_on"].(time.Time); ok {
		record.UpdatedOn = updatedOn
	} else if dt, ok := data["updated_on"].(models.CustomDateTime); ok {
		record.UpdatedOn = dt.Time
	} else if dt, ok := data["updated_on"].(*models.CustomDateTime); ok && dt != nil {
		record.UpdatedOn = dt.Time
	}

	return record, nil
}

func parseUserResult(result interface{}) (*model.User, error) {
	data, ok := unwrapSingle(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	user := &model.User{
		ID:    convertSurrealID(data["id"]),
		Name:  getString(data, "name"),
		Email: getString(data, "email"),
		Role:  model.UserRole(getString(data, "role")),
		Hash:  getStringPtr(data, "hash"),
	}
	if t := getTime(data, "created_on"); t != nil {
		user.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		user.UpdatedOn = *t
	}

	return user, nil
}
