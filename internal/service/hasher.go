package service

import "golang.org/x/crypto/bcrypt"

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128
)

// PasswordHasher abstracts credential hashing so tests can swap in a
// cheap implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a bcrypt hasher with the default cost
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcryptCost}
}

// Hash hashes a password with bcrypt
func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the bcrypt hash
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
