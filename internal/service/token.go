package service

import (
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/pkg/jwt"
)

// TokenService issues and validates stateless access tokens. There is
// no refresh token or revocation list; tokens are valid until expiry
// and clients re-authenticate to get a new one.
type TokenService struct {
	jwtService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(jwtService *jwt.Service) *TokenService {
	return &TokenService{jwtService: jwtService}
}

// AccessToken represents an issued bearer token
type AccessToken struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// GenerateAccessToken creates a signed JWT carrying the user's identity and role
func (s *TokenService) GenerateAccessToken(user *model.User) (*AccessToken, error) {
	claims := jwt.Claims{
		Subject: user.ID,
		UserID:  user.ID,
		Email:   user.Email,
		Role:    string(user.Role),
	}

	token, err := s.jwtService.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &AccessToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.jwtService.GetExpiration().Seconds()),
	}, nil
}

// ValidateAccessToken validates an access token and returns the claims
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.jwtService.Validate(token)
}
