package auth

import (
	"time"
)

// Claims carries the verified identity extracted from a token.
type Claims struct {
	UserID int64
	Email  string
}

// Service issues and verifies access tokens for wallet owners.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService builds a token service.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs an access token for the user.
func (s *Service) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	return signHS256(map[string]any{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}, s.secret)
}

// Verify checks signature and expiry and returns the token's claims.
func (s *Service) Verify(token string) (Claims, error) {
	claims, err := parseHS256(token, s.secret)
	if err != nil {
		return Claims{}, err
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return Claims{}, ErrTokenExpired
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return Claims{UserID: int64(sub), Email: email}, nil
}
