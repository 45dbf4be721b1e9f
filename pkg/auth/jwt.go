package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails validation for any reason.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access token claims.
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager creates and validates HS256-signed access tokens.
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewManager creates a token manager. The secret must be non-empty.
func NewManager(secret string, tokenTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &Manager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}, nil
}

// GenerateToken mints a signed access token for the user.
func (m *Manager) GenerateToken(username, userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a token's signature and expiry and returns its
// claims. Only HMAC-signed tokens are accepted.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
