// Package security provides JWT token issuing and validation.
package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"comercio/internal/core/apperror"
	appctx "comercio/internal/core/context"
)

// Claims carried in access tokens.
type Claims struct {
	jwt.RegisteredClaims

	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	SessionID string   `json:"sid"`
}

// JWTManager issues and validates signed tokens.
// Implements middleware.JWTValidator.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager creates a token manager.
func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// GenerateToken issues a signed token for an employee profile.
func (m *JWTManager) GenerateToken(employeeID, email string, roles []string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.New().String(),
		},
		Email:     email,
		Roles:     roles,
		SessionID: uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the caller context.
func (m *JWTManager) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token").WithCause(err)
	}
	if !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token")
	}

	return &appctx.UserContext{
		EmployeeID: claims.Subject,
		Email:      claims.Email,
		Roles:      claims.Roles,
		SessionID:  claims.SessionID,
	}, nil
}
