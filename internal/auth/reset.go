package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetTokenPurpose = "password_reset"

// ErrInvalidResetToken is returned when a reset token fails validation
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetTokenIssuer signs and verifies short-lived password reset tokens
type ResetTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewResetTokenIssuer creates a reset token issuer
func NewResetTokenIssuer(secret string, ttl time.Duration) *ResetTokenIssuer {
	return &ResetTokenIssuer{secret: []byte(secret), ttl: ttl}
}

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue creates a signed reset token for a user
func (i *ResetTokenIssuer) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := resetClaims{
		Purpose: resetTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// Verify parses a reset token and returns the user it was issued for
func (i *ResetTokenIssuer) Verify(tokenString string) (uuid.UUID, error) {
	var claims resetClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidResetToken
	}
	if claims.Purpose != resetTokenPurpose {
		return uuid.Nil, ErrInvalidResetToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidResetToken
	}
	return userID, nil
}
