package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessClaims struct {
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

// ResetClaims carry the email alongside the subject so a reset link can be
// sanity-checked against the account it was issued for.
type ResetClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenUtil signs and verifies the three token kinds. Access and refresh
// tokens use fixed process-wide secrets; reset tokens are keyed off the
// account's current password hash, so changing the password invalidates
// every reset token issued before the change.
type TokenUtil interface {
	GenerateAccessToken(userID uuid.UUID) (token string, exp time.Time, jti string, err error)
	GenerateRefreshToken(userID uuid.UUID) (token string, exp time.Time, jti string, err error)
	GeneratePasswordResetToken(userID uuid.UUID, email, passwordHash string) (token string, exp time.Time, err error)
	ValidateAccessToken(token string) (AccessClaims, error)
	ValidateRefreshToken(token string) (RefreshClaims, error)
	ValidatePasswordResetToken(token, passwordHash string) (ResetClaims, error)
}
