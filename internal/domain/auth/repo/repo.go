package repo

import (
	"context"
	"time"

	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token;
	// used on login, where any previous session is superseded.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken swaps old for new only if old is still the stored
	// value (compare-and-set). Returns ErrTokenMismatch when the stored
	// value changed underneath, which is how exactly one of two concurrent
	// rotations wins.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error

	// ClearRefreshToken removes the stored refresh token. Clearing an
	// already-empty token is not an error.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type TokenRepo interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)

	RevokeAccess(ctx context.Context, jti string, expiresAt time.Time) error

	IsAccessRevoked(ctx context.Context, jti string) (bool, error)
}
