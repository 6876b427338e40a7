package users

import (
	"context"
	"time"
)

// Repo defines persistence operations for user accounts.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByVerifyToken(ctx context.Context, token string) (User, error)
	GetByResetToken(ctx context.Context, token string) (User, error)

	// MarkVerified flips the verified flag and clears the verify token.
	MarkVerified(ctx context.Context, id string) error
	SetVerifyToken(ctx context.Context, id, token string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error

	// UpdatePassword stores a new hash and clears any reset token.
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateName(ctx context.Context, id, name string) error
}
