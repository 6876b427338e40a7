package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, nome, email, senha_hash, role, email_verified,
       COALESCE(verify_token, ''), COALESCE(reset_token, ''), reset_expires,
       created_at, updated_at`

// Create inserts a new account. A duplicate email maps to ErrEmailTaken.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO usuarios (id, nome, email, senha_hash, role, email_verified, verify_token, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`

	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.EmailVerified,
		user.VerifyToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// GetByID returns an account by primary key.
func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetByEmail returns an account by its unique email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

// GetByVerifyToken returns the account holding an outstanding verify token.
func (r *PGRepo) GetByVerifyToken(ctx context.Context, token string) (User, error) {
	return r.getBy(ctx, `WHERE verify_token = $1`, token)
}

// GetByResetToken returns the account holding an outstanding reset token.
// Expiry is checked by the service, not here.
func (r *PGRepo) GetByResetToken(ctx context.Context, token string) (User, error) {
	return r.getBy(ctx, `WHERE reset_token = $1`, token)
}

// MarkVerified flips the verified flag and clears the verify token.
func (r *PGRepo) MarkVerified(ctx context.Context, id string) error {
	const query = `
UPDATE usuarios
SET email_verified = TRUE,
    verify_token = NULL,
    updated_at = now()
WHERE id = $1`
	return r.exec(ctx, query, id)
}

// SetVerifyToken stores a fresh verification token.
func (r *PGRepo) SetVerifyToken(ctx context.Context, id, token string) error {
	const query = `
UPDATE usuarios
SET verify_token = $1,
    updated_at = now()
WHERE id = $2`
	return r.exec(ctx, query, token, id)
}

// SetResetToken stores a password-reset token with its expiry.
func (r *PGRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	const query = `
UPDATE usuarios
SET reset_token = $1,
    reset_expires = $2,
    updated_at = now()
WHERE id = $3`
	return r.exec(ctx, query, token, expires, id)
}

// UpdatePassword stores a new hash and clears any outstanding reset token.
func (r *PGRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	const query = `
UPDATE usuarios
SET senha_hash = $1,
    reset_token = NULL,
    reset_expires = NULL,
    updated_at = now()
WHERE id = $2`
	return r.exec(ctx, query, hash, id)
}

// UpdateName renames the account.
func (r *PGRepo) UpdateName(ctx context.Context, id, name string) error {
	const query = `
UPDATE usuarios
SET nome = $1,
    updated_at = now()
WHERE id = $2`
	return r.exec(ctx, query, name, id)
}

var _ Repo = (*PGRepo)(nil)

func (r *PGRepo) getBy(ctx context.Context, where string, arg any) (User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios ` + where + ` LIMIT 1`

	var u User
	var resetExpires sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.EmailVerified,
		&u.VerifyToken,
		&u.ResetToken,
		&resetExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if resetExpires.Valid {
		u.ResetExpires = &resetExpires.Time
	}
	return u, nil
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation matches the Postgres unique_violation code without
// depending on driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
