package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores users in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]User)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	r.byID[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.find(ctx, func(u User) bool { return u.ID == id })
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.find(ctx, func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryRepo) GetByVerifyToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return r.find(ctx, func(u User) bool { return u.VerifyToken == token })
}

func (r *MemoryRepo) GetByResetToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return r.find(ctx, func(u User) bool { return u.ResetToken == token })
}

func (r *MemoryRepo) MarkVerified(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(u *User) {
		u.EmailVerified = true
		u.VerifyToken = ""
	})
}

func (r *MemoryRepo) SetVerifyToken(ctx context.Context, id, token string) error {
	return r.mutate(ctx, id, func(u *User) {
		u.VerifyToken = token
	})
}

func (r *MemoryRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.mutate(ctx, id, func(u *User) {
		u.ResetToken = token
		u.ResetExpires = &expires
	})
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.mutate(ctx, id, func(u *User) {
		u.PasswordHash = hash
		u.ResetToken = ""
		u.ResetExpires = nil
	})
}

func (r *MemoryRepo) UpdateName(ctx context.Context, id, name string) error {
	return r.mutate(ctx, id, func(u *User) {
		u.Name = name
	})
}

var _ Repo = (*MemoryRepo)(nil)

func (r *MemoryRepo) find(ctx context.Context, match func(User) bool) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) mutate(ctx context.Context, id string, apply func(*User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return nil
}
