package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/matheuss-dsr/dedicandos/internal/mail"
	"github.com/matheuss-dsr/dedicandos/internal/shared/auth"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

const (
	bcryptCost     = 10
	minPasswordLen = 8
	resetTokenTTL  = time.Hour
)

// Service owns registration, authentication and the email-driven account
// flows (verification, password reset).
type Service struct {
	Repo   Repo
	Mailer mail.Mailer
	AppURL string
	Now    func() time.Time
}

// NewService constructs a Service. A nil mailer falls back to the log-only
// mailer so account flows stay functional in development.
func NewService(repo Repo, mailer mail.Mailer, appURL string) *Service {
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &Service{
		Repo:   repo,
		Mailer: mailer,
		AppURL: appURL,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account and sends the verification mail. Mail failures
// are logged, not returned; the user can request a resend.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !validEmail(email) {
		return User{}, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	now := s.Now()
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleProfessor,
		VerifyToken:  newToken(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	s.sendVerification(ctx, user)
	user.PasswordHash = ""
	user.VerifyToken = ""
	return user, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := auth.SignJWT(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return User{}, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

// VerifyEmail confirms the address holding the token.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrTokenInvalid
	}
	user, err := s.Repo.GetByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	return s.Repo.MarkVerified(ctx, user.ID)
}

// ResendVerification rotates the verify token and re-sends the mail. The
// outcome is always neutral: unknown and already-verified addresses are
// silently ignored.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	user.VerifyToken = newToken()
	if err := s.Repo.SetVerifyToken(ctx, user.ID, user.VerifyToken); err != nil {
		return err
	}
	s.sendVerification(ctx, user)
	return nil
}

// ForgotPassword issues a reset token valid for one hour. Unknown addresses
// are silently ignored.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	token := newToken()
	expires := s.Now().Add(resetTokenTTL)
	if err := s.Repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	subject, body := mail.PasswordResetEmail(s.AppURL, user.Name, token)
	if err := s.Mailer.Send(ctx, user.Email, subject, body); err != nil {
		telemetry.Warn("users.mail_failed", map[string]any{
			"kind":  "password_reset",
			"error": err.Error(),
		})
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return ErrTokenInvalid
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	user, err := s.Repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if user.ResetExpires == nil || s.Now().After(*user.ResetExpires) {
		return ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, user.ID, string(hash))
}

// GetByID returns the account without secret material.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.PasswordHash = ""
	user.VerifyToken = ""
	user.ResetToken = ""
	return user, nil
}

// UpdateName renames the account.
func (s *Service) UpdateName(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.Repo.UpdateName(ctx, id, name)
}

func (s *Service) sendVerification(ctx context.Context, user User) {
	subject, body := mail.VerificationEmail(s.AppURL, user.Name, user.VerifyToken)
	if err := s.Mailer.Send(ctx, user.Email, subject, body); err != nil {
		telemetry.Warn("users.mail_failed", map[string]any{
			"kind":  "verification",
			"error": err.Error(),
		})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t\n")
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process cannot mint secrets at all.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
