package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type recordingMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestService(mailer *recordingMailer) *Service {
	svc := NewService(NewMemoryRepo(), mailer, "http://localhost:5173")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	user, err := svc.Register(context.Background(), "Maria", "Maria@Example.com", "senha-segura")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash != "" || user.VerifyToken != "" {
		t.Error("secret material leaked from Register")
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "maria@example.com" {
		t.Fatalf("verification mail = %+v", mailer.sent)
	}

	got, token, err := svc.Login(context.Background(), "maria@example.com", "senha-segura")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Error("expected session token")
	}
	if got.ID != user.ID {
		t.Errorf("logged in as %q, want %q", got.ID, user.ID)
	}

	if _, _, err := svc.Login(context.Background(), "maria@example.com", "senha-errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ninguem@example.com", "senha-segura"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(&recordingMailer{})

	cases := []struct{ name, email, password string }{
		{"", "a@b.com", "senha-segura"},
		{"Maria", "sem-arroba", "senha-segura"},
		{"Maria", "a@semdominio", "senha-segura"},
		{"Maria", "a@b.com", "curta"},
	}
	for i, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.name, tc.email, tc.password); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(&recordingMailer{})

	if _, err := svc.Register(context.Background(), "Maria", "a@b.com", "senha-segura"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Outra", "A@B.COM", "senha-segura"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerifyEmailFlow(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	user, err := svc.Register(context.Background(), "Maria", "a@b.com", "senha-segura")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	stored, err := svc.Repo.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if stored.VerifyToken == "" || stored.EmailVerified {
		t.Fatalf("stored = %+v", stored)
	}
	if !strings.Contains(mailer.sent[0].body, stored.VerifyToken) {
		t.Error("verification mail does not carry the token")
	}

	if err := svc.VerifyEmail(context.Background(), stored.VerifyToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	verified, err := svc.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !verified.EmailVerified {
		t.Error("user not marked verified")
	}

	// Token is single-use.
	if err := svc.VerifyEmail(context.Background(), stored.VerifyToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on reuse, got %v", err)
	}
}

func TestResendVerificationIsNeutral(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	if err := svc.ResendVerification(context.Background(), "ninguem@b.com"); err != nil {
		t.Fatalf("resend for unknown address: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("mail sent for unknown address")
	}

	if _, err := svc.Register(context.Background(), "Maria", "a@b.com", "senha-segura"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	before := svc.mustGet(t, "a@b.com").VerifyToken

	if err := svc.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	after := svc.mustGet(t, "a@b.com").VerifyToken
	if after == before {
		t.Error("verify token was not rotated")
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(mailer.sent))
	}
}

func TestPasswordResetFlow(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(mailer)

	if _, err := svc.Register(context.Background(), "Maria", "a@b.com", "senha-antiga"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown address: neutral, no mail.
	if err := svc.ForgotPassword(context.Background(), "x@b.com"); err != nil {
		t.Fatalf("ForgotPassword unknown: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want only the registration one", len(mailer.sent))
	}

	if err := svc.ForgotPassword(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := svc.mustGet(t, "a@b.com").ResetToken
	if token == "" {
		t.Fatal("reset token not stored")
	}

	if err := svc.ResetPassword(context.Background(), token, "curta"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
	if err := svc.ResetPassword(context.Background(), "token-falso", "senha-nova-ok"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), token, "senha-nova-ok"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "a@b.com", "senha-antiga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still accepted")
	}
	if _, _, err := svc.Login(context.Background(), "a@b.com", "senha-nova-ok"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Token is cleared after use.
	if err := svc.ResetPassword(context.Background(), token, "senha-outra-ok"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on reuse, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc := newTestService(&recordingMailer{})

	if _, err := svc.Register(context.Background(), "Maria", "a@b.com", "senha-antiga"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.ForgotPassword(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := svc.mustGet(t, "a@b.com").ResetToken

	// Jump past the one-hour window.
	base := svc.Now()
	svc.Now = func() time.Time { return base.Add(61 * time.Minute) }

	if err := svc.ResetPassword(context.Background(), token, "senha-nova-ok"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func (s *Service) mustGet(t *testing.T, email string) User {
	t.Helper()
	user, err := s.Repo.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("GetByEmail(%q): %v", email, err)
	}
	return user
}
