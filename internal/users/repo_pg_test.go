package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	user := User{
		ID:           "11111111-1111-1111-1111-111111111111",
		Name:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         RoleProfessor,
		VerifyToken:  "tok",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO usuarios").
		WithArgs(
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.Role,
			user.EmailVerified,
			user.VerifyToken,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO usuarios").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "usuarios_email_key" (SQLSTATE 23505)`))

	err = repo.Create(context.Background(), User{ID: "u1", Email: "a@b.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGRepoGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, nome, email").
		WithArgs("maria@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "nome", "email", "senha_hash", "role", "email_verified",
			"verify_token", "reset_token", "reset_expires", "created_at", "updated_at",
		}).AddRow("u1", "Maria", "maria@example.com", "$2a$10$hash", RoleProfessor, true, "", "", nil, now, now))

	user, err := repo.GetByEmail(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.ID != "u1" || !user.EmailVerified || user.ResetExpires != nil {
		t.Fatalf("user = %+v", user)
	}
}

func TestPGRepoGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, nome, email").
		WithArgs("x@b.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "nome", "email", "senha_hash", "role", "email_verified",
			"verify_token", "reset_token", "reset_expires", "created_at", "updated_at",
		}))

	if _, err := repo.GetByEmail(context.Background(), "x@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdatePasswordClearsResetToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE usuarios").
		WithArgs("$2a$10$new", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "u1", "$2a$10$new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	mock.ExpectExec("UPDATE usuarios").
		WithArgs("$2a$10$new", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdatePassword(context.Background(), "missing", "$2a$10$new"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
