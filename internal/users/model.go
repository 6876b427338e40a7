package users

import "time"

// Roles assignable to an account. Teachers build and export exams; admin is
// reserved for operational endpoints.
const (
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

// User is one registered account. PasswordHash and the token fields never
// leave the package.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          string
	EmailVerified bool
	VerifyToken   string
	ResetToken    string
	ResetExpires  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
