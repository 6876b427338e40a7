package exams

import "context"

// Repo defines persistence operations for saved exams. Every read and write
// is scoped to the owning user; soft-deleted rows behave as absent.
type Repo interface {
	Create(ctx context.Context, exam Exam) error
	GetByID(ctx context.Context, userID, examID string) (Exam, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Exam, error)
	Update(ctx context.Context, exam Exam) error
	SoftDelete(ctx context.Context, userID, examID string) error
}
