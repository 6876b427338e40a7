package exams

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores exams in memory and is safe for concurrent use. It backs
// tests and the no-database development mode.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Exam
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Exam)}
}

// Create stores the exam.
func (r *MemoryRepo) Create(ctx context.Context, exam Exam) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exam.Questions = cloneRefs(exam.Questions)
	r.byID[exam.ID] = exam
	return nil
}

// GetByID returns one active exam owned by the user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, examID string) (Exam, error) {
	if err := ctx.Err(); err != nil {
		return Exam{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	exam, ok := r.byID[examID]
	if !ok || !exam.Active || exam.UserID != userID {
		return Exam{}, ErrNotFound
	}
	exam.Questions = cloneRefs(exam.Questions)
	return exam, nil
}

// ListByUser returns active exams for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Exam, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var out []Exam
	for _, exam := range r.byID {
		if exam.UserID == userID && exam.Active {
			exam.Questions = nil
			out = append(out, exam)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Exam{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// Update replaces the stored exam when it exists, is active and owned by the
// same user.
func (r *MemoryRepo) Update(ctx context.Context, exam Exam) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[exam.ID]
	if !ok || !current.Active || current.UserID != exam.UserID {
		return ErrNotFound
	}
	exam.Active = true
	exam.CreatedAt = current.CreatedAt
	exam.Questions = cloneRefs(exam.Questions)
	r.byID[exam.ID] = exam
	return nil
}

// SoftDelete marks the exam inactive.
func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, examID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.byID[examID]
	if !ok || !exam.Active || exam.UserID != userID {
		return ErrNotFound
	}
	exam.Active = false
	exam.UpdatedAt = time.Now().UTC()
	r.byID[examID] = exam
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

func cloneRefs(refs []QuestionRef) []QuestionRef {
	if refs == nil {
		return nil
	}
	out := make([]QuestionRef, len(refs))
	copy(out, refs)
	return out
}
