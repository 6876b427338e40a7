package exams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matheuss-dsr/dedicandos/internal/assembly"
	"github.com/matheuss-dsr/dedicandos/internal/enem"
	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

const maxTitleLen = 200

// QuestionSource is the slice of the source client the service needs to
// rebuild saved exams.
type QuestionSource interface {
	FetchQuestion(ctx context.Context, year, index int) (enem.Question, error)
}

// Service owns exam assembly, persistence and rebuilding of saved exams.
type Service struct {
	Repo       Repo
	Source     QuestionSource
	Assembler  *assembly.Assembler
	Cooldown   assembly.Cooldown
	Translator questions.Translator
	Now        func() time.Time
}

// NewService constructs a Service. A nil now function defaults to UTC time.
func NewService(repo Repo, source QuestionSource, asm *assembly.Assembler, cooldown assembly.Cooldown, translator questions.Translator) *Service {
	return &Service{
		Repo:       repo,
		Source:     source,
		Assembler:  asm,
		Cooldown:   cooldown,
		Translator: translator,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate runs one assembly for the user, subject to the per-user cooldown.
func (s *Service) Generate(ctx context.Context, userID string, p assembly.Params) (assembly.Result, error) {
	if err := p.Validate(); err != nil {
		return assembly.Result{}, err
	}
	if s.Cooldown != nil {
		if wait, ok := s.Cooldown.Reserve(userID); !ok {
			return assembly.Result{}, &CooldownError{Wait: wait, Err: assembly.ErrCooldown}
		}
	}
	return s.Assembler.Assemble(ctx, p)
}

// SaveInput is the material needed to persist a new exam.
type SaveInput struct {
	Title       string
	Description string
	Year        int
	Discipline  string
	Questions   []QuestionRef
}

func (in SaveInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLen)
	}
	if !enem.ValidYear(in.Year) {
		return fmt.Errorf("%w: unsupported year %d", ErrInvalidInput, in.Year)
	}
	if len(in.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidInput)
	}
	for _, ref := range in.Questions {
		if !enem.ValidYear(ref.Year) || ref.Index <= 0 {
			return fmt.Errorf("%w: bad question reference (%d, %d)", ErrInvalidInput, ref.Year, ref.Index)
		}
	}
	return nil
}

// Save persists a new exam for the user. Only question references are
// stored; bodies are re-fetched on read.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Exam, error) {
	if err := in.validate(); err != nil {
		return Exam{}, err
	}

	now := s.Now()
	exam := Exam{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Year:        in.Year,
		Discipline:  in.Discipline,
		Questions:   in.Questions,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, exam); err != nil {
		return Exam{}, err
	}
	return exam, nil
}

// Get returns one saved exam without question bodies.
func (s *Service) Get(ctx context.Context, userID, examID string) (Exam, error) {
	if examID == "" {
		return Exam{}, fmt.Errorf("%w: exam id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, examID)
}

// List returns the user's active exams, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Exam, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Update rewrites a saved exam's metadata and question references.
func (s *Service) Update(ctx context.Context, userID, examID string, in SaveInput) (Exam, error) {
	if examID == "" {
		return Exam{}, fmt.Errorf("%w: exam id is required", ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return Exam{}, err
	}

	exam := Exam{
		ID:          examID,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Year:        in.Year,
		Discipline:  in.Discipline,
		Questions:   in.Questions,
		Active:      true,
		UpdatedAt:   s.Now(),
	}
	if err := s.Repo.Update(ctx, exam); err != nil {
		return Exam{}, err
	}
	return s.Repo.GetByID(ctx, userID, examID)
}

// Delete soft-deletes a saved exam.
func (s *Service) Delete(ctx context.Context, userID, examID string) error {
	if examID == "" {
		return fmt.Errorf("%w: exam id is required", ErrInvalidInput)
	}
	return s.Repo.SoftDelete(ctx, userID, examID)
}

// LoadQuestions rebuilds the full question bodies for a saved exam by
// re-fetching each reference from the source. Questions that no longer pass
// sanitization are skipped; source outages abort the rebuild.
func (s *Service) LoadQuestions(ctx context.Context, exam Exam) ([]questions.Question, error) {
	out := make([]questions.Question, 0, len(exam.Questions))
	for _, ref := range exam.Questions {
		raw, err := s.Source.FetchQuestion(ctx, ref.Year, ref.Index)
		if err != nil {
			if errors.Is(err, enem.ErrNotFound) {
				telemetry.Warn("exams.question_missing", map[string]any{
					"exam_id": exam.ID,
					"year":    ref.Year,
					"index":   ref.Index,
				})
				continue
			}
			return nil, err
		}

		q, err := questions.Sanitize(raw)
		if err != nil {
			if errors.Is(err, questions.ErrRejected) {
				telemetry.Warn("exams.question_rejected", map[string]any{
					"exam_id": exam.ID,
					"year":    ref.Year,
					"index":   ref.Index,
					"reason":  err.Error(),
				})
				continue
			}
			return nil, err
		}
		if questions.NeedsTranslation(q) {
			if err := questions.TranslateQuestion(ctx, s.Translator, &q); err != nil {
				continue
			}
		}
		out = append(out, q)
	}

	for i := range out {
		out[i].Number = i + 1
	}
	return out, nil
}
