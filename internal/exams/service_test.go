package exams

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matheuss-dsr/dedicandos/internal/assembly"
	"github.com/matheuss-dsr/dedicandos/internal/enem"
)

type fakeSource struct {
	batches   map[int]enem.Batch
	questions map[string]enem.Question
	fetchErr  error
}

func refKey(year, index int) string { return fmt.Sprintf("%d/%d", year, index) }

func (f *fakeSource) FetchBatch(ctx context.Context, year, offset, limit int) (enem.Batch, error) {
	if f.fetchErr != nil {
		return enem.Batch{}, f.fetchErr
	}
	return f.batches[offset], nil
}

func (f *fakeSource) FetchQuestion(ctx context.Context, year, index int) (enem.Question, error) {
	if f.fetchErr != nil {
		return enem.Question{}, f.fetchErr
	}
	q, ok := f.questions[refKey(year, index)]
	if !ok {
		return enem.Question{}, enem.ErrNotFound
	}
	return q, nil
}

func rawQuestion(year, index int) enem.Question {
	return enem.Question{
		Title:      "Questão",
		Year:       year,
		Index:      index,
		Discipline: "matematica",
		Context:    fmt.Sprintf("Enunciado da questão %d.", index),
		Alternatives: []enem.Alternative{
			{Letter: "A", Text: "um"},
			{Letter: "B", Text: "dois"},
			{Letter: "C", Text: "três", IsCorrect: true},
		},
	}
}

func newTestService(src *fakeSource, cooldown assembly.Cooldown) *Service {
	svc := NewService(NewMemoryRepo(), src, assembly.New(src, nil), cooldown, nil)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }
	return svc
}

func TestServiceGenerateAppliesCooldown(t *testing.T) {
	src := &fakeSource{batches: map[int]enem.Batch{
		135: {Questions: []enem.Question{rawQuestion(2022, 136), rawQuestion(2022, 137)}},
	}}
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cooldown := assembly.NewMemoryCooldown(60*time.Second, func() time.Time { return clock })
	svc := newTestService(src, cooldown)

	params := assembly.Params{Year: 2022, Discipline: enem.DisciplineMatematica, Quantity: 2}

	result, err := svc.Generate(context.Background(), "user-1", params)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if len(result.Questions) != 2 || result.Shortfall {
		t.Fatalf("got %d questions, shortfall=%v", len(result.Questions), result.Shortfall)
	}

	_, err = svc.Generate(context.Background(), "user-1", params)
	if !errors.Is(err, assembly.ErrCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	var cd *CooldownError
	if !errors.As(err, &cd) || cd.Wait <= 0 {
		t.Fatalf("expected positive wait, got %+v", err)
	}

	// A different user is not throttled.
	if _, err := svc.Generate(context.Background(), "user-2", params); err != nil {
		t.Fatalf("other user Generate: %v", err)
	}
}

func TestServiceSaveAndGetRoundTrip(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	saved, err := svc.Save(context.Background(), "user-1", SaveInput{
		Title:     "  Simulado 1  ",
		Year:      2022,
		Questions: []QuestionRef{{Year: 2022, Index: 136}, {Year: 2022, Index: 137}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}
	if saved.Title != "Simulado 1" {
		t.Errorf("title = %q, want trimmed", saved.Title)
	}

	got, err := svc.Get(context.Background(), "user-1", saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Questions) != 2 || got.Questions[0].Index != 136 {
		t.Fatalf("refs = %+v", got.Questions)
	}

	// Another user cannot see it.
	if _, err := svc.Get(context.Background(), "user-2", saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestServiceSaveValidation(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	cases := []SaveInput{
		{Title: "", Year: 2022, Questions: []QuestionRef{{Year: 2022, Index: 1}}},
		{Title: "ok", Year: 1999, Questions: []QuestionRef{{Year: 2022, Index: 1}}},
		{Title: "ok", Year: 2022},
		{Title: "ok", Year: 2022, Questions: []QuestionRef{{Year: 2022, Index: 0}}},
	}
	for i, in := range cases {
		if _, err := svc.Save(context.Background(), "user-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestServiceDeleteHidesExam(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	saved, err := svc.Save(context.Background(), "user-1", SaveInput{
		Title:     "Prova",
		Year:      2022,
		Questions: []QuestionRef{{Year: 2022, Index: 1}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestServiceLoadQuestionsSkipsMissingAndRenumbers(t *testing.T) {
	src := &fakeSource{questions: map[string]enem.Question{
		refKey(2022, 136): rawQuestion(2022, 136),
		refKey(2022, 138): rawQuestion(2022, 138),
	}}
	svc := newTestService(src, nil)

	exam := Exam{
		ID: "exam-1",
		Questions: []QuestionRef{
			{Year: 2022, Index: 136},
			{Year: 2022, Index: 137}, // gone from the source
			{Year: 2022, Index: 138},
		},
	}

	loaded, err := svc.LoadQuestions(context.Background(), exam)
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d questions, want 2", len(loaded))
	}
	if loaded[0].Number != 1 || loaded[1].Number != 2 {
		t.Errorf("numbers = %d, %d; want 1, 2", loaded[0].Number, loaded[1].Number)
	}
	if loaded[1].Index != 138 {
		t.Errorf("second question index = %d, want 138", loaded[1].Index)
	}
}

func TestServiceLoadQuestionsPropagatesOutage(t *testing.T) {
	src := &fakeSource{fetchErr: enem.ErrSourceUnavailable}
	svc := newTestService(src, nil)

	exam := Exam{Questions: []QuestionRef{{Year: 2022, Index: 136}}}
	if _, err := svc.LoadQuestions(context.Background(), exam); !errors.Is(err, enem.ErrSourceUnavailable) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestServiceUpdateReplacesRefs(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	saved, err := svc.Save(context.Background(), "user-1", SaveInput{
		Title:     "Antes",
		Year:      2022,
		Questions: []QuestionRef{{Year: 2022, Index: 1}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated, err := svc.Update(context.Background(), "user-1", saved.ID, SaveInput{
		Title:     "Depois",
		Year:      2023,
		Questions: []QuestionRef{{Year: 2023, Index: 7}, {Year: 2023, Index: 9}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Depois" || updated.Year != 2023 {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.Questions) != 2 || updated.Questions[1].Index != 9 {
		t.Errorf("refs = %+v", updated.Questions)
	}
}
