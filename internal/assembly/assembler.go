package assembly

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheuss-dsr/dedicandos/internal/enem"
	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/shared/metrics"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

const (
	// MaxQuantity is the largest exam a single request may assemble.
	// Two full discipline sections is already an unrealistic paper.
	MaxQuantity = 90

	// maxAttempts bounds the fetch loop against a misbehaving or
	// rate-limited source.
	maxAttempts = 12

	pageSize = 50
)

// Source is the slice of the question client the assembler depends on.
type Source interface {
	FetchBatch(ctx context.Context, year, offset, limit int) (enem.Batch, error)
}

// Params describe one assembly request.
type Params struct {
	Year       int
	Discipline enem.Discipline
	Quantity   int
}

// Result is the terminal state of an assembly. Shortfall is a first-class
// outcome, not an error: callers render what was found and report the gap.
type Result struct {
	Questions []questions.Question
	Requested int
	Shortfall bool
}

// Assembler collects sanitized, deduplicated questions from the source until
// the requested quantity is met or the scan budget is exhausted.
type Assembler struct {
	Source     Source
	Translator questions.Translator
}

func New(source Source, translator questions.Translator) *Assembler {
	return &Assembler{Source: source, Translator: translator}
}

// Validate rejects bad parameters before any outbound call is made.
func (p Params) Validate() error {
	if !enem.ValidYear(p.Year) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	if p.Quantity <= 0 || p.Quantity > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, p.Quantity)
	}
	return nil
}

// Assemble runs the fetch+sanitize loop. The page scan is sequential because
// each iteration's offset depends on the size of the previous batch.
func (a *Assembler) Assemble(ctx context.Context, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	metrics.IncAssemblyStarted()

	collected := make([]questions.Question, 0, p.Quantity)
	seen := make(map[int]struct{})
	cursor := p.Discipline.InitialOffset()

	for attempts := 0; attempts < maxAttempts; attempts++ {
		if cursor >= enem.MaxOffset {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		batch, err := a.Source.FetchBatch(ctx, p.Year, cursor, pageSize)
		if err != nil {
			telemetry.Error("assembly.fetch_failed", map[string]any{
				"year":       p.Year,
				"offset":     cursor,
				"discipline": string(p.Discipline),
				"error":      err.Error(),
			})
			return Result{}, err
		}
		if len(batch.Questions) == 0 {
			break
		}

		// Advance by what the source actually returned, not by the
		// requested limit, so short pages never skip records.
		cursor += len(batch.Questions)

		for _, raw := range batch.Questions {
			if len(collected) >= p.Quantity {
				break
			}
			if !p.Discipline.Matches(raw) {
				continue
			}
			if _, dup := seen[raw.Index]; dup {
				continue
			}

			q, err := questions.Sanitize(raw)
			if err != nil {
				if !errors.Is(err, questions.ErrRejected) {
					return Result{}, err
				}
				continue
			}
			if questions.NeedsTranslation(q) {
				if err := questions.TranslateQuestion(ctx, a.Translator, &q); err != nil {
					// All-or-nothing per question: skip it entirely.
					continue
				}
			}

			seen[raw.Index] = struct{}{}
			collected = append(collected, q)
		}

		if len(collected) >= p.Quantity {
			break
		}
		if !batch.HasMore {
			break
		}
	}

	if len(collected) > p.Quantity {
		collected = collected[:p.Quantity]
	}
	for i := range collected {
		collected[i].Number = i + 1
	}

	result := Result{
		Questions: collected,
		Requested: p.Quantity,
		Shortfall: len(collected) < p.Quantity,
	}
	if result.Shortfall {
		metrics.IncAssemblyShortfall()
		telemetry.Info("assembly.shortfall", map[string]any{
			"year":       p.Year,
			"discipline": string(p.Discipline),
			"requested":  p.Quantity,
			"found":      len(collected),
		})
	} else {
		metrics.IncAssemblySatisfied()
	}
	return result, nil
}
