package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/shared/metrics"
)

// Format selects the output document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat normalizes a user-supplied format string.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, raw)
	}
}

// ContentType returns the MIME type for download headers.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// StudentInfo is the optional header block printed on exported exams.
type StudentInfo struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	School string `json:"school"`
	Grade  string `json:"grade"`
}

// Job is one render request: an ordered question list plus export metadata.
// It is consumed once and discarded.
type Job struct {
	Title     string
	Student   *StudentInfo
	Questions []questions.Question
}

// Renderer produces paginated binary documents from assembled questions.
type Renderer struct {
	Images *ImageFetcher
}

func New(images *ImageFetcher) *Renderer {
	return &Renderer{Images: images}
}

// Render encodes the job in the requested format. Questions are numbered
// sequentially from 1 in list order, independent of original exam indices.
func (r *Renderer) Render(ctx context.Context, job Job, format Format) ([]byte, error) {
	if len(job.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions selected", ErrInvalidInput)
	}

	// Documents number questions 1..K in selection order, whatever the
	// caller put in Number.
	for i := range job.Questions {
		job.Questions[i].Number = i + 1
	}

	start := metrics.NowMillis()
	defer func() {
		metrics.ObserveRenderDurationMs(metrics.NowMillis() - start)
	}()

	switch format {
	case FormatPDF:
		return r.renderPDF(ctx, job)
	case FormatDOCX:
		return renderDOCX(job)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}
}

// alternativesBlock joins all choices of a question into a single text
// block of "letter) text" lines. One block per question keeps the layout
// consistent across both output formats.
func alternativesBlock(q questions.Question) string {
	lines := make([]string, 0, len(q.Alternatives))
	for _, a := range q.Alternatives {
		lines = append(lines, fmt.Sprintf("%s) %s", a.Letter, a.Text))
	}
	return strings.Join(lines, "\n")
}
