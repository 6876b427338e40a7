package questions

import (
	"errors"
	"testing"

	"github.com/matheuss-dsr/dedicandos/internal/enem"
)

func validRaw() enem.Question {
	return enem.Question{
		Title:              "Questão 46",
		Index:              46,
		Year:               2021,
		Discipline:         "ciencias-humanas",
		Context:            "O texto da questão fala sobre **história**.",
		CorrectAlternative: "B",
		Alternatives: []enem.Alternative{
			{Letter: "A", Text: "primeira"},
			{Letter: "B", Text: "segunda", IsCorrect: true},
			{Letter: "C", Text: "terceira"},
		},
	}
}

func TestSanitizeValidQuestion(t *testing.T) {
	q, err := Sanitize(validRaw())
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if q.Index != 46 || q.Year != 2021 {
		t.Fatalf("unexpected identity: %+v", q)
	}
	if q.EnunciationHTML != "<p>O texto da questão fala sobre <strong>história</strong>.</p>" {
		t.Fatalf("unexpected html: %q", q.EnunciationHTML)
	}
	if q.EnunciationText != "O texto da questão fala sobre história." {
		t.Fatalf("unexpected plain text: %q", q.EnunciationText)
	}
	if len(q.Alternatives) != 3 || q.Alternatives[1].IsCorrect != true {
		t.Fatalf("unexpected alternatives: %+v", q.Alternatives)
	}
	if q.CorrectAlternative != "B" {
		t.Fatalf("correct alternative must pass through, got %q", q.CorrectAlternative)
	}
}

func TestSanitizeRejectsEmptyEnunciation(t *testing.T) {
	raw := validRaw()
	raw.Context = "   \n  "
	if _, err := Sanitize(raw); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestSanitizeRejectsAlternativeWithoutText(t *testing.T) {
	raw := validRaw()
	raw.Alternatives[2].Text = "  "
	_, err := Sanitize(raw)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if err != ErrAlternativeMissingText {
		t.Fatalf("expected ErrAlternativeMissingText, got %v", err)
	}
}

func TestSanitizeRejectsBrokenImageSentinel(t *testing.T) {
	raw := validRaw()
	raw.Context = "Veja a figura: https://enem.dev/broken-image.png"
	if _, err := Sanitize(raw); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for broken image, got %v", err)
	}
}

func TestSanitizeRejectsNoAlternatives(t *testing.T) {
	raw := validRaw()
	raw.Alternatives = nil
	if _, err := Sanitize(raw); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestSanitizeExtractsFirstFileAsImage(t *testing.T) {
	raw := validRaw()
	raw.Files = []string{"https://cdn.example.com/q46.png", "https://cdn.example.com/q46-b.png"}
	q, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if len(q.ImageRefs) != 1 || q.ImageRefs[0] != "https://cdn.example.com/q46.png" {
		t.Fatalf("unexpected image refs: %v", q.ImageRefs)
	}
}

func TestSanitizeExtractsEmbeddedImageURL(t *testing.T) {
	raw := validRaw()
	raw.Context = "Observe o gráfico https://cdn.example.com/grafico.jpg e responda."
	q, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if len(q.ImageRefs) != 1 || q.ImageRefs[0] != "https://cdn.example.com/grafico.jpg" {
		t.Fatalf("unexpected image refs: %v", q.ImageRefs)
	}
	if q.EnunciationText != "Observe o gráfico e responda." {
		t.Fatalf("image URL should be stripped from text, got %q", q.EnunciationText)
	}
}

func TestSanitizeExtractsMarkdownImage(t *testing.T) {
	raw := validRaw()
	raw.Context = "Analise a charge.\n\n![charge](https://cdn.example.com/charge.png)"
	q, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if len(q.ImageRefs) != 1 || q.ImageRefs[0] != "https://cdn.example.com/charge.png" {
		t.Fatalf("unexpected image refs: %v", q.ImageRefs)
	}
	if q.EnunciationText != "Analise a charge." {
		t.Fatalf("markdown image should be stripped, got %q", q.EnunciationText)
	}
}

func TestSanitizeIsIdempotentOnSanitizedText(t *testing.T) {
	first, err := Sanitize(validRaw())
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	// Feed the sanitized text back through as if it were a fresh fetch.
	raw := validRaw()
	raw.Context = first.EnunciationText
	for i := range raw.Alternatives {
		raw.Alternatives[i].Text = first.Alternatives[i].Text
	}
	second, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize second pass: %v", err)
	}
	if second.EnunciationText != first.EnunciationText {
		t.Fatalf("plain text changed on second pass: %q vs %q", second.EnunciationText, first.EnunciationText)
	}
	if third, _ := Sanitize(enem.Question{
		Context:      second.EnunciationText,
		Alternatives: raw.Alternatives,
	}); third.EnunciationHTML != second.EnunciationHTML {
		t.Fatalf("html double-encoded: %q vs %q", third.EnunciationHTML, second.EnunciationHTML)
	}
}

func TestEscapedEntitiesNotDoubleEncoded(t *testing.T) {
	html := ToHTML("Tom &amp; Jerry < 3")
	if html != "<p>Tom &amp; Jerry &lt; 3</p>" {
		t.Fatalf("unexpected html: %q", html)
	}
	again := ToHTML("Tom &amp; Jerry &lt; 3")
	if again != "<p>Tom &amp; Jerry &lt; 3</p>" {
		t.Fatalf("entities double-encoded: %q", again)
	}
}
