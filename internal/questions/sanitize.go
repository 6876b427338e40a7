package questions

import (
	"strings"

	"github.com/matheuss-dsr/dedicandos/internal/enem"
)

// brokenImageSentinel marks questions whose source assets are known to be
// dead; they render as empty boxes and are rejected outright.
const brokenImageSentinel = "https://enem.dev/broken-image"

// Sanitize validates and normalizes one raw question from the source.
// It rejects malformed questions, converts the enunciation markup to HTML,
// and relocates embedded image references out of the displayed text.
func Sanitize(raw enem.Question) (Question, error) {
	enunciation := strings.TrimSpace(raw.Context)
	if enunciation == "" {
		return Question{}, ErrEmptyEnunciation
	}
	if strings.Contains(enunciation, brokenImageSentinel) {
		return Question{}, ErrBrokenImage
	}
	if len(raw.Alternatives) == 0 {
		return Question{}, ErrNoAlternatives
	}

	alts := make([]Alternative, 0, len(raw.Alternatives))
	for _, a := range raw.Alternatives {
		if strings.TrimSpace(a.Letter) == "" || strings.TrimSpace(a.Text) == "" {
			return Question{}, ErrAlternativeMissingText
		}
		alts = append(alts, Alternative{
			Letter:    strings.TrimSpace(a.Letter),
			Text:      ToPlain(a.Text),
			IsCorrect: a.IsCorrect,
			ImageRef:  strings.TrimSpace(a.File),
		})
	}

	imageRefs, stripped := extractImages(raw.Files, enunciation)
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return Question{}, ErrEmptyEnunciation
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = "Questão"
	}

	return Question{
		Year:               raw.Year,
		Index:              raw.Index,
		Discipline:         strings.TrimSpace(raw.Discipline),
		Language:           strings.ToLower(strings.TrimSpace(raw.Language)),
		Title:              title,
		EnunciationRaw:     stripped,
		EnunciationHTML:    ToHTML(stripped),
		EnunciationText:    ToPlain(stripped),
		ImageRefs:          imageRefs,
		CorrectAlternative: strings.TrimSpace(raw.CorrectAlternative),
		Alternatives:       alts,
	}, nil
}

// extractImages collects image URLs for a question and strips them from the
// displayed text. An explicit files list from the source wins and only its
// first entry is used; otherwise the enunciation is scanned for embedded
// image URLs.
func extractImages(files []string, enunciation string) ([]string, string) {
	var refs []string
	for _, f := range files {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			refs = append(refs, trimmed)
			break
		}
	}
	fromFiles := len(refs) > 0

	stripped := enunciation
	var embedded []string
	for _, m := range mdImageRe.FindAllStringSubmatch(stripped, -1) {
		embedded = append(embedded, m[1])
	}
	stripped = mdImageRe.ReplaceAllString(stripped, "")
	embedded = append(embedded, imageURLRe.FindAllString(stripped, -1)...)
	stripped = imageURLRe.ReplaceAllString(stripped, "")
	// Removing an in-line URL leaves its surrounding whitespace behind.
	stripped = spaceRunRe.ReplaceAllString(stripped, " ")

	if !fromFiles {
		for _, u := range embedded {
			if !containsRef(refs, u) {
				refs = append(refs, u)
			}
		}
	}
	return refs, stripped
}

func containsRef(refs []string, candidate string) bool {
	for _, r := range refs {
		if r == candidate {
			return true
		}
	}
	return false
}
