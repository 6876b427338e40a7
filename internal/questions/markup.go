package questions

import (
	"regexp"
	"strings"
)

// The source delivers enunciations in a lightweight markdown dialect:
// **bold**, *italic*, ![alt](url) image embeds and blank-line paragraphs.
// Conversion is single-pass; callers convert exactly once per raw question.

var (
	bareEntityRe = regexp.MustCompile(`&(amp|lt|gt|quot|#39|#\d+);`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	mdImageRe    = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	imageURLRe   = regexp.MustCompile(`(?i)https?://[^\s<>")]+\.(?:png|jpg|jpeg|gif)`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// ToHTML converts raw markup to HTML. Already-escaped entities are left
// intact, so converting text with no remaining markup is a no-op.
func ToHTML(raw string) string {
	text := escapeHTML(strings.TrimSpace(raw))
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "<em>$1</em>")

	paragraphs := splitParagraphs(text)
	for i, p := range paragraphs {
		paragraphs[i] = strings.ReplaceAll(p, "\n", "<br>")
	}
	return strings.Join(paragraphs, "\n")
}

// ToPlain strips markup for renderers that draw raw text.
func ToPlain(raw string) string {
	text := mdImageRe.ReplaceAllString(raw, "")
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

func splitParagraphs(text string) []string {
	blocks := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	var out []string
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		out = append(out, "<p>"+b+"</p>")
	}
	return out
}

// escapeHTML escapes <, > and bare ampersands. Ampersands that already
// start a character entity are preserved so conversion stays idempotent.
func escapeHTML(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			if loc := bareEntityRe.FindStringIndex(text[i:]); loc != nil && loc[0] == 0 {
				b.WriteByte('&')
				continue
			}
			b.WriteString("&amp;")
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
