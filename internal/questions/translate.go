package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TargetLanguage is the language every exported question is normalized to.
const TargetLanguage = "pt-BR"

// Translator converts a batch of independent strings between languages.
type Translator interface {
	Translate(ctx context.Context, texts []string, source, target string) ([]string, error)
}

// NeedsTranslation reports whether the question carries a foreign language tag.
// Only language-section questions are tagged; everything else is Portuguese.
func NeedsTranslation(q Question) bool {
	switch q.Language {
	case "", "portugues", "pt", "pt-br":
		return false
	default:
		return true
	}
}

// TranslateQuestion translates every text field of q in one batch. The
// contract is all-or-nothing per question: any failure leaves q untouched
// and returns ErrTranslationFailed.
func TranslateQuestion(ctx context.Context, tr Translator, q *Question) error {
	if tr == nil {
		return fmt.Errorf("%w: no translator configured", ErrTranslationFailed)
	}

	texts := make([]string, 0, len(q.Alternatives)+1)
	texts = append(texts, q.EnunciationRaw)
	for _, a := range q.Alternatives {
		texts = append(texts, a.Text)
	}

	translated, err := tr.Translate(ctx, texts, q.Language, TargetLanguage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	if len(translated) != len(texts) {
		return fmt.Errorf("%w: got %d strings, want %d", ErrTranslationFailed, len(translated), len(texts))
	}

	q.EnunciationRaw = translated[0]
	q.EnunciationHTML = ToHTML(translated[0])
	q.EnunciationText = ToPlain(translated[0])
	for i := range q.Alternatives {
		q.Alternatives[i].Text = translated[i+1]
	}
	q.Language = TargetLanguage
	return nil
}

// HTTPTranslator talks to a LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPTranslator builds a translator client. Returns nil when no endpoint
// is configured, which callers treat as "translation disabled".
func NewHTTPTranslator(endpoint, apiKey string) *HTTPTranslator {
	if strings.TrimSpace(endpoint) == "" {
		return nil
	}
	return &HTTPTranslator{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type translateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	APIKey string   `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText []string `json:"translatedText"`
	Error          string   `json:"error,omitempty"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      texts,
		Source: normalizeLangCode(source),
		Target: normalizeLangCode(target),
		APIKey: t.apiKey,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("translate status %d", resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode translate response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("translate: %s", parsed.Error)
	}
	return parsed.TranslatedText, nil
}

// normalizeLangCode maps the source's language tags to ISO codes.
func normalizeLangCode(tag string) string {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "ingles", "en":
		return "en"
	case "espanhol", "es":
		return "es"
	case "portugues", "pt", "pt-br":
		return "pt"
	default:
		return strings.ToLower(strings.TrimSpace(tag))
	}
}
