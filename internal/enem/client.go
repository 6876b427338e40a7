package enem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matheuss-dsr/dedicandos/internal/shared/metrics"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

const (
	// MinYear and MaxYear bound the supported exam editions.
	MinYear = 2009
	MaxYear = 2023

	// MaxOffset is the question count of a full exam sheet.
	MaxOffset = 180

	// MaxPageSize caps the per-request window accepted by the source.
	MaxPageSize = 50

	defaultTimeout = 15 * time.Second
)

// Client fetches exam questions from the public questions API.
// It performs exactly one outbound request per call; retry policy
// belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a source client. An empty baseURL falls back to the
// public API endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.enem.dev"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidYear reports whether the year is a supported exam edition.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// FetchBatch returns one page of questions for the given exam year.
func (c *Client) FetchBatch(ctx context.Context, year, offset, limit int) (Batch, error) {
	if !ValidYear(year) {
		return Batch{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if offset < 0 {
		return Batch{}, ErrInvalidOffset
	}
	if limit <= 0 {
		return Batch{}, ErrInvalidLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	url := fmt.Sprintf("%s/v1/exams/%d/questions?limit=%d&offset=%d", c.baseURL, year, limit, offset)
	body, err := c.get(ctx, url, year, offset)
	if err != nil {
		return Batch{}, err
	}

	var parsed batchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.IncSourceFetchFailed()
		return Batch{}, fmt.Errorf("%w: decode response: %v", ErrSourceUnavailable, err)
	}
	if parsed.Questions == nil {
		metrics.IncSourceFetchFailed()
		return Batch{}, fmt.Errorf("%w: response missing questions array", ErrSourceUnavailable)
	}

	hasMore := offset+len(parsed.Questions) < MaxOffset
	if parsed.Metadata != nil {
		hasMore = parsed.Metadata.HasMore
	}
	return Batch{Questions: parsed.Questions, HasMore: hasMore}, nil
}

// FetchQuestion returns the full body of a single question by its exam index.
// Saved exams store only (year, index) pairs and re-fetch content on demand.
func (c *Client) FetchQuestion(ctx context.Context, year, index int) (Question, error) {
	if !ValidYear(year) {
		return Question{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if index <= 0 {
		return Question{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	url := fmt.Sprintf("%s/v1/exams/%d/questions/%d", c.baseURL, year, index)
	body, err := c.get(ctx, url, year, index)
	if err != nil {
		return Question{}, err
	}

	var q Question
	if err := json.Unmarshal(body, &q); err != nil {
		metrics.IncSourceFetchFailed()
		return Question{}, fmt.Errorf("%w: decode question: %v", ErrSourceUnavailable, err)
	}
	return q, nil
}

func (c *Client) get(ctx context.Context, url string, year, position int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncSourceFetchFailed()
		telemetry.Error("enem.fetch_failed", map[string]any{
			"year":     year,
			"position": position,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncSourceFetchFailed()
		telemetry.Error("enem.fetch_failed", map[string]any{
			"year":     year,
			"position": position,
			"status":   resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncSourceFetchFailed()
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	return body, nil
}
