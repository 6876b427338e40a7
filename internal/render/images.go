package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultImageTimeout = 10 * time.Second
	maxImageBytes       = 8 << 20
)

// ImageFetcher downloads remote question images for embedding. Each fetch is
// bounded by its own timeout so one slow host cannot stall a whole render.
type ImageFetcher struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &ImageFetcher{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Fetch downloads one image and reports its type as understood by the PDF
// backend ("PNG", "JPG" or "GIF").
func (f *ImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("image fetch status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(body) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	kind := imageKind(resp.Header.Get("Content-Type"), url)
	if kind == "" {
		return nil, "", fmt.Errorf("unsupported image type for %s", url)
	}
	return body, kind, nil
}

func imageKind(contentType, url string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "PNG"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "JPG"
	case strings.Contains(contentType, "gif"):
		return "GIF"
	}
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "PNG"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "JPG"
	case strings.HasSuffix(lower, ".gif"):
		return "GIF"
	}
	return ""
}
