package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Compile-time interface check.
var _ Source = (*HTTPSource)(nil)

// HTTPSource queries an Openverse-compatible image search API and returns
// the URL of the first result.
type HTTPSource struct {
	baseURL string
	http    *http.Client
}

// HTTPSourceOption configures an HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.http = hc
	}
}

// NewHTTPSource creates an HTTPSource against baseURL, e.g.
// "https://api.openverse.org/v1/images".
func NewHTTPSource(baseURL string, opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// searchResponse is the subset of the search payload we consume.
type searchResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// Resolve performs a single-page search and returns the first result URL.
func (s *HTTPSource) Resolve(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s?q=%s&page_size=1", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("imagery: build request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagery: search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagery: search %q: unexpected status %d", query, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("imagery: decode response: %w", err)
	}
	if len(payload.Results) == 0 || payload.Results[0].URL == "" {
		return "", fmt.Errorf("imagery: no results for %q", query)
	}
	return payload.Results[0].URL, nil
}
