package tle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://celestrak.org/NORAD/elements/gp.php"

// maxResponseBytes bounds how much of a TLE response is read. A single
// catalog's element set is a few hundred bytes.
const maxResponseBytes = 1 << 20

// Fetcher retrieves element sets for single catalog numbers from a
// CelesTrak-style gp.php endpoint.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher against baseURL, or the CelesTrak default if
// baseURL is empty.
func NewFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Fetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the configured endpoint.
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// FetchCatalog performs an HTTP GET for one NORAD catalog number and returns
// the raw TLE bytes.
func (f *Fetcher) FetchCatalog(ctx context.Context, catnr int) ([]byte, error) {
	url := fmt.Sprintf("%s?CATNR=%d&FORMAT=tle", f.baseURL, catnr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "fast-eci/1.0")

	f.logger.Debug("fetching TLE data", "url", url)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d fetching catalog %d", resp.StatusCode, catnr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response for catalog %d", catnr)
	}

	return body, nil
}
