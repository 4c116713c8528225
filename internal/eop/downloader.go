package eop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Downloader fetches data files over HTTP into a local directory, keyed by
// the URL's base name. A file already on disk is reused without a request, so
// repeated runs work offline once the data is present.
type Downloader struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDownloader creates a downloader writing into dir.
func NewDownloader(dir string, timeout time.Duration, logger *slog.Logger) *Downloader {
	return &Downloader{
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch ensures the file behind rawURL exists locally and returns its path.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing data URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("data URL %q has no file name", rawURL)
	}
	dest := filepath.Join(d.dir, name)

	if _, err := os.Stat(dest); err == nil {
		d.logger.Info("using existing data file", "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	d.logger.Info("downloading data file", "url", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "fast-eci/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	// Write through a temp file so an interrupted download never leaves a
	// half-written file that later runs would trust.
	tmp, err := os.CreateTemp(d.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("moving data file into place: %w", err)
	}

	d.logger.Info("downloaded data file", "path", dest, "bytes", n)
	return dest, nil
}
