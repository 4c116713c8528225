package tle

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const issTLE = "ISS (ZARYA)\n1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005\n2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09\n"

// TestFetchCatalogSuccess verifies the query string, the User-Agent header
// and the returned body for a normal fetch.
func TestFetchCatalogSuccess(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(issTLE))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
	data, err := fetcher.FetchCatalog(context.Background(), 25544)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != issTLE {
		t.Errorf("body mismatch: got %d bytes, want %d", len(data), len(issTLE))
	}
	if gotQuery != "CATNR=25544&FORMAT=tle" {
		t.Errorf("query = %q, want %q", gotQuery, "CATNR=25544&FORMAT=tle")
	}
	if !strings.HasPrefix(gotUA, "fast-eci/") {
		t.Errorf("User-Agent = %q, want fast-eci prefix", gotUA)
	}
}

// TestFetchCatalogHTTPError verifies error handling for non-200 responses.
func TestFetchCatalogHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
	_, err := fetcher.FetchCatalog(context.Background(), 25544)
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "25544") {
		t.Errorf("error should name the catalog number: %v", err)
	}
}

// TestFetchCatalogEmptyBody verifies an empty response is rejected rather
// than handed to the parser as a zero-entry success.
func TestFetchCatalogEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
	_, err := fetcher.FetchCatalog(context.Background(), 25544)
	if err == nil {
		t.Fatal("expected error for empty response, got nil")
	}
}

// TestFetchCatalogContextCancel verifies a cancelled context aborts the
// request instead of waiting out the HTTP timeout.
func TestFetchCatalogContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewFetcher(server.URL, 30*time.Second, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fetcher.FetchCatalog(ctx, 25544)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancellation, got nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not return after context cancellation")
	}
}

// TestFetcherDefaultURL verifies an empty base URL falls back to CelesTrak.
func TestFetcherDefaultURL(t *testing.T) {
	fetcher := NewFetcher("", 5*time.Second, testLogger)
	if !strings.Contains(fetcher.BaseURL(), "celestrak.org") {
		t.Errorf("default base URL = %q, want celestrak.org", fetcher.BaseURL())
	}
}
