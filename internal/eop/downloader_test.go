package eop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloaderFetch(t *testing.T) {
	const body = "BEGIN OBSERVED\n2026 08 19 61271 0.1 0.2 -0.2 0.0004 0 0 0 0 37\nEND OBSERVED\n"

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(body))
	}))
	defer server.Close()

	dir := t.TempDir()
	dl := NewDownloader(dir, 5*time.Second, testLogger)

	path, err := dl.Fetch(context.Background(), server.URL+"/SpaceData/EOP-All.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "EOP-All.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.EqualValues(t, 1, requests.Load())

	// Second fetch finds the file on disk and makes no request.
	path2, err := dl.Fetch(context.Background(), server.URL+"/SpaceData/EOP-All.txt")
	require.NoError(t, err)
	assert.Equal(t, path, path2)
	assert.EqualValues(t, 1, requests.Load())
}

func TestDownloaderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dl := NewDownloader(t.TempDir(), 5*time.Second, testLogger)
	_, err := dl.Fetch(context.Background(), server.URL+"/missing.txt")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestDownloaderBadURL(t *testing.T) {
	dl := NewDownloader(t.TempDir(), 5*time.Second, testLogger)

	_, err := dl.Fetch(context.Background(), "http://example.com/")
	require.Error(t, err)
	assert.ErrorContains(t, err, "no file name")
}

func TestDownloaderLeavesNoPartialFile(t *testing.T) {
	// Server that dies mid-body: headers say 1 MB, connection closes early.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.Write([]byte("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		conn, _, _ := w.(http.Hijacker).Hijack()
		conn.Close()
	}))
	defer server.Close()

	dir := t.TempDir()
	dl := NewDownloader(dir, 5*time.Second, testLogger)

	_, err := dl.Fetch(context.Background(), server.URL+"/EOP-All.txt")
	require.Error(t, err)

	// The destination name must not exist; a later run should re-download
	// rather than trust a truncated file.
	_, statErr := os.Stat(filepath.Join(dir, "EOP-All.txt"))
	assert.True(t, os.IsNotExist(statErr), "truncated download left file in place")
}

func TestDownloaderContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	dl := NewDownloader(t.TempDir(), 30*time.Second, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := dl.Fetch(ctx, server.URL+"/EOP-All.txt")
	require.Error(t, err)
}
