// Package testutil provides shared test helpers for serving catalog sites.
package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// Resource is one file served by a test site.
type Resource struct {
	Status int    // defaults to 200
	Body   string // returned on GET
	Length string // Content-Length sent on HEAD; defaults to len(Body)
}

// Site is an in-memory static site.
type Site struct {
	*httptest.Server

	mu        sync.Mutex
	resources map[string]Resource
	hits      map[string]int
}

// NewSite starts a static site serving resources keyed by URL path
// (e.g. "/files.json"). Unknown paths return 404.
func NewSite(t *testing.T, resources map[string]Resource) *Site {
	t.Helper()
	s := &Site{resources: resources, hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the site root with a trailing slash.
func (s *Site) BaseURL() string {
	return s.URL + "/"
}

// Set replaces or adds a resource.
func (s *Site) Set(path string, r Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[path] = r
}

// Hits returns how many requests path has received.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, ok := s.resources[r.URL.Path]
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	length := strconv.Itoa(len(res.Body))
	if r.Method == http.MethodHead && res.Length != "" {
		length = res.Length
	}
	w.Header().Set("Content-Length", length)
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, res.Body)
	}
}

// Logger returns a logger that discards everything below error level.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
