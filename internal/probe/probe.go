// Package probe checks whether catalog files exist using metadata-only
// requests.
package probe

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/starford/depot/internal/models"
)

// Resolver turns a possibly relative file URL into an absolute one.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// Prober issues HEAD requests against file URLs.
type Prober struct {
	http     *http.Client
	resolver Resolver
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a Prober. A zero timeout leaves each probe bounded only by ctx.
func New(hc *http.Client, resolver Resolver, timeout time.Duration, logger *slog.Logger) *Prober {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{http: hc, resolver: resolver, timeout: timeout, logger: logger}
}

// Probe reports whether f exists and its size from Content-Length. Failures
// are logged and reported as models.Missing.
func (p *Prober) Probe(ctx context.Context, f models.FileDescriptor) models.ProbeResult {
	target := f.URL
	if p.resolver != nil {
		resolved, err := p.resolver.Resolve(f.URL)
		if err != nil {
			p.fail(f, err.Error())
			return models.Missing
		}
		target = resolved
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		p.fail(f, err.Error())
		return models.Missing
	}
	resp, err := p.http.Do(req)
	if err != nil {
		p.fail(f, err.Error())
		return models.Missing
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.fail(f, "HTTP "+strconv.Itoa(resp.StatusCode))
		return models.Missing
	}
	return models.ProbeResult{
		Exists: true,
		Size:   ParseSize(resp.Header.Get("Content-Length")),
	}
}

func (p *Prober) fail(f models.FileDescriptor, reason string) {
	p.logger.Warn("probe failed",
		slog.String("name", f.Name),
		slog.String("url", f.URL),
		slog.String("error", reason))
}

// ParseSize parses a Content-Length value. Anything that is not a finite,
// non-negative number yields 0.
func ParseSize(v string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
