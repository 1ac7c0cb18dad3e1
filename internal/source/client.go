// Package source fetches the catalog resources (manifest and icon rules)
// over HTTP relative to a base URL.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/depot/internal/apperr"
)

const maxResourceBytes = 8 << 20 // 8 MB

// Options configures a Client.
type Options struct {
	BaseURL      string
	Manifest     string
	Rules        string
	FetchTimeout time.Duration
	HTTPClient   *http.Client
}

// Client retrieves catalog resources. Concurrent fetches of the same
// resource share a single request.
type Client struct {
	http     *http.Client
	base     *url.URL
	manifest string
	rules    string
	timeout  time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

// New creates a Client. BaseURL must be absolute.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("source: base url must be absolute: %s", opts.BaseURL)
	}
	// The base names a directory; without the slash its last segment would
	// be replaced during resolution.
	if base.Path != "" && !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:     hc,
		base:     base,
		manifest: opts.Manifest,
		rules:    opts.Rules,
		timeout:  opts.FetchTimeout,
		logger:   logger,
	}, nil
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Resolve resolves ref against the base URL.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("source: parse %q: %w", ref, err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// fetch GETs ref and returns the body. Callers asking for the same URL while
// a request is in flight receive the same bytes, which must not be modified.
func (c *Client) fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	ch := c.group.DoChan(target, func() (any, error) {
		// Detached from the first caller so one cancelled page load does not
		// fail the others sharing this request.
		fctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.timeout)
			defer cancel()
		}
		return c.get(fctx, target)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("source: GET %s: %w: HTTP %d", target, apperr.ErrBadStatus, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes))
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", target, err)
	}
	return data, nil
}
