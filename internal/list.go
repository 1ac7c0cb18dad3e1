package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/starford/depot/internal/catalog"
	"github.com/starford/depot/internal/render"
	"github.com/starford/depot/internal/search"
	"github.com/starford/depot/internal/site"
)

// List loads the catalog once and writes the cards matching query to w.
// Without a configured base URL the site directory is served on a loopback
// port for the duration of the load.
func List(ctx context.Context, w io.Writer, query string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg)
	}

	baseURL := cfg.Catalog.BaseURL
	if baseURL == "" {
		stop, url, err := serveSite(cfg.Site.Root, logger)
		if err != nil {
			return err
		}
		defer stop()
		baseURL = url
	}

	loader, err := newLoader(cfg, baseURL, logger)
	if err != nil {
		return err
	}

	var c catalog.Collector
	if err := loader.Load(ctx, &c); err != nil {
		if c.Err != nil {
			_ = render.TerminalError(w, cfg.Catalog.Manifest, c.Err)
		}
		return err
	}

	ix := search.NewIndex()
	for _, cd := range c.Cards {
		ix.Add(cd)
	}
	visible := ix.Apply(query)

	views := make([]render.CardView, len(c.Cards))
	for i, cd := range c.Cards {
		views[i] = render.CardView{Index: i, Card: cd, Visible: visible[i]}
	}
	return render.Terminal(w, views)
}

// serveSite serves root on a loopback listener and returns a stop function
// and the base URL of the site.
func serveSite(root string, logger *slog.Logger) (func(), string, error) {
	fs, err := site.NewFS(root)
	if err != nil {
		return nil, "", fmt.Errorf("init site: %w", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           http.StripPrefix(SitePrefix[:len(SitePrefix)-1], fs),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("site server error", slog.String("error", err.Error()))
		}
	}()
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return stop, "http://" + ln.Addr().String() + SitePrefix, nil
}
