// Package catalog orchestrates a catalog load: icon rules, manifest, then a
// sequential probe-and-render pass over every file.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/depot/internal/card"
	"github.com/starford/depot/internal/icons"
	"github.com/starford/depot/internal/models"
)

// Source provides the catalog resources.
type Source interface {
	LoadRules(ctx context.Context) icons.Rules
	Manifest(ctx context.Context) ([]models.FileDescriptor, error)
}

// Prober checks a single file.
type Prober interface {
	Probe(ctx context.Context, f models.FileDescriptor) models.ProbeResult
}

// Sink is the render target of a load.
type Sink interface {
	// Reset clears anything previously rendered.
	Reset()
	// Append renders one card. It is called once per file, in manifest order,
	// as soon as the file has been probed.
	Append(c card.Card) error
	// Fail replaces the render target with a single error panel.
	Fail(err error)
}

// Loader runs catalog loads.
type Loader struct {
	source Source
	prober Prober
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(source Source, prober Prober, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, prober: prober, logger: logger}
}

// Load renders the catalog into sink. A manifest failure is terminal: the
// sink receives Fail and nothing else after Reset. Probe failures only
// affect their own card. Files are probed one at a time in manifest order.
func (l *Loader) Load(ctx context.Context, sink Sink) error {
	sink.Reset()

	rules := l.source.LoadRules(ctx)

	files, err := l.source.Manifest(ctx)
	if err != nil {
		l.logger.Error("could not load manifest", slog.String("error", err.Error()))
		sink.Fail(err)
		return fmt.Errorf("catalog: load manifest: %w", err)
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("catalog: interrupted at file %d: %w", i, err)
		}
		res := l.prober.Probe(ctx, f)
		if err := sink.Append(card.Build(f, res.Exists, res.Size, rules)); err != nil {
			return fmt.Errorf("catalog: append %q: %w", f.Name, err)
		}
	}

	l.logger.Info("catalog rendered", slog.Int("files", len(files)), slog.Int("rules", len(rules)))
	return nil
}

// Collector is a Sink that keeps cards in memory.
type Collector struct {
	Cards []card.Card
	Err   error
}

func (c *Collector) Reset() {
	c.Cards = nil
	c.Err = nil
}

func (c *Collector) Append(cd card.Card) error {
	c.Cards = append(c.Cards, cd)
	return nil
}

func (c *Collector) Fail(err error) {
	c.Cards = nil
	c.Err = err
}
