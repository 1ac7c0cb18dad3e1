package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/depot/internal/card"
	"github.com/starford/depot/internal/render"
	"github.com/starford/depot/internal/search"
	"github.com/starford/depot/internal/sse"
)

// streamSink renders a catalog load into a view's search index and streams
// each card to the page as it is built.
type streamSink struct {
	stream   *sse.Stream
	html     *render.HTML
	index    *search.Index
	manifest string
	logger   *slog.Logger
}

func newStreamSink(w http.ResponseWriter, html *render.HTML, index *search.Index, manifest string, logger *slog.Logger) (*streamSink, error) {
	stream, err := sse.NewStream(w)
	if err != nil {
		return nil, err
	}
	return &streamSink{stream: stream, html: html, index: index, manifest: manifest, logger: logger}, nil
}

func (s *streamSink) Reset() {
	s.index.Reset()
}

func (s *streamSink) Append(c card.Card) error {
	i, visible := s.index.Add(c)
	markup, err := s.html.Card(render.CardView{Index: i, Card: c, Visible: visible})
	if err != nil {
		return err
	}
	return s.stream.Send("card", cardEvent{Index: i, Visible: visible, HTML: markup})
}

func (s *streamSink) Fail(_ error) {
	s.index.Reset()
	markup, err := s.html.ErrorPanel(s.manifest)
	if err != nil {
		s.logger.Error("render error panel failed", slog.String("error", err.Error()))
		return
	}
	if err := s.stream.Send("failed", failedEvent{HTML: markup}); err != nil {
		s.logger.Debug("send failed event", slog.String("error", err.Error()))
	}
}

func (s *streamSink) done() error {
	return s.stream.Send("done", doneEvent{Cards: s.index.Len()})
}
