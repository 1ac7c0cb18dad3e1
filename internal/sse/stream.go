package sse

import (
	"errors"
	"net/http"
)

// Stream writes events to a single SSE response.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStream sends the SSE response headers and returns a Stream.
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes one event with a JSON-encoded data line and flushes it.
func (s *Stream) Send(event string, data any) error {
	raw, err := encode(event, data)
	if err != nil {
		return err
	}
	return s.write(raw)
}

func (s *Stream) write(raw []byte) error {
	if _, err := s.w.Write(raw); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
