package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/888Greys/rag-ai/internal/domain"
)

// sseWriter relays stream events to the client as server-sent events.
// Headers go out lazily on the first event, so early failures can still
// use a normal JSON error response.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	opened  bool
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) started() bool {
	return s.opened
}

func (s *sseWriter) open() {
	if s.opened {
		return
	}
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.opened = true
}

type ssePayload struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// Send implements service.TokenSink.
func (s *sseWriter) Send(event domain.StreamEvent) error {
	if event.Err != nil {
		// The coordinator reports the terminal error itself.
		return nil
	}
	return s.emit("token", ssePayload{Token: event.Token})
}

func (s *sseWriter) sendError(err error) {
	_ = s.emit("error", ssePayload{Error: err.Error()})
}

func (s *sseWriter) sendDone() {
	_ = s.emit("done", ssePayload{})
}

func (s *sseWriter) emit(event string, payload ssePayload) error {
	s.open()
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
