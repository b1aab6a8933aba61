package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/log"
)

// handleEvents streams projected snapshots over SSE. Each event carries
// the complete balance-line set, never a delta; a client that misses an
// event loses nothing because the next one supersedes it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalServerError("streaming unsupported").Write(w)
		return
	}

	sub, err := s.hub.Subscribe(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Snapshot subscribe failed", log.FieldError, err)
		InternalServerError("something went wrong").Write(w)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(core.ProjectBalances(snapshot))
			if err != nil {
				s.logger.ErrorContext(r.Context(), "Snapshot encode failed", log.FieldError, err)
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
