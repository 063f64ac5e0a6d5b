package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const heartbeatInterval = 15 * time.Second

// VideoEvents streams the caller's terminal job transitions as server-sent
// events, replacing fixed-interval history polling. Clients reconcile missed
// events by re-fetching history on reconnect.
func (a *App) VideoEvents(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	// The stream outlives the server's write timeout; push the deadline out
	// before each write instead.
	rc := http.NewResponseController(w)

	ch, cancel := a.Events.Subscribe(userID)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.SetWriteDeadline(time.Now().Add(heartbeatInterval * 2))
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			_ = rc.SetWriteDeadline(time.Now().Add(heartbeatInterval * 2))
			fmt.Fprintf(w, "event: video\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			_ = rc.SetWriteDeadline(time.Now().Add(heartbeatInterval * 2))
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
