// Package status serves the liveness endpoint and a websocket feed of agent
// events for external monitors.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/core"
)

// Report is the liveness payload served on GET /.
type Report struct {
	State      string    `json:"state"`
	SessionID  string    `json:"session_id,omitempty"`
	Intent     string    `json:"intent"`
	Auth       string    `json:"auth"`
	Reconnects int       `json:"reconnects"`
	StartedAt  time.Time `json:"started_at"`
	UptimeSecs int64     `json:"uptime_secs"`
}

// Server exposes the agent's lifecycle over HTTP. It reads the supervisor
// through a snapshot function and never mutates agent state.
type Server struct {
	addr     string
	snapshot func() core.Snapshot
	bus      *core.EventBus

	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer builds a status server. bus may be nil, disabling /ws.
func NewServer(addr string, snapshot func() core.Snapshot, bus *core.EventBus) *Server {
	return &Server{
		addr:     addr,
		snapshot: snapshot,
		bus:      bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start listens in a background goroutine until Shutdown.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/ws", s.handleWS)

	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", s.addr).Msg("status server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("status server stopped")
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap := s.snapshot()
	report := Report{
		State:      string(snap.State),
		SessionID:  snap.SessionID,
		Intent:     string(snap.Intent.Mode),
		Auth:       string(snap.Auth),
		Reconnects: snap.Reconnects,
		StartedAt:  snap.StartedAt,
	}
	if report.Intent == "" {
		report.Intent = string(core.IntentIdle)
	}
	if report.Auth == "" {
		report.Auth = string(core.AuthNotStarted)
	}
	if !snap.StartedAt.IsZero() {
		report.UptimeSecs = int64(time.Since(snap.StartedAt).Seconds())
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

// wsEvent is the wire form of a bus event.
type wsEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "event feed disabled", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events := s.bus.Subscribe()
	defer s.bus.Unsubscribe(events)

	// Reader goroutine only to detect the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(wsEvent{
				Type:      string(ev.Type),
				SessionID: ev.SessionID,
				Sender:    ev.Sender,
				Message:   ev.Message,
				Timestamp: ev.Timestamp,
			}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
