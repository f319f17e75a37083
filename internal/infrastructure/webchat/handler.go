package webchat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"Cadence/internal/articulation"
	"Cadence/internal/domain"
)

// RunTurn plays one user turn against the sink.
type RunTurn func(ctx context.Context, sessionID, text string, sink articulation.Sink) error

// Handler serves the browser chat surface. Each websocket connection maps
// to one session (client-supplied via ?session=, otherwise assigned) and
// receives the articulated action stream as JSON frames. Closing the
// connection cancels any in-flight playback.
type Handler struct {
	run      RunTurn
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler wires the turn runner.
func NewHandler(run RunTurn, logger *slog.Logger) *Handler {
	return &Handler{
		run: run,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes exposes the chat socket and the health probe.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	h.logger.Info("webchat connected", "session", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	turns := make(chan string)
	go h.readPump(ctx, conn, turns, cancel)

	sink := &socketSink{conn: conn}
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("webchat disconnected", "session", sessionID)
			return
		case text := <-turns:
			if err := h.run(ctx, sessionID, text, sink); err != nil {
				if ctx.Err() != nil {
					return
				}
				h.logger.Error("turn failed", "session", sessionID, "error", err)
			}
		}
	}
}

// readPump owns the read side of the connection. It forwards turn frames
// and cancels the connection context when the peer goes away.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, turns chan<- string, cancel context.CancelFunc) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &frame); err != nil || strings.TrimSpace(frame.Text) == "" {
			continue
		}

		select {
		case turns <- frame.Text:
		case <-ctx.Done():
			return
		}
	}
}

// socketSink streams delivered actions to the browser, one JSON frame per
// action in wire form.
type socketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

var _ articulation.Sink = (*socketSink)(nil)

func (s *socketSink) Deliver(_ context.Context, action domain.ActionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(action); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
