// Package web serves a small local dashboard with dictation history,
// usage stats, and a live state feed over websocket.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voxtype/storage"
)

//go:embed static/*
var staticFiles embed.FS

// The dashboard binds to localhost only, so cross-origin checks add
// nothing.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the dashboard HTTP server.
type Server struct {
	db   *storage.DB
	port int
	hub  *Hub

	mu    sync.RWMutex
	state string
}

// NewServer creates a dashboard server. db may be nil when history is
// disabled; the history and stats endpoints then return 404.
func NewServer(db *storage.DB, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:    db,
		port:  port,
		hub:   hub,
		state: "idle",
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/ws", s.handleWebSocket)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("web dashboard listening", "url", fmt.Sprintf("http://127.0.0.1:%d", s.port))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// BroadcastState records the dictation state and pushes it to all
// connected clients.
func (s *Server) BroadcastState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeState,
		Data: StateMessage{State: state},
	})
}

// BroadcastSession pushes a completed dictation to all connected
// clients.
func (s *Server) BroadcastSession(sess *storage.Session) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeSession,
		Data: sessionMessage(sess),
	})
}

func (s *Server) currentState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
