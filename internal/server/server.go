// Package server exposes the chat service over WebSocket plus a health
// endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/civicquery/civicquery/internal/rag"
)

// healthBody is the exact /status response body probes match on.
const healthBody = "App is up and running!"

// QuestionAnswerer answers one question; satisfied by rag.Chain.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
}

// Server holds the HTTP surface of the service.
type Server struct {
	chain      QuestionAnswerer
	logger     *slog.Logger
	tokenDelay time.Duration
	genTimeout time.Duration
	upgrader   websocket.Upgrader
}

// New creates a server around a question-answering chain.
func New(chain QuestionAnswerer, logger *slog.Logger, tokenDelay, genTimeout time.Duration) *Server {
	return &Server{
		chain:      chain,
		logger:     logger,
		tokenDelay: tokenDelay,
		genTimeout: genTimeout,
		upgrader: websocket.Upgrader{
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes returns the service mux: the chat socket and the health probe.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/chat", s.handleChat)
	mux.HandleFunc("/status", s.handleStatus)
	return withCORS(mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(healthBody))
}

// withCORS allows any origin. The service has no cookies or credentials,
// so a permissive policy is safe here.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
