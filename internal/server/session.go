package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/civicquery/civicquery/internal/rag"
	"github.com/civicquery/civicquery/internal/router"
)

// errClientGone marks a write failure caused by the peer dropping the
// connection mid-stream. This is expected churn, not an internal error.
var errClientGone = errors.New("client disconnected")

// chatInput is one inbound turn. chat_history is accepted for wire
// compatibility but not used; each turn is answered independently.
type chatInput struct {
	ChatInput   string      `json:"chat_input"`
	ChatHistory [][2]string `json:"chat_history"`
}

// tokenMessage carries one streamed answer fragment.
type tokenMessage struct {
	Token string `json:"token"`
}

// endMessage terminates one answer stream and carries its citations.
type endMessage struct {
	EndOfStream bool           `json:"end_of_stream"`
	Sources     []rag.Citation `json:"sources"`
}

// handleChat upgrades the connection and serves turns sequentially until
// the client disconnects.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("chat session opened", "remote", conn.RemoteAddr())

	for {
		var in chatInput
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat session ended abnormally", "error", err)
			} else {
				s.logger.Info("chat session closed", "remote", conn.RemoteAddr())
			}
			return
		}

		if strings.TrimSpace(in.ChatInput) == "" {
			continue
		}

		if err := s.serveTurn(r.Context(), conn, in.ChatInput); err != nil {
			if errors.Is(err, errClientGone) {
				s.logger.Info("chat session closed mid-stream", "remote", conn.RemoteAddr())
				return
			}
			s.logger.Error("turn failed", "error", err)
			// 1011: internal error. Best effort; the client may be gone.
			msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal error")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

// serveTurn produces and streams the answer for one user input.
func (s *Server) serveTurn(ctx context.Context, conn *websocket.Conn, input string) error {
	kind := router.Classify(input)
	if kind != router.KindQuestion {
		return s.stream(conn, router.Response(kind), []rag.Citation{})
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	answer, err := s.chain.Ask(genCtx, input)
	if err != nil {
		return err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []rag.Citation{}
	}
	return s.stream(conn, answer.Text, sources)
}

// stream sends the answer word by word, then the terminal message. The
// per-token delay paces the client-side typing effect.
func (s *Server) stream(conn *websocket.Conn, text string, sources []rag.Citation) error {
	for _, word := range strings.Fields(text) {
		if err := conn.WriteJSON(tokenMessage{Token: word + " "}); err != nil {
			return fmt.Errorf("%w: %v", errClientGone, err)
		}
		time.Sleep(s.tokenDelay)
	}
	if err := conn.WriteJSON(endMessage{EndOfStream: true, Sources: sources}); err != nil {
		return fmt.Errorf("%w: %v", errClientGone, err)
	}
	return nil
}
