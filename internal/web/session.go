package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/models"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 << 10
)

// Message types exchanged over the websocket
const (
	TypeSubmit     = "submit"
	TypeTranscript = "transcript"
	TypeError      = "error"
)

// ClientMessage is sent by the page
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TurnView is one turn as the page renders it
type TurnView struct {
	Sender  models.Sender `json:"sender"`
	Text    string        `json:"text"`
	Pending bool          `json:"pending"`
}

// ServerMessage is pushed to the page after every change
type ServerMessage struct {
	Type    string     `json:"type"`
	Turns   []TurnView `json:"turns"`
	Sending bool       `json:"sending"`
	Error   string     `json:"error,omitempty"`
}

// session is one connected widget
type session struct {
	id         string
	conn       *websocket.Conn
	controller *chat.Controller
	logger     *slog.Logger

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		logger: s.logger,
	}
	sess.logger = s.logger.With(slog.String("session_id", sess.id))

	transcript := chat.NewTranscript().WithObserver(func([]models.Turn) {
		sess.push()
	})
	sess.controller = chat.NewController(s.gen,
		chat.WithTranscript(transcript),
		chat.WithLogger(sess.logger),
		chat.WithFailureText(s.failureText),
		chat.WithStateObserver(func(chat.State) {
			sess.push()
		}),
	)

	s.active.Add(1)
	sess.logger.Info("widget connected")
	defer func() {
		sess.close()
		s.active.Add(-1)
		sess.logger.Info("widget disconnected")
	}()

	// Unblock the read loop when the server shuts down
	stop := context.AfterFunc(r.Context(), func() {
		_ = conn.Close()
	})
	defer stop()

	sess.push()
	sess.readLoop(r.Context())
}

func (sess *session) readLoop(ctx context.Context) {
	sess.conn.SetReadLimit(maxMessageSize)
	for {
		var msg ClientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		switch msg.Type {
		case TypeSubmit:
			sess.submit(ctx, msg.Text)
		default:
			sess.send(ServerMessage{Type: TypeError, Error: "unknown message type"})
		}
	}
}

// submit starts a turn. Empty input and submissions while a request is in
// flight are ignored, matching the disabled send button.
func (sess *session) submit(ctx context.Context, text string) {
	ex, err := sess.controller.Begin(text)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return
	case errors.Is(err, chat.ErrBusy):
		sess.logger.Debug("submit ignored while sending")
		return
	case err != nil:
		sess.logger.Warn("submit rejected", slog.String("error", err.Error()))
		return
	}

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		ex.Run(ctx)
	}()
}

// push sends the current transcript and state
func (sess *session) push() {
	if sess.controller == nil {
		return
	}
	turns := sess.controller.Transcript().Turns()
	views := make([]TurnView, len(turns))
	for i, t := range turns {
		views[i] = TurnView{Sender: t.Sender, Text: t.Text, Pending: t.IsPending()}
	}
	sess.send(ServerMessage{
		Type:    TypeTranscript,
		Turns:   views,
		Sending: sess.controller.Busy(),
	})
}

func (sess *session) send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		sess.logger.Error("failed to encode message", slog.String("error", err.Error()))
		return
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		sess.logger.Debug("websocket write failed", slog.String("error", err.Error()))
	}
}

// close tears the widget down; a reply arriving later is dropped
func (sess *session) close() {
	sess.controller.Close()
	sess.wg.Wait()
	_ = sess.conn.Close()
}
