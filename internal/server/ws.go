package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
)

// Message types sent to websocket clients.
const (
	MessageHello  = "hello"
	MessageResult = "result"
	MessageError  = "error"
)

// WSRequest is a query sent by a websocket client. Either Cypher or Name is set; Ref is
// echoed back so the client can match replies to requests.
type WSRequest struct {
	Ref    string            `json:"ref"`
	Cypher string            `json:"cypher,omitempty"`
	Params map[string]any    `json:"params,omitempty"`
	Name   string            `json:"name,omitempty"`
	Args   map[string]string `json:"args,omitempty"`
}

// WSMessage is a frame sent to a websocket client.
type WSMessage struct {
	Type    string              `json:"type"`
	Session string              `json:"session,omitempty"`
	Ref     string              `json:"ref,omitempty"`
	Result  *neoviz.QueryResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// wsConn serializes writes to a websocket.Conn. gorilla/websocket allows one concurrent
// writer only, and replies are written from one goroutine per request.
type wsConn struct {
	c       *websocket.Conn
	writeMu sync.Mutex
}

func (w *wsConn) send(msg WSMessage) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.c.WriteJSON(msg)
}

// handleWebSocket runs a query session. The server greets the client with a hello frame
// carrying the session id; every text frame received afterwards is a WSRequest answered
// by one result or error frame. Requests run concurrently and are cancelled when the
// client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer c.Close()

	session := uuid.NewString()
	logger := s.logger.With("session", session)
	conn := &wsConn{c: c}

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	if err := conn.send(WSMessage{Type: MessageHello, Session: session}); err != nil {
		logger.Warn("ws hello failed", "err", err)
		return
	}
	logger.Debug("ws session started")

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("ws read ended", "err", err)
			}
			return
		}

		var req WSRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := conn.send(WSMessage{Type: MessageError, Error: "invalid request: " + err.Error()}); err != nil {
				return
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := s.answer(ctx, req)
			if err := conn.send(msg); err != nil {
				logger.Debug("ws write failed", "ref", req.Ref, "err", err)
			}
		}()
	}
}

func (s *Server) answer(ctx context.Context, req WSRequest) WSMessage {
	var (
		res *neoviz.QueryResult
		err error
	)
	if req.Name != "" {
		res, err = s.svc.Named(ctx, req.Name, req.Args)
	} else {
		res, err = s.svc.Query(ctx, req.Cypher, req.Params)
	}
	if err != nil {
		return WSMessage{Type: MessageError, Ref: req.Ref, Error: err.Error()}
	}
	return WSMessage{Type: MessageResult, Ref: req.Ref, Result: res}
}
