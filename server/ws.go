package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teranos/jsdoc-builder/hook"
	"github.com/teranos/jsdoc-builder/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = maxBodyBytes
)

// wsReply answers one WebSocket request. Result is null when the hook
// declined the unit.
type wsReply struct {
	RequestID string                `json:"requestId"`
	Result    *hook.TransformResult `json:"result"`
	Error     string                `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugw("WebSocket upgrade failed", logger.FieldError, err.Error())
		return
	}

	clientID := uuid.NewString()
	ctx, cancel := context.WithCancel(logger.WithRequestID(r.Context(), clientID))
	send := make(chan wsReply, 16)

	done := make(chan struct{})
	go func() {
		s.writePump(conn, send)
		close(done)
	}()

	var wg sync.WaitGroup
	s.logger.Debugw("WebSocket client connected", "client_id", clientID)
	s.readPump(ctx, conn, send, done, &wg)

	cancel()
	wg.Wait()
	close(send)
	s.logger.Debugw("WebSocket client disconnected", "client_id", clientID)
}

// readPump decodes requests and answers each on its own goroutine; replies
// may arrive out of order and are matched by requestId.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, send chan<- wsReply, done <-chan struct{}, wg *sync.WaitGroup) {
	reply := func(r wsReply) {
		select {
		case send <- r:
		case <-done:
		case <-ctx.Done():
		}
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				s.logger.Warnw("WebSocket read error", logger.FieldError, err.Error())
			}
			return
		}

		var req TransformRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply(wsReply{Error: "invalid request body: " + err.Error()})
			continue
		}
		if err := validate.Struct(&req); err != nil {
			reply(wsReply{RequestID: req.RequestID, Error: "invalid request: " + err.Error()})
			continue
		}

		wg.Add(1)
		go func(req TransformRequest) {
			defer wg.Done()
			res, err := s.transform(ctx, req)
			out := wsReply{RequestID: req.RequestID, Result: res}
			if err != nil {
				out.Error = err.Error()
			}
			reply(out)
		}(req)
	}
}

// writePump serialises writes and keeps the connection alive with pings.
func (s *Server) writePump(conn *websocket.Conn, send <-chan wsReply) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case reply, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(reply); err != nil {
				s.logger.Debugw("WebSocket write error", logger.FieldError, err.Error())
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
