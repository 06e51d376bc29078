//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// inboundMessage is a StreamMessage as read from the client, with Data left
// raw until Type is known.
type inboundMessage struct {
	Type string              `json:"type"`
	Data jsoniter.RawMessage `json:"data"`
}

// handleStream handles GET /api/sessions/{id}/stream. The client receives a
// hello with the session state and then every outcome produced by the session,
// whichever client sent the event. Clients may send {"type":"event","data":{...}}
// frames to drive the session over the same socket.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ls, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Session "+id+" not found")
		return
	}

	sub := ls.subscribe()
	if sub == nil {
		s.respondError(w, http.StatusGone, "Session "+id+" is closed")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ls.unsubscribe(sub)
		s.log.Warnf("Websocket upgrade for session %s failed: %v", id, err)
		return
	}
	s.log.Debugf("Stream opened for session %s from %s", id, getClientIP(r))

	done := make(chan struct{})
	go s.writeLoop(conn, sub, ls.snapshot(), done)
	s.readLoop(r.Context(), conn, ls, sub)

	ls.unsubscribe(sub)
	<-done
	conn.Close()
	s.log.Debugf("Stream closed for session %s", id)
}

// readLoop applies inbound events to the session. Outcomes go to every
// subscriber; errors and ping replies go only to this client's sub.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, ls *liveSession, sub chan StreamMessage) {
	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnf("Websocket read error: %v", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ls.send(sub, StreamMessage{Type: MsgTypeOutcome, Error: "invalid message: " + err.Error()})
			continue
		}

		switch msg.Type {
		case MsgTypeEvent:
			e, err := session.DecodeEvent(msg.Data)
			if err != nil {
				ls.send(sub, StreamMessage{Type: MsgTypeOutcome, Error: err.Error()})
				continue
			}
			if _, err := ls.apply(ctx, []session.Event{e}); err != nil {
				return
			}
		case MsgTypePing:
			ls.send(sub, StreamMessage{Type: MsgTypePing, Success: true, Data: map[string]interface{}{
				"timestamp": time.Now().Unix(),
			}})
		default:
			ls.send(sub, StreamMessage{Type: msg.Type, Error: "unknown message type"})
		}
	}
}

// writeLoop owns all writes to conn. It exits when sub is closed.
func (s *Server) writeLoop(conn *websocket.Conn, sub <-chan StreamMessage, hello SessionResponse, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(StreamMessage{Type: MsgTypeHello, Data: hello, Success: true}); err != nil {
		conn.Close()
		return
	}

	for {
		select {
		case msg, ok := <-sub:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debugf("Websocket write failed: %v", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
