package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type       string `json:"type"`        // "message"
	SessionKey string `json:"session_key"` // empty for new sessions
	Content    string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format for direct
// replies. Background push frames (progress/complete/error) use their
// own shapes and arrive interleaved with these.
type chatResponse struct {
	Type       string `json:"type"` // "response" or "invalid"
	SessionKey string `json:"session_key"`
	Content    string `json:"content"`
}

// wsSink adapts one websocket connection to the session registry.
// gorilla connections allow a single concurrent writer, and push frames
// race with turn replies, so every write goes through one mutex.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (c *Controller) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sink := &wsSink{conn: conn}
	var registered string
	defer func() {
		if registered != "" {
			c.registry.Remove(registered, sink)
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sink.Send(chatResponse{Type: "invalid", Content: "invalid message format"})
			continue
		}
		if req.Content == "" {
			sink.Send(chatResponse{Type: "invalid", SessionKey: req.SessionKey, Content: "content is required"})
			continue
		}

		key := req.SessionKey
		if key == "" {
			key = uuid.New().String()
		}
		if err := c.store.Ensure(r.Context(), key); err != nil {
			sink.Send(chatResponse{Type: "invalid", SessionKey: key, Content: "failed to open session"})
			continue
		}

		// Re-register if the client switched sessions mid-connection.
		if registered != key {
			if registered != "" {
				c.registry.Remove(registered, sink)
			}
			c.registry.Add(key, sink)
			registered = key
		}

		reply, err := c.HandleTurn(r.Context(), key, req.Content)
		if err != nil {
			log.Printf("chat: turn failed for session %s: %v", key, err)
			sink.Send(chatResponse{Type: "invalid", SessionKey: key, Content: "something went wrong handling that; try again"})
			continue
		}
		sink.Send(chatResponse{Type: "response", SessionKey: key, Content: reply})
	}
}
