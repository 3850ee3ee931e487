package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local debug page
	},
}

const writeWait = time.Second

// StateStreamHandler pushes the cursor state over a WebSocket whenever a
// new tick has been published.
type StateStreamHandler struct {
	source   StateSource
	interval time.Duration
}

// NewStateStreamHandler creates a StateStreamHandler polling source every
// interval.
func NewStateStreamHandler(source StateSource, interval time.Duration) *StateStreamHandler {
	return &StateStreamHandler{source: source, interval: interval}
}

// ServeHTTP upgrades the connection and streams until the client leaves.
func (h *StateStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// The reader only notices the close frame.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastTick uint64
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		state := h.source.State()
		if state.Ticks == lastTick {
			continue
		}
		lastTick = state.Ticks

		msg, err := json.Marshal(state)
		if err != nil {
			log.Printf("state stream: %v", err)
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
