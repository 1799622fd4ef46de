package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"miniball/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The reference host accepts any origin; deployments front this with
	// their own origin policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient is one connected participant.
type wsClient struct {
	conn          *websocket.Conn
	participantID uint8
}

// clientMessage is what a connected participant may send. Type selects
// the payload: "input" carries axes and buttons, "selectTeam" a team id.
type clientMessage struct {
	Type       string `json:"type"`
	Horizontal int8   `json:"h"`
	Vertical   int8   `json:"v"`
	Buttons    uint8  `json:"buttons"`
	Team       uint8  `json:"team"`
}

// WebSocketHub owns all participant connections and the state broadcast.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient

	broadcast chan []byte
	host      *Host
}

// NewWebSocketHub creates a hub bound to a host.
func NewWebSocketHub(host *Host) *WebSocketHub {
	return &WebSocketHub{
		clients:   make(map[*websocket.Conn]*wsClient),
		broadcast: make(chan []byte, 256),
		host:      host,
	}
}

// Run drains the broadcast channel. Call it once, in its own goroutine.
func (h *WebSocketHub) Run() {
	for message := range h.broadcast {
		h.mu.RLock()
		for conn := range h.clients {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()
		IncrementWSMessages()
	}
}

// BroadcastSummary queues one tick summary for all clients. A full queue
// drops the frame; the next tick supersedes it anyway.
func (h *WebSocketHub) BroadcastSummary(s Summary) {
	payload, err := json.Marshal(map[string]interface{}{"event": "state", "data": s})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// ClientCount returns the number of connected participants.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a connection, joins it as a participant, and
// pumps its inputs into the host until it disconnects.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	participantID, ok := h.host.Join()
	if !ok {
		RecordConnectionRejected("full")
		http.Error(w, "all participant slots are taken", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.host.Leave(participantID)
		log.Printf("⚠️ websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, participantID: participantID}

	// Tell the client its slot before the hub starts writing broadcasts
	// to this connection.
	conn.WriteJSON(map[string]interface{}{"event": "joined", "data": map[string]uint8{"participantId": participantID}})

	h.mu.Lock()
	h.clients[conn] = client
	count := len(h.clients)
	h.mu.Unlock()
	UpdateWSConnections(count)
	log.Printf("📱 participant %d connected (%d total)", participantID, count)

	go h.readLoop(client)
}

func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		h.host.Leave(client.participantID)

		h.mu.Lock()
		delete(h.clients, client.conn)
		count := len(h.clients)
		h.mu.Unlock()
		client.conn.Close()

		UpdateWSConnections(count)
		log.Printf("📱 participant %d disconnected (%d remaining)", client.participantID, count)
	}()

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue // malformed input is dropped, not fatal
		}

		switch msg.Type {
		case "input":
			h.host.Submit(client.participantID, sim.InGameInput(msg.Horizontal, msg.Vertical, msg.Buttons))
		case "selectTeam":
			h.host.Submit(client.participantID, sim.SelectTeamInput(msg.Team))
		}
	}
}
