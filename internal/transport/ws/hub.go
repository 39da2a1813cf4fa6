package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgParticipationUpdate MessageType = "participation_update"
	MsgCampaignStatus      MessageType = "campaign_status"
	MsgError               MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages the consultant WebSocket connections watching campaigns.
// Several consultants (or browser tabs) may watch the same campaign.
type Hub struct {
	conns map[string]map[*Connection]bool // campaignID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	logger *zap.Logger
}

// Connection represents one consultant WebSocket connection
type Connection struct {
	CampaignID   string
	ConsultantID string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to broadcast to a campaign's watchers
type BroadcastMessage struct {
	CampaignID string
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.CampaignID] == nil {
				h.conns[conn.CampaignID] = make(map[*Connection]bool)
			}
			h.conns[conn.CampaignID][conn] = true
			h.mu.Unlock()
			h.logger.Debug("consultant connected",
				zap.String("campaignId", conn.CampaignID),
				zap.String("consultantId", conn.ConsultantID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if watchers, ok := h.conns[conn.CampaignID]; ok && watchers[conn] {
				delete(watchers, conn)
				close(conn.Send)
				if len(watchers) == 0 {
					delete(h.conns, conn.CampaignID)
				}
				h.logger.Debug("consultant disconnected",
					zap.String("campaignId", conn.CampaignID),
					zap.String("consultantId", conn.ConsultantID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.CampaignID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToCampaign sends a message to every consultant watching the
// campaign (implements service.Broadcaster)
func (h *Hub) BroadcastToCampaign(campaignID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		CampaignID: campaignID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectCampaign closes every connection watching the campaign
// (implements service.Broadcaster)
func (h *Hub) DisconnectCampaign(campaignID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns[campaignID] {
		close(conn.Send)
	}
	delete(h.conns, campaignID)
}
