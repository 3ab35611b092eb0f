package websocket

import (
	"sync"

	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

// Hub 운영용 WebSocket 연결 관리 및 큐 상태 브로드캐스트
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	// 브로드캐스트 채널
	broadcast chan *Message

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	stopChan chan struct{}
}

// Message WebSocket 메시지
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// QueueDepthMessage 맵별 큐 길이 스냅샷
type QueueDepthMessage struct {
	MapID      int32 `json:"mapId"`
	SheepDepth int   `json:"sheepDepth"`
	WolfDepth  int   `json:"wolfDepth"`
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
	}
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.stopChan:
			return
		}
	}
}

// Stop Hub 중지
func (h *Hub) Stop() {
	close(h.stopChan)
}

// BroadcastQueueDepth 큐 길이 스냅샷 브로드캐스트
func (h *Hub) BroadcastQueueDepth(mapID int32, sheepDepth, wolfDepth int) {
	msg := &Message{
		Type: "queue_depth",
		Payload: QueueDepthMessage{
			MapID:      mapID,
			SheepDepth: sheepDepth,
			WolfDepth:  wolfDepth,
		},
	}

	select {
	case h.broadcast <- msg:
	default:
		// 브로드캐스트 채널이 가득 차면 스냅샷은 버린다. 다음 매치에서 다시 나간다.
	}
}

// registerClient 클라이언트 등록
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	logger.Info("WebSocket client registered",
		"remoteAddr", client.remoteAddr,
		"totalClients", len(h.clients))
}

// unregisterClient 클라이언트 해제
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		close(client.send)
		logger.Info("WebSocket client unregistered",
			"remoteAddr", client.remoteAddr,
			"totalClients", len(h.clients))
	}
}

// broadcastMessage 메시지 브로드캐스트
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// 채널이 가득 찬 경우 연결 해제
			logger.Warn("Client send channel full, unregistering",
				"remoteAddr", client.remoteAddr)
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}
