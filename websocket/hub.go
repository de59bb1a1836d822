package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"spotigrab/types"
)

// AllJobs is the subscription key that receives updates for every job
const AllJobs = "all"

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run(ctx context.Context)
	Broadcast(msg types.ProgressMessage)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients and fans job updates out to them
type hub struct {
	// Registered clients keyed by job ID (or AllJobs)
	clients map[string]map[*Client]bool

	broadcast  chan types.ProgressMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.Mutex
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is done
func (h *hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.jobID] == nil {
				h.clients[client.jobID] = make(map[*Client]bool)
			}
			h.clients[client.jobID][client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", zap.String("job", client.jobID))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client.jobID, client)
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected", zap.String("job", client.jobID))

		case message := <-h.broadcast:
			h.mu.Lock()
			h.deliver(message.JobID, message)
			h.deliver(AllJobs, message)
			h.mu.Unlock()
		}
	}
}

// deliver drops clients whose send buffer is full. Caller holds mu.
func (h *hub) deliver(key string, message types.ProgressMessage) {
	for client := range h.clients[key] {
		select {
		case client.send <- message:
		default:
			h.remove(key, client)
		}
	}
}

// remove closes the client's send channel once. Caller holds mu.
func (h *hub) remove(key string, client *Client) {
	clients, ok := h.clients[key]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, key)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, clients := range h.clients {
		for client := range clients {
			h.remove(key, client)
		}
	}
}

// Broadcast queues a progress message; it never blocks the caller
func (h *hub) Broadcast(msg types.ProgressMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast channel full, dropping message", zap.String("job", msg.JobID))
	}
}

// RegisterClient registers a new client with the hub. After the hub stopped the
// client is closed instead.
func (h *hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
