package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"sysmon/internal/logger"
)

// Hub fans every ingested snapshot out to connected websocket clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		upgrader: websocket.Upgrader{
			// The dashboard endpoint is read-only; any origin may watch.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("ws: client connected", "total_clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("ws: client disconnected", "total_clients", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.log.Warn("ws: client send buffer full, dropping client")
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast queues one stored snapshot for every connected client. Dropped
// silently if the hub's buffer is full; live viewers only ever need the
// next snapshot anyway.
func (h *Hub) Broadcast(stored StoredSnapshot) {
	message, err := json.Marshal(stored)
	if err != nil {
		h.log.Error("ws: failed to marshal snapshot", "error", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("ws: broadcast buffer full, snapshot dropped")
	}
}

// ServeWS upgrades an HTTP request into a snapshot subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws: upgrade failed", "error", err)
		return
	}

	client := NewClient(h, conn, h.log)
	h.register <- client

	go client.writePump()
	go client.readPump()
}
