// Package websocket implements a broadcast hub that pushes tracker progress
// events to connected browser clients.
package websocket

import (
	"encoding/json"
	"log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new Hub. Call Run in a goroutine before use.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register, unregister and broadcast events until the process
// exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastJSON marshals v and sends it to every connected client.
func (h *Hub) BroadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("websocket: failed to marshal broadcast payload: %v", err)
		return
	}
	h.broadcast <- data
}
