/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	applog "godeckstudio/internal/log"
)

// PresentEvent is the wire format for the present-mode feed. Viewers follow
// the presenter's slide changes; deck-updated tells them to refetch.
type PresentEvent struct {
	Type       string `json:"type"` // "goto", "deck-updated", "hello"
	SlideID    string `json:"slideId,omitempty"`
	SlideIndex int    `json:"slideIndex,omitempty"`
	SlideCount int    `json:"slideCount,omitempty"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// hub fans PresentEvents out to all connected viewers. Register, unregister
// and broadcast all funnel through run's select so no client map locking is
// needed.
type hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan PresentEvent
	done       chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub() *hub {
	return &hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan PresentEvent, 16),
		done:       make(chan struct{}),
	}
}

func (h *hub) run() {
	log := applog.WithComponent("server.hub")
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			log.Debug("viewer connected", "viewers", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Debug("viewer disconnected", "viewers", len(h.clients))
			}
		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				log.Error("marshal event", "err", err)
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow consumer; drop it rather than stall the feed.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

func (h *hub) stop() { close(h.done) }

// Broadcast queues an event for all connected viewers.
func (h *hub) Broadcast(ev PresentEvent) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

func (c *client) writePump(h *hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards viewer messages; the feed is one-way. It exists to
// process control frames and to notice closed connections.
func (c *client) readPump(h *hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
