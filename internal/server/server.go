/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server implements the optional share server: a read-only REST view
// of the open deck plus a websocket feed that lets browsers follow a live
// presentation. It is off by default and enabled via GDS_ENABLE_SERVER or the
// enable_server config key.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/export"
	applog "godeckstudio/internal/log"
	"godeckstudio/internal/storage"
)

// Server exposes a single open deck. The presenter token guards the
// presenter endpoints; viewers need no credentials.
type Server struct {
	mu    sync.RWMutex
	dh    *storage.DeckHandle
	token string

	hub     *hub
	httpSrv *http.Server
	log     *slog.Logger
}

// New creates a share server for the given deck. token may be empty, which
// leaves the presenter endpoints open (intended for localhost use only).
func New(dh *storage.DeckHandle, token string) *Server {
	s := &Server{
		dh:    dh,
		token: token,
		hub:   newHub(),
		log:   applog.WithComponent("server"),
	}
	go s.hub.run()
	return s
}

// SetDeck swaps the served deck and tells connected viewers to refetch.
func (s *Server) SetDeck(dh *storage.DeckHandle) {
	s.mu.Lock()
	s.dh = dh
	s.mu.Unlock()
	s.hub.Broadcast(PresentEvent{Type: "deck-updated"})
}

// Goto broadcasts a slide change to all viewers.
func (s *Server) Goto(index int) error {
	s.mu.RLock()
	deck := s.dh.Deck
	s.mu.RUnlock()
	if index < 0 || index >= len(deck.Slides) {
		return fmt.Errorf("slide index %d out of range", index)
	}
	s.hub.Broadcast(PresentEvent{
		Type:       "goto",
		SlideID:    deck.Slides[index].ID,
		SlideIndex: index,
		SlideCount: len(deck.Slides),
	})
	return nil
}

// Router builds the HTTP routes. Exposed separately so tests can drive the
// server through httptest without binding a port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/slides", s.handleSlides).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}", s.handleSlide).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}/thumb.png", s.handleThumb).Methods(http.MethodGet)
	api.HandleFunc("/present/goto", s.requireToken(s.handleGoto)).Methods(http.MethodPost)
	r.HandleFunc("/ws/present", s.handleWS)
	return r
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Router()}
	s.log.Info("share server listening", "addr", addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener and disconnects all viewers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) deck() domain.Presentation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dh.Deck
}

func (s *Server) deckRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dh.Root
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+s.token {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.deck())
}

// slideSummary is the list view: enough to build a slide strip without
// pulling full element payloads.
type slideSummary struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Elements int    `json:"elements"`
	HasNotes bool   `json:"hasNotes"`
}

func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	deck := s.deck()
	out := make([]slideSummary, len(deck.Slides))
	for i, sl := range deck.Slides {
		out[i] = slideSummary{ID: sl.ID, Index: i, Elements: len(sl.Elements), HasNotes: sl.Notes != ""}
	}
	writeJSON(w, out)
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	deck := s.deck()
	id := mux.Vars(r)["id"]
	idx := deck.FindSlide(id)
	if idx < 0 {
		http.Error(w, "slide not found", http.StatusNotFound)
		return
	}
	writeJSON(w, deck.Slides[idx])
}

func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	deck := s.deck()
	id := mux.Vars(r)["id"]
	idx := deck.FindSlide(id)
	if idx < 0 {
		http.Error(w, "slide not found", http.StatusNotFound)
		return
	}
	width := 256
	if v := r.URL.Query().Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1920 {
			http.Error(w, "invalid width", http.StatusBadRequest)
			return
		}
		width = n
	}
	png, err := export.RenderSlidePNG(deck.Slides[idx], s.deckRoot(), width, width*9/16)
	if err != nil {
		s.log.Error("render thumb", "slide", id, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type gotoRequest struct {
	SlideIndex int `json:"slideIndex"`
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := s.Goto(req.SlideIndex); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The share server is meant for LAN viewing; cross-origin pages may join.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.hub.register <- c
	go c.writePump(s.hub)
	go c.readPump(s.hub)

	// Greet the new viewer directly so the hello cannot race the register.
	deck := s.deck()
	if hello, err := json.Marshal(PresentEvent{Type: "hello", SlideCount: len(deck.Slides)}); err == nil {
		c.send <- hello
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && !strings.Contains(err.Error(), "broken pipe") {
		applog.WithComponent("server").Error("encode response", "err", err)
	}
}
