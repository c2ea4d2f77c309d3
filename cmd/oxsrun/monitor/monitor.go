// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package monitor serves a live view of a run's event log over HTTP and
// websocket (SPEC_FULL §2 "optional monitor endpoint"), grounded on
// niceyeti-tabular/tabular/server's single-process gorilla/websocket
// broadcast server, generalized here to multiple concurrently-connected
// clients.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cpmech/oxscore/cache"
	"github.com/cpmech/oxscore/driver"
)

const (
	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves GET /events (a JSON snapshot of the ring buffer) and
// GET /ws (a websocket stream of every Event as it arrives).
type Server struct {
	ring *cache.EventRing

	mu      sync.Mutex
	clients map[chan driver.Event]struct{}
}

// New builds a Server backed by ring. ring is read for the /events
// snapshot; live events reach connected websocket clients only through
// Broadcast, which the driver's OnEvent hook is expected to call.
func New(ring *cache.EventRing) *Server {
	return &Server{
		ring:    ring,
		clients: make(map[chan driver.Event]struct{}),
	}
}

// ListenAndServe blocks serving addr. Run it in its own goroutine.
func (s *Server) ListenAndServe(addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/events", s.serveSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	return http.ListenAndServe(addr, r)
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ring.Snapshot())
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer ws.Close()

	ch := make(chan driver.Event, 64)
	s.addClient(ch)
	defer s.removeClient(ch)

	for _, ev := range s.ring.Snapshot() {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(ev); err != nil {
			return
		}
	}

	for ev := range ch {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (s *Server) addClient(ch chan driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[ch] = struct{}{}
}

func (s *Server) removeClient(ch chan driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, ch)
	close(ch)
}

// Broadcast fans ev out to every connected websocket client. A client
// whose buffer is full misses this event (it stays connected) rather than
// blocking the driver loop.
func (s *Server) Broadcast(ev driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}
