// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cpmech/oxscore/cache"
	"github.com/cpmech/oxscore/driver"
)

func newTestServer() (*Server, *httptest.Server) {
	ring := cache.NewEventRing(4)
	ring.Push(driver.Event{StateId: 1, IterationCount: 1})
	s := New(ring)

	r := mux.NewRouter()
	r.HandleFunc("/events", s.serveSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	return s, httptest.NewServer(r)
}

func Test_events_snapshot_serves_ring_contents(tst *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/events")
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var events []driver.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		tst.Fatalf("unexpected decode error: %v", err)
	}
	if len(events) != 1 || events[0].StateId != 1 {
		tst.Errorf("expected the one seeded event, got %+v", events)
	}
}

func Test_websocket_stream_delivers_snapshot_then_live_events(tst *testing.T) {
	s, ts := newTestServer()
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		tst.Fatalf("unexpected dial error: %v", err)
	}
	defer conn.Close()

	var first driver.Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		tst.Fatalf("unexpected error reading snapshot event: %v", err)
	}
	if first.StateId != 1 {
		tst.Errorf("expected the seeded snapshot event first, got %+v", first)
	}

	// give the server a moment to register the client before broadcasting
	time.Sleep(50 * time.Millisecond)
	s.Broadcast(driver.Event{StateId: 2, IterationCount: 2})

	var second driver.Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&second); err != nil {
		tst.Fatalf("unexpected error reading broadcast event: %v", err)
	}
	if second.StateId != 2 {
		tst.Errorf("expected the broadcast event second, got %+v", second)
	}
}

func Test_broadcast_drops_rather_than_blocks_on_full_client_buffer(tst *testing.T) {
	ring := cache.NewEventRing(4)
	s := New(ring)
	ch := make(chan driver.Event) // unbuffered, never drained
	s.addClient(ch)
	defer s.removeClient(ch)

	done := make(chan struct{})
	go func() {
		s.Broadcast(driver.Event{StateId: 9})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		tst.Fatalf("Broadcast blocked on a full client channel instead of dropping")
	}
}
