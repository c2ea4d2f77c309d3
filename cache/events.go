// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"sync"

	"github.com/cpmech/oxscore/driver"
)

// EventRing is a fixed-capacity ring buffer of the most recent driver
// events (SPEC_FULL §5 "cache additionally exposes a ring-buffer of the
// last N driver events for the monitor endpoint"), feeding
// cmd/oxsrun/monitor's status/websocket stream without retaining the
// entire event history of a long run.
type EventRing struct {
	mu   sync.Mutex
	buf  []driver.Event
	next int
	size int
}

// NewEventRing allocates a ring holding at most capacity events.
func NewEventRing(capacity int) *EventRing {
	if capacity < 1 {
		capacity = 1
	}
	return &EventRing{buf: make([]driver.Event, capacity)}
}

// Push appends e, overwriting the oldest retained event once the ring is
// full.
func (r *EventRing) Push(e driver.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// PushAll appends every event in es, in order.
func (r *EventRing) PushAll(es []driver.Event) {
	for _, e := range es {
		r.Push(e)
	}
}

// Snapshot returns the retained events in chronological order (oldest
// first), newest last.
func (r *EventRing) Snapshot() []driver.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]driver.Event, r.size)
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
