// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lock implements the reader/writer lock state machine shared by
// every simulation state in a run: INVALID -> DEP -> READ/WRITE, with a
// WRITE lock finalized into a permanent READ lock once an id is assigned.
package lock

import (
	"sync"

	"github.com/cpmech/gosl/chk"
)

// Kind identifies which lock state a Key currently holds.
type Kind int

// Lock states, matching the Oxs_Lock state machine: INVALID is the zero
// value so a freshly declared Key never pretends to hold a lock.
const (
	INVALID Kind = iota
	DEP
	READ
	WRITE
)

func (k Kind) String() string {
	switch k {
	case INVALID:
		return "INVALID"
	case DEP:
		return "DEP"
	case READ:
		return "READ"
	case WRITE:
		return "WRITE"
	}
	return "unknown"
}

// Lock is embedded in every object that participates in the multi-reader /
// single-writer scheme (spec.md §3). It tracks the object's id (0 until
// finalized) and the count of outstanding holders of each kind.
type Lock struct {
	mu       sync.Mutex
	id       uint32
	writeSet bool // true while a WRITE holder is outstanding
	readers  int  // count of outstanding READ holders
	deps     int  // count of outstanding DEP holders
}

// Id returns the object's current id. Zero means "transient, not yet
// finalized" per spec.md §3.
func (l *Lock) Id() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

// trySetDep increments the dep count; DEP coexists with anything.
func (l *Lock) trySetDep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deps++
}

// releaseDep decrements the dep count.
func (l *Lock) releaseDep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deps == 0 {
		chk.Panic("lock: releaseDep called with no outstanding dep holder")
	}
	l.deps--
}

// tryPromoteRead adds a READ holder. Valid any time no WRITE is
// outstanding (any number of readers may coexist once the id is fixed).
func (l *Lock) tryPromoteRead() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeSet {
		return false
	}
	l.readers++
	return true
}

// releaseRead removes a READ holder.
func (l *Lock) releaseRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers == 0 {
		chk.Panic("lock: releaseRead called with no outstanding reader")
	}
	l.readers--
}

// tryPromoteWrite claims exclusive WRITE access. Fails if the object is
// already held for WRITE, READ, or has an id assigned (spec.md §3: "write
// locks may only be taken while id == 0").
func (l *Lock) tryPromoteWrite() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeSet || l.readers > 0 || l.id != 0 {
		return false
	}
	l.writeSet = true
	return true
}

// demoteWriteToDep releases the WRITE hold without finalizing (used only
// when a write is abandoned without ever assigning an id; this is a
// programming error in ordinary driver code and is reserved for pool
// recycling paths).
func (l *Lock) demoteWriteToDep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writeSet {
		chk.Panic("lock: demoteWriteToDep called without an outstanding WRITE holder")
	}
	l.writeSet = false
	l.deps++
}

// finalize assigns id and downgrades the WRITE holder to a permanent READ
// holder. Once finalized, id never changes again (spec.md §3: "A state
// with a non-zero id is never mutated again").
func (l *Lock) finalize(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writeSet {
		chk.Panic("lock: finalize called without an outstanding WRITE holder")
	}
	if id == 0 {
		chk.Panic("lock: finalize called with id == 0")
	}
	l.writeSet = false
	l.id = id
	l.readers++
}

// ResetIfUnused clears id back to 0 so the backing object can be recycled
// as a fresh write target, succeeding only if no WRITE, READ, or DEP
// holder remains outstanding. Used by the state pool to recycle a slot
// once every key referencing it has been released.
func (l *Lock) ResetIfUnused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeSet || l.readers > 0 || l.deps > 0 {
		return false
	}
	l.id = 0
	return true
}

// sameState reports whether id matches the object's current id, letting a
// DEP holder detect "has this changed since I last looked?" (spec.md §3).
func (l *Lock) sameState(id uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id == id
}
