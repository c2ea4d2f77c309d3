// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"sync"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
)

// Pool is the Director's bounded set of pre-allocated SimState slots
// (spec.md §3 "State pool"). Ids handed out by Finalize are never reused
// within a run (spec.md §8 property 1).
type Pool struct {
	mu       sync.Mutex
	mesh     mesh.Mesh
	reserved int
	slots    []*SimState
	free     []int
	nextId   uint32
}

// NewPool creates an empty pool bound to msh. Call Reserve during problem
// initialization to size it.
func NewPool(msh mesh.Mesh) *Pool {
	return &Pool{mesh: msh}
}

// Reserve enlarges the pool by n entries (spec.md §4.1
// "reserve_state_requests"). Called during initialization.
func (p *Pool) Reserve(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		idx := len(p.slots)
		p.slots = append(p.slots, NewBlankState(p.mesh))
		p.free = append(p.free, idx)
	}
	p.reserved += n
}

// GetNewSimulationState returns a WRITE key on an unused pool slot
// (spec.md §4.1 "get_new_simulation_state"). Panics (fatal, spec.md §3
// "exceeding the reservation pool ... is a programming error") if the
// pool has no free slot.
func (p *Pool) GetNewSimulationState() lock.Key[*SimState] {
	p.mu.Lock()
	if len(p.free) == 0 {
		p.mu.Unlock()
		chk.Panic("state: pool exhausted (reserved=%d); increase reserve_state_requests", p.reserved)
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	slot := p.slots[idx]
	p.mu.Unlock()
	return lock.NewWriteKey[*SimState](slot)
}

// Finalize assigns the slot held by k its next monotonic id and downgrades
// it to a READ key (spec.md §4.1 "write_key.finalize").
func (p *Pool) Finalize(k lock.Key[*SimState]) lock.Key[*SimState] {
	p.mu.Lock()
	p.nextId++
	id := p.nextId
	p.mu.Unlock()
	rk := k.Finalize(id)
	rk.Object().Id = id
	return rk
}

// Release returns slot's index to the free list. Callers must have
// already called key.Release() on every key referencing slot; if a lock
// is still outstanding (a caller forgot to release a READ or DEP key),
// Release panics rather than silently handing out a still-held slot.
func (p *Pool) Release(slot *SimState) {
	if !slot.l.ResetIfUnused() {
		chk.Panic("state: Release called while a lock is still outstanding on the slot")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.slots {
		if s == slot {
			p.free = append(p.free, i)
			return
		}
	}
	chk.Panic("state: Release called on a slot not owned by this pool")
}

// SetNextId primes the monotonic id counter so ids handed out after a
// checkpoint restart continue strictly after the restored state's id,
// rather than restarting from 1 and colliding with it (spec.md §4.5
// restart path).
func (p *Pool) SetNextId(id uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id > p.nextId {
		p.nextId = id
	}
}

// Reserved reports the total number of slots reserved so far.
func (p *Pool) Reserved() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserved
}
