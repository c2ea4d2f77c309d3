// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state implements SimState, the immutable, identity-tagged
// simulation snapshot shared by the driver and evolver (spec.md §3), and
// the bounded pool the Director allocates write targets from (spec.md
// §4.1).
package state

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
)

// TriState models the cached {UNKNOWN, NOT_DONE, DONE} predicate result
// carried by stage_done/run_done (spec.md §3).
type TriState int

const (
	Unknown TriState = iota
	NotDone
	Done
)

// Well-known derived-data keys (spec.md §3).
const (
	KeyMaxDmDt         = "Max dm/dt"
	KeyDEDt            = "dE/dt"
	KeyPEPt            = "pE/pt"
	KeyDeltaE          = "Delta E"
	KeyTotalE          = "Total E"
	KeyTimestepLowerBd = "Timestep lower bound"
	KeyProblemStatus   = "Oxs_Driver Problem Status"
)

// SimState is an immutable-once-published snapshot of spins, saturation
// magnetization, counters, timings, and derived data (spec.md §3). Every
// field below is write-once: either set at construction (before the
// write-holder finalizes it) or recorded through AddDerivedData.
type SimState struct {
	l lock.Lock

	Id              uint32
	PreviousStateId uint32

	IterationCount      int
	StageNumber         int
	StageIterationCount int

	StageStartTime   float64
	StageElapsedTime float64
	LastTimestep     float64

	Spin      *mesh.MeshValue[mesh.Vec3]
	Ms        *mesh.MeshValue[float64]
	MsInverse *mesh.MeshValue[float64]

	Mesh mesh.Mesh // borrowed; shared across all states of one run

	StageDone TriState
	RunDone   TriState

	derived map[string]float64
}

// LockRef implements lock.Locked.
func (s *SimState) LockRef() *lock.Lock { return &s.l }

// NewBlankState allocates a SimState shaped for msh, with zero spin/Ms
// arrays ready to be filled before the holder finalizes it. Used both for
// the very first state of a run and for pool slots reused across the run.
func NewBlankState(msh mesh.Mesh) *SimState {
	n := msh.Size()
	if !msh.HasUniformCellVolumes() {
		chk.Panic("state: mesh with non-uniform cell volumes is not supported by this core (spec.md §6)")
	}
	return &SimState{
		Spin:      mesh.NewMeshValue[mesh.Vec3](n),
		Ms:        mesh.NewMeshValue[float64](n),
		MsInverse: mesh.NewMeshValue[float64](n),
		Mesh:      msh,
		StageDone: Unknown,
		RunDone:   Unknown,
		derived:   make(map[string]float64),
	}
}

// CloneHeader copies all scalar metadata from src into a freshly blanked
// dst (spec.md §4.1 "clone_header"), but leaves the spin array untouched
// so the caller can fill it with the next candidate spin configuration.
// Derived data is cleared, stage_done/run_done reset to UNKNOWN, and
// previous_state_id set to src.Id.
func CloneHeader(src, dst *SimState) {
	dst.PreviousStateId = src.Id
	dst.IterationCount = src.IterationCount
	dst.StageNumber = src.StageNumber
	dst.StageIterationCount = src.StageIterationCount
	dst.StageStartTime = src.StageStartTime
	dst.StageElapsedTime = src.StageElapsedTime
	dst.LastTimestep = src.LastTimestep
	dst.StageDone = Unknown
	dst.RunDone = Unknown
	dst.Ms = src.Ms
	dst.MsInverse = src.MsInverse
	dst.Mesh = src.Mesh
	dst.derived = make(map[string]float64)
}

// MaxSpinNormError returns max_i ||spin[i]|-1| over all cells, the
// quantity spec.md §8 property 2 bounds.
func (s *SimState) MaxSpinNormError() float64 {
	var max float64
	for i := 0; i < s.Spin.Len(); i++ {
		e := s.Spin.Get(i).Norm() - 1
		if e < 0 {
			e = -e
		}
		if e > max {
			max = e
		}
	}
	return max
}
