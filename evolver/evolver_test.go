// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evolver

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/dmdt"
	"github.com/cpmech/oxscore/internal/fixture"
	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// newTestRig builds a 2-cell uniform mesh, a tilted initial spin
// configuration, and a StandardLLG variant over a uniform Zeeman field,
// mirroring spec.md §8's S1 precession scenario.
func newTestRig(tst *testing.T, method string, alphaVal float64) (*Evolver, *state.Pool, lock.Key[*state.SimState]) {
	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	n := msh.Size()

	pool := state.NewPool(msh)
	pool.Reserve(20)
	wk := pool.GetNewSimulationState()
	s0 := wk.Object()
	for i := 0; i < n; i++ {
		s0.Ms.Set(i, 8e5)
		s0.MsInverse.Set(i, 1.0/8e5)
		s0.Spin.Set(i, mesh.Vec3{X: 0.1, Y: 0, Z: 0.995}.Normalize())
	}
	rk := pool.Finalize(wk)

	gammaG := mesh.NewMeshValue[float64](n)
	alpha := mesh.NewMeshValue[float64](n)
	for i := 0; i < n; i++ {
		gammaG.Set(i, -2.211e5)
		alpha.Set(i, alphaVal)
	}
	gammaLL := dmdt.GammaFromGilbert(gammaG, alpha, false)
	variant := dmdt.NewStandardLLG(gammaLL, alpha)

	provider := fixture.Zeeman{H: mesh.Vec3{Z: 8e4}}

	cfg := config.DefaultEvolver()
	cfg.Method = method
	cfg.StartDt = 1e-14
	cfg.MaxTimestep = 1e-12
	cfg.AbsoluteStepError = 1e-10
	g := -2.211e5
	cfg.GammaG = &g
	if err := cfg.Validate(); err != nil {
		tst.Fatalf("unexpected config error: %v", err)
	}

	ev, err := New(cfg, variant, provider, pool, msh, s0.Ms, s0.MsInverse, nil)
	if err != nil {
		tst.Fatalf("unexpected error constructing evolver: %v", err)
	}
	return ev, pool, rk
}

func Test_rkf54_step_preserves_spin_norm(tst *testing.T) {

	chk.PrintTitle("rkf54_step_preserves_spin_norm")

	ev, _, rk := newTestRig(tst, "rkf54", 0.1)

	next, err := ev.Step(rk)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	s := next.Object()
	if s.IterationCount != 1 {
		tst.Errorf("expected iteration_count=1, got %d", s.IterationCount)
	}
	if e := s.MaxSpinNormError(); e > 1e-9 {
		tst.Errorf("expected spin norm within 1e-9 of unity, got error %g", e)
	}
	if _, ok := s.GetDerivedData(state.KeyMaxDmDt); !ok {
		tst.Errorf("expected Max dm/dt derived data to be recorded")
	}
	if _, ok := s.GetDerivedData(state.KeyTotalE); !ok {
		tst.Errorf("expected Total E derived data to be recorded")
	}
}

func Test_rkf54_multiple_steps_advance_time(tst *testing.T) {

	chk.PrintTitle("rkf54_multiple_steps_advance_time")

	ev, _, rk := newTestRig(tst, "rkf54", 0.1)

	cur := rk
	for i := 0; i < 5; i++ {
		next, err := ev.Step(cur)
		if err != nil {
			tst.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if next.Object().StageElapsedTime <= cur.Object().StageElapsedTime {
			tst.Errorf("step %d: stage_elapsed_time did not advance", i)
		}
		cur = next
	}
	if cur.Object().IterationCount != 5 {
		tst.Errorf("expected iteration_count=5 after 5 steps, got %d", cur.Object().IterationCount)
	}
}

func Test_fixed_step_rk4_advances_without_rejection(tst *testing.T) {

	chk.PrintTitle("fixed_step_rk4_advances_without_rejection")

	ev, _, rk := newTestRig(tst, "rk4", 0.1)

	next, err := ev.Step(rk)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if next.Object().IterationCount != 1 {
		tst.Errorf("expected a single accepted step, got iteration_count=%d", next.Object().IterationCount)
	}
	if ev.RejectRatio() != 0 {
		tst.Errorf("fixed-step methods must never reject, got reject_ratio=%g", ev.RejectRatio())
	}
}

func Test_zero_damping_conserves_energy_closely(tst *testing.T) {

	chk.PrintTitle("zero_damping_conserves_energy_closely")

	ev, _, rk := newTestRig(tst, "rkf54", 0)

	first, err := ev.Step(rk)
	if err != nil {
		tst.Fatalf("unexpected error on first step: %v", err)
	}
	e0, ok := first.Object().GetDerivedData(state.KeyTotalE)
	if !ok {
		tst.Fatalf("expected Total E on first state")
	}
	cur := first
	for i := 0; i < 3; i++ {
		next, err := ev.Step(cur)
		if err != nil {
			tst.Fatalf("step %d: unexpected error: %v", i, err)
		}
		cur = next
	}
	e1, ok := cur.Object().GetDerivedData(state.KeyTotalE)
	if !ok {
		tst.Fatalf("expected Total E on final state")
	}
	rel := (e1 - e0)
	if rel < 0 {
		rel = -rel
	}
	scale := e0
	if scale < 0 {
		scale = -scale
	}
	if scale == 0 {
		scale = 1
	}
	if rel/scale > 1e-2 {
		tst.Errorf("expected near energy conservation with zero damping, got relative drift %g", rel/scale)
	}
}

func Test_init_new_stage_resets_fsal(tst *testing.T) {

	chk.PrintTitle("init_new_stage_resets_fsal")

	ev, _, rk := newTestRig(tst, "rkf54", 0.1)
	_, err := ev.Step(rk)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if !ev.haveFSAL {
		tst.Fatalf("expected FSAL cache to be populated after an accepted step")
	}
	ev.InitNewStage()
	if ev.haveFSAL {
		tst.Errorf("expected InitNewStage to clear the FSAL cache")
	}
	if ev.nextTimestep != 0 {
		tst.Errorf("expected InitNewStage to clear the cached next timestep")
	}
}
