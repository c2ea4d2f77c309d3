// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/driver"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

func buildUniformState(tst *testing.T, msh mesh.Mesh, pool *state.Pool, spin mesh.Vec3, ms float64) *state.SimState {
	wk := pool.GetNewSimulationState()
	s := wk.Object()
	for i := 0; i < msh.Size(); i++ {
		s.Ms.Set(i, ms)
		s.MsInverse.Set(i, 1.0/ms)
		s.Spin.Set(i, spin)
	}
	s.AddDerivedData(state.KeyTotalE, -1.25)
	rk := pool.Finalize(wk)
	return rk.Object()
}

func Test_scalar_cache_memoizes_by_state_id(tst *testing.T) {

	chk.PrintTitle("scalar_cache_memoizes_by_state_id")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	s1 := buildUniformState(tst, msh, pool, mesh.Vec3{X: 0, Y: 0, Z: 1}, 8e5)

	calls := 0
	c := NewScalarCache(func(s *state.SimState) (float64, error) {
		calls++
		return s.Ms.Get(0), nil
	})

	v1, err := c.Get(s1)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	v2, err := c.Get(s1)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		tst.Errorf("expected repeated Get on the same state to return the same value")
	}
	if calls != 1 {
		tst.Errorf("expected compute to run exactly once for repeated queries on the same state, ran %d times", calls)
	}
}

func Test_derived_data_scalar_cache(tst *testing.T) {

	chk.PrintTitle("derived_data_scalar_cache")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	s := buildUniformState(tst, msh, pool, mesh.Vec3{X: 0, Y: 0, Z: 1}, 8e5)

	c := DerivedDataScalarCache(state.KeyTotalE)
	v, err := c.Get(s)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(tst, "Total E", 1e-15, v, -1.25)

	c2 := DerivedDataScalarCache(state.KeyMaxDmDt)
	if _, err := c2.Get(s); err == nil {
		tst.Errorf("expected an error querying a derived-data key that was never recorded")
	}
}

func Test_average_magnetization(tst *testing.T) {

	chk.PrintTitle("average_magnetization. uniform spin field averages to itself")

	msh := mesh.NewRectMesh(2, 2, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	spin := mesh.Vec3{X: 0.6, Y: 0, Z: 0.8}
	s := buildUniformState(tst, msh, pool, spin, 8e5)

	avg, err := AverageMagnetization(s)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(tst, "aveM.x", 1e-9, avg.X, spin.X*8e5)
	chk.Scalar(tst, "aveM.y", 1e-9, avg.Y, spin.Y*8e5)
	chk.Scalar(tst, "aveM.z", 1e-9, avg.Z, spin.Z*8e5)
}

func Test_average_magnetization_cache_memoizes(tst *testing.T) {

	chk.PrintTitle("average_magnetization_cache_memoizes")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	s := buildUniformState(tst, msh, pool, mesh.Vec3{X: 0, Y: 0, Z: 1}, 8e5)

	c := NewAverageMagnetizationCache()
	v1, err := c.Get(s)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	v2, err := c.Get(s)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		tst.Errorf("expected cached vector to be stable across repeated queries")
	}
}

func Test_event_ring_wraps_and_preserves_order(tst *testing.T) {

	chk.PrintTitle("event_ring_wraps_and_preserves_order")

	r := NewEventRing(3)
	for i := 1; i <= 5; i++ {
		r.Push(driver.Event{IterationCount: i})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		tst.Fatalf("expected ring capped at 3 events, got %d", len(snap))
	}
	want := []int{3, 4, 5}
	for i, e := range snap {
		if e.IterationCount != want[i] {
			tst.Errorf("event %d: expected iteration_count=%d, got %d", i, want[i], e.IterationCount)
		}
	}
}
