// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"math"
	"testing"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// rampFunc is a minimal fun.Func implementation for tests: amplitude
// grows linearly from C0 at slope Slope.
type rampFunc struct {
	C0, Slope float64
}

func (r rampFunc) F(t float64, _ []float64) float64 { return r.C0 + r.Slope*t }

func buildZeemanState(tst *testing.T, spin mesh.Vec3, ms float64) *state.SimState {
	msh := mesh.NewRectMesh(1, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	wk := pool.GetNewSimulationState()
	s0 := wk.Object()
	s0.Ms.Set(0, ms)
	s0.MsInverse.Set(0, 1/ms)
	s0.Spin.Set(0, spin)
	rk := pool.Finalize(wk)
	return rk.Object()
}

func Test_zeeman_static_field_energy(tst *testing.T) {
	z := NewZeeman(mesh.Vec3{Z: 1e5})
	s := buildZeemanState(tst, mesh.Vec3{Z: 1}, 8e5)

	e := mesh.NewMeshValue[float64](1)
	mxH := mesh.NewMeshValue[mesh.Vec3](1)
	h := mesh.NewMeshValue[mesh.Vec3](1)

	pEPt, totalE, err := z.EnergyDensity(s, e, mxH, h)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if pEPt != 0 {
		tst.Errorf("expected pE/pt=0 for a static field, got %g", pEPt)
	}
	want := -Mu0 * 8e5 * 1e5
	if math.Abs(totalE/s.Mesh.Volume(0)-want) > 1e-6*math.Abs(want) {
		tst.Errorf("expected energy density %g, got %g", want, totalE/s.Mesh.Volume(0))
	}
	if h.Get(0).Z != 1e5 {
		tst.Errorf("expected H output %g, got %g", 1e5, h.Get(0).Z)
	}
	if (mxH.Get(0) != mesh.Vec3{}) {
		tst.Errorf("expected m x H = 0 for m parallel to H, got %v", mxH.Get(0))
	}
}

func Test_zeeman_time_varying_amplitude_reports_nonzero_pEPt(tst *testing.T) {
	z := &Zeeman{H: mesh.Vec3{Z: 1e5}, Amplitude: rampFunc{C0: 1, Slope: 2e9}}
	s := buildZeemanState(tst, mesh.Vec3{Z: 1}, 8e5)
	s.StageElapsedTime = 1e-10

	e := mesh.NewMeshValue[float64](1)
	pEPt, _, err := z.EnergyDensity(s, e, nil, nil)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if pEPt == 0 {
		tst.Errorf("expected nonzero pE/pt for a ramping amplitude")
	}
}

func Test_zeeman_nil_amplitude_behaves_as_static(tst *testing.T) {
	z := &Zeeman{H: mesh.Vec3{Z: 1e5}}
	s := buildZeemanState(tst, mesh.Vec3{Z: 1}, 8e5)

	e := mesh.NewMeshValue[float64](1)
	pEPt, totalE, err := z.EnergyDensity(s, e, nil, nil)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if pEPt != 0 {
		tst.Errorf("expected pE/pt=0 with no Amplitude set, got %g", pEPt)
	}
	if totalE == 0 {
		tst.Errorf("expected nonzero energy")
	}
}
