// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"math"

	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// Mu0 is the vacuum permeability (T m/A).
const Mu0 = 4e-7 * math.Pi

// Zeeman is a reference Provider for a spatially-uniform applied field
// whose magnitude is scaled over time by Amplitude (spec.md §1 names
// Zeeman as an example external collaborator; this core ships one
// concrete implementation so cmd/oxsrun is runnable standalone, the way
// OOMMF ships Oxs_UZeeman alongside the pluggable Oxs_Energy interface).
// Amplitude defaults to a constant 1 (via fun.Cte, the same zero-value
// convention inp.Simulation uses for DtFunc/DtoFunc) when left nil, so a
// manifest that only sets a static field does not need to mention it.
//
// Unlike internal/fixture.Zeeman, which is a fixed-field test double,
// Zeeman here is time-dependent and is the one cmd/oxsrun wires into a
// real run.
type Zeeman struct {
	H         mesh.Vec3
	Amplitude fun.Func
}

// NewZeeman builds a Zeeman term with a constant amplitude of 1, i.e. a
// plain static field of h.
func NewZeeman(h mesh.Vec3) *Zeeman {
	return &Zeeman{H: h, Amplitude: &fun.Cte{C: 1}}
}

// EnergyDensity implements Provider. Energy density is
// -mu0*Ms*(m.H(t)), H(t) = H * Amplitude(t); mxH = m x H(t).
func (z *Zeeman) EnergyDensity(s *state.SimState, energyOut *mesh.MeshValue[float64], mxHOut, hOut *mesh.MeshValue[mesh.Vec3]) (pEPt, totalE float64, err error) {
	t := s.StageStartTime + s.StageElapsedTime
	amp := 1.0
	if z.Amplitude != nil {
		amp = z.Amplitude.F(t, nil)
	}
	h := z.H.Scale(amp)

	n := s.Spin.Len()
	var acc float64
	for i := 0; i < n; i++ {
		m := s.Spin.Get(i)
		ms := s.Ms.Get(i)
		e := -Mu0 * ms * m.Dot(h)
		energyOut.Set(i, e)
		if mxHOut != nil {
			mxHOut.Set(i, m.Cross(h))
		}
		if hOut != nil {
			hOut.Set(i, h)
		}
		acc += e * s.Mesh.Volume(i)
	}

	// dE/dt from the explicitly time-varying amplitude: d/dt[-mu0 Ms m.H]
	// at fixed m, summed over cells, via the amplitude's own slope.
	if z.Amplitude != nil {
		const dt = 1e-12
		ampNext := z.Amplitude.F(t+dt, nil)
		slope := (ampNext - amp) / dt
		if slope != 0 {
			var dEdt float64
			for i := 0; i < n; i++ {
				m := s.Spin.Get(i)
				ms := s.Ms.Get(i)
				dEdt += -Mu0 * ms * m.Dot(z.H.Scale(slope)) * s.Mesh.Volume(i)
			}
			pEPt = dEdt
		}
	}
	return pEPt, acc, nil
}
