// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixture provides minimal EnergyProvider test doubles used only
// by this module's own tests to exercise the driver/evolver pipeline
// end-to-end (spec.md §8 scenarios S1/S2). Real energy terms (exchange,
// demag, anisotropy, Zeeman, DMI, …) are external collaborators per
// spec.md §1 and are not part of this core's production surface.
package fixture

import (
	"math"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

const Mu0 = 4e-7 * math.Pi

// Zeeman is a uniform, time-independent applied field H (A/m). Energy
// density is -mu0 * Ms * (m.H); mxH = m x H.
type Zeeman struct {
	H mesh.Vec3
}

// EnergyDensity implements energy.Provider.
func (z Zeeman) EnergyDensity(s *state.SimState, energyOut *mesh.MeshValue[float64], mxHOut, hOut *mesh.MeshValue[mesh.Vec3]) (pEPt, totalE float64, err error) {
	n := s.Spin.Len()
	for i := 0; i < n; i++ {
		m := s.Spin.Get(i)
		ms := s.Ms.Get(i)
		e := -Mu0 * ms * m.Dot(z.H)
		energyOut.Set(i, e)
		if mxHOut != nil {
			mxHOut.Set(i, m.Cross(z.H))
		}
		if hOut != nil {
			hOut.Set(i, z.H)
		}
	}
	totalE = 0
	for i := 0; i < n; i++ {
		totalE += energyOut.Get(i) * s.Mesh.Volume(i)
	}
	return 0, totalE, nil
}
