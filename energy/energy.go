// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package energy defines the EnergyProvider contract the core consumes
// (spec.md §1, §6). The concrete energy terms — exchange, demag,
// anisotropy, DMI, … — are external collaborators and not implemented
// here; the one built-in term is the uniform applied field Zeeman
// (zeeman.go).
package energy

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
	"github.com/cpmech/oxscore/xpfloat"
)

// Provider is the interface every energy/field term (or a composite
// summing several terms) must satisfy. Implementations must be
// thread-safe, or internally serialize, since the evolver may query a
// Provider from multiple JobBasket worker goroutines concurrently
// (spec.md §6).
//
// mxH and h are optional outputs: a caller passes nil for either when it
// does not need that field, mirroring the Option<&mut ...> parameters of
// the Rust-flavored contract in spec.md §6.
type Provider interface {
	// EnergyDensity fills energy[i] with the energy density (J/m^3) of
	// cell i, optionally fills mxH[i] = m x H_eff[i] (A/m) and h[i] =
	// H_eff[i] (A/m), and returns (dE/dt summed over all
	// explicitly-time-varying terms, total energy J).
	EnergyDensity(s *state.SimState, energyOut *mesh.MeshValue[float64], mxHOut, hOut *mesh.MeshValue[mesh.Vec3]) (pEPt, totalE float64, err error)
}

// Validate checks the mesh/Ms preconditions the core requires at problem
// initialization (spec.md §7 MeshError/NumericError): uniform cell
// volumes, and no negative or all-zero Ms. Ms[i]==0 cells are allowed
// (they mark non-magnetic cells, spec.md §3) as long as not every cell is
// zero.
func Validate(msh mesh.Mesh, Ms *mesh.MeshValue[float64]) error {
	if !msh.HasUniformCellVolumes() {
		return chk.Err("energy: mesh has non-uniform cell volumes; this core requires a uniformly-volumed mesh (spec.md §6)")
	}
	anyNonzero := false
	for i := 0; i < Ms.Len(); i++ {
		v := Ms.Get(i)
		if v < 0 {
			return chk.Err("energy: Ms[%d]=%g is negative; rejected at init per spec.md §9 open-question decision", i, v)
		}
		if v != 0 {
			anyNonzero = true
		}
	}
	if !anyNonzero {
		return chk.Err("energy: Ms is all-zero across the whole mesh; a run with no magnetic cells is not meaningful")
	}
	return nil
}

// SumTotalEnergy integrates energy[i]*volume(i) across the mesh using a
// compensated accumulator, so results stay accurate at mesh sizes up to
// 10^8 cells (spec.md §5 numeric-type guarantees).
func SumTotalEnergy(msh mesh.Mesh, energyDensity *mesh.MeshValue[float64]) float64 {
	var acc xpfloat.Xpfloat
	for i := 0; i < energyDensity.Len(); i++ {
		acc.Accum(energyDensity.Get(i) * msh.Volume(i))
	}
	return acc.Sum()
}
