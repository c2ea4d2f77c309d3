// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmdt implements the pluggable dm/dt kernels (spec.md §2 row F,
// §4.4): standard LLG, Zhang conducting-ferromagnet damping, Baryakhtar
// damping, and spin-transfer torque, plus the Euler-with-drift stochastic
// decorator supplemented from original_source/oommf (SPEC_FULL §5). Every
// variant shares the same per-cell loop skeleton and postprocessing
// contract (spec.md §4.4 "All variants share the postprocessing
// contract"), grounded on gofem's per-element residual loop shape
// (ele/solid/elastrod.go) generalized from "per element" to "per cell".
package dmdt

import (
	"github.com/cpmech/oxscore/mesh"
)

// epsNorm is the machine-precision constant used by the timestep lower
// bound heuristic (spec.md §4.4 "64*eps / max_dm_dt").
const epsNorm = 2.220446049250313e-16

// Context carries the cellwise fields a Variant needs to evaluate dm/dt
// at one trial spin configuration.
type Context struct {
	Mesh      mesh.Mesh
	Spin      *mesh.MeshValue[mesh.Vec3]
	Ms        *mesh.MeshValue[float64]
	MsInverse *mesh.MeshValue[float64]
	MxH       *mesh.MeshValue[mesh.Vec3]
	H         *mesh.MeshValue[mesh.Vec3] // optional full field, for Zhang/Baryakhtar stencils
	PEPt      float64                    // partial energy/time from the energy provider, spec.md glossary
	Fixed     []int                      // sorted fixed-spin cell indices (spec.md §4.6); nil if none
}

// Result is the shared output every Variant produces (spec.md §4.4 "All
// variants share the postprocessing contract").
type Result struct {
	DmDt               *mesh.MeshValue[mesh.Vec3]
	MaxDmDt            float64
	DEDt               float64
	TimestepLowerBound float64
}

// Variant computes dm/dt for every cell in ctx given the precomputed mxH
// (and, for Zhang/Baryakhtar, the full H field).
type Variant interface {
	Compute(ctx *Context) (*Result, error)
}

// newResult allocates a Result sized for n cells.
func newResult(n int) *Result {
	return &Result{DmDt: mesh.NewMeshValue[mesh.Vec3](n)}
}

// finalize applies the shared postprocessing contract: fixed-spin and
// Ms=0 clamp (spec.md §4.4, §4.6), running max|dm/dt|, and the
// timestep_lower_bound heuristic (spec.md §4.4).
func finalize(ctx *Context, r *Result) *Result {
	n := ctx.Spin.Len()
	for i := 0; i < n; i++ {
		if ctx.Ms.Get(i) == 0 {
			r.DmDt.Set(i, mesh.Vec3{})
		}
	}
	for _, i := range ctx.Fixed {
		r.DmDt.Set(i, mesh.Vec3{})
	}
	var max float64
	for i := 0; i < n; i++ {
		d := r.DmDt.Get(i).Norm()
		if d > max {
			max = d
		}
	}
	r.MaxDmDt = max
	denom := max
	if denom < epsNorm {
		denom = epsNorm
	}
	r.TimestepLowerBound = 64 * epsNorm / denom
	return r
}

// isFixed reports whether cell i is in the (sorted) fixed-spin list.
func isFixed(fixed []int, i int) bool {
	lo, hi := 0, len(fixed)
	for lo < hi {
		mid := (lo + hi) / 2
		if fixed[mid] < i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(fixed) && fixed[lo] == i
}
