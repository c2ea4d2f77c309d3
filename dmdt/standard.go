// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmdt

import (
	"math"

	"github.com/cpmech/oxscore/mesh"
)

// StandardLLG implements the Landau-Lifshitz form of the LLG equation
// (spec.md §4.4):
//
//	dm/dt = gamma * (mxH + alpha*(m x mxH))
//
// Gamma is expected already in LL form (see GammaFromGilbert). Theta is
// a weight supplemented from
// original_source/oommf/app/oxs/local/thetaevolve/thetaevolve.cc
// (SPEC_FULL §5) that multiplies the whole torque, precession and
// damping terms alike; Theta=1 reproduces the mainline spec.md behavior
// exactly and is the default zero value's effective meaning once
// constructed via NewStandardLLG.
type StandardLLG struct {
	Gamma *mesh.MeshValue[float64]
	Alpha *mesh.MeshValue[float64]
	Theta float64
}

// NewStandardLLG builds a StandardLLG with Theta defaulted to 1 (pure
// explicit LLG, the mainline spec.md behavior).
func NewStandardLLG(gamma, alpha *mesh.MeshValue[float64]) *StandardLLG {
	return &StandardLLG{Gamma: gamma, Alpha: alpha, Theta: 1}
}

// Compute implements Variant.
func (o *StandardLLG) Compute(ctx *Context) (*Result, error) {
	n := ctx.Spin.Len()
	r := newResult(n)

	var dedtAccum float64
	for i := 0; i < n; i++ {
		if ctx.Ms.Get(i) == 0 {
			continue
		}
		m := ctx.Spin.Get(i)
		mxh := ctx.MxH.Get(i)
		g := o.Gamma.Get(i)
		a := o.Alpha.Get(i)

		damping := m.Cross(mxh).Scale(a)
		torque := mxh.Add(damping).Scale(g * o.Theta)
		r.DmDt.Set(i, torque)

		// dE/dt contribution: -mu0*gamma*alpha*|mxH|^2*Ms*V, spec.md §4.4.
		h2 := mxh.Dot(mxh)
		dedtAccum += -mu0 * g * a * h2 * ctx.Ms.Get(i) * ctx.Mesh.Volume(i)
	}
	r.DEDt = dedtAccum + ctx.PEPt

	return finalize(ctx, r), nil
}

const mu0 = 4e-7 * math.Pi
