// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evolver

import (
	"github.com/cpmech/oxscore/dmdt"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// trialSpin builds the normalized candidate spin field at m1 + h*sum
// bcoefs[j]*k[j].DmDt, the update every RK stage shares (spec.md §4.3
// "take_step").
func trialSpin(m1 *mesh.MeshValue[mesh.Vec3], h float64, bcoefs []float64, k []*dmdt.Result) *mesh.MeshValue[mesh.Vec3] {
	n := m1.Len()
	out := mesh.NewMeshValue[mesh.Vec3](n)
	for c := 0; c < n; c++ {
		v := m1.Get(c)
		for j, b := range bcoefs {
			if b == 0 {
				continue
			}
			v = v.MulAccum(h*b, k[j].DmDt.Get(c))
		}
		out.Set(c, v.Normalize())
	}
	return out
}

// rkf54Step evaluates the 6-stage Dormand-Prince pair plus the 7th
// (FSAL) stage at the resulting 5th-order spin, accumulating the
// embedded 4th-order error estimate along the way (spec.md §4.3
// "take_step"/"check_error"). k1 is the already-evaluated dm/dt at cur,
// reused from the previous accepted step's FSAL cache when available.
func (e *Evolver) rkf54Step(cur *state.SimState, k1 *dmdt.Result, h float64) (*stepOutcome, error) {
	c := e.coeffs
	m1 := cur.Spin
	n := m1.Len()

	k := make([]*dmdt.Result, 7)
	k[0] = k1

	// Stages k2..k6: intermediate evaluations at fractional points along
	// the step.
	intermediates := [][]float64{
		{c.b11},
		{c.b21, c.b22},
		{c.b31, c.b32, c.b33},
		{c.b41, c.b42, c.b43, c.b44},
		{c.b51, c.b52, c.b53, c.b54, c.b55},
	}
	for i, b := range intermediates {
		trial := trialSpin(m1, h, b, k)
		res, _, _, _, err := e.evalDmDt(cur, trial)
		if err != nil {
			return nil, err
		}
		k[i+1] = res
	}

	// m7 is the 5th-order candidate endpoint itself; k7 = f(m7) is the
	// FSAL evaluation reused as stage 1 of the next accepted step.
	m7 := trialSpin(m1, h, []float64{c.b61, 0, c.b63, c.b64, c.b65, c.b66}, k)
	res7, pEPt7, totalE7, energyDensity7, err := e.evalDmDt(cur, m7)
	if err != nil {
		return nil, err
	}
	k[6] = res7

	dc := []float64{c.dc1, 0, c.dc3, c.dc4, c.dc5, c.dc6, c.dc7}
	var stepErr float64
	for cell := 0; cell < n; cell++ {
		var errVec mesh.Vec3
		for j, d := range dc {
			if d == 0 {
				continue
			}
			errVec = errVec.MulAccum(d, k[j].DmDt.Get(cell))
		}
		if mag := errVec.Norm() * h; mag > stepErr {
			stepErr = mag
		}
	}

	return &stepOutcome{
		spin:          m7,
		maxDmDt:       res7.MaxDmDt,
		dEdt:          res7.DEDt,
		pEPt:          pEPt7,
		totalE:        totalE7,
		energyDensity: energyDensity7,
		timestepLB:    res7.TimestepLowerBound,
		stepError:     stepErr,
		fsalDmDt:      res7,
	}, nil
}

// fixedStep evaluates a non-adaptive explicit RK method (RK2/RK2Heun/RK4,
// SPEC_FULL §5) and, since these methods carry no embedded error
// estimate, always reports an acceptable step: stepError stays 0 so
// errorRatio never rejects it.
func (e *Evolver) fixedStep(cur *state.SimState, k1 *dmdt.Result, h float64) (*stepOutcome, error) {
	t := e.table
	m1 := cur.Spin
	k := make([]*dmdt.Result, t.numStages)
	k[0] = k1
	for i := 1; i < t.numStages; i++ {
		trial := trialSpin(m1, h, t.b[i], k)
		res, _, _, _, err := e.evalDmDt(cur, trial)
		if err != nil {
			return nil, err
		}
		k[i] = res
	}

	final := trialSpin(m1, h, t.weights, k)
	res, pEPt, totalE, energyDensity, err := e.evalDmDt(cur, final)
	if err != nil {
		return nil, err
	}

	return &stepOutcome{
		spin:          final,
		maxDmDt:       res.MaxDmDt,
		dEdt:          res.DEDt,
		pEPt:          pEPt,
		totalE:        totalE,
		energyDensity: energyDensity,
		timestepLB:    res.TimestepLowerBound,
		fsalDmDt:      res,
	}, nil
}
