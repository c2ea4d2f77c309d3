// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmdt

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/oxscore/mesh"
)

// Zhang implements the conducting-ferromagnet damping correction
// (spec.md §4.4 "Zhang damping"), grounded on
// original_source/oommf/app/oxs/ext/rungekuttaevolve.cc's conducting-spin
// term. It requires a RectMesh (known edge lengths) for the central
// differences of m along x, y, z.
type Zhang struct {
	Base  Variant // typically *StandardLLG; Zhang adds its correction on top
	Gamma *mesh.MeshValue[float64]
	Zeta  *mesh.MeshValue[float64] // spatially variable damping coefficient
	Rect  *mesh.RectMesh
}

// Compute implements Variant: runs Base first, then adds
// -zeta*gamma * m x (D . mxH) to every non-fixed, magnetic cell.
func (o *Zhang) Compute(ctx *Context) (*Result, error) {
	if o.Rect == nil {
		chk.Panic("dmdt: Zhang requires a rectangular mesh with known edge lengths (spec.md §4.4)")
	}
	r, err := o.Base.Compute(ctx)
	if err != nil {
		return nil, err
	}

	n := ctx.Spin.Len()
	for i := 0; i < n; i++ {
		if ctx.Ms.Get(i) == 0 || isFixed(ctx.Fixed, i) {
			continue
		}
		D := zhangTensor(o.Rect, ctx.Spin, i)
		mxh := ctx.MxH.Get(i)
		Dmxh := applyTensor(D, mxh)
		m := ctx.Spin.Get(i)
		correction := m.Cross(Dmxh).Scale(-o.Zeta.Get(i) * o.Gamma.Get(i))
		r.DmDt.Set(i, r.DmDt.Get(i).Add(correction))
	}
	return finalize(ctx, r), nil
}

// zhangTensor builds the 3x3 tensor D whose columns are (dm/dx) x m,
// (dm/dy) x m and (dm/dz) x m, using 2-point central differences reflecting at part boundaries
// (spec.md §4.4).
func zhangTensor(rm *mesh.RectMesh, spin *mesh.MeshValue[mesh.Vec3], i int) *mat.Dense {
	dmdx := centralDiff(rm.NeighborX, spin, i, rm.Dx)
	dmdy := centralDiff(rm.NeighborY, spin, i, rm.Dy)
	dmdz := centralDiff(rm.NeighborZ, spin, i, rm.Dz)
	m := spin.Get(i)

	cx := dmdx.Cross(m)
	cy := dmdy.Cross(m)
	cz := dmdz.Cross(m)

	D := mat.NewDense(3, 3, nil)
	D.SetRow(0, []float64{cx.X, cy.X, cz.X})
	D.SetRow(1, []float64{cx.Y, cy.Y, cz.Y})
	D.SetRow(2, []float64{cx.Z, cy.Z, cz.Z})
	return D
}

// neighborFunc matches mesh.RectMesh's NeighborX/Y/Z signature.
type neighborFunc func(idx, delta int) (int, bool)

// centralDiff computes d(spin)/d(axis) at cell i via a 2-point central
// difference, reflecting the stencil inward at a mesh boundary instead of
// stepping outside it (spec.md §4.4 "reflecting across part boundaries").
func centralDiff(neighbor neighborFunc, spin *mesh.MeshValue[mesh.Vec3], i int, h float64) mesh.Vec3 {
	plus, okPlus := neighbor(i, 1)
	minus, okMinus := neighbor(i, -1)
	switch {
	case okPlus && okMinus:
		return spin.Get(plus).Sub(spin.Get(minus)).Scale(1 / (2 * h))
	case okPlus:
		return spin.Get(plus).Sub(spin.Get(i)).Scale(1 / h)
	case okMinus:
		return spin.Get(i).Sub(spin.Get(minus)).Scale(1 / h)
	default:
		return mesh.Vec3{}
	}
}

// applyTensor returns D.v for a 3x3 gonum Dense tensor D.
func applyTensor(D *mat.Dense, v mesh.Vec3) mesh.Vec3 {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(D, in)
	return mesh.Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
