// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmdt

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/mesh"
)

// Baryakhtar implements the exchange-damping correction of spec.md §4.4
// ("Baryakhtar damping"): adds sigma*gamma * m x (laplacian(Hperp)) x m,
// where Hperp = H - <H,m>m. Requires ctx.H (the full effective field);
// boundary cells missing a 3-point stencil on an axis contribute zero for
// that axis's second derivative (spec.md §4.4).
type Baryakhtar struct {
	Base  Variant
	Gamma *mesh.MeshValue[float64]
	Sigma *mesh.MeshValue[float64]
	Rect  *mesh.RectMesh
}

// Compute implements Variant.
func (o *Baryakhtar) Compute(ctx *Context) (*Result, error) {
	if o.Rect == nil {
		chk.Panic("dmdt: Baryakhtar requires a rectangular mesh (spec.md §4.4)")
	}
	if ctx.H == nil {
		chk.Panic("dmdt: Baryakhtar requires the full effective field H, not just mxH")
	}
	r, err := o.Base.Compute(ctx)
	if err != nil {
		return nil, err
	}

	n := ctx.Spin.Len()
	hperp := mesh.NewMeshValue[mesh.Vec3](n)
	for i := 0; i < n; i++ {
		m := ctx.Spin.Get(i)
		h := ctx.H.Get(i)
		hperp.Set(i, h.Sub(m.Scale(h.Dot(m))))
	}

	for i := 0; i < n; i++ {
		if ctx.Ms.Get(i) == 0 || isFixed(ctx.Fixed, i) {
			continue
		}
		lap := secondDiff(o.Rect.NeighborX, hperp, i, o.Rect.Dx)
		lap = lap.Add(secondDiff(o.Rect.NeighborY, hperp, i, o.Rect.Dy))
		lap = lap.Add(secondDiff(o.Rect.NeighborZ, hperp, i, o.Rect.Dz))

		m := ctx.Spin.Get(i)
		correction := m.Cross(lap).Cross(m).Scale(o.Sigma.Get(i) * o.Gamma.Get(i))
		r.DmDt.Set(i, r.DmDt.Get(i).Add(correction))
	}
	return finalize(ctx, r), nil
}

// secondDiff computes the 3-point second derivative of field along one
// axis at cell i; zero if either neighbor is missing (spec.md §4.4).
func secondDiff(neighbor neighborFunc, field *mesh.MeshValue[mesh.Vec3], i int, h float64) mesh.Vec3 {
	plus, okPlus := neighbor(i, 1)
	minus, okMinus := neighbor(i, -1)
	if !okPlus || !okMinus {
		return mesh.Vec3{}
	}
	sum := field.Get(plus).Add(field.Get(minus)).Sub(field.Get(i).Scale(2))
	return sum.Scale(1 / (h * h))
}
