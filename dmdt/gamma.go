// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmdt

import "github.com/cpmech/oxscore/mesh"

// GammaFromGilbert converts a cellwise Gilbert-form gyromagnetic ratio
// gammaG into its Landau-Lifshitz form, gamma = gammaG/(1+alpha^2),
// dividing once up front (spec.md §4.4 "Gilbert-to-LL conversion").
// If allowSigned is false and the converted value is positive, its sign
// is flipped to match the LL convention (spec.md §6 "allow_signed_gamma").
func GammaFromGilbert(gammaG, alpha *mesh.MeshValue[float64], allowSigned bool) *mesh.MeshValue[float64] {
	n := gammaG.Len()
	out := mesh.NewMeshValue[float64](n)
	for i := 0; i < n; i++ {
		a := alpha.Get(i)
		g := gammaG.Get(i) / (1 + a*a)
		if !allowSigned && g > 0 {
			g = -g
		}
		out.Set(i, g)
	}
	return out
}
