// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the finite-difference mesh contract (spec.md §6)
// and the cell-indexed dense arrays / parallel work-division primitives
// (spec.md §2 row A) the evolver and dm/dt kernels operate on.
package mesh

import "math"

// Vec3 is a 3-vector in R^3: a spin, a field sample, or a derivative.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale returns s*a.
func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a.X, s * a.Y, s * a.Z} }

// Dot returns a.b.
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a x b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns |a|.
func (a Vec3) Norm() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns a scaled to unit length. If a is the zero vector, the
// zero vector is returned unchanged (callers must guard against this; it
// only arises for non-magnetic or fixed cells which never reach here with
// a live spin).
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return a.Scale(1 / n)
}

// MulAccum returns a + h*b, the update step common to every RK stage.
func (a Vec3) MulAccum(h float64, b Vec3) Vec3 {
	return Vec3{a.X + h*b.X, a.Y + h*b.Y, a.Z + h*b.Z}
}
