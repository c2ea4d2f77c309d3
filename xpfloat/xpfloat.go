// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xpfloat implements an extended-precision (compensated) floating
// point accumulator, standing in for OOMMF's Nb_Xpfloat (spec.md §5): a
// cellwise sum such as ΔE accumulated over up to 10^8 cells must keep its
// total rounding error to a few ulps of the true sum, which a naive running
// float64 sum cannot guarantee.
package xpfloat

// Xpfloat is a Neumaier-compensated running sum: value holds the
// best-so-far total and carry holds the lost low-order bits.
type Xpfloat struct {
	value float64
	carry float64
}

// New returns an Xpfloat initialized to zero.
func New() Xpfloat { return Xpfloat{} }

// Accum adds x into the running sum using Neumaier's improved Kahan
// summation, so that cross-thread combination of many per-thread
// accumulators loses at most a few ulps overall.
func (o *Xpfloat) Accum(x float64) {
	t := o.value + x
	if abs(o.value) >= abs(x) {
		o.carry += (o.value - t) + x
	} else {
		o.carry += (x - t) + o.value
	}
	o.value = t
}

// Combine folds another Xpfloat's total (value+carry) into this one. Used
// to merge per-thread accumulators at a job-basket barrier (spec.md §5).
func (o *Xpfloat) Combine(other Xpfloat) {
	o.Accum(other.value)
	o.carry += other.carry
}

// Sum returns the best-known total.
func (o Xpfloat) Sum() float64 { return o.value + o.carry }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
