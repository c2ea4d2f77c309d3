// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evolver

// stageTable describes a fixed-step explicit Runge-Kutta scheme: stage i
// is evaluated at spin1 + h*sum_j<i b[i][j]*k_j, and the step update uses
// weights[i]*k_i. Used for the three non-adaptive methods (SPEC_FULL §5,
// grounded on oommf/app/oxs/ext/eulerevolve.cc's simpler stepping loop);
// RKF54 has its own dedicated, error-estimating code path in rkf54.go.
type stageTable struct {
	numStages int
	b         [][]float64 // b[i] has i entries, coefficients for stages 0..i-1
	weights   []float64
}

// rk2Table is the classical explicit midpoint method.
var rk2Table = stageTable{
	numStages: 2,
	b:         [][]float64{{}, {0.5}},
	weights:   []float64{0, 1},
}

// rk2HeunTable is Heun's (explicit trapezoidal) method.
var rk2HeunTable = stageTable{
	numStages: 2,
	b:         [][]float64{{}, {1}},
	weights:   []float64{0.5, 0.5},
}

// rk4Table is the classical 4-stage Runge-Kutta method.
var rk4Table = stageTable{
	numStages: 4,
	b:         [][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
	weights:   []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
}

// fixedTableByName resolves the non-adaptive `method` config values.
func fixedTableByName(name string) (stageTable, bool) {
	switch name {
	case "rk2":
		return rk2Table, true
	case "rk2heun":
		return rk2HeunTable, true
	case "rk4":
		return rk4Table, true
	}
	return stageTable{}, false
}
