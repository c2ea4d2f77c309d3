// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package evolver implements the adaptive RKF54 inner loop (spec.md §2
// row E, §4.3): dm/dt evaluation at candidate steps, the embedded
// Dormand-Prince 5(4) scheme with per-step error estimation, norm drift
// control, and energy-based rejection.
package evolver

// rkCoeffs holds one embedded Dormand-Prince 5(4)7-FSAL coefficient table
// (spec.md §4.3). Reproduced to full machine precision from
// original_source/oommf/app/oxs/ext/rungekuttaevolve.cc, which spec.md §4.3
// requires ("implementations MUST reproduce them to full machine
// precision").
type rkCoeffs struct {
	a1, a2, a3, a4 float64 // a5=a6=1

	b11                             float64
	b21, b22                        float64
	b31, b32, b33                   float64
	b41, b42, b43, b44              float64
	b51, b52, b53, b54, b55         float64
	b61, b63, b64, b65, b66         float64 // b62 is 0

	dc1, dc3, dc4, dc5, dc6, dc7 float64
}

// Method547FC is the default Dormand & Prince RK5(4)7FC table.
var Method547FC = rkCoeffs{
	a1: 1.0 / 5.0, a2: 3.0 / 10.0, a3: 6.0 / 13.0, a4: 2.0 / 3.0,

	b11: 1.0 / 5.0,

	b21: 3.0 / 40.0, b22: 9.0 / 40.0,

	b31: 264.0 / 2197.0, b32: -90.0 / 2197.0, b33: 840.0 / 2197.0,

	b41: 932.0 / 3645.0, b42: -14.0 / 27.0, b43: 3256.0 / 5103.0, b44: 7436.0 / 25515.0,

	b51: -367.0 / 513.0, b52: 30.0 / 19.0, b53: 9940.0 / 5643.0, b54: -29575.0 / 8208.0, b55: 6615.0 / 3344.0,

	b61: 35.0 / 432.0, b63: 8500.0 / 14553.0, b64: -28561.0 / 84672.0, b65: 405.0 / 704.0, b66: 19.0 / 196.0,

	dc1: 11.0/108.0 - 35.0/432.0,
	dc3: 6250.0/14553.0 - 8500.0/14553.0,
	dc4: -2197.0/21168.0 - (-28561.0 / 84672.0),
	dc5: 81.0/176.0 - 405.0/704.0,
	dc6: 171.0/1960.0 - 19.0/196.0,
	dc7: 1.0 / 40.0,
}

// Method547FM is the Dormand & Prince RK5(4)7FM table (minimized error
// norm variant).
var Method547FM = rkCoeffs{
	a1: 1.0 / 5.0, a2: 3.0 / 10.0, a3: 4.0 / 5.0, a4: 8.0 / 9.0,

	b11: 1.0 / 5.0,

	b21: 3.0 / 40.0, b22: 9.0 / 40.0,

	b31: 44.0 / 45.0, b32: -56.0 / 15.0, b33: 32.0 / 9.0,

	b41: 19372.0 / 6561.0, b42: -25360.0 / 2187.0, b43: 64448.0 / 6561.0, b44: -212.0 / 729.0,

	b51: 9017.0 / 3168.0, b52: -355.0 / 33.0, b53: 46732.0 / 5247.0, b54: 49.0 / 176.0, b55: -5103.0 / 18656.0,

	b61: 35.0 / 384.0, b63: 500.0 / 1113.0, b64: 125.0 / 192.0, b65: -2187.0 / 6784.0, b66: 11.0 / 84.0,

	dc1: 5179.0/57600.0 - 35.0/384.0,
	dc3: 7571.0/16695.0 - 500.0/1113.0,
	dc4: 393.0/640.0 - 125.0/192.0,
	dc5: -92097.0/339200.0 - (-2187.0 / 6784.0),
	dc6: 187.0/2100.0 - 11.0/84.0,
	dc7: 1.0 / 40.0,
}

// Method547FS is the Dormand & Prince RK5(4)7FS table (a3,a4 chosen to
// favor stability).
var Method547FS = rkCoeffs{
	a1: 2.0 / 9.0, a2: 1.0 / 3.0, a3: 5.0 / 9.0, a4: 2.0 / 3.0,

	b11: 2.0 / 9.0,

	b21: 1.0 / 12.0, b22: 1.0 / 4.0,

	b31: 55.0 / 324.0, b32: -25.0 / 108.0, b33: 50.0 / 81.0,

	b41: 83.0 / 330.0, b42: -13.0 / 22.0, b43: 61.0 / 66.0, b44: 9.0 / 110.0,

	b51: -19.0 / 28.0, b52: 9.0 / 4.0, b53: 1.0 / 7.0, b54: -27.0 / 7.0, b55: 22.0 / 7.0,

	b61: 19.0 / 200.0, b63: 3.0 / 5.0, b64: -243.0 / 400.0, b65: 33.0 / 40.0, b66: 7.0 / 80.0,

	dc1: 431.0/5000.0 - 19.0/200.0,
	dc3: 333.0/500.0 - 3.0/5.0,
	dc4: -7857.0/10000.0 - (-243.0 / 400.0),
	dc5: 957.0/1000.0 - 33.0/40.0,
	dc6: 193.0/2000.0 - 7.0/80.0,
	dc7: -1.0 / 50.0,
}

// byMethodName resolves the `method` config option (spec.md §6) to a
// coefficient table.
func byMethodName(name string) (rkCoeffs, bool) {
	switch name {
	case "rkf54", "rkf54c":
		return Method547FC, true
	case "rkf54m":
		return Method547FM, true
	case "rkf54s":
		return Method547FS, true
	}
	return rkCoeffs{}, false
}
