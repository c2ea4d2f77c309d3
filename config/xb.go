// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the JSON-tagged option structs recognized during
// evolver/driver construction (spec.md §6 "Configuration options"),
// following the plain exported-field, json-tagged style of gofem's
// inp.SolverData, plus the "xb" hex-binary float notation parser
// (spec.md §6) used for exact round-trip of reference values in tests.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// ParseXB parses OOMMF's custom hex-binary notation, e.g. "1.234xb+42"
// meaning a hex mantissa times 2^exp (spec.md §6 "Numeric formats"), as
// well as plain C99 hex floats ("0x1.91eb851eb851fp+1") and ordinary
// decimal floats, so reference values lifted from test data round-trip
// exactly regardless of which form they were written in.
func ParseXB(s string) (float64, error) {
	s = strings.TrimSpace(s)

	if idx := strings.Index(s, "xb"); idx >= 0 {
		mantissa := s[:idx]
		rest := s[idx+2:]
		exp, err := strconv.Atoi(rest)
		if err != nil {
			return 0, chk.Err("config: bad xb exponent in %q: %v", s, err)
		}
		sign := 1.0
		if strings.HasPrefix(mantissa, "-") {
			sign, mantissa = -1, mantissa[1:]
		} else {
			mantissa = strings.TrimPrefix(mantissa, "+")
		}
		m, err := strconv.ParseFloat("0x"+mantissa+"p0", 64)
		if err != nil {
			return 0, chk.Err("config: bad xb mantissa in %q: %v", s, err)
		}
		return sign * math.Ldexp(m, exp), nil
	}

	// C99 hex float or plain decimal both parse via strconv.ParseFloat,
	// which accepts "0x1.8p3"-style hex floats since Go 1.13.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, chk.Err("config: cannot parse float %q: %v", s, err)
	}
	return v, nil
}

// FormatXB renders v in the "xb" notation for round-trip test fixtures:
// hex mantissa in [1,2) or 0, times 2^exp.
func FormatXB(v float64) string {
	if v == 0 {
		return "0xb+0"
	}
	mant, exp := math.Frexp(v) // v = mant * 2^exp, mant in [0.5,1)
	mant *= 2
	exp--
	hex := strconv.FormatFloat(mant, 'x', -1, 64) // e.g. "0x1.8p+00"
	hex = strings.Replace(hex[:strings.Index(hex, "p")], "0x", "", 1)
	return fmt.Sprintf("%sxb%+d", hex, exp)
}
