// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "github.com/cpmech/gosl/chk"

// AddDerivedData records a write-once named quantity (spec.md §3
// "Derived-data semantics"). Re-setting an existing key is a programming
// error (spec.md §7 DerivedDataError) and panics, mirroring the teacher's
// convention of chk.Panic for unrecoverable internal invariant violations.
func (s *SimState) AddDerivedData(key string, value float64) {
	if _, exists := s.derived[key]; exists {
		chk.Panic("state: derived data key %q already set on state id=%d", key, s.Id)
	}
	s.derived[key] = value
}

// GetDerivedData returns the value stored under key, and whether it was
// present.
func (s *SimState) GetDerivedData(key string) (float64, bool) {
	v, ok := s.derived[key]
	return v, ok
}

// DerivedDataKeys returns the set of keys currently recorded, for
// diagnostics. Checkpoint records do not carry derived data.
func (s *SimState) DerivedDataKeys() []string {
	keys := make([]string, 0, len(s.derived))
	for k := range s.derived {
		keys = append(keys, k)
	}
	return keys
}
