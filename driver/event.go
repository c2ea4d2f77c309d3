// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

// Event records one accepted step for the caller's progress log and, in
// cmd/oxsrun, the monitor ring buffer (SPEC_FULL §5 "full event log").
type Event struct {
	StateId        uint32
	IterationCount int
	StageNumber    int
	StageDone      bool
	RunDone        bool
	MaxDmDt        float64
	TotalE         float64
}
