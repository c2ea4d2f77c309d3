// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checkpoint

import "github.com/cpmech/gosl/io"

// warnLimit caps the number of checkpoint I/O failures reported to the
// user: a run whose checkpoint directory has gone bad (e.g. disk full)
// would otherwise spam the log once per interval for the rest of a long
// run (spec.md §7 "3-warning-limit on checkpoint I/O failures").
const warnLimit = 3

// warningSink reports CheckpointError occurrences through io.Pfyel, up to
// warnLimit times, then falls silent so a persistently broken checkpoint
// path does not flood the log.
type warningSink struct {
	count int
}

func (w *warningSink) warn(err error) {
	w.count++
	if w.count > warnLimit {
		return
	}
	io.Pfyel("warning: checkpoint: %v\n", err)
	if w.count == warnLimit {
		io.Pfyel("warning: checkpoint: further checkpoint warnings suppressed\n")
	}
}
