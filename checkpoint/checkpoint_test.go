// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

func buildState(tst *testing.T, msh mesh.Mesh, pool *state.Pool) *state.SimState {
	wk := pool.GetNewSimulationState()
	s := wk.Object()
	n := msh.Size()
	for i := 0; i < n; i++ {
		s.Ms.Set(i, 8e5)
		s.MsInverse.Set(i, 1.0/8e5)
		s.Spin.Set(i, mesh.Vec3{X: 0.3, Y: 0.1, Z: 0.9}.Normalize())
	}
	s.IterationCount = 7
	s.StageNumber = 1
	s.StageIterationCount = 3
	s.StageStartTime = 1e-10
	s.StageElapsedTime = 2.5e-11
	s.LastTimestep = 5e-13
	s.RunDone = state.NotDone
	rk := pool.Finalize(wk)
	return rk.Object()
}

func Test_checkpoint_round_trip(tst *testing.T) {

	chk.PrintTitle("checkpoint_round_trip. write then restore into a fresh pool slot")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(4)
	orig := buildState(tst, msh, pool)

	dir := tst.TempDir()
	path := filepath.Join(dir, "run.ckpt")
	cfg := config.Evolver{CheckpointFile: path, CheckpointInterval: 1, CheckpointCleanup: "NEVER"}
	c, err := New(cfg)
	if err != nil {
		tst.Fatalf("unexpected error constructing Checkpointer: %v", err)
	}
	if err := c.Write(orig); err != nil {
		tst.Fatalf("unexpected error writing checkpoint: %v", err)
	}

	pool2 := state.NewPool(msh)
	pool2.Reserve(4)
	restored, ok, err := Load(cfg, msh, pool2, false)
	if err != nil {
		tst.Fatalf("unexpected error loading checkpoint: %v", err)
	}
	if !ok {
		tst.Fatalf("expected Load to find the checkpoint file")
	}
	r := restored.Object()

	if r.Id != orig.Id {
		tst.Errorf("expected id %d, got %d", orig.Id, r.Id)
	}
	if r.IterationCount != orig.IterationCount {
		tst.Errorf("expected iteration_count %d, got %d", orig.IterationCount, r.IterationCount)
	}
	if r.StageNumber != orig.StageNumber {
		tst.Errorf("expected stage_number %d, got %d", orig.StageNumber, r.StageNumber)
	}
	if r.StageIterationCount != orig.StageIterationCount {
		tst.Errorf("expected stage_iteration_count %d, got %d", orig.StageIterationCount, r.StageIterationCount)
	}
	chk.Scalar(tst, "stage_start_time", 0, r.StageStartTime, orig.StageStartTime)
	chk.Scalar(tst, "stage_elapsed_time", 0, r.StageElapsedTime, orig.StageElapsedTime)
	chk.Scalar(tst, "last_timestep", 0, r.LastTimestep, orig.LastTimestep)
	if r.RunDone != orig.RunDone {
		tst.Errorf("expected problem status %v, got %v", orig.RunDone, r.RunDone)
	}
	for i := 0; i < msh.Size(); i++ {
		a, b := orig.Spin.Get(i), r.Spin.Get(i)
		chk.Scalar(tst, "spin.x", 1e-15, b.X, a.X)
		chk.Scalar(tst, "spin.y", 1e-15, b.Y, a.Y)
		chk.Scalar(tst, "spin.z", 1e-15, b.Z, a.Z)
	}
}

func Test_checkpoint_missing_file_not_mandatory(tst *testing.T) {

	chk.PrintTitle("checkpoint_missing_file_not_mandatory. no error, ok=false")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)

	cfg := config.Evolver{CheckpointFile: filepath.Join(tst.TempDir(), "missing.ckpt")}
	_, ok, err := Load(cfg, msh, pool, false)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if ok {
		tst.Errorf("expected ok=false when the checkpoint file does not exist")
	}
}

func Test_checkpoint_missing_file_mandatory_fails(tst *testing.T) {

	chk.PrintTitle("checkpoint_missing_file_mandatory_fails. error when restart is required")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)

	cfg := config.Evolver{CheckpointFile: filepath.Join(tst.TempDir(), "missing.ckpt")}
	_, _, err := Load(cfg, msh, pool, true)
	if err == nil {
		tst.Fatalf("expected an error when restart is mandatory and the file is missing")
	}
}

func Test_checkpoint_maybe_write_dedups_by_state_id(tst *testing.T) {

	chk.PrintTitle("checkpoint_maybe_write_dedups_by_state_id")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(4)
	s := buildState(tst, msh, pool)

	path := filepath.Join(tst.TempDir(), "run.ckpt")
	cfg := config.Evolver{CheckpointFile: path, CheckpointInterval: 60} // 60 minutes
	c, err := New(cfg)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	c.MaybeWrite(s, now)
	if _, err := os.Stat(path); err != nil {
		tst.Fatalf("expected first MaybeWrite to write the file: %v", err)
	}
	info1, _ := os.Stat(path)

	// Same state id again: must not rewrite.
	c.MaybeWrite(s, now.Add(2*time.Hour))
	info2, _ := os.Stat(path)
	if info1.ModTime() != info2.ModTime() {
		tst.Errorf("expected MaybeWrite to skip a state already checkpointed")
	}
}

func Test_checkpoint_close_cleanup_policies(tst *testing.T) {

	chk.PrintTitle("checkpoint_close_cleanup_policies")

	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(4)
	s := buildState(tst, msh, pool)

	tests := []struct {
		cleanup       string
		status        state.TriState
		expectRemoved bool
	}{
		{"NORMAL", state.NotDone, true},
		{"DONE_ONLY", state.NotDone, false},
		{"DONE_ONLY", state.Done, true},
		{"NEVER", state.Done, false},
	}
	for _, tc := range tests {
		path := filepath.Join(tst.TempDir(), "run.ckpt")
		cfg := config.Evolver{CheckpointFile: path, CheckpointInterval: 1, CheckpointCleanup: tc.cleanup}
		c, err := New(cfg)
		if err != nil {
			tst.Fatalf("unexpected error: %v", err)
		}
		if err := c.Write(s); err != nil {
			tst.Fatalf("unexpected error writing checkpoint: %v", err)
		}
		if err := c.Close(tc.status); err != nil {
			tst.Fatalf("unexpected error closing: %v", err)
		}
		_, statErr := os.Stat(path)
		removed := os.IsNotExist(statErr)
		if removed != tc.expectRemoved {
			tst.Errorf("cleanup=%s status=%v: expected removed=%v, got %v", tc.cleanup, tc.status, tc.expectRemoved, removed)
		}
	}
}
