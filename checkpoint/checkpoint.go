// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checkpoint

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// Cleanup selects what happens to the checkpoint file when a run ends
// (spec.md §4.5).
type Cleanup int

const (
	// CleanupNormal removes the checkpoint file on any clean exit.
	CleanupNormal Cleanup = iota
	// CleanupDoneOnly removes it only if the final problem status is DONE.
	CleanupDoneOnly
	// CleanupNever always retains it.
	CleanupNever
)

func parseCleanup(s string) (Cleanup, error) {
	switch s {
	case "", "NORMAL":
		return CleanupNormal, nil
	case "DONE_ONLY":
		return CleanupDoneOnly, nil
	case "NEVER":
		return CleanupNever, nil
	}
	return CleanupNormal, errors.Errorf("checkpoint: unknown cleanup policy %q", s)
}

// Checkpointer periodically writes a SimState to CheckpointFile, atomically,
// and applies the configured cleanup policy when a run ends (spec.md §4.5).
// A Checkpointer with no CheckpointFile configured is inert: MaybeWrite and
// Close are no-ops.
type Checkpointer struct {
	path     string
	interval time.Duration
	cleanup  Cleanup

	lastWriteAt      time.Time
	lastCheckpointId uint32

	warn warningSink
}

// New builds a Checkpointer from cfg's checkpoint_file/checkpoint_interval
// (minutes; <=0 disables the periodic trigger)/checkpoint_cleanup options.
func New(cfg config.Evolver) (*Checkpointer, error) {
	cleanup, err := parseCleanup(cfg.CheckpointCleanup)
	if err != nil {
		return nil, err
	}
	c := &Checkpointer{path: cfg.CheckpointFile, cleanup: cleanup}
	if cfg.CheckpointInterval > 0 {
		c.interval = time.Duration(cfg.CheckpointInterval * float64(time.Minute))
	}
	return c, nil
}

// Enabled reports whether periodic checkpointing is configured at all.
func (c *Checkpointer) Enabled() bool {
	return c.path != "" && c.interval > 0
}

// MaybeWrite writes a checkpoint if checkpointing is enabled, the state
// hasn't already been checkpointed, and enough wall-clock time has passed
// since the last write (spec.md §4.1 checkpoint trigger). I/O failures are
// reported through the warning sink and otherwise ignored, per spec.md §7
// "CheckpointError ... non-fatal".
func (c *Checkpointer) MaybeWrite(s *state.SimState, now time.Time) {
	if !c.Enabled() {
		return
	}
	if s.Id == c.lastCheckpointId {
		return
	}
	if !c.lastWriteAt.IsZero() && now.Sub(c.lastWriteAt) < c.interval {
		return
	}
	if err := c.Write(s); err != nil {
		c.warn.warn(err)
		return
	}
	c.lastWriteAt = now
	c.lastCheckpointId = s.Id
}

// Write serializes s to a temp file in the checkpoint directory, fsyncs
// it, then atomically renames it over the configured checkpoint path
// (spec.md §6 "Atomic rename from *.tmp to final path after fsync").
func (c *Checkpointer) Write(s *state.SimState) error {
	data, err := encode(newRecord(s))
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return errors.Wrap(err, "checkpoint: creating temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "checkpoint: writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "checkpoint: fsyncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "checkpoint: closing temp file")
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return errors.Wrap(err, "checkpoint: renaming into place")
	}
	return nil
}

// Close applies the configured cleanup policy at the end of a run. status
// is the final problem status; for CleanupDoneOnly, the file is removed
// only when status is state.Done.
func (c *Checkpointer) Close(status state.TriState) error {
	if !c.Enabled() {
		return nil
	}
	switch c.cleanup {
	case CleanupNever:
		return nil
	case CleanupDoneOnly:
		if status != state.Done {
			return nil
		}
	}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "checkpoint: removing checkpoint file")
	}
	return nil
}

// Load restores a SimState from cfg's checkpoint file into a fresh pool
// slot, if the file exists (spec.md §4.1 "get_initial_state" restart
// path). It returns ok=false, no error, if no restart should happen
// (checkpoint_file unset, or the file is missing and mandatory is false).
// If mandatory is true and no usable checkpoint is found, it returns an
// error (spec.md §4.5 "if restart is mandatory and file missing, fail at
// init"). Ms/MsInverse/Mesh on the restored state are left as pool.Reserve
// allocated them; the caller fills Ms/MsInverse from the (non-checkpointed)
// material configuration before using the state.
func Load(cfg config.Evolver, msh mesh.Mesh, pool *state.Pool, mandatory bool) (lock.Key[*state.SimState], bool, error) {
	var zero lock.Key[*state.SimState]

	if cfg.CheckpointFile == "" {
		if mandatory {
			return zero, false, errors.New("checkpoint: restart mandatory but no checkpoint_file configured")
		}
		return zero, false, nil
	}

	data, err := os.ReadFile(cfg.CheckpointFile)
	if err != nil {
		if os.IsNotExist(err) {
			if mandatory {
				return zero, false, errors.Wrap(err, "checkpoint: restart mandatory but checkpoint file missing")
			}
			return zero, false, nil
		}
		return zero, false, errors.Wrap(err, "checkpoint: reading checkpoint file")
	}

	r, err := decode(data)
	if err != nil {
		return zero, false, err
	}
	if len(r.Spin) != msh.Size()*3 {
		return zero, false, errors.Errorf("checkpoint: record has %d spin cells, mesh has %d", len(r.Spin)/3, msh.Size())
	}

	wk := pool.GetNewSimulationState()
	if err := r.fillState(wk.Object(), msh); err != nil {
		return zero, false, err
	}
	rk := wk.Finalize(r.StateId)
	pool.SetNextId(r.StateId)
	return rk, true, nil
}
