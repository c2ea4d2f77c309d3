// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver implements the stage/run stopping-criteria state
// machine (spec.md §2 row G, §4.2), grounded on fem.FEM.Run's stage loop
// ("for stgidx, stg := range o.Sim.Stages") generalized from
// finite-element load stages to micromagnetic field stages, and on
// original_source/oommf/app/oxs/base/driver.cc for the exact
// stage_done/run_done semantics.
package driver

import (
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/evolver"
	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/state"
)

// stopClampFraction is the fraction of the proposed step, measured
// against the time remaining to a stage's stopping_time, below which the
// driver foreshortens the step to land exactly on it (spec.md §4.2
// "fill_state_supplemental").
const stopClampFraction = 1.25

// Driver runs the stage/run loop over an Evolver (spec.md §4.2).
// BeforeStage/AfterStage are optional hooks a caller (e.g. cmd/oxsrun)
// can use to apply per-stage MIF-layer changes such as swapping a
// current-density profile; both are no-ops if left nil.
type Driver struct {
	cfg config.Driver
	ev  *evolver.Evolver

	NumStages int

	BeforeStage func(stage int)
	AfterStage  func(stage int, final lock.Key[*state.SimState])

	// OnEvent, if set, is called synchronously with each Event as it is
	// appended to Run's log (SPEC_FULL §2 "monitor endpoint"), letting a
	// host (cmd/oxsrun) stream progress live instead of waiting for Run
	// to return the full log at the end.
	OnEvent func(Event)

	ShowMsg bool
}

// New constructs a Driver over ev, governed by cfg's stopping criteria.
func New(cfg config.Driver, ev *evolver.Evolver, numStages int) *Driver {
	return &Driver{cfg: cfg, ev: ev, NumStages: numStages}
}

// isStageDone implements spec.md §4.2 "is_stage_done": the tightest of
// stage_iteration_limit, stopping_dm_dt, and stopping_time that is
// configured for this stage.
func (d *Driver) isStageDone(s *state.SimState) bool {
	stage := s.StageNumber
	if limit := d.cfg.StageIterationLimitFor(stage); limit > 0 && s.StageIterationCount >= limit {
		return true
	}
	if dmdtBound := d.cfg.StoppingDmDtFor(stage); dmdtBound > 0 {
		if v, ok := s.GetDerivedData(state.KeyMaxDmDt); ok && v <= dmdtBound {
			return true
		}
	}
	if t := d.cfg.StoppingTimeFor(stage); t > 0 && s.StageElapsedTime >= t {
		return true
	}
	return false
}

// isRunDone implements spec.md §4.2 "is_run_done": the overall iteration
// cap, or the stage loop having exhausted every configured stage.
func (d *Driver) isRunDone(s *state.SimState, stageDone bool) bool {
	if d.cfg.TotalIterationLimit > 0 && s.IterationCount >= d.cfg.TotalIterationLimit {
		return true
	}
	return stageDone && s.StageNumber >= d.NumStages-1
}

// clampToStageStop implements "fill_state_supplemental": when the
// remaining time to this stage's stopping_time is within
// stopClampFraction of the evolver's proposed next step, set that step
// to exactly the remaining time (shorter than proposed, or up to 25%
// longer) so it lands on the boundary instead of overshooting it or
// leaving a sliver.
func (d *Driver) clampToStageStop(cur *state.SimState) {
	t := d.cfg.StoppingTimeFor(cur.StageNumber)
	if t <= 0 {
		return
	}
	remaining := t - cur.StageElapsedTime
	if remaining <= 0 {
		return
	}
	h := d.ev.NextTimestep()
	if h <= 0 || h*stopClampFraction < remaining {
		return
	}
	d.ev.SetNextTimestep(remaining)
}

// Run advances initial through every configured stage until is_run_done,
// returning the final accepted state and the log of every accepted step
// (spec.md §4.2 "run(results, stage_increment)"). initial's StageNumber
// is taken as the starting stage, so resuming from a checkpoint mid-run
// works the same as starting fresh.
func (d *Driver) Run(initial lock.Key[*state.SimState]) (lock.Key[*state.SimState], []Event, error) {
	cur := initial
	var events []Event

	startingStage := cur.Object().StageNumber
	if cur.Object().IterationCount == 0 {
		d.ev.InitNewStage()
	}

	for stage := startingStage; stage < d.NumStages; stage += d.cfg.EffectiveStageIncrement() {
		if d.BeforeStage != nil {
			d.BeforeStage(stage)
		}
		if d.ShowMsg {
			io.Pf("> driver: starting stage %d\n", stage)
		}

		for {
			d.clampToStageStop(cur.Object())

			next, err := d.ev.Step(cur)
			if err != nil {
				return cur, events, err
			}

			stageDone := d.isStageDone(next.Object())
			runDone := d.isRunDone(next.Object(), stageDone)
			next.Object().StageDone = boolToTri(stageDone)
			next.Object().RunDone = boolToTri(runDone)

			maxDmDt, _ := next.Object().GetDerivedData(state.KeyMaxDmDt)
			totalE, _ := next.Object().GetDerivedData(state.KeyTotalE)
			ev := Event{
				StateId:        next.Object().Id,
				IterationCount: next.Object().IterationCount,
				StageNumber:    next.Object().StageNumber,
				StageDone:      stageDone,
				RunDone:        runDone,
				MaxDmDt:        maxDmDt,
				TotalE:         totalE,
			}
			events = append(events, ev)
			if d.OnEvent != nil {
				d.OnEvent(ev)
			}

			cur = next

			if runDone {
				return cur, events, nil
			}
			if stageDone {
				break
			}
		}

		if d.AfterStage != nil {
			d.AfterStage(stage, cur)
		}
		cur = d.ev.TransitionStage(cur.Object(), stage+d.cfg.EffectiveStageIncrement())
		d.ev.InitNewStage()
	}
	return cur, events, nil
}

func boolToTri(done bool) state.TriState {
	if done {
		return state.Done
	}
	return state.NotDone
}
