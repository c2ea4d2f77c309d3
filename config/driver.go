// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// Driver holds the stage/run stopping-criteria options the driver state
// machine consumes (spec.md §4.2 is_stage_done/is_run_done).
type Driver struct {
	TotalIterationLimit int `json:"total_iteration_limit,omitempty" yaml:"total_iteration_limit,omitempty"` // <=0 disables

	// Per-stage overrides; index i applies to stage i. A stage missing
	// from StageIterationLimit (or holding the zero value) falls back to
	// DefaultStageIterationLimit below (spec.md §9 stage_count_check,
	// SPEC_FULL §6 open-question decision: stage override wins). A stage
	// missing from StoppingDmDt or StoppingTime has that criterion
	// disabled; there is no driver-level default for either.
	StageIterationLimit []int     `json:"stage_iteration_limit,omitempty" yaml:"stage_iteration_limit,omitempty"`
	StoppingDmDt        []float64 `json:"stopping_dm_dt,omitempty" yaml:"stopping_dm_dt,omitempty"`
	StoppingTime        []float64 `json:"stopping_time,omitempty" yaml:"stopping_time,omitempty"`

	DefaultStageIterationLimit int `json:"default_stage_iteration_limit,omitempty" yaml:"default_stage_iteration_limit,omitempty"`

	ReportMaxSpinAngle bool `json:"report_max_spin_angle,omitempty" yaml:"report_max_spin_angle,omitempty"`

	StageIncrement int `json:"stage_increment,omitempty" yaml:"stage_increment,omitempty"` // defaults to 1
}

// StageIterationLimitFor returns the effective stage_iteration_limit for
// stage, honoring the stage-level override when present and falling back
// to DefaultStageIterationLimit otherwise (SPEC_FULL §6 decision 3).
func (c *Driver) StageIterationLimitFor(stage int) int {
	if stage >= 0 && stage < len(c.StageIterationLimit) && c.StageIterationLimit[stage] != 0 {
		return c.StageIterationLimit[stage]
	}
	return c.DefaultStageIterationLimit
}

// StoppingDmDtFor returns the stopping_dm_dt for stage, or 0 (disabled)
// if none is configured.
func (c *Driver) StoppingDmDtFor(stage int) float64 {
	if stage >= 0 && stage < len(c.StoppingDmDt) {
		return c.StoppingDmDt[stage]
	}
	return 0
}

// StoppingTimeFor returns the stopping_time for stage, or 0 (disabled) if
// none is configured.
func (c *Driver) StoppingTimeFor(stage int) float64 {
	if stage >= 0 && stage < len(c.StoppingTime) {
		return c.StoppingTime[stage]
	}
	return 0
}

// EffectiveStageIncrement returns StageIncrement, defaulting to 1.
func (c *Driver) EffectiveStageIncrement() int {
	if c.StageIncrement == 0 {
		return 1
	}
	return c.StageIncrement
}
