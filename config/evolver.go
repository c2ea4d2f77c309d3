// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import "github.com/cpmech/gosl/chk"

// FixedSpinSpec names one (atlas, region) pair in the fixed_spins list
// (spec.md §6). Region is optional ("*" / empty means "every region of
// this atlas").
type FixedSpinSpec struct {
	Atlas  string `json:"atlas" yaml:"atlas"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Evolver holds every option recognized during evolver construction
// (spec.md §6 "Configuration options"), JSON-tagged the way gofem's
// inp.SolverData is. yaml tags mirror the json ones so cmd/oxsrun's YAML
// run manifest (SPEC_FULL §2) can embed this struct directly instead of
// round-tripping it through an intermediate map.
type Evolver struct {
	Method string `json:"method" yaml:"method"` // rk2, rk2heun, rk4, rkf54, rkf54m, rkf54s

	MinTimestep float64 `json:"min_timestep" yaml:"min_timestep"`
	MaxTimestep float64 `json:"max_timestep" yaml:"max_timestep"`

	ErrorRate           float64 `json:"error_rate" yaml:"error_rate"` // deg/ns on input; negative disables
	AbsoluteStepError   float64 `json:"absolute_step_error" yaml:"absolute_step_error"`
	RelativeStepError   float64 `json:"relative_step_error" yaml:"relative_step_error"`
	EnergyPrecision     float64 `json:"energy_precision" yaml:"energy_precision"`
	RejectGoal          float64 `json:"reject_goal" yaml:"reject_goal"`
	MinStepHeadroom     float64 `json:"min_step_headroom" yaml:"min_step_headroom"`
	MaxStepHeadroom     float64 `json:"max_step_headroom" yaml:"max_step_headroom"`
	MaxStepIncrease     float64 `json:"max_step_increase" yaml:"max_step_increase"`

	Alpha float64 `json:"alpha" yaml:"alpha"`

	GammaG  *float64 `json:"gamma_G,omitempty" yaml:"gamma_G,omitempty"`
	GammaLL *float64 `json:"gamma_LL,omitempty" yaml:"gamma_LL,omitempty"`

	AllowSignedGamma bool `json:"allow_signed_gamma" yaml:"allow_signed_gamma"`
	DoPrecess        bool `json:"do_precess" yaml:"do_precess"`

	StartDm float64 `json:"start_dm" yaml:"start_dm"`
	StartDt float64 `json:"start_dt" yaml:"start_dt"`

	StageStart string `json:"stage_start" yaml:"stage_start"` // start_conditions / continuous / auto

	FixedSpins []FixedSpinSpec `json:"fixed_spins,omitempty" yaml:"fixed_spins,omitempty"`

	CheckpointFile     string  `json:"checkpoint_file,omitempty" yaml:"checkpoint_file,omitempty"`
	CheckpointInterval float64 `json:"checkpoint_interval" yaml:"checkpoint_interval"` // minutes; -1 disables
	CheckpointCleanup  string  `json:"checkpoint_cleanup,omitempty" yaml:"checkpoint_cleanup,omitempty"`
}

// DefaultEvolver returns an Evolver config with spec.md's documented
// defaults applied.
func DefaultEvolver() Evolver {
	return Evolver{
		Method:             "rkf54",
		ErrorRate:          -1,
		EnergyPrecision:    1e-10,
		RejectGoal:         0.05,
		MinStepHeadroom:    0.03,
		MaxStepHeadroom:    0.95,
		MaxStepIncrease:    4.0,
		Alpha:              0.5,
		DoPrecess:          true,
		StageStart:         "auto",
		CheckpointInterval: -1,
		CheckpointCleanup:  "NORMAL",
	}
}

// Validate checks the option-combination rules spec.md §7 calls out as
// ConfigError (fatal at init): exactly one of GammaG/GammaLL, and at
// least one of StartDm/StartDt.
func (c *Evolver) Validate() error {
	if c.GammaG != nil && c.GammaLL != nil {
		return chk.Err("config: gamma_G and gamma_LL are mutually exclusive (spec.md §6)")
	}
	if c.GammaG == nil && c.GammaLL == nil {
		return chk.Err("config: exactly one of gamma_G or gamma_LL must be set")
	}
	if c.StartDm <= 0 && c.StartDt <= 0 {
		return chk.Err("config: at least one of start_dm or start_dt must be positive (spec.md §6)")
	}
	switch c.Method {
	case "rk2", "rk2heun", "rk4", "rkf54", "rkf54m", "rkf54s":
	default:
		return chk.Err("config: unknown integrator method %q", c.Method)
	}
	switch c.StageStart {
	case "start_conditions", "continuous", "auto", "":
	default:
		return chk.Err("config: unknown stage_start value %q", c.StageStart)
	}
	switch c.CheckpointCleanup {
	case "NORMAL", "DONE_ONLY", "NEVER", "":
	default:
		return chk.Err("config: unknown checkpoint_cleanup value %q", c.CheckpointCleanup)
	}
	return nil
}

// ErrorRateRadPerSec converts the deg/ns input unit to rad/s (spec.md §6
// "converted from MIF deg/ns"). Returns a negative value (disabled) if
// ErrorRate is negative.
func (c *Evolver) ErrorRateRadPerSec() float64 {
	if c.ErrorRate < 0 {
		return c.ErrorRate
	}
	const degToRad = 3.14159265358979323846 / 180
	const perNsToPerS = 1e9
	return c.ErrorRate * degToRad * perNsToPerS
}
