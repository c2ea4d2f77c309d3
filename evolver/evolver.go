// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evolver

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/dmdt"
	"github.com/cpmech/oxscore/energy"
	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
	"github.com/cpmech/oxscore/xpfloat"
)

// Step-size controller bounds (spec.md §4.3 "headroom feedback loop").
const (
	shrinkFloor   = 0.2
	energyShrink  = 0.75
	energyHeadCap = 1.3 // "bad energy step increase": max_step_increase clamp after an energy rejection
	rejectWindow  = 20  // rolling window size for reject_ratio

	// rateOrRelativeExp/absoluteExp are the rejected-step shrink exponents
	// 1/g and 1/ℓ of spec.md §4.3 ("check_error"), g=5 the global error
	// order, ℓ=g+1=6 for the absolute bound.
	rateOrRelativeExp = 1.0 / 5.0
	absoluteExp       = 1.0 / 6.0

	// epsilon is the float64 machine epsilon (spec.md §4.3/§4.4's "ε"),
	// mirroring dmdt.epsNorm.
	epsilon = 2.220446049250313e-16
)

// errorBound names which of check_error's three configurable bounds was
// tightest for a given step, since the rejected-step shrink exponent
// differs by bound (spec.md §4.3).
type errorBound int

const (
	boundNone errorBound = iota
	boundRate
	boundAbsolute
	boundRelative
)

// exponent returns the rejected-step shrink exponent for b: 1/ℓ=1/6 for
// the absolute bound, 1/g=1/5 for rate or relative (spec.md §4.3).
func (b errorBound) exponent() float64 {
	if b == boundAbsolute {
		return absoluteExp
	}
	return rateOrRelativeExp
}

// stepOutcome is the result of one candidate step, accepted or not.
type stepOutcome struct {
	spin          *mesh.MeshValue[mesh.Vec3]
	maxDmDt       float64
	dEdt          float64
	pEPt          float64
	totalE        float64
	energyDensity *mesh.MeshValue[float64] // cellwise energy density at spin, for checkEnergy's ΔE
	timestepLB    float64
	stepError     float64 // h * max_i |error_i|, zero for non-adaptive methods

	// FSAL cache: dm/dt evaluated at the accepted step's endpoint, reused
	// as stage 1 of the next step (spec.md §4.3 "first same as last").
	fsalDmDt *dmdt.Result
}

// Evolver is the adaptive (RKF54) or fixed-step (RK2/RK2Heun/RK4) LLG
// time-stepper (spec.md §2 row E, §4.3), grounded on
// original_source/oommf/app/oxs/ext/rungekuttaevolve.cc's take_step /
// check_error / headroom-feedback loop, expressed against this core's
// Pool/SimState/dmdt.Variant abstractions instead of Oxs_Key<Oxs_SimState>.
type Evolver struct {
	cfg      config.Evolver
	variant  dmdt.Variant
	provider energy.Provider
	pool     *state.Pool
	msh      mesh.Mesh
	fixed    []int

	adaptive bool
	coeffs   rkCoeffs
	table    stageTable

	Ms        *mesh.MeshValue[float64]
	MsInverse *mesh.MeshValue[float64]

	stepHeadroom   float64
	growCap        float64 // current max_step_increase, clamped to energyHeadCap for the step after an energy rejection
	defaultGrowCap float64 // configured max_step_increase, restored once the post-rejection clamp has applied
	rejectHist     []bool  // rolling ring of the last rejectWindow attempts

	haveFSAL bool
	fsal     *dmdt.Result

	// curPEPt/curEnergyDensity cache the accepted state's own driving-field
	// rate and cellwise energy density, so checkEnergy can compute ΔE
	// without re-evaluating the energy provider at cur on every step.
	curPEPt          float64
	curEnergyDensity *mesh.MeshValue[float64]

	nextTimestep float64
}

// New constructs an Evolver for the given method name (spec.md §6
// `method`), bound to msh/Ms and the variant/provider pair supplied by the
// caller (SPEC_FULL §0: the driver wires these together per run).
func New(cfg config.Evolver, variant dmdt.Variant, provider energy.Provider, pool *state.Pool, msh mesh.Mesh, Ms, MsInverse *mesh.MeshValue[float64], fixed []int) (*Evolver, error) {
	e := &Evolver{
		cfg: cfg, variant: variant, provider: provider, pool: pool, msh: msh,
		Ms: Ms, MsInverse: MsInverse, fixed: fixed,
		stepHeadroom: cfg.MaxStepHeadroom,
		growCap:      cfg.MaxStepIncrease,
	}
	if e.growCap <= 0 {
		e.growCap = 4.0
	}
	e.defaultGrowCap = e.growCap
	if coeffs, ok := byMethodName(cfg.Method); ok {
		e.adaptive = true
		e.coeffs = coeffs
	} else if table, ok := fixedTableByName(cfg.Method); ok {
		e.adaptive = false
		e.table = table
	} else {
		return nil, chk.Err("evolver: unknown method %q", cfg.Method)
	}
	if e.stepHeadroom <= 0 {
		e.stepHeadroom = 0.5
	}
	return e, nil
}

// TransitionStage allocates the zero-integration-step state marking a
// stage boundary (spec.md §4.2 "FillNewStageState"): prev's spin and Ms
// carry forward unchanged, but the result belongs to newStage with its
// per-stage counters reset. This is a bookkeeping transition, not an
// integration step, so it never consults the dm/dt variant.
func (e *Evolver) TransitionStage(prev *state.SimState, newStage int) lock.Key[*state.SimState] {
	wk := e.pool.GetNewSimulationState()
	next := wk.Object()
	state.CloneHeader(prev, next)
	next.Spin.CopyFrom(prev.Spin)
	next.IterationCount = prev.IterationCount
	next.StageNumber = newStage
	next.StageIterationCount = 0
	next.StageStartTime = prev.StageStartTime + prev.StageElapsedTime
	next.StageElapsedTime = 0
	next.LastTimestep = 0
	return e.pool.Finalize(wk)
}

// NextTimestep returns the step size the next Step call will attempt, or
// 0 if none has been computed yet (before the first Step since
// construction or since InitNewStage).
func (e *Evolver) NextTimestep() float64 { return e.nextTimestep }

// SetNextTimestep overrides the step size the next Step call will
// attempt (spec.md §4.2 "fill_state_supplemental" stage-stop clamp: the
// driver foreshortens the step so a stage's stopping_time lands exactly,
// rather than overshooting and interpolating back).
func (e *Evolver) SetNextTimestep(h float64) { e.nextTimestep = h }

// InitNewStage resets the FSAL cache and per-stage step heuristic at a
// stage boundary (spec.md §4.3 "start-of-stage step heuristic"): the next
// call to Step recomputes an initial timestep from start_dm/start_dt
// rather than reusing the previous stage's step size, unless stage_start
// is "continuous".
func (e *Evolver) InitNewStage() {
	if e.cfg.StageStart != "continuous" {
		e.haveFSAL = false
		e.nextTimestep = 0
	}
}

// evalDmDt evaluates the energy provider and dm/dt variant at a trial spin
// configuration, mirroring Oxs_RungeKuttaEvolve::Calculate_dm_dt. cur
// supplies the stage number, counters and stage times; Ms, MsInverse and
// the mesh come from the evolver itself, and Spin is always the candidate
// being probed.
func (e *Evolver) evalDmDt(cur *state.SimState, spin *mesh.MeshValue[mesh.Vec3]) (*dmdt.Result, float64, float64, *mesh.MeshValue[float64], error) {
	n := spin.Len()
	scratch := &state.SimState{Spin: spin, Ms: e.Ms, MsInverse: e.MsInverse, Mesh: e.msh,
		IterationCount: cur.IterationCount, StageNumber: cur.StageNumber,
		StageIterationCount: cur.StageIterationCount,
		StageStartTime:      cur.StageStartTime, StageElapsedTime: cur.StageElapsedTime}
	energyDensity := mesh.NewMeshValue[float64](n)
	mxH := mesh.NewMeshValue[mesh.Vec3](n)
	h := mesh.NewMeshValue[mesh.Vec3](n)
	pEPt, totalE, err := e.provider.EnergyDensity(scratch, energyDensity, mxH, h)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	ctx := &dmdt.Context{
		Mesh: e.msh, Spin: spin, Ms: e.Ms, MsInverse: e.MsInverse,
		MxH: mxH, H: h, PEPt: pEPt, Fixed: e.fixed,
	}
	res, err := e.variant.Compute(ctx)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	return res, pEPt, totalE, energyDensity, nil
}

// initialStep computes the first timestep of a run or (non-continuous)
// stage from start_dm/start_dt (spec.md §6): a single dm/dt evaluation at
// the current state gives max|dm/dt|, from which start_dm/max|dm/dt|
// bounds the step; start_dt is used directly when set and smaller.
func (e *Evolver) initialStep(cur *state.SimState) (float64, *dmdt.Result, float64, float64, *mesh.MeshValue[float64], error) {
	res, pEPt, totalE, energyDensity, err := e.evalDmDt(cur, cur.Spin)
	if err != nil {
		return 0, nil, 0, 0, nil, err
	}
	h := math.Inf(1)
	if e.cfg.StartDt > 0 {
		h = e.cfg.StartDt
	}
	if e.cfg.StartDm > 0 && res.MaxDmDt > 0 {
		byDm := e.cfg.StartDm / res.MaxDmDt
		if byDm < h {
			h = byDm
		}
	}
	if math.IsInf(h, 1) {
		h = e.cfg.MaxTimestep
	}
	h = e.clampStep(h)
	return h, res, pEPt, totalE, energyDensity, nil
}

// clampStep enforces the configured [min_timestep, max_timestep] box.
func (e *Evolver) clampStep(h float64) float64 {
	if e.cfg.MaxTimestep > 0 && h > e.cfg.MaxTimestep {
		h = e.cfg.MaxTimestep
	}
	if e.cfg.MinTimestep > 0 && h < e.cfg.MinTimestep {
		h = e.cfg.MinTimestep
	}
	return h
}

// Step advances cur by one accepted timestep, internally retrying
// rejected candidates (spec.md §4.3), and returns a finalized READ key on
// the new state.
func (e *Evolver) Step(curKey lock.Key[*state.SimState]) (lock.Key[*state.SimState], error) {
	cur := curKey.Object()

	h := e.nextTimestep
	var curRes *dmdt.Result
	var curTotalE, curPEPt float64
	var curEnergyDensity *mesh.MeshValue[float64]
	var err error
	if h <= 0 {
		h, curRes, curPEPt, curTotalE, curEnergyDensity, err = e.initialStep(cur)
		if err != nil {
			return lock.Key[*state.SimState]{}, err
		}
	} else if e.haveFSAL {
		curRes = e.fsal
		curTotalE, _ = cur.GetDerivedData(state.KeyTotalE)
		curPEPt = e.curPEPt
		curEnergyDensity = e.curEnergyDensity
	} else {
		curRes, curPEPt, curTotalE, curEnergyDensity, err = e.evalDmDt(cur, cur.Spin)
		if err != nil {
			return lock.Key[*state.SimState]{}, err
		}
	}

	for {
		if e.cfg.MinTimestep > 0 && h < e.cfg.MinTimestep {
			return lock.Key[*state.SimState]{}, chk.Err("evolver: timestep collapsed below min_timestep=%g (iteration %d)", e.cfg.MinTimestep, cur.IterationCount)
		}

		var out *stepOutcome
		if e.adaptive {
			out, err = e.rkf54Step(cur, curRes, h)
		} else {
			out, err = e.fixedStep(cur, curRes, h)
		}
		if err != nil {
			return lock.Key[*state.SimState]{}, err
		}

		ratio, bound := e.errorRatio(out, h)
		energyOK := e.checkEnergy(curTotalE, out.totalE, curEnergyDensity, out.energyDensity, curPEPt, out.pEPt, h)
		accept := (!e.adaptive) || (ratio <= 1 && energyOK)

		e.recordOutcome(!accept)

		if !accept {
			if !energyOK {
				h *= energyShrink
				e.growCap = energyHeadCap
			} else {
				shrink := e.stepHeadroom * math.Pow(1/math.Max(ratio, 1e-12), bound.exponent())
				if shrink < shrinkFloor {
					shrink = shrinkFloor
				}
				h *= shrink
			}
			h = e.clampStep(h)
			continue
		}

		return e.commit(cur, out, h)
	}
}

// errorRatio returns actual/allowed step error across every enabled
// bound (rate, absolute, relative), tightest (largest ratio) bound wins
// (spec.md §4.3 "check_error"), along with which bound won, since the
// rejected-step shrink exponent differs by bound. A ratio <= 1 means the
// step is acceptable.
func (e *Evolver) errorRatio(out *stepOutcome, h float64) (worst float64, bound errorBound) {
	if !e.adaptive {
		return 0, boundNone
	}
	if rate := e.cfg.ErrorRateRadPerSec(); rate > 0 {
		if r := out.stepError / (rate * h); r > worst {
			worst, bound = r, boundRate
		}
	}
	if e.cfg.AbsoluteStepError > 0 {
		if r := out.stepError / e.cfg.AbsoluteStepError; r > worst {
			worst, bound = r, boundAbsolute
		}
	}
	if e.cfg.RelativeStepError > 0 && out.maxDmDt > 0 {
		if r := out.stepError / (e.cfg.RelativeStepError * out.maxDmDt * h); r > worst {
			worst, bound = r, boundRelative
		}
	}
	return worst, bound
}

// checkEnergy applies the energy-based rejection rule (spec.md §4.3): ΔE
// is recomputed cellwise as Σ(e_new-e_old)·V, its numerical noise floor
// estimated from the cellwise energy magnitudes, and the step rejected
// only if ΔE exceeds what the driving field (pE/pt) could plausibly have
// supplied over h plus that noise floor — not simply whenever energy
// rises, since a time-varying field legitimately pumps energy in.
func (e *Evolver) checkEnergy(prevTotalE, newTotalE float64, prevEnergyDensity, newEnergyDensity *mesh.MeshValue[float64], startPEPt, endPEPt, h float64) bool {
	if e.cfg.EnergyPrecision <= 0 || prevEnergyDensity == nil || newEnergyDensity == nil {
		return true
	}
	var deltaAcc, varAcc xpfloat.Xpfloat
	n := newEnergyDensity.Len()
	for i := 0; i < n; i++ {
		v := e.msh.Volume(i)
		eOld := prevEnergyDensity.Get(i)
		eNew := newEnergyDensity.Get(i)
		deltaAcc.Accum((eNew - eOld) * v)
		varAcc.Accum(eNew * eNew * v * v)
	}
	deltaE := deltaAcc.Sum()
	variance := 256 * epsilon * epsilon * varAcc.Sum()
	numError := math.Abs(newTotalE) * e.cfg.EnergyPrecision
	if s := 2 * math.Sqrt(math.Max(variance, 0)); s > numError {
		numError = s
	}
	pEPtMax := math.Max(math.Abs(startPEPt), math.Abs(endPEPt))
	return deltaE <= pEPtMax*h+numError
}

// recordOutcome pushes one accept/reject sample into the rolling window
// used to report reject_ratio (spec.md §4.3 headroom feedback loop).
func (e *Evolver) recordOutcome(rejected bool) {
	e.rejectHist = append(e.rejectHist, rejected)
	if len(e.rejectHist) > rejectWindow {
		e.rejectHist = e.rejectHist[1:]
	}
}

// RejectRatio reports the fraction of rejected steps in the rolling
// window, the quantity spec.md §4.3's headroom controller targets against
// reject_goal.
func (e *Evolver) RejectRatio() float64 {
	if len(e.rejectHist) == 0 {
		return 0
	}
	n := 0
	for _, r := range e.rejectHist {
		if r {
			n++
		}
	}
	return float64(n) / float64(len(e.rejectHist))
}

// commit allocates the next pool slot, fills it from out, and computes
// the following candidate timestep (spec.md §4.1 clone_header + §4.3
// headroom-adjusted step growth).
func (e *Evolver) commit(cur *state.SimState, out *stepOutcome, h float64) (lock.Key[*state.SimState], error) {
	wk := e.pool.GetNewSimulationState()
	next := wk.Object()
	state.CloneHeader(cur, next)
	next.Spin.CopyFrom(out.spin)
	next.IterationCount = cur.IterationCount + 1
	next.StageIterationCount = cur.StageIterationCount + 1
	next.StageElapsedTime = cur.StageElapsedTime + h
	next.LastTimestep = h

	next.AddDerivedData(state.KeyMaxDmDt, out.maxDmDt)
	next.AddDerivedData(state.KeyDEDt, out.dEdt)
	next.AddDerivedData(state.KeyPEPt, out.pEPt)
	next.AddDerivedData(state.KeyDeltaE, out.totalE-e.lastTotalE(cur))
	next.AddDerivedData(state.KeyTotalE, out.totalE)
	next.AddDerivedData(state.KeyTimestepLowerBd, out.timestepLB)

	rk := e.pool.Finalize(wk)

	if out.fsalDmDt != nil {
		e.fsal = out.fsalDmDt
		e.haveFSAL = true
	} else {
		e.haveFSAL = false
	}

	if e.adaptive {
		e.growHeadroom(out)
		ratio, _ := e.errorRatio(out, h)
		grow := e.stepHeadroom * math.Pow(1/math.Max(ratio, 1e-12), 0.2)
		if grow > e.growCap {
			grow = e.growCap
		}
		if grow < shrinkFloor {
			grow = shrinkFloor
		}
		h = e.clampStep(h * grow)
		e.growCap = e.defaultGrowCap // the energyHeadCap clamp applies for one accepted step only
	}

	// Normalization-drift clamp (spec.md §4.3): never suggest a step so
	// small it can't change any spin by more than epsilon relative to unit
	// magnitude.
	if out.timestepLB > 0 && h < out.timestepLB {
		h = out.timestepLB
	}
	e.nextTimestep = h

	e.curPEPt = out.pEPt
	e.curEnergyDensity = out.energyDensity

	return rk, nil
}

// growHeadroom nudges step_headroom toward reject_goal (spec.md §4.3):
// a reject ratio above goal shrinks headroom, below goal grows it, both
// clamped to [min_step_headroom, max_step_headroom].
func (e *Evolver) growHeadroom(out *stepOutcome) {
	goal := e.cfg.RejectGoal
	if goal <= 0 {
		return
	}
	ratio := e.RejectRatio()
	switch {
	case ratio > goal:
		e.stepHeadroom *= 0.9
	case ratio < goal:
		e.stepHeadroom *= 1.05
	}
	if e.stepHeadroom < e.cfg.MinStepHeadroom {
		e.stepHeadroom = e.cfg.MinStepHeadroom
	}
	if e.stepHeadroom > e.cfg.MaxStepHeadroom {
		e.stepHeadroom = e.cfg.MaxStepHeadroom
	}
}

// lastTotalE reads back cur's own Total E derived entry, or 0 for the
// very first state of a run (spec.md §3 derived data is write-once, so
// the initial state may legitimately have none yet).
func (e *Evolver) lastTotalE(cur *state.SimState) float64 {
	v, _ := cur.GetDerivedData(state.KeyTotalE)
	return v
}
