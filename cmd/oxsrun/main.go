// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/viper"

	"github.com/cpmech/oxscore/cache"
	"github.com/cpmech/oxscore/checkpoint"
	"github.com/cpmech/oxscore/cmd/oxsrun/monitor"
	"github.com/cpmech/oxscore/dmdt"
	"github.com/cpmech/oxscore/driver"
	"github.com/cpmech/oxscore/energy"
	"github.com/cpmech/oxscore/evolver"
	"github.com/cpmech/oxscore/lock"
	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// cli overlays OXSRUN_-prefixed environment variables and flags on top of
// the manifest path, the way gofem's own main.go takes a filenamepath
// flag (SPEC_FULL §2 "spf13/viper ... env/flag overlay").
func cli() (manifestPath string) {
	flag.StringVar(&manifestPath, "manifest", "", "path to the YAML run manifest")
	flag.Parse()

	vp := viper.New()
	vp.SetEnvPrefix("OXSRUN")
	vp.AutomaticEnv()
	if manifestPath == "" {
		if v := vp.GetString("manifest"); v != "" {
			manifestPath = v
		}
	}
	if manifestPath == "" && flag.NArg() > 0 {
		manifestPath = flag.Arg(0)
	}
	return manifestPath
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	manifestPath := cli()
	if manifestPath == "" {
		io.PfRed("ERROR: no manifest given (use -manifest or $OXSRUN_MANIFEST)\n")
		os.Exit(2)
	}

	m, err := LoadManifest(manifestPath)
	if err != nil {
		chk.Panic("%v", err)
	}
	if err := m.Evolver.Validate(); err != nil {
		chk.Panic("%v", err)
	}

	io.PfWhite("\noxsrun -- micromagnetic time-evolution engine\n\n")
	io.Pf("problem: %s\n", m.Problem)

	msh := mesh.NewRectMesh(m.Mesh.Nx, m.Mesh.Ny, m.Mesh.Nz, m.Mesh.Dx, m.Mesh.Dy, m.Mesh.Dz)
	n := msh.Size()

	pool := state.NewPool(msh)
	pool.Reserve(64)

	Ms := mesh.NewMeshValue[float64](n)
	MsInverse := mesh.NewMeshValue[float64](n)
	for i := 0; i < n; i++ {
		Ms.Set(i, m.Material.Ms)
		if m.Material.Ms != 0 {
			MsInverse.Set(i, 1/m.Material.Ms)
		}
	}

	restartKey, restarted, err := checkpoint.Load(m.Evolver, msh, pool, false)
	if err != nil {
		chk.Panic("%v", err)
	}

	var initial = restartKey
	if !restarted {
		wk := pool.GetNewSimulationState()
		s0 := wk.Object()
		for i := 0; i < n; i++ {
			s0.Ms.Set(i, m.Material.Ms)
			s0.MsInverse.Set(i, MsInverse.Get(i))
			s0.Spin.Set(i, mesh.Vec3{X: 0, Y: 0, Z: 1})
		}
		initial = pool.Finalize(wk)
		io.Pf("starting fresh at stage 0\n")
	} else {
		r0 := initial.Object()
		for i := 0; i < n; i++ {
			r0.Ms.Set(i, m.Material.Ms)
			r0.MsInverse.Set(i, MsInverse.Get(i))
		}
		io.Pf("restarted from checkpoint at state id %d, stage %d\n", initial.Object().Id, initial.Object().StageNumber)
	}

	alpha := mesh.NewMeshValue[float64](n)
	for i := 0; i < n; i++ {
		alpha.Set(i, m.Evolver.Alpha)
	}
	var gammaLL *mesh.MeshValue[float64]
	if m.Evolver.GammaG != nil {
		gammaG := mesh.NewMeshValue[float64](n)
		for i := 0; i < n; i++ {
			gammaG.Set(i, *m.Evolver.GammaG)
		}
		gammaLL = dmdt.GammaFromGilbert(gammaG, alpha, m.Evolver.AllowSignedGamma)
	} else {
		gammaLL = mesh.NewMeshValue[float64](n)
		for i := 0; i < n; i++ {
			gammaLL.Set(i, *m.Evolver.GammaLL)
		}
	}
	variant := dmdt.NewStandardLLG(gammaLL, alpha)

	provider := energy.NewZeeman(m.Zeeman.H)
	if err := energy.Validate(msh, Ms); err != nil {
		chk.Panic("%v", err)
	}

	ev, err := evolver.New(m.Evolver, variant, provider, pool, msh, Ms, MsInverse, nil)
	if err != nil {
		chk.Panic("%v", err)
	}

	d := driver.New(m.Driver, ev, m.NumStages)
	d.ShowMsg = true

	chkpt, err := checkpoint.New(m.Evolver)
	if err != nil {
		chk.Panic("%v", err)
	}
	// A checkpoint write is attempted at every stage boundary;
	// Checkpointer.MaybeWrite skips it when checkpointing is disabled, when
	// the state was already written, or when the configured interval has
	// not yet elapsed since the last write.
	d.AfterStage = func(stage int, final lock.Key[*state.SimState]) {
		chkpt.MaybeWrite(final.Object(), time.Now())
	}

	var ring *cache.EventRing
	var mon *monitor.Server
	if m.Monitor.Enabled {
		ringLen := m.Monitor.RingLength
		if ringLen <= 0 {
			ringLen = 256
		}
		ring = cache.NewEventRing(ringLen)
		mon = monitor.New(ring)
		go func() {
			if err := mon.ListenAndServe(m.Monitor.Addr); err != nil {
				io.Pfyel("monitor: %v\n", err)
			}
		}()
	}
	d.OnEvent = func(ev driver.Event) {
		if ring != nil {
			ring.Push(ev)
			mon.Broadcast(ev)
		}
	}

	// Run blocks for the whole simulation; a signal here can only log and
	// let the in-flight stage finish so AfterStage's checkpoint stays
	// consistent, rather than tearing down mid-step.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			io.Pfyel("\noxsrun: signal received, finishing current stage before exit\n")
		case <-done:
		}
	}()

	final, events, err := d.Run(initial)
	close(done)
	if err != nil {
		chk.Panic("%v", err)
	}

	if err := chkpt.Write(final.Object()); err != nil {
		io.Pfyel("checkpoint: final write failed: %v\n", err)
	}
	status := state.NotDone
	if final.Object().RunDone == state.Done {
		status = state.Done
	}
	if err := chkpt.Close(status); err != nil {
		io.Pfyel("checkpoint: cleanup failed: %v\n", err)
	}

	io.Pf("\ndone: %d steps, final iteration_count=%d, stage=%d\n", len(events), final.Object().IterationCount, final.Object().StageNumber)
}
