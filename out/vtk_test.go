// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

func Test_write_vti_produces_well_formed_image_data(tst *testing.T) {
	msh := mesh.NewRectMesh(2, 1, 1, 1e-9, 1e-9, 1e-9)
	pool := state.NewPool(msh)
	pool.Reserve(2)
	wk := pool.GetNewSimulationState()
	s0 := wk.Object()
	for i := 0; i < msh.Size(); i++ {
		s0.Ms.Set(i, 8e5)
		s0.Spin.Set(i, mesh.Vec3{Z: 1})
	}
	rk := pool.Finalize(wk)

	path := filepath.Join(tst.TempDir(), "snapshot.vti")
	WriteVTI(path, msh, rk.Object())

	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatalf("unexpected error reading written file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "<VTKFile type=\"ImageData\"") {
		tst.Errorf("expected a VTK ImageData header, got:\n%s", content)
	}
	if !strings.Contains(content, "WholeExtent=\"0 2 0 1 0 1\"") {
		tst.Errorf("expected WholeExtent to reflect the mesh dimensions, got:\n%s", content)
	}
	if !strings.Contains(content, "Name=\"spin\"") || !strings.Contains(content, "Name=\"Ms\"") {
		tst.Errorf("expected both spin and Ms data arrays, got:\n%s", content)
	}
}
