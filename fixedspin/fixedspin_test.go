// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fixedspin

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/mesh"
)

type zAtlas struct{}

func (zAtlas) RegionAt(x, y, z float64) string {
	if z < 1e-9 {
		return "substrate"
	}
	return "bulk"
}

func Test_update_selects_region_and_sorts(tst *testing.T) {

	chk.PrintTitle("update_selects_region_and_sorts")

	rm := mesh.NewRectMesh(2, 2, 2, 1e-9, 1e-9, 1e-9)
	var m Mask
	atlases := map[string]Atlas{"z": zAtlas{}}
	specs := []config.FixedSpinSpec{{Atlas: "z", Region: "substrate"}}
	m.Update(rm, atlases, specs)

	for _, i := range m.Cells {
		_, _, z := rm.Center(i)
		if z >= 1e-9 {
			tst.Errorf("cell %d has z=%g, should not be in the substrate mask", i, z)
		}
	}
	for i := 1; i < len(m.Cells); i++ {
		if m.Cells[i] <= m.Cells[i-1] {
			tst.Errorf("expected strictly ascending sorted cells, got %v", m.Cells)
		}
	}
	if len(m.Cells) != 4 {
		tst.Errorf("expected 4 cells in the bottom z-layer, got %d", len(m.Cells))
	}
}

func Test_clamp_zeroes_fixed_cells(tst *testing.T) {

	chk.PrintTitle("clamp_zeroes_fixed_cells")

	m := Mask{Cells: []int{1, 3}}
	dmdt := mesh.NewMeshValue[mesh.Vec3](4)
	for i := 0; i < 4; i++ {
		dmdt.Set(i, mesh.Vec3{X: 1, Y: 2, Z: 3})
	}
	m.Clamp(dmdt)
	if dmdt.Get(1) != (mesh.Vec3{}) || dmdt.Get(3) != (mesh.Vec3{}) {
		tst.Errorf("expected fixed cells zeroed")
	}
	if dmdt.Get(0) == (mesh.Vec3{}) || dmdt.Get(2) == (mesh.Vec3{}) {
		tst.Errorf("expected non-fixed cells untouched")
	}
}
