// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixedspin implements the region-based dm/dt clamp (spec.md §2
// row I, §4.6): a configured list of (atlas, region) pairs identifies
// cells whose spin never moves.
package fixedspin

import (
	"sort"

	"github.com/cpmech/oxscore/config"
	"github.com/cpmech/oxscore/mesh"
)

// Atlas maps a cell-center coordinate to a region name, the external
// collaborator a fixed-spin spec's "atlas" field names (spec.md §4.6).
// Atlases themselves are part of the out-of-scope mesh-geometry layer
// (spec.md §1); this package only consumes the interface.
type Atlas interface {
	RegionAt(x, y, z float64) string
}

// CenterMesh is the subset of RectMesh's surface a Mask needs: cell count
// and centroid lookup.
type CenterMesh interface {
	Size() int
	Center(i int) (x, y, z float64)
}

// Mask holds the sorted, deduplicated list of fixed-spin cell indices
// (spec.md §4.6 "sorted ascending, assumed by parallel energy
// evaluators").
type Mask struct {
	Cells []int
}

// Update iterates every cell, looks up its center's region in the named
// atlas, and records cells whose region matches one of specs (spec.md
// §4.6 "update_fixed_spin_list"). An empty/"*" Region in a spec matches
// every region of that atlas.
func (m *Mask) Update(msh CenterMesh, atlases map[string]Atlas, specs []config.FixedSpinSpec) {
	set := make(map[int]struct{})
	for _, spec := range specs {
		atlas, ok := atlases[spec.Atlas]
		if !ok {
			continue
		}
		for i := 0; i < msh.Size(); i++ {
			x, y, z := msh.Center(i)
			region := atlas.RegionAt(x, y, z)
			if spec.Region == "" || spec.Region == "*" || spec.Region == region {
				set[i] = struct{}{}
			}
		}
	}
	cells := make([]int, 0, len(set))
	for i := range set {
		cells = append(cells, i)
	}
	sort.Ints(cells)
	m.Cells = cells
}

// Clamp zeroes dm_dt[i] for every fixed cell i (spec.md §4.6 "Fixed-cell
// dm/dt is forced to zero after every LLG computation"). dmdt.Variant
// implementations already consult a Fixed index list directly via
// dmdt.Context.Fixed; Clamp exists for callers that need to re-apply
// the clamp to an already-computed field without re-running a Variant.
func (m *Mask) Clamp(dmDt *mesh.MeshValue[mesh.Vec3]) {
	for _, i := range m.Cells {
		dmDt.Set(i, mesh.Vec3{})
	}
}
