// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_rectmesh_index_roundtrip(tst *testing.T) {

	chk.PrintTitle("rectmesh_index_roundtrip. Index/Coords are inverses")

	m := NewRectMesh(4, 3, 2, 5e-9, 5e-9, 5e-9)
	if m.Size() != 24 {
		tst.Errorf("expected size=24, got %d", m.Size())
	}
	for k := 0; k < m.Nz; k++ {
		for j := 0; j < m.Ny; j++ {
			for i := 0; i < m.Nx; i++ {
				idx := m.Index(i, j, k)
				ri, rj, rk := m.Coords(idx)
				if ri != i || rj != j || rk != k {
					tst.Errorf("roundtrip failed for (%d,%d,%d): got (%d,%d,%d)", i, j, k, ri, rj, rk)
				}
			}
		}
	}
}

func Test_rectmesh_neighbors_at_boundary(tst *testing.T) {

	chk.PrintTitle("rectmesh_neighbors_at_boundary. no neighbor past an edge")

	m := NewRectMesh(2, 2, 1, 1, 1, 1)
	idx := m.Index(0, 0, 0)
	if _, ok := m.NeighborX(idx, -1); ok {
		tst.Errorf("expected no neighbor at x=-1 from the left edge")
	}
	if _, ok := m.NeighborX(idx, 1); !ok {
		tst.Errorf("expected a neighbor at x=+1")
	}
}

func Test_striped_array_covers_all_cells(tst *testing.T) {

	chk.PrintTitle("striped_array_covers_all_cells. blocks partition [0,n)")

	n := 17
	sa := NewStripedArray[float64](n, 5)
	seen := make([]bool, n)
	for b := 0; b < sa.NumBlocks(); b++ {
		blk := sa.BlockOf(b)
		for i := blk.Start; i < blk.Stop; i++ {
			if seen[i] {
				tst.Errorf("cell %d covered by more than one block", i)
			}
			seen[i] = true
		}
	}
	for i, s := range seen {
		if !s {
			tst.Errorf("cell %d not covered by any block", i)
		}
	}
}

func Test_jobbasket_drains_exactly_once(tst *testing.T) {

	chk.PrintTitle("jobbasket_drains_exactly_once. every cell processed once")

	n := 1000
	counts := make([]int32, n)
	var mu sync.Mutex
	jb := NewJobBasket(n, 37, 4)
	err := jb.RunParallel(func(b Block) error {
		mu.Lock()
		for i := b.Start; i < b.Stop; i++ {
			counts[i]++
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		tst.Errorf("unexpected error: %v", err)
	}
	for i, c := range counts {
		if c != 1 {
			tst.Errorf("cell %d processed %d times, want 1", i, c)
		}
	}
}
