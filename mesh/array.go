// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "github.com/cpmech/gosl/chk"

// MeshValue is a dense, cell-indexed array of T: the common shape for
// spin, Ms, gamma, alpha, mxH, and every other per-cell field the core
// passes around (spec.md §2 row A).
type MeshValue[T any] struct {
	data []T
}

// NewMeshValue allocates a MeshValue with n zero-valued entries.
func NewMeshValue[T any](n int) *MeshValue[T] {
	return &MeshValue[T]{data: make([]T, n)}
}

// NewMeshValueFrom wraps an existing slice without copying.
func NewMeshValueFrom[T any](data []T) *MeshValue[T] {
	return &MeshValue[T]{data: data}
}

// Len returns the number of cells.
func (m *MeshValue[T]) Len() int { return len(m.data) }

// Get returns the value at cell i.
func (m *MeshValue[T]) Get(i int) T { return m.data[i] }

// Set assigns the value at cell i.
func (m *MeshValue[T]) Set(i int, v T) { m.data[i] = v }

// Raw returns the underlying slice for bulk operations (e.g. gob encoding
// in the checkpoint subsystem, or handing a block to a JobBasket worker).
func (m *MeshValue[T]) Raw() []T { return m.data }

// Clone returns a deep copy (element-wise, so T must be a value type or a
// type whose zero-copy semantics are acceptable — true for Vec3 and
// float64, the only types this core stores).
func (m *MeshValue[T]) Clone() *MeshValue[T] {
	out := make([]T, len(m.data))
	copy(out, m.data)
	return &MeshValue[T]{data: out}
}

// CopyFrom overwrites m's contents with src's. Panics if lengths differ.
func (m *MeshValue[T]) CopyFrom(src *MeshValue[T]) {
	if len(m.data) != len(src.data) {
		chk.Panic("mesh: CopyFrom length mismatch: %d != %d", len(m.data), len(src.data))
	}
	copy(m.data, src.data)
}

// Block holds the range of cell indices [Start,Stop) a given stripe owns.
type Block struct {
	Start, Stop int
}

// Len returns the number of cells in the block.
func (b Block) Len() int { return b.Stop - b.Start }

// StripedArray pins a fixed block structure onto a MeshValue so that
// "thread N" consistently owns the same cell range across passes,
// improving cache locality across repeated energy/dm_dt evaluations
// (spec.md §5).
type StripedArray[T any] struct {
	*MeshValue[T]
	blocks []Block
}

// NewStripedArray divides n cells into nstripes contiguous blocks of
// roughly equal size (the first n%nstripes blocks each take one extra
// cell).
func NewStripedArray[T any](n, nstripes int) *StripedArray[T] {
	if nstripes < 1 {
		nstripes = 1
	}
	blocks := make([]Block, 0, nstripes)
	base := n / nstripes
	rem := n % nstripes
	start := 0
	for s := 0; s < nstripes; s++ {
		size := base
		if s < rem {
			size++
		}
		blocks = append(blocks, Block{Start: start, Stop: start + size})
		start += size
	}
	return &StripedArray[T]{MeshValue: NewMeshValue[T](n), blocks: blocks}
}

// NumBlocks returns the number of stripes.
func (s *StripedArray[T]) NumBlocks() int { return len(s.blocks) }

// BlockOf returns the [start,stop) range owned by stripe idx.
func (s *StripedArray[T]) BlockOf(idx int) Block { return s.blocks[idx] }
