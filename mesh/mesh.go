// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "github.com/cpmech/gosl/chk"

// Mesh is the contract the core requires of the (externally supplied)
// geometry layer (spec.md §6 "Mesh contract"). The mesh geometry itself is
// deliberately out of scope for this core (spec.md §1); only this
// interface, and the RectMesh reference implementation used for testing
// and by the rectangular-mesh-only dm/dt variants, live here.
type Mesh interface {
	// Size returns the number of cells, N.
	Size() int

	// Volume returns the volume of cell i, in m^3.
	Volume(i int) float64

	// HasUniformCellVolumes reports whether every cell has the same
	// volume; required true for aveM and projection outputs (spec.md §6).
	HasUniformCellVolumes() bool
}

// RectMesh is a uniformly-volumed rectangular cell mesh: the shape the
// core assumes (spec.md §1) and the only shape the Zhang and Baryakhtar
// dm/dt variants can operate on (spec.md §4.4, they "require a rectangular
// mesh with known edge lengths").
type RectMesh struct {
	Nx, Ny, Nz       int
	Dx, Dy, Dz       float64 // edge lengths, meters
	OriginX, OriginY float64
	OriginZ          float64
}

// NewRectMesh builds a RectMesh; panics (ConfigError-class, fatal at init
// per spec.md §7) if any dimension or edge length is non-positive.
func NewRectMesh(nx, ny, nz int, dx, dy, dz float64) *RectMesh {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		chk.Panic("mesh: cell counts must be positive, got (%d,%d,%d)", nx, ny, nz)
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		chk.Panic("mesh: edge lengths must be positive, got (%g,%g,%g)", dx, dy, dz)
	}
	return &RectMesh{Nx: nx, Ny: ny, Nz: nz, Dx: dx, Dy: dy, Dz: dz}
}

// Size implements Mesh.
func (m *RectMesh) Size() int { return m.Nx * m.Ny * m.Nz }

// Volume implements Mesh; uniform, so i is unused beyond a bounds check.
func (m *RectMesh) Volume(i int) float64 {
	if i < 0 || i >= m.Size() {
		chk.Panic("mesh: cell index %d out of range [0,%d)", i, m.Size())
	}
	return m.Dx * m.Dy * m.Dz
}

// HasUniformCellVolumes implements Mesh; always true for RectMesh.
func (m *RectMesh) HasUniformCellVolumes() bool { return true }

// DimX, DimY, DimZ return the per-axis cell counts (spec.md §6).
func (m *RectMesh) DimX() int { return m.Nx }
func (m *RectMesh) DimY() int { return m.Ny }
func (m *RectMesh) DimZ() int { return m.Nz }

// EdgeLengthX, EdgeLengthY, EdgeLengthZ return the per-axis cell size.
func (m *RectMesh) EdgeLengthX() float64 { return m.Dx }
func (m *RectMesh) EdgeLengthY() float64 { return m.Dy }
func (m *RectMesh) EdgeLengthZ() float64 { return m.Dz }

// Index maps a (i,j,k) triple to a linear cell index, x-fastest.
func (m *RectMesh) Index(i, j, k int) int {
	return i + m.Nx*(j+m.Ny*k)
}

// Coords maps a linear cell index back to its (i,j,k) triple.
func (m *RectMesh) Coords(idx int) (i, j, k int) {
	i = idx % m.Nx
	rest := idx / m.Nx
	j = rest % m.Ny
	k = rest / m.Ny
	return
}

// Center returns the (x,y,z) coordinate of cell idx's centroid.
func (m *RectMesh) Center(idx int) (x, y, z float64) {
	i, j, k := m.Coords(idx)
	x = m.OriginX + (float64(i)+0.5)*m.Dx
	y = m.OriginY + (float64(j)+0.5)*m.Dy
	z = m.OriginZ + (float64(k)+0.5)*m.Dz
	return
}

// NeighborX returns the index of the cell at offset delta along x from
// idx, and whether that neighbor exists (false at a mesh boundary).
func (m *RectMesh) NeighborX(idx, delta int) (int, bool) {
	i, j, k := m.Coords(idx)
	i += delta
	if i < 0 || i >= m.Nx {
		return 0, false
	}
	return m.Index(i, j, k), true
}

// NeighborY is the y-axis analogue of NeighborX.
func (m *RectMesh) NeighborY(idx, delta int) (int, bool) {
	i, j, k := m.Coords(idx)
	j += delta
	if j < 0 || j >= m.Ny {
		return 0, false
	}
	return m.Index(i, j, k), true
}

// NeighborZ is the z-axis analogue of NeighborX.
func (m *RectMesh) NeighborZ(idx, delta int) (int, bool) {
	i, j, k := m.Coords(idx)
	k += delta
	if k < 0 || k >= m.Nz {
		return 0, false
	}
	return m.Index(i, j, k), true
}
