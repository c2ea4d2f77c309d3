// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out writes VTK ImageData (.vti) snapshots of a run's spin
// field, the supplemented visualization output spec.md's distillation
// left out (spec.md §1 names outputs only abstractly; original_source/
// oommf ships dozens of concrete output types, of which a spatial field
// snapshot is the most basic). Adapted from tools/GenVtu.go's
// topology/pdata XML-writing idiom, simplified from an unstructured FE
// mesh of arbitrary element types down to this core's one mesh shape: a
// uniform rectangular grid, which VTK's ImageData format represents
// without an explicit points/cells section at all.
package out

import (
	"bytes"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// WriteVTI renders s's spin field over msh as a VTK ImageData file at
// path. Every cell carries its spin vector (Spin) as 3-component cell
// data; Ms is written alongside so a viewer can mask non-magnetic cells.
// Panics on a write failure, the same "fatal, not recoverable" posture
// tools/GenVtu.go takes for its own VTK output.
func WriteVTI(path string, msh *mesh.RectMesh, s *state.SimState) {
	var buf bytes.Buffer

	nx, ny, nz := msh.DimX(), msh.DimY(), msh.DimZ()
	dx, dy, dz := msh.EdgeLengthX(), msh.EdgeLengthY(), msh.EdgeLengthZ()

	io.Ff(&buf, "<?xml version=\"1.0\"?>\n")
	io.Ff(&buf, "<VTKFile type=\"ImageData\" version=\"0.1\" byte_order=\"LittleEndian\">\n")
	io.Ff(&buf, "<ImageData WholeExtent=\"0 %d 0 %d 0 %d\" Origin=\"0 0 0\" Spacing=\"%.15e %.15e %.15e\">\n",
		nx, ny, nz, dx, dy, dz)
	io.Ff(&buf, "<Piece Extent=\"0 %d 0 %d 0 %d\">\n", nx, ny, nz)
	io.Ff(&buf, "<CellData Scalars=\"Ms\" Vectors=\"spin\">\n")

	io.Ff(&buf, "<DataArray type=\"Float64\" Name=\"Ms\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	writeVTIScalars(&buf, s.Ms)
	io.Ff(&buf, "</DataArray>\n")

	io.Ff(&buf, "<DataArray type=\"Float64\" Name=\"spin\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	writeVTIVectors(&buf, s.Spin)
	io.Ff(&buf, "</DataArray>\n")

	io.Ff(&buf, "</CellData>\n</Piece>\n</ImageData>\n</VTKFile>\n")

	io.WriteFileV(path, &buf)
}

func writeVTIScalars(buf *bytes.Buffer, v *mesh.MeshValue[float64]) {
	for i := 0; i < v.Len(); i++ {
		io.Ff(buf, "%23.15e ", v.Get(i))
	}
	io.Ff(buf, "\n")
}

func writeVTIVectors(buf *bytes.Buffer, v *mesh.MeshValue[mesh.Vec3]) {
	for i := 0; i < v.Len(); i++ {
		c := v.Get(i)
		io.Ff(buf, "%23.15e %23.15e %23.15e ", c.X, c.Y, c.Z)
	}
	io.Ff(buf, "\n")
}
