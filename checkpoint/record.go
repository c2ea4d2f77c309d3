// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package checkpoint implements atomic periodic serialization of a
// SimState (spec.md §2 row H, §4.5), grounded on inp.Simulation's gob
// encoding and on fem's temp-file-then-rename pattern for output files.
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/pkg/errors"

	"github.com/cpmech/oxscore/mesh"
	"github.com/cpmech/oxscore/state"
)

// magic tags the file as an oxscore checkpoint; version allows the
// layout to evolve without silently misreading an older file.
var magic = [4]byte{'O', 'X', 'C', 'K'}

const version = 1

// record is the payload gob-encodes after the magic/version header
// (spec.md §6 "Checkpoint file layout"): counters, times, problem
// status, and the full spin array in mesh-cell order.
type record struct {
	StateId             uint32
	IterationCount      uint32
	StageNumber         uint32
	StageIterationCount uint32

	StageStartTime   float64
	StageElapsedTime float64
	LastTimestep     float64

	ProblemStatus int32

	// Spin is N*3 float64s, cell i at [3i, 3i+3).
	Spin []float64
}

func newRecord(s *state.SimState) *record {
	n := s.Spin.Len()
	spin := make([]float64, 0, n*3)
	for i := 0; i < n; i++ {
		v := s.Spin.Get(i)
		spin = append(spin, v.X, v.Y, v.Z)
	}
	return &record{
		StateId:             s.Id,
		IterationCount:      uint32(s.IterationCount),
		StageNumber:         uint32(s.StageNumber),
		StageIterationCount: uint32(s.StageIterationCount),
		StageStartTime:      s.StageStartTime,
		StageElapsedTime:    s.StageElapsedTime,
		LastTimestep:        s.LastTimestep,
		ProblemStatus:       int32(s.RunDone),
		Spin:                spin,
	}
}

// encode serializes r as magic + version + gob(r).
func encode(r *record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, uint32(version)); err != nil {
		return nil, errors.Wrap(err, "checkpoint: writing version header")
	}
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, errors.Wrap(err, "checkpoint: gob-encoding record")
	}
	return buf.Bytes(), nil
}

// decode parses the magic/version header and gob-decodes the record.
func decode(data []byte) (*record, error) {
	if len(data) < 8 {
		return nil, errors.New("checkpoint: file too short to contain a header")
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, errors.Errorf("checkpoint: bad magic %x, expected %x", data[:4], magic)
	}
	gotVersion := binary.LittleEndian.Uint32(data[4:8])
	if gotVersion != version {
		return nil, errors.Errorf("checkpoint: unsupported version %d, expected %d", gotVersion, version)
	}
	var r record
	if err := gob.NewDecoder(bytes.NewReader(data[8:])).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "checkpoint: gob-decoding record")
	}
	return &r, nil
}

// fillState writes r's contents into dst, whose Spin/Ms/MsInverse/Mesh
// must already be shaped for the mesh the checkpoint was taken from.
func (r *record) fillState(dst *state.SimState, msh mesh.Mesh) error {
	n := msh.Size()
	if len(r.Spin) != n*3 {
		return errors.Errorf("checkpoint: record has %d spin cells, mesh has %d", len(r.Spin)/3, n)
	}
	dst.Id = r.StateId
	dst.IterationCount = int(r.IterationCount)
	dst.StageNumber = int(r.StageNumber)
	dst.StageIterationCount = int(r.StageIterationCount)
	dst.StageStartTime = r.StageStartTime
	dst.StageElapsedTime = r.StageElapsedTime
	dst.LastTimestep = r.LastTimestep
	dst.RunDone = state.TriState(r.ProblemStatus)
	for i := 0; i < n; i++ {
		dst.Spin.Set(i, mesh.Vec3{X: r.Spin[3*i], Y: r.Spin[3*i+1], Z: r.Spin[3*i+2]})
	}
	return nil
}
