/*
 * reader.go, part of gogsd.
 *
 * Copyright 2026 The gogsd Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package gsd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/gogsd/chunk"
	"github.com/rmera/gogsd/store"
)

// Trajectory reads the frames of a trajectory file written by Writer.
// It implements Traj.
//
// A quantity missing from a frame i > 0 was either not written because its
// category isn't dynamic, or suppressed because every particle had the
// default value. If any other quantity of the same category is in frame i,
// the category was written, and the missing quantity has its default value.
// Otherwise it is taken from the first frame and, if it isn't there either,
// it has its default value. Positions are never suppressed, so the property
// category is always told apart. For attributes and momenta, a frame where
// every quantity of the category went back to the default can't be told
// from a frame where the category was not written, and reads as the first
// frame. particles/types is taken from the last frame, up to i, that has it.
type Trajectory struct {
	h        *store.Handle
	filename string
	natoms   int
	frame    uint64 //the next frame to be read by Next
	readable bool
}

// OpenTrajectory opens filename for reading.
func OpenTrajectory(filename string) (*Trajectory, error) {
	h, err := store.Open(filename)
	if err != nil {
		return nil, errDecorate(err, "OpenTrajectory")
	}
	if s := h.Header().Schema; s != SchemaName {
		h.Close()
		return nil, newError(filename, "OpenTrajectory", "schema %q is not %q", s, SchemaName)
	}
	t := &Trajectory{h: h, filename: filename, readable: true}
	if h.NFrames() > 0 {
		n, err := t.N(0)
		if err != nil {
			h.Close()
			return nil, errDecorate(err, "OpenTrajectory")
		}
		t.natoms = n
	}
	return t, nil
}

// Handle returns the underlying store handle.
func (t *Trajectory) Handle() *store.Handle { return t.h }

// Len returns the number of particles in the first frame.
func (t *Trajectory) Len() int { return t.natoms }

// NFrames returns the number of committed frames.
func (t *Trajectory) NFrames() uint64 { return t.h.NFrames() }

// Readable returns true if there are frames left to read with Next.
func (t *Trajectory) Readable() bool { return t.readable }

// the quantities written together in each category.
var categoryChunks = [][]string{
	{"particles/types", "particles/typeid", "particles/mass", "particles/charge",
		"particles/diameter", "particles/body", "particles/moment_inertia"},
	{"particles/position", "particles/orientation"},
	{"particles/velocity", "particles/angmom", "particles/image"},
}

// lookup reads name from frame i or, if frame i lacks it and its category
// was not written in frame i, from frame 0. ok is false if the quantity
// has its default value.
func (t *Trajectory) lookup(i uint64, name string) (d store.Data, ok bool, err error) {
	if i >= t.h.NFrames() {
		return d, false, newError(t.filename, "lookup", "frame %d out of range for %d frames", i, t.h.NFrames())
	}
	from, found := i, false
	if _, found = t.h.Find(i, name); !found && i > 0 {
		if name == "particles/types" {
			for from = i - 1; ; from-- {
				if _, found = t.h.Find(from, name); found || from == 0 {
					break
				}
			}
		} else if !t.categoryWritten(i, name) {
			from = 0
			_, found = t.h.Find(0, name)
		}
	}
	if !found {
		return d, false, nil
	}
	d, err = t.h.Read(from, name)
	if err != nil {
		return d, false, errDecorate(err, "lookup")
	}
	return d, true, nil
}

// categoryWritten returns true if frame i has some quantity of the
// category of name.
func (t *Trajectory) categoryWritten(i uint64, name string) bool {
	for _, names := range categoryChunks {
		in := false
		for _, n := range names {
			if n == name {
				in = true
				break
			}
		}
		if !in {
			continue
		}
		for _, n := range names {
			if _, found := t.h.Find(i, n); found {
				return true
			}
		}
		return false
	}
	return false
}

func (t *Trajectory) expect(d store.Data, kind chunk.Kind, rows, cols int) error {
	if d.Kind != kind || (rows >= 0 && int(d.Rows) != rows) || int(d.Cols) != cols {
		return newError(t.filename, "expect", "chunk %s is %dx%d %s, expected %dx%d %s", d.Name, d.Rows, d.Cols, d.Kind, rows, cols, kind)
	}
	return nil
}

// N returns the number of particles in frame i.
func (t *Trajectory) N(i uint64) (int, error) {
	d, ok, err := t.lookup(i, "particles/N")
	if err != nil || !ok {
		return 0, errDecorate(err, "N")
	}
	if err := t.expect(d, chunk.Uint32, 1, 1); err != nil {
		return 0, errDecorate(err, "N")
	}
	return int(d.Uint32s()[0]), nil
}

// Step returns the time step of frame i.
func (t *Trajectory) Step(i uint64) (uint64, error) {
	d, ok, err := t.lookup(i, "configuration/step")
	if err != nil || !ok {
		return 0, errDecorate(err, "Step")
	}
	if err := t.expect(d, chunk.Uint64, 1, 1); err != nil {
		return 0, errDecorate(err, "Step")
	}
	return d.Uint64s()[0], nil
}

// Dimensions returns the number of dimensions of the system.
func (t *Trajectory) Dimensions() (int, error) {
	if t.h.NFrames() == 0 {
		return 3, nil
	}
	d, ok, err := t.lookup(0, "configuration/dimensions")
	if err != nil || !ok {
		return 3, errDecorate(err, "Dimensions")
	}
	if err := t.expect(d, chunk.Uint8, 1, 1); err != nil {
		return 0, errDecorate(err, "Dimensions")
	}
	return int(d.Bytes[0]), nil
}

// Box returns the box of frame i. The default box is a unit cube.
func (t *Trajectory) Box(i uint64) (Box, error) {
	d, ok, err := t.lookup(i, "configuration/box")
	if err != nil {
		return Box{}, errDecorate(err, "Box")
	}
	if !ok {
		return Box{L: [3]float32{1, 1, 1}}, nil
	}
	if err := t.expect(d, chunk.Float32, 6, 1); err != nil {
		return Box{}, errDecorate(err, "Box")
	}
	v := d.Float32s()
	return Box{L: [3]float32{v[0], v[1], v[2]}, XY: v[3], XZ: v[4], YZ: v[5]}, nil
}

// Types returns the particle type names of frame i. The default is a single type, "A".
func (t *Trajectory) Types(i uint64) ([]string, error) {
	d, ok, err := t.lookup(i, "particles/types")
	if err != nil {
		return nil, errDecorate(err, "Types")
	}
	if !ok {
		return []string{"A"}, nil
	}
	if d.Kind != chunk.Uint8 {
		return nil, newError(t.filename, "Types", "type table is %s, not uint8", d.Kind)
	}
	return DecodeTypes(d.Bytes, int(d.Cols)), nil
}

// TypeID returns the type index of every particle in frame i.
func (t *Trajectory) TypeID(i uint64) ([]uint32, error) {
	n, err := t.N(i)
	if err != nil {
		return nil, errDecorate(err, "TypeID")
	}
	d, ok, err := t.lookup(i, "particles/typeid")
	if err != nil {
		return nil, errDecorate(err, "TypeID")
	}
	if !ok {
		return make([]uint32, n), nil
	}
	if err := t.expect(d, chunk.Uint32, n, 1); err != nil {
		return nil, errDecorate(err, "TypeID")
	}
	return d.Uint32s(), nil
}

// Float32s returns the per-particle float32 quantity name of frame i, with
// cols values per particle, or def repeated for every particle if it
// was not written.
func (t *Trajectory) Float32s(i uint64, name string, def []float32) ([]float32, error) {
	n, err := t.N(i)
	if err != nil {
		return nil, errDecorate(err, "Float32s")
	}
	d, ok, err := t.lookup(i, name)
	if err != nil {
		return nil, errDecorate(err, "Float32s")
	}
	if !ok {
		ret := make([]float32, 0, n*len(def))
		for j := 0; j < n; j++ {
			ret = append(ret, def...)
		}
		return ret, nil
	}
	if err := t.expect(d, chunk.Float32, n, len(def)); err != nil {
		return nil, errDecorate(err, "Float32s")
	}
	return d.Float32s(), nil
}

// Positions returns the positions of the particles in frame i, one per row.
func (t *Trajectory) Positions(i uint64) (*mat.Dense, error) {
	v, err := t.Float32s(i, "particles/position", []float32{0, 0, 0})
	if err != nil {
		return nil, errDecorate(err, "Positions")
	}
	if len(v) == 0 {
		return nil, newError(t.filename, "Positions", "frame %d has no particles", i)
	}
	data := make([]float64, len(v))
	for j, x := range v {
		data[j] = float64(x)
	}
	return mat.NewDense(len(v)/3, 3, data), nil
}

// Next reads the positions of the next frame into output, which must have
// one row per particle and 3 columns, and the 9 components of the box
// vectors into box[0], if given. A nil output skips the frame. After the
// last frame, Next returns a LastFrameError.
func (t *Trajectory) Next(output *mat.Dense, box ...[]float64) error {
	if t.frame >= t.h.NFrames() {
		t.readable = false
		return newlastFrameError(t.filename, "Next")
	}
	i := t.frame
	t.frame++
	if output != nil {
		p, err := t.Positions(i)
		if err != nil {
			return errDecorate(err, "Next")
		}
		r, c := output.Dims()
		if pr, _ := p.Dims(); r != pr || c != 3 {
			return newError(t.filename, "Next", "output matrix is %dx%d, frame %d has %d particles", r, c, i, pr)
		}
		output.Copy(p)
	}
	if len(box) > 0 && box[0] != nil {
		b, err := t.Box(i)
		if err != nil {
			return errDecorate(err, "Next")
		}
		copy(box[0], b.Vectors())
	}
	return nil
}

// Close closes the file.
func (t *Trajectory) Close() error {
	t.readable = false
	return errDecorate(t.h.Close(), "Close")
}
