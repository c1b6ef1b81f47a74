/*
 * dcd.go, part of gogsd
 *
 * Copyright 2026 The gogsd Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 *
 */

package dcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Reader is a little endian CHARMM DCD trajectory opened for reading. Files
// with fixed atoms or a fourth dimension are not supported.
type Reader struct {
	natoms   int32
	frames   int32
	read     int32
	unitCell bool
	filename string
	readable bool
	f        *os.File
	r        *bufio.Reader
	fields   [3][]float32
}

// New opens the DCD file filename for reading.
func New(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Open", "New"}, true}
	}
	D := &Reader{filename: filename, f: f, r: bufio.NewReader(f)}
	if err := D.readHeader(); err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *Reader) get(caller string, values ...any) error {
	for _, v := range values {
		if err := binary.Read(D.r, endian, v); err != nil {
			return &Error{err.Error(), D.filename, []string{"binary.Read", caller}, true}
		}
	}
	return nil
}

// record reads the size marker of a record, and checks it against size, if it is not negative.
func (D *Reader) record(caller string, size int32) (int32, error) {
	var s int32
	if err := D.get(caller, &s); err != nil {
		return 0, err
	}
	if size >= 0 && s != size {
		return 0, &Error{fmt.Sprintf("%s: record of %d bytes, expected %d", WrongFormat, s, size), D.filename, []string{caller}, true}
	}
	return s, nil
}

func (D *Reader) readHeader() error {
	var magic [4]byte
	var icntrl [20]int32
	if _, err := D.record("readHeader", 84); err != nil {
		return err
	}
	if err := D.get("readHeader", &magic, &icntrl); err != nil {
		return err
	}
	if string(magic[:]) != "CORD" {
		return &Error{WrongFormat + ": no CORD mark", D.filename, []string{"readHeader"}, true}
	}
	if icntrl[8] != 0 || icntrl[11] != 0 {
		return &Error{"fixed atoms and 4D trajectories are not supported", D.filename, []string{"readHeader"}, true}
	}
	D.frames = icntrl[0]
	D.unitCell = icntrl[10] != 0
	if _, err := D.record("readHeader", 84); err != nil {
		return err
	}
	size, err := D.record("readHeader", -1)
	if err != nil {
		return err
	}
	if _, err := D.r.Discard(int(size)); err != nil {
		return &Error{err.Error(), D.filename, []string{"readHeader"}, true}
	}
	if _, err := D.record("readHeader", size); err != nil {
		return err
	}
	if _, err := D.record("readHeader", 4); err != nil {
		return err
	}
	if err := D.get("readHeader", &D.natoms); err != nil {
		return err
	}
	if _, err := D.record("readHeader", 4); err != nil {
		return err
	}
	if D.natoms < 1 {
		return &Error{fmt.Sprintf("%d atoms in trajectory", D.natoms), D.filename, []string{"readHeader"}, true}
	}
	return nil
}

// Len returns the number of particles per frame.
func (D *Reader) Len() int { return int(D.natoms) }

// NFrames returns the number of frames recorded in the header.
func (D *Reader) NFrames() int { return int(D.frames) }

// Readable returns true if Next can still be called.
func (D *Reader) Readable() bool { return D.readable }

// Next reads the next frame into output, one particle per row, and the box
// vectors, rebuilt from the unit cell, into box[0], if given. A nil output
// skips the frame. After the last frame, Next returns an error with a
// NormalLastFrameTermination method.
func (D *Reader) Next(output *mat.Dense, box ...[]float64) error {
	if !D.readable {
		return &Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if D.read >= D.frames {
		D.Close()
		return newlastFrameError(D.filename, "Next")
	}
	if output != nil {
		if r, c := output.Dims(); r != int(D.natoms) || c < 3 {
			return &Error{fmt.Sprintf("%dx%d matrix given for %d particles", r, c, D.natoms), D.filename, []string{"Next"}, true}
		}
	}
	var cell [6]float64
	if D.unitCell {
		if _, err := D.record("Next", unitCellSize); err != nil {
			return err
		}
		if err := D.get("Next", &cell); err != nil {
			return err
		}
		if _, err := D.record("Next", unitCellSize); err != nil {
			return err
		}
	}
	for _, block := range D.fields {
		if _, err := D.record("Next", 4*D.natoms); err != nil {
			return err
		}
		if err := D.get("Next", block); err != nil {
			return err
		}
		if _, err := D.record("Next", 4*D.natoms); err != nil {
			return err
		}
	}
	D.read++
	if output != nil {
		for i := 0; i < int(D.natoms); i++ {
			for j, block := range D.fields {
				output.Set(i, j, float64(block[i]))
			}
		}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		copy(box[0], boxVectors(cell))
	}
	return nil
}

// boxVectors rebuilds box vectors from a unit cell: a along x, b in the xy plane.
func boxVectors(cell [6]float64) []float64 {
	a, b, c := cell[0], cell[2], cell[5]
	rad := math.Pi / 180
	cosg, sing := math.Cos(cell[1]*rad), math.Sin(cell[1]*rad)
	cosb, cosa := math.Cos(cell[3]*rad), math.Cos(cell[4]*rad)
	if sing == 0 {
		return make([]float64, 9)
	}
	cx := cosb
	cy := (cosa - cosb*cosg) / sing
	cz := math.Sqrt(math.Max(0, 1-cx*cx-cy*cy))
	return []float64{
		a, 0, 0,
		b * cosg, b * sing, 0,
		c * cx, c * cy, c * cz,
	}
}

// Close closes the file.
func (D *Reader) Close() {
	if D.f == nil {
		return
	}
	D.f.Close()
	D.f = nil
	D.readable = false
}
