/*
 * dcd_write.go, part of gogsd
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

// Package dcd writes, and reads back, CHARMM DCD trajectories with unit
// cell information, so GSD trajectories can be opened by programs that
// only know DCD.
package dcd

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	titleLen     = 80
	charmmVer    = 24
	unitCellSize = 48 //6 float64
)

var endian = binary.LittleEndian

// Writer is a CHARMM DCD trajectory opened for writing.
type Writer struct {
	natoms   int32
	frames   int32
	filename string
	writable bool
	dcd      *os.File
	fields   [3][]float32
}

// NewWriter creates a DCD trajectory for frames of natoms particles. title
// goes into the header, cut to 80 characters.
func NewWriter(filename string, natoms int, title string) (*Writer, error) {
	if natoms < 1 {
		return nil, &Error{"a trajectory needs at least one particle", filename, []string{"NewWriter"}, true}
	}
	D := &Writer{natoms: int32(natoms), filename: filename}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	var err error
	D.dcd, err = os.Create(filename)
	if err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Create", "NewWriter"}, true}
	}
	if err := D.writeHeader(title); err != nil {
		D.dcd.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	D.writable = true
	return D, nil
}

// writes each value in order, stopping at the first error.
func (D *Writer) put(caller string, values ...any) error {
	for _, v := range values {
		if err := binary.Write(D.dcd, endian, v); err != nil {
			return &Error{err.Error(), D.filename, []string{"binary.Write", caller}, true}
		}
	}
	return nil
}

func (D *Writer) writeHeader(title string) error {
	var icntrl [20]int32
	//icntrl[0] is the number of frames, updated after each one.
	icntrl[2] = 1  //steps between frames
	icntrl[10] = 1 //there is a unit cell block in each frame
	icntrl[19] = charmmVer
	icntrl[9] = int32(math.Float32bits(1)) //time step
	if err := D.put("writeHeader", int32(84), []byte("CORD"), icntrl[:], int32(84)); err != nil {
		return err
	}
	titles := make([]byte, 2*titleLen)
	for i := range titles {
		titles[i] = ' '
	}
	copy(titles, "Created by gogsd")
	if len(title) > titleLen {
		title = title[:titleLen]
	}
	copy(titles[titleLen:], title)
	size := int32(4 + len(titles))
	if err := D.put("writeHeader", size, int32(2), titles, size); err != nil {
		return err
	}
	return D.put("writeHeader", int32(4), D.natoms, int32(4))
}

// Len returns the number of particles per frame.
func (D *Writer) Len() int { return int(D.natoms) }

// WNext writes the next frame, with the coordinates in towrite, one particle
// per row, and the 9 components of the box vectors in box[0]. Without a
// box, the unit cell of the frame is all zeros.
func (D *Writer) WNext(towrite *mat.Dense, box ...[]float64) error {
	if !D.writable {
		return &Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return &Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if r, c := towrite.Dims(); r != int(D.natoms) || c < 3 {
		return &Error{"coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	var cell [6]float64
	if len(box) > 0 && len(box[0]) >= 9 {
		cell = unitCell(box[0])
	}
	if err := D.put("WNext", int32(unitCellSize), cell[:], int32(unitCellSize)); err != nil {
		return err
	}
	for i := 0; i < int(D.natoms); i++ {
		for j := range D.fields {
			D.fields[j][i] = float32(towrite.At(i, j))
		}
	}
	size := 4 * D.natoms
	for _, block := range D.fields {
		if err := D.put("WNext", size, block, size); err != nil {
			return err
		}
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

// unitCell turns box vectors into the CHARMM unit cell:
// a, gamma, b, beta, alpha, c, with the angles in degrees.
func unitCell(v []float64) [6]float64 {
	a := r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	b := r3.Vec{X: v[3], Y: v[4], Z: v[5]}
	c := r3.Vec{X: v[6], Y: v[7], Z: v[8]}
	la, lb, lc := r3.Norm(a), r3.Norm(b), r3.Norm(c)
	angle := func(p, q r3.Vec, lp, lq float64) float64 {
		if lp == 0 || lq == 0 {
			return 90
		}
		return math.Acos(r3.Dot(p, q)/(lp*lq)) * 180 / math.Pi
	}
	return [6]float64{la, angle(a, b, la, lb), lb, angle(a, c, la, lc), angle(b, c, lb, lc), lc}
}

// DCD keeps the number of frames in the header, so it is rewritten after each one.
func (D *Writer) updateFrames() error {
	if _, err := D.dcd.Seek(8, io.SeekStart); err != nil {
		return &Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	if err := D.put("updateFrames", D.frames); err != nil {
		return err
	}
	if _, err := D.dcd.Seek(0, io.SeekEnd); err != nil {
		return &Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	return nil
}

// Close closes the file. The writer can't be used afterwards.
func (D *Writer) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.dcd.Close(); err != nil {
		return &Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}
