/*
 * snapshot.go, part of gogsd.
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

import "strings"

// NoBody is the body id of particles that don't belong to a rigid body.
const NoBody int32 = -1

// Defaults for the quantities that are not written when every particle has them.
var (
	DefaultOrientation = [4]float32{1, 0, 0, 0}
	DefaultMass        = float32(1)
	DefaultCharge      = float32(0)
	DefaultDiameter    = float32(1)
	DefaultBody        = NoBody
)

// Box is a (possibly triclinic) periodic simulation box, given by
// the three edge lengths and the xy, xz and yz tilt factors.
type Box struct {
	L          [3]float32
	XY, XZ, YZ float32
}

// Array returns the box as it is stored: Lx, Ly, Lz, xy, xz, yz.
func (b Box) Array() []float32 {
	return []float32{b.L[0], b.L[1], b.L[2], b.XY, b.XZ, b.YZ}
}

// Vectors returns the 9 components of the three box vectors a, b and c.
func (b Box) Vectors() []float64 {
	lx, ly, lz := float64(b.L[0]), float64(b.L[1]), float64(b.L[2])
	return []float64{
		lx, 0, 0,
		float64(b.XY) * ly, ly, 0,
		float64(b.XZ) * lz, float64(b.YZ) * lz, lz,
	}
}

// Volume returns the volume of the box, or its area if dims is 2.
func (b Box) Volume(dims int) float64 {
	v := float64(b.L[0]) * float64(b.L[1])
	if dims == 2 {
		return v
	}
	return v * float64(b.L[2])
}

// Snapshot is the state of all the particles in the system at one time step.
// All the per-particle slices are indexed by particle tag. Any of them, except
// Position, may be nil, which means that every particle has the default value.
type Snapshot struct {
	Dimensions uint8 //2 or 3. 0 means 3.
	Box        Box

	Position    [][3]float32
	Orientation [][4]float32
	Velocity    [][3]float32
	AngMom      [][4]float32
	Image       [][3]int32

	Types    []string
	TypeID   []uint32
	Mass     []float32
	Charge   []float32
	Diameter []float32
	Body     []int32
	Inertia  [][3]float32
}

// Len returns the number of particles in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Position)
}

// Dims returns the number of dimensions of the system.
func (s *Snapshot) Dims() uint8 {
	if s.Dimensions == 0 {
		return 3
	}
	return s.Dimensions
}

// Validate checks that the arrays in s are consistent with each other.
func (s *Snapshot) Validate() error {
	n := s.Len()
	if d := s.Dims(); d != 2 && d != 3 {
		return newError("", "Validate", "invalid number of dimensions %d", d)
	}
	lens := []struct {
		name string
		l    int
	}{
		{"orientation", len(s.Orientation)},
		{"velocity", len(s.Velocity)},
		{"angmom", len(s.AngMom)},
		{"image", len(s.Image)},
		{"typeid", len(s.TypeID)},
		{"mass", len(s.Mass)},
		{"charge", len(s.Charge)},
		{"diameter", len(s.Diameter)},
		{"body", len(s.Body)},
		{"moment_inertia", len(s.Inertia)},
	}
	for _, v := range lens {
		if v.l != 0 && v.l != n {
			return newError("", "Validate", "%d values of %s for %d particles", v.l, v.name, n)
		}
	}
	if err := validateTypes(s.Types, s.TypeID); err != nil {
		return errDecorate(err, "Validate")
	}
	return nil
}

func validateTypes(types []string, ids []uint32) error {
	if len(types) == 0 {
		return newError("", "validateTypes", "empty type list")
	}
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if seen[t] {
			return newError("", "validateTypes", "type %q repeated", t)
		}
		if strings.IndexByte(t, 0) >= 0 {
			return newError("", "validateTypes", "type %q contains a NUL byte", t)
		}
		seen[t] = true
	}
	for i, id := range ids {
		if int(id) >= len(types) {
			return newError("", "validateTypes", "type id %d of element %d is out of range for %d types", id, i, len(types))
		}
	}
	return nil
}

// Group is an ordered selection of particle tags. A nil Group selects every
// particle, in tag order.
type Group []uint32

// All returns the group of all the n particles.
func All(n int) Group {
	g := make(Group, n)
	for i := range g {
		g[i] = uint32(i)
	}
	return g
}

// tags returns the tags selected by g in a system of n particles, checking
// that they are in range and not repeated.
func (g Group) tags(n int) ([]uint32, error) {
	if g == nil {
		return All(n), nil
	}
	seen := make(map[uint32]bool, len(g))
	for _, t := range g {
		if int(t) >= n {
			return nil, newError("", "tags", "tag %d out of range for %d particles", t, n)
		}
		if seen[t] {
			return nil, newError("", "tags", "tag %d repeated in group", t)
		}
		seen[t] = true
	}
	return g, nil
}

// Full returns true if g selects every one of the n particles.
func (g Group) Full(n int) bool {
	return g == nil || len(g) == n
}
