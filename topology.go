/*
 * topology.go, part of gogsd.
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

// Connectivity is a table of bonded interactions of one kind. G is the
// array of particle tags that takes part in each one ([2]uint32 for bonds,
// [3]uint32 for angles, [4]uint32 for dihedrals and impropers).
type Connectivity[G [2]uint32 | [3]uint32 | [4]uint32] struct {
	Types  []string
	TypeID []uint32
	Group  []G
}

// Len returns the number of entries in the table.
func (c *Connectivity[G]) Len() int { return len(c.Group) }

func (c *Connectivity[G]) validate(name string, nparticles int) error {
	n := c.Len()
	if n == 0 {
		return nil
	}
	if len(c.TypeID) != n {
		return newError("", "validate", "%d %s type ids for %d %s", len(c.TypeID), name, n, name)
	}
	if err := validateTypes(c.Types, c.TypeID); err != nil {
		return errDecorate(err, name)
	}
	return validateTags(name, flatten(c.Group), nparticles)
}

// Constraints is a table of distance constraints between pairs of particles.
type Constraints struct {
	Value []float32
	Group [][2]uint32
}

// Len returns the number of constraints.
func (c *Constraints) Len() int { return len(c.Group) }

func (c *Constraints) validate(nparticles int) error {
	if len(c.Value) != c.Len() {
		return newError("", "validate", "%d values for %d constraints", len(c.Value), c.Len())
	}
	return validateTags("constraints", flatten(c.Group), nparticles)
}

// Topology holds the five independent connectivity tables of a system.
type Topology struct {
	Bonds       Connectivity[[2]uint32]
	Angles      Connectivity[[3]uint32]
	Dihedrals   Connectivity[[4]uint32]
	Impropers   Connectivity[[4]uint32]
	Constraints Constraints
}

// Validate checks that every table is consistent, and that all the tags
// refer to one of the nparticles particles of the system.
func (t *Topology) Validate(nparticles int) error {
	if t == nil {
		return nil
	}
	errs := []error{
		t.Bonds.validate("bonds", nparticles),
		t.Angles.validate("angles", nparticles),
		t.Dihedrals.validate("dihedrals", nparticles),
		t.Impropers.validate("impropers", nparticles),
		t.Constraints.validate(nparticles),
	}
	for _, err := range errs {
		if err != nil {
			return errDecorate(err, "Topology.Validate")
		}
	}
	return nil
}

func validateTags(name string, tags []uint32, nparticles int) error {
	for i, t := range tags {
		if int(t) >= nparticles {
			return newError("", "validateTags", "%s: tag %d in entry %d is out of range for %d particles", name, t, i, nparticles)
		}
	}
	return nil
}

// flatten lays the group arrays out row after row, the way they are stored.
func flatten[G [2]uint32 | [3]uint32 | [4]uint32](groups []G) []uint32 {
	if len(groups) == 0 {
		return nil
	}
	w := len(groups[0])
	ret := make([]uint32, 0, w*len(groups))
	for _, g := range groups {
		for j := 0; j < w; j++ {
			ret = append(ret, g[j])
		}
	}
	return ret
}
