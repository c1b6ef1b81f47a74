/*
 * interfaces.go, part of gogsd.
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

import "gonum.org/v1/gonum/mat"

// Traj is the interface for a trajectory that can be read frame by frame.
type Traj interface {

	//Is the trajectory ready to be read?
	Readable() bool

	//Next puts the coordinates of the next frame in output (or discards them, if output is nil)
	//and, if given, fills the box with the 9 components of the box vectors.
	Next(output *mat.Dense, box ...[]float64) error

	//Returns the number of particles per frame
	Len() int
}

// Broadcaster shares a value from the writing participant with all the others.
// BroadcastUint64 is called by every participant with its own value; the value
// of the writer is returned to all of them.
type Broadcaster interface {
	BroadcastUint64(v uint64) (uint64, error)
}

//Errors

// Error is the interface for errors that all packages in this module implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Adds a caller to the error trail, and returns the trail. An empty string just returns the trail.
}

// FileError is the interface for errors related to a trajectory file.
type FileError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless function to distinguish the harmless errors (i.e. last frame) so they can be
// filtered in a typeswith that looks for this interface.
type LastFrameError interface {
	FileError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other FileError's
}
