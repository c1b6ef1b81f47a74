/*
 * doc.go, part of gogsd.
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

/*
Package gsd writes, and reads back, trajectories of particle simulations in a
chunked, versioned binary format, following the "hoomd" schema.

A file is a header followed by frames. Each frame is a set of named, typed,
rectangular chunks (particles/position, bonds/group, ...). The first frame of
a file holds every quantity. Later frames only hold the quantities of the
categories marked as dynamic, and, among those, only the ones where some
particle differs from the default value. A reader takes anything missing
from a frame from the first frame and, failing that, uses the default.

	**Writing**

	w := gsd.NewWriter("traj.gsd", nil, gsd.DefaultOptions())
	defer w.Close()
	for step := uint64(0); step < n; step += 1000 {
		//fill snap
		if err := w.WriteFrame(step, snap, topo, true); err != nil {
			return err
		}
	}

Only one participant of a parallel computation touches the file. All of them
call WriteFrame with the same arguments, except for isWriter, and the number
of frames in the file is shared through a Broadcaster, such as the ones
returned by NewLocalGroup.

	**Reading**

OpenTrajectory returns a Trajectory, which gives access to every quantity of
every frame, and reads positions frame by frame, as *mat.Dense, with Next.

The sub packages chunk and store implement the record and file layers.
traj/stf and traj/dcd export trajectories to other formats, and gsdplot
plots them.
*/
package gsd
