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

// Package stf reads and writes the simple trajectory format (STF), a
// zstd-compressed plain text format that is easy to read from other
// languages, and exports GSD trajectories to it.
//
// An STF stream starts with a header of key=value lines, one of which must
// be prec=<precision>. The header ends with a line "** <particles>". Then
// each frame has one line per particle with three integers, the x, y and z
// coordinates multiplied by 10^precision and rounded, and a line that starts
// with "*", optionally followed by the 9 components of the box vectors.
// The sequence "**" only appears at the end of the header.
//
// This package always compresses with zstd at the best compression level.
package stf
