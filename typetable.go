/*
 * typetable.go, part of gogsd.
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

import "bytes"

// EncodeTypes lays labels out as a table of len(labels) rows of equal width,
// each holding one label, left justified and padded with zeros. The width is
// the length of the longest label plus one, so every row ends with a zero.
func EncodeTypes(labels []string) (table []byte, width int) {
	for _, l := range labels {
		if len(l) > width {
			width = len(l)
		}
	}
	width++
	table = make([]byte, width*len(labels))
	for i, l := range labels {
		copy(table[i*width:], l)
	}
	return table, width
}

// DecodeTypes recovers the labels from a table written by EncodeTypes.
func DecodeTypes(table []byte, width int) []string {
	if width <= 0 {
		return nil
	}
	labels := make([]string, len(table)/width)
	for i := range labels {
		row := table[i*width : (i+1)*width]
		if j := bytes.IndexByte(row, 0); j >= 0 {
			row = row[:j]
		}
		labels[i] = string(row)
	}
	return labels
}
