/*
 * chunk.go, part of gogsd.
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

//Package chunk encodes and decodes single named, typed, rectangular data chunks.
//It knows nothing about files: records are written to any io.Writer and read
//from any io.Reader.
package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
)

//Kind is the element type of a chunk. The numeric values are part of the file format.
type Kind uint8

const (
	Uint8   Kind = 1
	Uint32  Kind = 3
	Uint64  Kind = 4
	Int32   Kind = 7
	Float32 Kind = 9
)

//Size returns the size in bytes of one element of kind k, or 0 if k is not a known kind.
func (k Kind) Size() int {
	switch k {
	case Uint8:
		return 1
	case Uint32, Int32, Float32:
		return 4
	case Uint64:
		return 8
	}
	return 0
}

//Valid returns true if k is one of the supported element kinds.
func (k Kind) Valid() bool { return k.Size() != 0 }

func (k Kind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	//TagChunk starts a chunk record.
	TagChunk byte = 'C'
	//TagFrame starts a frame commit record.
	TagFrame byte = 'F'

	//MaxNameLen is the longest chunk name allowed, in bytes.
	MaxNameLen = 63

	//HeaderSize is the size of the fixed part of a chunk record, before the name.
	HeaderSize = 12
	//ChecksumSize is the size of the trailing checksum of a chunk record.
	ChecksumSize = 8
)

var order = binary.LittleEndian

//Header describes a chunk record without its payload.
type Header struct {
	Name string
	Kind Kind
	Rows uint32
	Cols uint32
}

//PayloadSize returns the number of payload bytes the chunk described by h carries.
//It returns false if the size can't be represented as an int on this platform.
func (h Header) PayloadSize() (int, bool) {
	n := uint64(h.Rows) * uint64(h.Cols) * uint64(h.Kind.Size())
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

//RecordSize returns the total number of bytes the record for h occupies.
func (h Header) RecordSize() int64 {
	p, _ := h.PayloadSize()
	return int64(HeaderSize+len(h.Name)+ChecksumSize) + int64(p)
}

//Check verifies that h describes a chunk that can be written and that data
//has exactly the size the shape requires.
func (h Header) Check(data []byte) error {
	if h.Name == "" {
		return Error{"empty chunk name", h.Name}
	}
	if len(h.Name) > MaxNameLen {
		return Error{fmt.Sprintf("name longer than %d bytes", MaxNameLen), h.Name}
	}
	if !h.Kind.Valid() {
		return Error{fmt.Sprintf("unsupported element kind %d", uint8(h.Kind)), h.Name}
	}
	size, ok := h.PayloadSize()
	if !ok || size != len(data) {
		return Error{fmt.Sprintf("%d bytes given for a %s[%d][%d] chunk", len(data), h.Kind, h.Rows, h.Cols), h.Name}
	}
	return nil
}

//Encode writes the complete record for the chunk h with payload data to w,
//returning the record checksum. The shape of data is checked first, and nothing
//is written if it doesn't match.
func Encode(w io.Writer, h Header, data []byte) (uint64, error) {
	if err := h.Check(data); err != nil {
		return 0, err
	}
	buf := make([]byte, HeaderSize+len(h.Name))
	buf[0] = TagChunk
	buf[1] = byte(h.Kind)
	order.PutUint16(buf[2:], uint16(len(h.Name)))
	order.PutUint32(buf[4:], h.Rows)
	order.PutUint32(buf[8:], h.Cols)
	copy(buf[HeaderSize:], h.Name)

	d := xxhash.New()
	d.Write(buf)
	d.Write(data)
	sum := d.Sum64()

	if _, err := w.Write(buf); err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	var tail [ChecksumSize]byte
	order.PutUint64(tail[:], sum)
	if _, err := w.Write(tail[:]); err != nil {
		return 0, err
	}
	return sum, nil
}

//DecodeHeader reads the fixed part and the name of a chunk record from r.
//The leading tag must already be consumed by the caller, who passes it
//back in fixed[0]; fixed must hold the HeaderSize bytes of the record.
func DecodeHeader(fixed []byte, r io.Reader) (Header, error) {
	if len(fixed) < HeaderSize || fixed[0] != TagChunk {
		return Header{}, Error{"not a chunk record", ""}
	}
	h := Header{
		Kind: Kind(fixed[1]),
		Rows: order.Uint32(fixed[4:]),
		Cols: order.Uint32(fixed[8:]),
	}
	nl := int(order.Uint16(fixed[2:]))
	if nl == 0 || nl > MaxNameLen {
		return h, Error{fmt.Sprintf("invalid name length %d", nl), ""}
	}
	name := make([]byte, nl)
	if _, err := io.ReadFull(r, name); err != nil {
		return h, err
	}
	h.Name = string(name)
	if !h.Kind.Valid() {
		return h, Error{fmt.Sprintf("unsupported element kind %d", fixed[1]), h.Name}
	}
	return h, nil
}

//Verify recomputes the checksum of a record from its header, name and
//payload, and compares it with sum.
func Verify(h Header, data []byte, sum uint64) error {
	buf := make([]byte, HeaderSize+len(h.Name))
	buf[0] = TagChunk
	buf[1] = byte(h.Kind)
	order.PutUint16(buf[2:], uint16(len(h.Name)))
	order.PutUint32(buf[4:], h.Rows)
	order.PutUint32(buf[8:], h.Cols)
	copy(buf[HeaderSize:], h.Name)
	d := xxhash.New()
	d.Write(buf)
	d.Write(data)
	if d.Sum64() != sum {
		return Error{"checksum mismatch", h.Name}
	}
	return nil
}

//Error is returned for malformed chunks or records.
type Error struct {
	message string
	name    string
}

func (err Error) Error() string {
	if err.name == "" {
		return "chunk: " + err.message
	}
	return fmt.Sprintf("chunk %s: %s", err.name, err.message)
}
