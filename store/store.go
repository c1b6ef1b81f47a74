/*
 * store.go, part of gogsd.
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

//Package store owns trajectory files: it creates them, opens and validates
//them, and appends frames made of chunks, committing each frame only when
//EndFrame is called.
//
//A file starts with a fixed 256-byte header, followed by an append-only
//stream of chunk records, each frame closed by a commit record. Anything
//after the last commit record is an unfinished frame and is never counted.
package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

//Version packs a major and a minor version number.
type Version uint32

//MakeVersion returns the Version major.minor
func MakeVersion(major, minor uint16) Version {
	return Version(uint32(major)<<16 | uint32(minor))
}

func (v Version) Major() uint16 { return uint16(v >> 16) }
func (v Version) Minor() uint16 { return uint16(v) }

//HeaderSize is the size of the file header. The body starts right after it.
const HeaderSize = 256

//application and schema names longer than maxLabel can't be stored in the header.
const (
	maxLabel  = 63
	labelSize = 64
)

//FormatVersion is the version of the container layout written by this package.
var FormatVersion = MakeVersion(1, 0)

var magic = [8]byte{'G', 'O', 'G', 'S', 'D', 'T', 'R', 'J'}

var order = binary.LittleEndian

//Header is the information stored at the beginning of every file.
type Header struct {
	FormatVersion Version
	SchemaVersion Version
	Application   string
	Schema        string
}

func (h Header) encode() ([]byte, error) {
	if len(h.Application) > maxLabel || len(h.Schema) > maxLabel {
		return nil, errors.Errorf("application and schema names can't be longer than %d bytes", maxLabel)
	}
	if h.Schema == "" {
		return nil, errors.New("empty schema name")
	}
	b := make([]byte, HeaderSize)
	copy(b, magic[:])
	order.PutUint32(b[8:], uint32(h.FormatVersion))
	order.PutUint32(b[12:], uint32(h.SchemaVersion))
	copy(b[16:16+labelSize], h.Application)
	copy(b[16+labelSize:16+2*labelSize], h.Schema)
	order.PutUint64(b[HeaderSize-8:], xxhash.Sum64(b[:HeaderSize-8]))
	return b, nil
}

func label(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

//decodeHeader validates the raw header b, read from filename. n is the number
//of bytes actually read, which may be less than HeaderSize for short files.
func decodeHeader(b []byte, n int, filename string) (Header, error) {
	if n < len(magic) || !bytes.Equal(b[:len(magic)], magic[:]) {
		return Header{}, &OpenError{Kind: InvalidFormat, filename: filename, message: "bad magic number"}
	}
	if n < HeaderSize {
		return Header{}, &OpenError{Kind: Corrupt, filename: filename, message: "truncated header"}
	}
	if xxhash.Sum64(b[:HeaderSize-8]) != order.Uint64(b[HeaderSize-8:]) {
		return Header{}, &OpenError{Kind: Corrupt, filename: filename, message: "header checksum mismatch"}
	}
	h := Header{
		FormatVersion: Version(order.Uint32(b[8:])),
		SchemaVersion: Version(order.Uint32(b[12:])),
		Application:   label(b[16 : 16+labelSize]),
		Schema:        label(b[16+labelSize : 16+2*labelSize]),
	}
	if h.FormatVersion.Major() != FormatVersion.Major() {
		return h, &OpenError{Kind: UnsupportedVersion, filename: filename,
			message: "file layout version " + versionString(h.FormatVersion)}
	}
	return h, nil
}

func versionString(v Version) string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

//Create creates filename with an empty body and the given header
//information, replacing any existing file.
func Create(filename, application, schema string, schemaVersion Version) error {
	h := Header{
		FormatVersion: FormatVersion,
		SchemaVersion: schemaVersion,
		Application:   application,
		Schema:        schema,
	}
	b, err := h.encode()
	if err != nil {
		return &CreateError{filename: filename, err: err, deco: []string{"Create"}}
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
	if err != nil {
		return &CreateError{filename: filename, err: err, deco: []string{"os.OpenFile", "Create"}}
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return &CreateError{filename: filename, err: errors.Wrap(err, "write header"), deco: []string{"Create"}}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &CreateError{filename: filename, err: errors.Wrap(err, "sync header"), deco: []string{"Create"}}
	}
	if err := f.Close(); err != nil {
		return &CreateError{filename: filename, err: err, deco: []string{"Create"}}
	}
	return nil
}

//CreateIfAbsent calls Create if filename doesn't exist, or if overwrite is true.
//It returns true if the file was created.
func CreateIfAbsent(filename, application, schema string, schemaVersion Version, overwrite bool) (bool, error) {
	if !overwrite {
		_, err := os.Stat(filename)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, &CreateError{filename: filename, err: err, deco: []string{"os.Stat", "CreateIfAbsent"}}
		}
	}
	if err := Create(filename, application, schema, schemaVersion); err != nil {
		return false, err
	}
	return true, nil
}
