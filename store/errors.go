/*
 * errors.go, part of gogsd.
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

package store

import (
	"fmt"

	"github.com/pkg/errors"
)

//Sentinel causes, wrapped by IOError. Check them with errors.Is.
var (
	ErrClosed         = errors.New("handle is closed")
	ErrReadOnly       = errors.New("handle is read-only")
	ErrInvalidated    = errors.New("handle invalidated by a previous write failure")
	ErrDuplicateChunk = errors.New("chunk name already used in this frame")
	ErrNoFrame        = errors.New("no such frame")
	ErrNoChunk        = errors.New("no such chunk in frame")
)

//All the errors in this package are critical: the handle that produced them
//must not be trusted for further appends. They all fulfill gsd.FileError.

//CreateError is returned when a file can't be created.
type CreateError struct {
	filename string
	err      error
	deco     []string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("gsd file %s: can't create: %v", e.filename, e.err)
}

func (e *CreateError) Unwrap() error { return e.err }

//Decorate adds the caller to the error's call trail, and returns the trail.
func (e *CreateError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

func (e *CreateError) FileName() string { return e.filename }
func (e *CreateError) Format() string   { return "gsd" }
func (e *CreateError) Critical() bool   { return true }

//OpenKind tells apart the ways in which opening a file can fail.
type OpenKind int

const (
	//NotFound covers missing files and files we are not allowed to open.
	NotFound OpenKind = iota + 1
	//InvalidFormat means the file is not of this format, or has a different schema.
	InvalidFormat
	//UnsupportedVersion means the file layout or schema is newer than we understand.
	UnsupportedVersion
	//Corrupt means the file is of this format but its contents are damaged.
	Corrupt
	//OutOfMemory means the file describes data too large to be indexed in memory.
	OutOfMemory
	Unknown
)

func (k OpenKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidFormat:
		return "invalid format"
	case UnsupportedVersion:
		return "unsupported version"
	case Corrupt:
		return "corrupt file"
	case OutOfMemory:
		return "out of memory"
	}
	return "unknown error"
}

//OpenError is returned when a file can't be opened or fails validation.
type OpenError struct {
	Kind     OpenKind
	filename string
	message  string
	err      error
	deco     []string
}

func (e *OpenError) Error() string {
	s := fmt.Sprintf("gsd file %s: %s", e.filename, e.Kind)
	if e.message != "" {
		s += ": " + e.message
	}
	if e.err != nil {
		s += ": " + e.err.Error()
	}
	return s
}

func (e *OpenError) Unwrap() error { return e.err }

//Decorate adds the caller to the error's call trail, and returns the trail.
func (e *OpenError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

func (e *OpenError) FileName() string { return e.filename }
func (e *OpenError) Format() string   { return "gsd" }
func (e *OpenError) Critical() bool   { return true }

//IOError is returned for any failure on a handle after a valid open.
type IOError struct {
	Op       string
	filename string
	err      error
	deco     []string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("gsd file %s: %s: %v", e.filename, e.Op, e.err)
}

func (e *IOError) Unwrap() error { return e.err }

//Decorate adds the caller to the error's call trail, and returns the trail.
func (e *IOError) Decorate(deco string) []string {
	if deco != "" {
		e.deco = append(e.deco, deco)
	}
	return e.deco
}

func (e *IOError) FileName() string { return e.filename }
func (e *IOError) Format() string   { return "gsd" }
func (e *IOError) Critical() bool   { return true }

//IsOpenKind returns true if err is, or wraps, an *OpenError of kind k.
func IsOpenKind(err error, k OpenKind) bool {
	var oe *OpenError
	return errors.As(err, &oe) && oe.Kind == k
}
