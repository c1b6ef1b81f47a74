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

package gsd

import "fmt"

// errDecorate adds caller to the trail of err, if err implements Error,
// and returns err.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

// GSDError is the general structure for errors in this package that don't come from
// the store. It fullfills Error and FileError.
type GSDError struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *GSDError) Error() string {
	if err.filename == "" {
		return "gsd: " + err.message
	}
	return fmt.Sprintf("gsd file %s: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err *GSDError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err *GSDError) FileName() string { return err.filename }

// Format returns the format of the file (always "gsd") associated to the error
func (err *GSDError) Format() string { return "gsd" }

// Critical returns true if the error is critical, false otherwise
func (err *GSDError) Critical() bool { return err.critical }

func newError(filename, caller, format string, args ...any) *GSDError {
	return &GSDError{message: fmt.Sprintf(format, args...), filename: filename, deco: []string{caller}, critical: true}
}

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "gsd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
