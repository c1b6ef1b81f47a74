/*
 * stf.go, part of gogsd.
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

package stf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

// DefaultPrec is the number of decimal places kept when no "prec" key is
// given in the header.
const DefaultPrec = 2

// Writer writes STF trajectories.
type Writer struct {
	f        *os.File
	z        *zstd.Encoder
	w        *bufio.Writer
	natoms   int
	filename string
	writable bool
	scale    float64
}

// NewWriter creates the STF file name, for frames of natoms particles. The
// pairs in header are written to the file header, in key order. If header
// has a "prec" key, its value is the precision used.
func NewWriter(name string, natoms int, header map[string]string) (*Writer, error) {
	prec := DefaultPrec
	if p, ok := header["prec"]; ok {
		var err error
		prec, err = strconv.Atoi(p)
		if err != nil || prec < 1 {
			return nil, &Error{fmt.Sprintf("invalid precision %q", p), name, []string{"NewWriter"}, true}
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, &Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	z, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		return nil, &Error{err.Error(), name, []string{"zstd.NewWriter", "NewWriter"}, true}
	}
	S := &Writer{f: f, z: z, w: bufio.NewWriter(z), natoms: natoms, filename: name, writable: true}
	S.scale = math.Pow(10, float64(prec))
	keys := make([]string, 0, len(header))
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(S.w, "prec=%d\n", prec)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.w, "** %d\n", natoms)
	return S, nil
}

// Len returns the number of particles per frame.
func (S *Writer) Len() int { return S.natoms }

// WNext writes a frame with the coordinates in coord, one particle per row,
// and the 9 components of the box vectors in box[0], if given.
func (S *Writer) WNext(coord *mat.Dense, box ...[]float64) error {
	if !S.writable {
		return &Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return &Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if r, c := coord.Dims(); r != S.natoms || c < 3 {
		return &Error{fmt.Sprintf("%dx%d coordinates given, but %dx3 expected", r, c, S.natoms), S.filename, []string{"WNext"}, true}
	}
	for i := 0; i < S.natoms; i++ {
		fmt.Fprintf(S.w, "%d %d %d\n", S.encode(coord.At(i, 0)), S.encode(coord.At(i, 1)), S.encode(coord.At(i, 2)))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		S.w.WriteString("*")
		for _, v := range b[:9] {
			S.w.WriteString(" " + strconv.FormatFloat(v, 'g', -1, 64))
		}
		S.w.WriteString("\n")
	} else {
		S.w.WriteString("*\n")
	}
	return nil
}

func (S *Writer) encode(v float64) int64 {
	return int64(math.RoundToEven(v * S.scale))
}

// Close flushes and closes the file. The writer can't be used afterwards.
func (S *Writer) Close() error {
	if S == nil || !S.writable {
		return nil
	}
	S.writable = false
	err := S.w.Flush()
	if zerr := S.z.Close(); err == nil {
		err = zerr
	}
	if ferr := S.f.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return &Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Reader reads STF trajectories.
type Reader struct {
	f        *os.File
	z        *zstd.Decoder
	h        *bufio.Reader
	natoms   int
	filename string
	scale    float64
	readable bool
}

// New opens the STF trajectory name for reading, and returns the reader
// and the header pairs.
func New(name string) (*Reader, map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, &Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	z, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, nil, &Error{err.Error(), name, []string{"zstd.NewReader", "New"}, true}
	}
	S := &Reader{f: f, z: z, h: bufio.NewReader(z), filename: name, natoms: -1}
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, &Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("no particle number in %q", str), name, []string{"New"}, true}
			}
			if S.natoms, err = strconv.Atoi(nat[1]); err != nil {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("can't read particle number from %q: %v", nat[1], err), name, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, &Error{fmt.Sprintf("malformed header line %q", str), name, []string{"New"}, true}
		}
		m[k] = v
	}
	prec := DefaultPrec
	if p, ok := m["prec"]; ok {
		if prec, err = strconv.Atoi(p); err != nil || prec < 1 {
			S.close()
			return nil, nil, &Error{fmt.Sprintf("invalid precision %q", p), name, []string{"New"}, true}
		}
	}
	S.scale = math.Pow(10, float64(prec))
	S.readable = true
	return S, m, nil
}

// Readable returns true if Next can still be called.
func (S *Reader) Readable() bool { return S.readable }

// Len returns the number of particles per frame.
func (S *Reader) Len() int { return S.natoms }

func (S *Reader) decode(line string, temp *[3]float64) error {
	s := strings.Fields(line)
	if len(s) != 3 {
		return fmt.Errorf("%d fields in coordinates line %q", len(s), line)
	}
	for i, v := range s {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %v", i, v, err)
		}
		temp[i] = float64(n) / S.scale
	}
	return nil
}

// Next reads the next frame into c, which must have one row per particle,
// and the box vectors into box[0], if given and present in the file. A nil
// c skips the frame, still checking it. After the last frame, Next returns
// an error with a NormalLastFrameTermination method.
func (S *Reader) Next(c *mat.Dense, box ...[]float64) error {
	if !S.readable {
		return &Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil {
		if r, cols := c.Dims(); r != S.natoms || cols < 3 {
			return &Error{fmt.Sprintf("%dx%d matrix given for %d particles", r, cols, S.natoms), S.filename, []string{"Next"}, true}
		}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		line, err := S.h.ReadString('\n')
		if err == io.EOF && i == 0 && line == "" {
			S.Close()
			return newlastFrameError(S.filename, "Next")
		}
		if err != nil {
			return &Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if err := S.decode(strings.TrimSuffix(line, "\n"), &temp); err != nil {
			return &Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return &Error{"can't read the end of the frame: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return &Error{WrongFormat + ": frame doesn't end after the expected number of particles", S.filename, []string{"Next"}, true}
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 {
		return nil
	}
	for j, v := range fields[1:10] {
		if box[0][j], err = strconv.ParseFloat(v, 64); err != nil {
			return &Error{fmt.Sprintf("can't read box component %d: %v", j, err), S.filename, []string{"Next"}, true}
		}
	}
	return nil
}

func (S *Reader) close() {
	S.z.Close()
	S.f.Close()
}

// Close closes the file. Closing a closed reader does nothing.
func (S *Reader) Close() {
	if S.z == nil {
		return
	}
	S.close()
	S.z = nil
	S.readable = false
}
