/*
 * handle.go, part of gogsd.
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
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/rmera/gogsd/chunk"
)

//Mode is the access mode of a Handle.
type Mode int

const (
	ReadOnly Mode = iota
	Append
)

//frame commit records: tag, 3 bytes of padding, chunk count (uint32),
//frame index (uint64), digest of the chunk checksums (uint64).
const commitSize = 24

//ChunkInfo locates a chunk of a committed (or pending) frame in the file.
type ChunkInfo struct {
	chunk.Header
	Offset int64 //offset of the payload
	Sum    uint64
}

//Handle is an open trajectory file. A Handle is not safe for concurrent use,
//and only one Handle in Append mode should exist for a file at any time.
type Handle struct {
	filename  string
	f         *os.File
	w         *bufio.Writer
	mode      Mode
	header    Header
	frames    [][]ChunkInfo
	pending   []ChunkInfo
	end       int64 //end of the committed data
	offset    int64 //end of the written data, committed or not
	discarded int64
	sync      bool
	broken    error
	closed    bool
}

//Open opens filename for reading. It doesn't check the schema.
func Open(filename string) (*Handle, error) {
	h, err := open(filename, ReadOnly)
	if err != nil {
		return nil, err
	}
	return h, nil
}

//OpenAppend opens filename for appending frames. The schema stored in the file
//must be schema, and its version must be lower than the next major version
//after maxVersion. An unfinished frame at the end of the file is dropped.
func OpenAppend(filename, schema string, maxVersion Version) (*Handle, error) {
	h, err := open(filename, Append)
	if err != nil {
		return nil, err
	}
	if h.header.Schema != schema {
		h.f.Close()
		return nil, &OpenError{Kind: InvalidFormat, filename: filename,
			message: "schema " + h.header.Schema + ", expected " + schema, deco: []string{"OpenAppend"}}
	}
	if h.header.SchemaVersion >= MakeVersion(maxVersion.Major()+1, 0) {
		h.f.Close()
		return nil, &OpenError{Kind: UnsupportedVersion, filename: filename,
			message: "schema version " + versionString(h.header.SchemaVersion), deco: []string{"OpenAppend"}}
	}
	if h.discarded > 0 {
		if err := h.f.Truncate(h.end); err != nil {
			h.f.Close()
			return nil, &OpenError{Kind: Unknown, filename: filename, err: errors.Wrap(err, "drop unfinished frame"), deco: []string{"OpenAppend"}}
		}
	}
	if _, err := h.f.Seek(h.end, io.SeekStart); err != nil {
		h.f.Close()
		return nil, &OpenError{Kind: Unknown, filename: filename, err: err, deco: []string{"OpenAppend"}}
	}
	h.w = bufio.NewWriter(h.f)
	return h, nil
}

func open(filename string, mode Mode) (*Handle, error) {
	flag := os.O_RDONLY
	if mode == Append {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(filename, flag, 0)
	if err != nil {
		kind := Unknown
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			kind = NotFound
		}
		return nil, &OpenError{Kind: kind, filename: filename, err: err, deco: []string{"os.OpenFile", "open"}}
	}
	h := &Handle{filename: filename, f: f, mode: mode}
	raw := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, &OpenError{Kind: Unknown, filename: filename, err: err, deco: []string{"open"}}
	}
	h.header, err = decodeHeader(raw, n, filename)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := h.scan(); err != nil {
		f.Close()
		return nil, err
	}
	h.offset = h.end
	return h, nil
}

//scan indexes the committed frames of the file, and sets h.end to the end of
//the last one. Whatever follows the last commit record that doesn't parse as
//records of the next frame is an unfinished tail, as left by a crash. Only a
//commit record for the next frame whose digest doesn't match its chunks
//means the file is corrupt.
func (h *Handle) scan() error {
	info, err := h.f.Stat()
	if err != nil {
		return &OpenError{Kind: Unknown, filename: h.filename, err: err, deco: []string{"scan"}}
	}
	size := info.Size()
	corrupt := func(msg string) error {
		return &OpenError{Kind: Corrupt, filename: h.filename, message: msg, deco: []string{"scan"}}
	}
	r := bufio.NewReader(io.NewSectionReader(h.f, HeaderSize, size-HeaderSize))
	pos := int64(HeaderSize)
	h.end = pos
	var cur []ChunkInfo
	fixed := make([]byte, commitSize)
	for {
		tag, err := r.ReadByte()
		if err != nil {
			break //EOF
		}
		fixed[0] = tag
		if tag == chunk.TagChunk {
			if _, err := io.ReadFull(r, fixed[1:chunk.HeaderSize]); err != nil {
				break
			}
			hd, err := chunk.DecodeHeader(fixed[:chunk.HeaderSize], r)
			if err != nil {
				break
			}
			payload, ok := hd.PayloadSize()
			if !ok && uint64(hd.Rows)*uint64(hd.Cols)*uint64(hd.Kind.Size()) <= uint64(size-pos) {
				return &OpenError{Kind: OutOfMemory, filename: h.filename, message: "chunk " + hd.Name + " is too large", deco: []string{"scan"}}
			}
			if !ok || pos+hd.RecordSize() > size {
				break
			}
			if _, err := r.Discard(payload); err != nil {
				break
			}
			var sum [chunk.ChecksumSize]byte
			if _, err := io.ReadFull(r, sum[:]); err != nil {
				break
			}
			cur = append(cur, ChunkInfo{Header: hd, Offset: pos + int64(chunk.HeaderSize+len(hd.Name)), Sum: order.Uint64(sum[:])})
			pos += hd.RecordSize()
			continue
		}
		if tag != chunk.TagFrame {
			break
		}
		if _, err := io.ReadFull(r, fixed[1:commitSize]); err != nil {
			break
		}
		n := order.Uint32(fixed[4:])
		idx := order.Uint64(fixed[8:])
		if int(n) != len(cur) || idx != uint64(len(h.frames)) {
			break
		}
		if order.Uint64(fixed[16:]) != digest(cur) {
			return corrupt(fmt.Sprintf("commit record of frame %d does not match its chunks", idx))
		}
		h.frames = append(h.frames, cur)
		cur = nil
		pos += commitSize
		h.end = pos
	}
	h.discarded = size - h.end
	return nil
}

func digest(chunks []ChunkInfo) uint64 {
	d := xxhash.New()
	var b [8]byte
	for _, c := range chunks {
		order.PutUint64(b[:], c.Sum)
		d.Write(b[:])
	}
	return d.Sum64()
}

//Header returns the header information of the file.
func (h *Handle) Header() Header { return h.header }

//FileName returns the name of the file the handle is associated with.
func (h *Handle) FileName() string { return h.filename }

//Discarded returns the number of bytes of unfinished frame found at the end of
//the file when it was opened. In Append mode, those bytes have been removed.
func (h *Handle) Discarded() int64 { return h.discarded }

//SetSync makes every EndFrame flush the file to stable storage.
func (h *Handle) SetSync(sync bool) { h.sync = sync }

//NFrames returns the number of committed frames.
func (h *Handle) NFrames() uint64 { return uint64(len(h.frames)) }

func (h *Handle) writable(op string) error {
	switch {
	case h.closed:
		return &IOError{Op: op, filename: h.filename, err: ErrClosed}
	case h.mode != Append:
		return &IOError{Op: op, filename: h.filename, err: ErrReadOnly}
	case h.broken != nil:
		return &IOError{Op: op, filename: h.filename, err: errors.Wrap(ErrInvalidated, h.broken.Error())}
	}
	return nil
}

//fail invalidates the handle: after a failed write the file is in an
//unknown state, and no more frames may be appended through h.
func (h *Handle) fail(op string, err error) error {
	h.broken = err
	return &IOError{Op: op, filename: h.filename, err: err}
}

//WriteChunk appends a chunk to the frame in progress. The frame is not
//visible until EndFrame is called.
func (h *Handle) WriteChunk(name string, kind chunk.Kind, rows, cols uint32, data []byte) error {
	op := "write chunk " + name
	if err := h.writable(op); err != nil {
		return err
	}
	for _, c := range h.pending {
		if c.Name == name {
			return &IOError{Op: op, filename: h.filename, err: ErrDuplicateChunk}
		}
	}
	hd := chunk.Header{Name: name, Kind: kind, Rows: rows, Cols: cols}
	if err := hd.Check(data); err != nil {
		return &IOError{Op: op, filename: h.filename, err: err}
	}
	sum, err := chunk.Encode(h.w, hd, data)
	if err != nil {
		return h.fail(op, err)
	}
	h.pending = append(h.pending, ChunkInfo{Header: hd, Offset: h.offset + int64(chunk.HeaderSize+len(name)), Sum: sum})
	h.offset += hd.RecordSize()
	return nil
}

//EndFrame commits the frame in progress, making it count in NFrames and
//visible to readers that open the file afterwards.
func (h *Handle) EndFrame() error {
	if err := h.writable("end frame"); err != nil {
		return err
	}
	rec := make([]byte, commitSize)
	rec[0] = chunk.TagFrame
	order.PutUint32(rec[4:], uint32(len(h.pending)))
	order.PutUint64(rec[8:], uint64(len(h.frames)))
	order.PutUint64(rec[16:], digest(h.pending))
	if _, err := h.w.Write(rec); err != nil {
		return h.fail("end frame", errors.Wrap(err, "write commit record"))
	}
	if err := h.w.Flush(); err != nil {
		return h.fail("end frame", errors.Wrap(err, "flush"))
	}
	if h.sync {
		if err := datasync(h.f); err != nil {
			return h.fail("end frame", errors.Wrap(err, "sync"))
		}
	}
	h.offset += commitSize
	h.end = h.offset
	h.frames = append(h.frames, h.pending)
	h.pending = nil
	return nil
}

//Truncate removes all the frames of the file, including a frame in progress.
func (h *Handle) Truncate() error {
	if err := h.writable("truncate"); err != nil {
		return err
	}
	h.w.Reset(h.f)
	if err := h.f.Truncate(HeaderSize); err != nil {
		return h.fail("truncate", err)
	}
	if _, err := h.f.Seek(HeaderSize, io.SeekStart); err != nil {
		return h.fail("truncate", err)
	}
	if h.sync {
		if err := datasync(h.f); err != nil {
			return h.fail("truncate", errors.Wrap(err, "sync"))
		}
	}
	h.frames = nil
	h.pending = nil
	h.end = HeaderSize
	h.offset = HeaderSize
	return nil
}

//Close releases the file. Chunks of a frame in progress are not committed.
//Closing a closed handle does nothing.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true
	var err error
	if h.mode == Append && h.broken == nil && len(h.pending) == 0 {
		err = h.w.Flush()
	}
	if cerr := h.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &IOError{Op: "close", filename: h.filename, err: err}
	}
	return nil
}
