/*
 * store_test.go, part of gogsd.
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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gogsd/chunk"
)

var v10 = MakeVersion(1, 0)

func newFile(Te *testing.T, schema string, version Version) string {
	Te.Helper()
	name := filepath.Join(Te.TempDir(), "test.gsd")
	if err := Create(name, "gogsd test", schema, version); err != nil {
		Te.Fatal(err)
	}
	return name
}

func fileSize(Te *testing.T, name string) int64 {
	Te.Helper()
	info, err := os.Stat(name)
	if err != nil {
		Te.Fatal(err)
	}
	return info.Size()
}

func writeFrame(Te *testing.T, h *Handle, step uint64, pos []float32) {
	Te.Helper()
	if err := h.WriteChunk("configuration/step", chunk.Uint64, 1, 1, chunk.Uint64s([]uint64{step})); err != nil {
		Te.Fatal(err)
	}
	if err := h.WriteChunk("particles/position", chunk.Float32, uint32(len(pos)/3), 3, chunk.Float32s(pos)); err != nil {
		Te.Fatal(err)
	}
	if err := h.EndFrame(); err != nil {
		Te.Fatal(err)
	}
}

func TestCreateOpen(Te *testing.T) {
	name := newFile(Te, "hoomd", MakeVersion(1, 4))
	if s := fileSize(Te, name); s != HeaderSize {
		Te.Errorf("new file has %d bytes, expected %d", s, HeaderSize)
	}
	h, err := Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer h.Close()
	hd := h.Header()
	if hd.Schema != "hoomd" || hd.Application != "gogsd test" || hd.SchemaVersion.Minor() != 4 || hd.FormatVersion != FormatVersion {
		Te.Errorf("header didn't survive: %+v", hd)
	}
	if h.NFrames() != 0 {
		Te.Errorf("%d frames in a new file", h.NFrames())
	}
}

func TestCreateIfAbsent(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	writeFrame(Te, h, 0, []float32{1, 2, 3})
	h.Close()
	created, err := CreateIfAbsent(name, "gogsd test", "hoomd", v10, false)
	if err != nil || created {
		Te.Fatalf("existing file recreated (%v) or error: %v", created, err)
	}
	if s := fileSize(Te, name); s == HeaderSize {
		Te.Error("existing file lost its frames")
	}
	created, err = CreateIfAbsent(name, "gogsd test", "hoomd", v10, true)
	if err != nil || !created {
		Te.Fatalf("file not overwritten (%v), error: %v", created, err)
	}
	if s := fileSize(Te, name); s != HeaderSize {
		Te.Errorf("overwritten file has %d bytes", s)
	}
	err = Create(filepath.Join(Te.TempDir(), "nodir", "x.gsd"), "gogsd test", "hoomd", v10)
	var ce *CreateError
	if !errors.As(err, &ce) {
		Te.Errorf("expected a CreateError, got %v", err)
	}
}

func TestAppendAndRead(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	defer h.Close()
	pos := []float32{0, 1, 2, 3, 4, 5}
	writeFrame(Te, h, 100, pos)
	//A reader must not see a frame that is still being written.
	if err := h.WriteChunk("configuration/step", chunk.Uint64, 1, 1, chunk.Uint64s([]uint64{200})); err != nil {
		Te.Fatal(err)
	}
	h.w.Flush()
	r, err := Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	if r.NFrames() != 1 || r.Discarded() == 0 {
		Te.Errorf("reader sees %d frames and %d unfinished bytes", r.NFrames(), r.Discarded())
	}
	r.Close()
	if err := h.EndFrame(); err != nil {
		Te.Fatal(err)
	}
	if h.NFrames() != 2 {
		Te.Errorf("%d frames, expected 2", h.NFrames())
	}

	r, err = Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if r.NFrames() != 2 {
		Te.Fatalf("reader sees %d frames, expected 2", r.NFrames())
	}
	d, err := r.Read(0, "particles/position")
	if err != nil {
		Te.Fatal(err)
	}
	if d.Rows != 2 || d.Cols != 3 || d.Kind != chunk.Float32 {
		Te.Errorf("wrong shape %+v", d.Header)
	}
	for i, v := range d.Float32s() {
		if v != pos[i] {
			Te.Errorf("position %d: %v != %v", i, v, pos[i])
		}
	}
	d, err = r.Read(1, "configuration/step")
	if err != nil || d.Uint64s()[0] != 200 {
		Te.Errorf("wrong step in frame 1: %v %v", d.Bytes, err)
	}
	if _, err := r.Read(1, "particles/position"); !errors.Is(err, ErrNoChunk) {
		Te.Errorf("expected ErrNoChunk, got %v", err)
	}
	if _, err := r.Read(2, "configuration/step"); !errors.Is(err, ErrNoFrame) {
		Te.Errorf("expected ErrNoFrame, got %v", err)
	}
	cs, err := r.Chunks(0)
	if err != nil || len(cs) != 2 || cs[0].Name != "configuration/step" {
		Te.Errorf("wrong chunk list %v, %v", cs, err)
	}
}

func TestSchemaRejection(Te *testing.T) {
	cases := []struct {
		schema  string
		version Version
		kind    OpenKind
	}{
		{"other", v10, InvalidFormat},
		{"hoomd", MakeVersion(2, 0), UnsupportedVersion},
		{"hoomd", MakeVersion(3, 1), UnsupportedVersion},
	}
	for _, c := range cases {
		name := newFile(Te, c.schema, c.version)
		h, err := OpenAppend(name, "hoomd", v10)
		if err == nil {
			h.Close()
			Te.Errorf("%s %v: opened a file that should be rejected", c.schema, c.version)
			continue
		}
		if !IsOpenKind(err, c.kind) {
			Te.Errorf("%s %v: expected %s, got %v", c.schema, c.version, c.kind, err)
		}
		if s := fileSize(Te, name); s != HeaderSize {
			Te.Errorf("rejected file changed size to %d", s)
		}
	}
	name := newFile(Te, "hoomd", MakeVersion(1, 9))
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Errorf("a newer minor version must be accepted: %v", err)
	} else {
		h.Close()
	}
}

func TestOpenErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := Open(filepath.Join(dir, "missing.gsd"))
	if !IsOpenKind(err, NotFound) || !errors.Is(err, fs.ErrNotExist) {
		Te.Errorf("expected NotFound, got %v", err)
	}

	junk := filepath.Join(dir, "junk.gsd")
	os.WriteFile(junk, []byte("this is not a trajectory at all, not even close"), 0o644)
	if _, err := Open(junk); !IsOpenKind(err, InvalidFormat) {
		Te.Errorf("expected InvalidFormat, got %v", err)
	}

	short := filepath.Join(dir, "short.gsd")
	os.WriteFile(short, append(magic[:], 1, 2, 3), 0o644)
	if _, err := Open(short); !IsOpenKind(err, Corrupt) {
		Te.Errorf("expected Corrupt for a short header, got %v", err)
	}

	name := newFile(Te, "hoomd", v10)
	b, _ := os.ReadFile(name)
	b[20] ^= 0xff
	os.WriteFile(name, b, 0o644)
	if _, err := Open(name); !IsOpenKind(err, Corrupt) {
		Te.Errorf("expected Corrupt for a damaged header, got %v", err)
	}

	name = newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	writeFrame(Te, h, 0, []float32{1, 1, 1})
	h.Close()
	b, _ = os.ReadFile(name)
	b[len(b)-1] ^= 0xff //the digest of the commit record
	os.WriteFile(name, b, 0o644)
	if _, err := OpenAppend(name, "hoomd", v10); !IsOpenKind(err, Corrupt) {
		Te.Errorf("expected Corrupt for a damaged commit record, got %v", err)
	}
}

func TestCrashTailDropped(Te *testing.T) {
	tails := map[string][]byte{
		"zeros":   make([]byte, 4096),
		"garbage": []byte{'X', 0, 0, 0},
		"commit":  append([]byte{chunk.TagFrame}, make([]byte, commitSize-1)...),
	}
	for desc, tail := range tails {
		name := newFile(Te, "hoomd", v10)
		h, err := OpenAppend(name, "hoomd", v10)
		if err != nil {
			Te.Fatal(err)
		}
		writeFrame(Te, h, 0, []float32{1, 1, 1})
		committed := h.end
		h.Close()
		f, _ := os.OpenFile(name, os.O_APPEND|os.O_WRONLY, 0)
		f.Write(tail)
		f.Close()

		r, err := Open(name)
		if err != nil {
			Te.Fatalf("%s: %v", desc, err)
		}
		if r.NFrames() != 1 || r.Discarded() != int64(len(tail)) {
			Te.Errorf("%s: %d frames, %d bytes discarded", desc, r.NFrames(), r.Discarded())
		}
		r.Close()

		h, err = OpenAppend(name, "hoomd", v10)
		if err != nil {
			Te.Fatalf("%s: %v", desc, err)
		}
		if s := fileSize(Te, name); s != committed {
			Te.Errorf("%s: file has %d bytes after recovery, expected %d", desc, s, committed)
		}
		writeFrame(Te, h, 10, []float32{2, 2, 2})
		h.Close()
		r, err = Open(name)
		if err != nil {
			Te.Fatalf("%s: %v", desc, err)
		}
		if r.NFrames() != 2 {
			Te.Errorf("%s: %d frames after appending", desc, r.NFrames())
		}
		r.Close()
	}
}

func TestUnfinishedFrameDropped(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	writeFrame(Te, h, 0, []float32{1, 1, 1})
	committed := h.end
	if err := h.WriteChunk("configuration/step", chunk.Uint64, 1, 1, chunk.Uint64s([]uint64{10})); err != nil {
		Te.Fatal(err)
	}
	//simulates a crash in the middle of a frame.
	h.w.Flush()
	h.f.Close()

	h, err = OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	if h.NFrames() != 1 || h.Discarded() == 0 {
		Te.Errorf("%d frames, %d bytes discarded", h.NFrames(), h.Discarded())
	}
	if s := fileSize(Te, name); s != committed {
		Te.Errorf("file has %d bytes after recovery, expected %d", s, committed)
	}
	writeFrame(Te, h, 10, []float32{2, 2, 2})
	h.Close()
	r, err := Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if r.NFrames() != 2 || r.Discarded() != 0 {
		Te.Errorf("%d frames, %d bytes discarded after appending", r.NFrames(), r.Discarded())
	}
}

func TestTruncate(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	defer h.Close()
	for i := 0; i < 3; i++ {
		writeFrame(Te, h, uint64(i), []float32{0, 0, 0})
	}
	if err := h.Truncate(); err != nil {
		Te.Fatal(err)
	}
	if h.NFrames() != 0 {
		Te.Errorf("%d frames after truncate", h.NFrames())
	}
	if s := fileSize(Te, name); s != HeaderSize {
		Te.Errorf("%d bytes after truncate", s)
	}
	writeFrame(Te, h, 7, []float32{0, 0, 0})
	r, err := Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	d, err := r.Read(0, "configuration/step")
	if r.NFrames() != 1 || err != nil || d.Uint64s()[0] != 7 {
		Te.Errorf("%d frames, step %v, error %v", r.NFrames(), d.Bytes, err)
	}
}

func TestHandleMisuse(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	r, err := Open(name)
	if err != nil {
		Te.Fatal(err)
	}
	if err := r.WriteChunk("a", chunk.Uint8, 1, 1, []byte{1}); !errors.Is(err, ErrReadOnly) {
		Te.Errorf("expected ErrReadOnly, got %v", err)
	}
	r.Close()

	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	if err := h.WriteChunk("a", chunk.Uint8, 1, 1, []byte{1}); err != nil {
		Te.Fatal(err)
	}
	if err := h.WriteChunk("a", chunk.Uint8, 1, 1, []byte{2}); !errors.Is(err, ErrDuplicateChunk) {
		Te.Errorf("expected ErrDuplicateChunk, got %v", err)
	}
	if err := h.WriteChunk("b", chunk.Float32, 2, 1, []byte{2}); err == nil {
		Te.Error("a payload of the wrong size was accepted")
	}
	if err := h.Close(); err != nil {
		Te.Error(err)
	}
	if err := h.Close(); err != nil {
		Te.Errorf("second Close failed: %v", err)
	}
	if err := h.EndFrame(); !errors.Is(err, ErrClosed) {
		Te.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestInvalidatedAfterFailure(Te *testing.T) {
	name := newFile(Te, "hoomd", v10)
	h, err := OpenAppend(name, "hoomd", v10)
	if err != nil {
		Te.Fatal(err)
	}
	h.f.Close() //the handle's file goes away under it.
	h.WriteChunk("configuration/step", chunk.Uint64, 1, 1, chunk.Uint64s([]uint64{1}))
	err = h.EndFrame()
	var ioe *IOError
	if !errors.As(err, &ioe) {
		Te.Fatalf("expected an IOError, got %v", err)
	}
	if h.NFrames() != 0 {
		Te.Error("a failed frame was counted")
	}
	err = h.WriteChunk("configuration/box", chunk.Float32, 6, 1, chunk.Float32s(make([]float32, 6)))
	if !errors.Is(err, ErrInvalidated) {
		Te.Errorf("expected ErrInvalidated, got %v", err)
	}
}
