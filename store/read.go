package store

import (
	"github.com/pkg/errors"

	"github.com/rmera/gogsd/chunk"
)

//Data is a chunk read back from a file.
type Data struct {
	chunk.Header
	Bytes []byte
}

func (d Data) Float32s() []float32 { return chunk.AsFloat32s(d.Bytes) }
func (d Data) Uint32s() []uint32   { return chunk.AsUint32s(d.Bytes) }
func (d Data) Int32s() []int32     { return chunk.AsInt32s(d.Bytes) }
func (d Data) Uint64s() []uint64   { return chunk.AsUint64s(d.Bytes) }

//Chunks returns the chunks of the committed frame, in the order they were written.
func (h *Handle) Chunks(frame uint64) ([]ChunkInfo, error) {
	if frame >= uint64(len(h.frames)) {
		return nil, &IOError{Op: "list chunks", filename: h.filename, err: errors.Wrapf(ErrNoFrame, "frame %d", frame)}
	}
	ret := make([]ChunkInfo, len(h.frames[frame]))
	copy(ret, h.frames[frame])
	return ret, nil
}

//Find returns the chunk called name in the committed frame, and true, or
//false if the frame doesn't exist or doesn't contain such chunk.
func (h *Handle) Find(frame uint64, name string) (ChunkInfo, bool) {
	if frame >= uint64(len(h.frames)) {
		return ChunkInfo{}, false
	}
	for _, c := range h.frames[frame] {
		if c.Name == name {
			return c, true
		}
	}
	return ChunkInfo{}, false
}

//Read reads the chunk called name from the committed frame, and checks its
//integrity.
func (h *Handle) Read(frame uint64, name string) (Data, error) {
	op := "read chunk " + name
	if h.closed {
		return Data{}, &IOError{Op: op, filename: h.filename, err: ErrClosed}
	}
	if frame >= uint64(len(h.frames)) {
		return Data{}, &IOError{Op: op, filename: h.filename, err: errors.Wrapf(ErrNoFrame, "frame %d", frame)}
	}
	c, ok := h.Find(frame, name)
	if !ok {
		return Data{}, &IOError{Op: op, filename: h.filename, err: errors.Wrapf(ErrNoChunk, "frame %d", frame)}
	}
	size, _ := c.PayloadSize()
	b := make([]byte, size)
	if _, err := h.f.ReadAt(b, c.Offset); err != nil {
		return Data{}, &IOError{Op: op, filename: h.filename, err: err}
	}
	if err := chunk.Verify(c.Header, b, c.Sum); err != nil {
		return Data{}, &IOError{Op: op, filename: h.filename, err: err}
	}
	return Data{Header: c.Header, Bytes: b}, nil
}
