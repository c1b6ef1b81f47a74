/*
 * writer.go, part of gogsd.
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

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/rmera/gogsd/chunk"
	"github.com/rmera/gogsd/store"
)

// SchemaVersion is the version of the schema written by this package. Files
// with a later major version are not appended to.
var SchemaVersion = store.MakeVersion(1, 0)

// a type table as last committed by the writer
type typeTable struct {
	table []byte
	width int
}

// Writer writes the frames of a simulation to a trajectory file.
// The file is not touched until the first call to WriteFrame.
//
// Several participants may share the writing of one trajectory, each with
// its own Writer. Only the one that passes isWriter=true to WriteFrame
// touches the file; the frame count it sees is shared with the rest through
// the Broadcaster set with SetBroadcaster. A Writer is not safe for
// concurrent use.
type Writer struct {
	filename string
	group    Group
	opts     Options
	log      zerolog.Logger
	bcast    Broadcaster

	handle  *store.Handle
	nframes uint64
	err     error //set once a frame fails to be written
	closed  bool
	shared  bool //the frame count of the current frame was broadcast

	committed map[string]typeTable //type tables in the last frame this writer committed
	pending   map[string]typeTable //type tables written in the frame in progress
}

// NewWriter returns a writer for the particles in group of the snapshots
// given to WriteFrame. A nil group means every particle. If opts is nil,
// DefaultOptions are used. opts is copied, so later changes to it don't
// affect the writer; use the writer's own setters instead.
func NewWriter(filename string, group Group, opts *Options) *Writer {
	if opts == nil {
		opts = DefaultOptions()
	}
	w := &Writer{
		filename:  filename,
		group:     group,
		opts:      *opts,
		committed: make(map[string]typeTable),
	}
	w.log = opts.Logger.With().Str("file", filename).Logger()
	return w
}

// SetBroadcaster sets the channel through which the frame count is shared
// by all the participants of a write. With no broadcaster, each participant
// only knows the count it sees itself, which is 0 for non-writers.
func (w *Writer) SetBroadcaster(b Broadcaster) { w.bcast = b }

// FileName returns the name of the trajectory file.
func (w *Writer) FileName() string { return w.filename }

// NFrames returns the number of frames the file had before the last call to
// WriteFrame began writing.
func (w *Writer) NFrames() uint64 { return w.nframes }

func (w *Writer) setCategory(c Category, on bool) {
	if on {
		w.opts.Dynamic |= c
	} else {
		w.opts.Dynamic &^= c
	}
}

// EnableAttributes sets whether the attribute quantities are written on
// every frame, instead of only on the first one.
func (w *Writer) EnableAttributes(on bool) { w.setCategory(AttributeCategory, on) }

// EnableProperties sets whether positions and orientations are written on every frame.
func (w *Writer) EnableProperties(on bool) { w.setCategory(PropertyCategory, on) }

// EnableMomenta sets whether velocities, angular momenta and images are
// written on every frame.
func (w *Writer) EnableMomenta(on bool) { w.setCategory(MomentumCategory, on) }

// EnableTopology sets whether the connectivity tables are written on every frame.
func (w *Writer) EnableTopology(on bool) { w.setCategory(TopologyCategory, on) }

// Force sets whether the quantities of the categories in c are written even
// when every value is the default.
func (w *Writer) Force(c Category, on bool) {
	if on {
		w.opts.Forced |= c
	} else {
		w.opts.Forced &^= c
	}
}

// SetOverwrite sets whether an existing file is replaced. It only has effect
// before the first frame is written.
func (w *Writer) SetOverwrite(on bool) { w.opts.Overwrite = on }

// SetTruncate sets whether every frame replaces all the previous ones.
func (w *Writer) SetTruncate(on bool) { w.opts.Truncate = on }

// Dynamic returns the names of the categories written on every frame.
func (w *Writer) Dynamic() []string { return w.opts.Dynamic.Names() }

// Options returns a copy of the current options of the writer.
func (w *Writer) Options() Options { return w.opts }

// initIO creates the file if needed and opens it for appending.
func (w *Writer) initIO() error {
	created, err := store.CreateIfAbsent(w.filename, w.opts.Application, SchemaName, SchemaVersion, w.opts.Overwrite)
	if err != nil {
		return err
	}
	if created {
		w.log.Info().Bool("overwrite", w.opts.Overwrite).Msg("created trajectory file")
	}
	h, err := store.OpenAppend(w.filename, SchemaName, SchemaVersion)
	if err != nil {
		return err
	}
	if d := h.Discarded(); d > 0 {
		w.log.Warn().Int64("bytes", d).Msg("discarded the unfinished frame at the end of the file")
	}
	h.SetSync(w.opts.Sync)
	w.handle = h
	w.log.Info().Uint64("frames", h.NFrames()).Msg("opened trajectory file for appending")
	return nil
}

// WriteFrame writes the state of the particles of the writer's group at
// timestep as a new frame. topo may be nil if the system has no bonded
// interactions.
//
// Every participant calls WriteFrame; only the one with isWriter true
// touches the file, and the rest don't need to pass a snapshot. Once a frame
// fails to be written, every subsequent call returns an error.
func (w *Writer) WriteFrame(timestep uint64, snap *Snapshot, topo *Topology, isWriter bool) error {
	if !isWriter {
		return w.share(0)
	}
	w.shared = false
	err := w.writerFrame(timestep, snap, topo)
	if err != nil && w.bcast != nil && !w.shared {
		//the others are waiting for the frame count.
		w.bcast.BroadcastUint64(w.nframes)
	}
	return errDecorate(err, "WriteFrame")
}

func (w *Writer) writerFrame(timestep uint64, snap *Snapshot, topo *Topology) error {
	if w.closed {
		return newError(w.filename, "writerFrame", "writer is closed")
	}
	if w.err != nil {
		return newError(w.filename, "writerFrame", "writer unusable after a previous failure: %v", w.err)
	}
	if snap == nil {
		return newError(w.filename, "writerFrame", "no snapshot given to the writing participant")
	}
	tags, err := w.check(snap, topo)
	if err != nil {
		return err
	}
	if err = w.writeFrame(timestep, snap, topo, tags); err != nil {
		w.err = err
		w.log.Error().Err(err).Uint64("step", timestep).Msg("writing frame")
	}
	return err
}

// share broadcasts n, if there is a broadcaster, and records the count
// shared by the writer.
func (w *Writer) share(n uint64) error {
	w.shared = true
	if w.bcast == nil {
		w.nframes = n
		return nil
	}
	v, err := w.bcast.BroadcastUint64(n)
	if err != nil {
		return newError(w.filename, "share", "sharing the frame count: %v", err)
	}
	w.nframes = v
	return nil
}

// check validates the input before anything is written, and returns the
// tags of the group.
func (w *Writer) check(snap *Snapshot, topo *Topology) ([]uint32, error) {
	if err := snap.Validate(); err != nil {
		return nil, errDecorate(err, "check")
	}
	tags, err := w.group.tags(snap.Len())
	if err != nil {
		return nil, errDecorate(err, "check")
	}
	if w.group.Full(snap.Len()) {
		if err := topo.Validate(snap.Len()); err != nil {
			return nil, errDecorate(err, "check")
		}
	}
	return tags, nil
}

func (w *Writer) writeFrame(timestep uint64, snap *Snapshot, topo *Topology, tags []uint32) error {
	if w.handle == nil {
		if err := w.initIO(); err != nil {
			return err
		}
	}
	if w.opts.Truncate {
		if err := w.handle.Truncate(); err != nil {
			return err
		}
		w.log.Info().Msg("truncated trajectory file")
		if w.opts.Metrics != nil {
			w.opts.Metrics.Truncations.Inc()
		}
	}
	if err := w.share(w.handle.NFrames()); err != nil {
		return err
	}
	zero := w.nframes == 0
	w.pending = make(map[string]typeTable)

	if err := w.writeHeader(timestep, snap, len(tags), zero); err != nil {
		return err
	}
	if w.opts.Dynamic.Has(AttributeCategory) || zero {
		if err := w.writeAttributes(snap, tags, zero); err != nil {
			return err
		}
	}
	if w.opts.Dynamic.Has(PropertyCategory) || zero {
		if err := w.writeProperties(snap, tags, zero); err != nil {
			return err
		}
	}
	if w.opts.Dynamic.Has(MomentumCategory) || zero {
		if err := w.writeMomenta(snap, tags, zero); err != nil {
			return err
		}
	}
	if topo != nil && w.group.Full(snap.Len()) && (w.opts.Dynamic.Has(TopologyCategory) || zero) {
		if err := w.writeTopology(topo); err != nil {
			return err
		}
	}
	if err := w.handle.EndFrame(); err != nil {
		return err
	}
	for k, v := range w.pending {
		w.committed[k] = v
	}
	if w.opts.Metrics != nil {
		w.opts.Metrics.Frames.Inc()
	}
	w.log.Debug().Uint64("step", timestep).Uint64("frame", w.nframes).Msg("frame written")
	return nil
}

func (w *Writer) write(name string, kind chunk.Kind, rows, cols uint32, data []byte) error {
	w.log.Debug().Str("chunk", name).Stringer("kind", kind).Uint32("rows", rows).Uint32("cols", cols).Msg("writing chunk")
	if err := w.handle.WriteChunk(name, kind, rows, cols, data); err != nil {
		return err
	}
	if w.opts.Metrics != nil {
		w.opts.Metrics.Chunks.Inc()
		w.opts.Metrics.Bytes.Add(float64(len(data)))
	}
	return nil
}

func (w *Writer) suppress(name string) {
	w.log.Debug().Str("chunk", name).Msg("every value is the default, chunk not written")
	if w.opts.Metrics != nil {
		w.opts.Metrics.Suppressed.WithLabelValues(name).Inc()
	}
}

func (w *Writer) writeHeader(timestep uint64, snap *Snapshot, n int, zero bool) error {
	if err := w.write("configuration/step", chunk.Uint64, 1, 1, chunk.Uint64s([]uint64{timestep})); err != nil {
		return err
	}
	if zero {
		if err := w.write("configuration/dimensions", chunk.Uint8, 1, 1, []byte{snap.Dims()}); err != nil {
			return err
		}
	}
	if err := w.write("configuration/box", chunk.Float32, 6, 1, chunk.Float32s(snap.Box.Array())); err != nil {
		return err
	}
	return w.write("particles/N", chunk.Uint32, 1, 1, chunk.Uint32s([]uint32{uint32(n)}))
}

// writeTypes writes a type table unless it is identical to the one in the
// last frame committed by this writer. always disables the comparison.
func (w *Writer) writeTypes(name string, labels []string, always bool) error {
	table, width := EncodeTypes(labels)
	if prev, ok := w.committed[name]; !always && ok && prev.width == width && bytes.Equal(prev.table, table) {
		w.log.Debug().Str("chunk", name).Msg("type table unchanged, chunk not written")
		return nil
	}
	if err := w.write(name, chunk.Uint8, uint32(len(labels)), uint32(width), table); err != nil {
		return err
	}
	w.pending[name] = typeTable{table: table, width: width}
	return nil
}

// scalar writes a per-particle quantity with one value per particle, if ShouldWrite says so.
func scalar[T comparable](w *Writer, name string, kind chunk.Kind, vals []T, def T, zero, forced bool, enc func([]T) []byte) error {
	if !ShouldWrite(zero, forced, vals, def) {
		w.suppress(name)
		return nil
	}
	return w.write(name, kind, uint32(len(vals)), 1, enc(vals))
}

func (w *Writer) writeAttributes(s *Snapshot, tags []uint32, zero bool) error {
	forced := w.opts.Forced.Has(AttributeCategory)
	n := uint32(len(tags))
	if err := w.writeTypes("particles/types", s.Types, zero || forced); err != nil {
		return err
	}
	if err := scalar(w, "particles/typeid", chunk.Uint32, gather(s.TypeID, tags, 0), 0, zero, forced, chunk.Uint32s); err != nil {
		return err
	}
	if err := scalar(w, "particles/mass", chunk.Float32, gather(s.Mass, tags, DefaultMass), DefaultMass, zero, forced, chunk.Float32s); err != nil {
		return err
	}
	if err := scalar(w, "particles/charge", chunk.Float32, gather(s.Charge, tags, DefaultCharge), DefaultCharge, zero, forced, chunk.Float32s); err != nil {
		return err
	}
	if err := scalar(w, "particles/diameter", chunk.Float32, gather(s.Diameter, tags, DefaultDiameter), DefaultDiameter, zero, forced, chunk.Float32s); err != nil {
		return err
	}
	if err := scalar(w, "particles/body", chunk.Int32, gather(s.Body, tags, DefaultBody), DefaultBody, zero, forced, chunk.Int32s); err != nil {
		return err
	}
	inertia := gather(s.Inertia, tags, [3]float32{})
	if !ShouldWrite(zero, forced, inertia, [3]float32{}) {
		w.suppress("particles/moment_inertia")
		return nil
	}
	return w.write("particles/moment_inertia", chunk.Float32, n, 3, chunk.Float32s(flat3(inertia)))
}

func (w *Writer) writeProperties(s *Snapshot, tags []uint32, zero bool) error {
	forced := w.opts.Forced.Has(PropertyCategory)
	n := uint32(len(tags))
	pos := gather(s.Position, tags, [3]float32{})
	if err := w.write("particles/position", chunk.Float32, n, 3, chunk.Float32s(flat3(pos))); err != nil {
		return err
	}
	orient := gather(s.Orientation, tags, DefaultOrientation)
	if !ShouldWrite(zero, forced, orient, DefaultOrientation) {
		w.suppress("particles/orientation")
		return nil
	}
	return w.write("particles/orientation", chunk.Float32, n, 4, chunk.Float32s(flat4(orient)))
}

func (w *Writer) writeMomenta(s *Snapshot, tags []uint32, zero bool) error {
	forced := w.opts.Forced.Has(MomentumCategory)
	n := uint32(len(tags))
	vel := gather(s.Velocity, tags, [3]float32{})
	if ShouldWrite(zero, forced, vel, [3]float32{}) {
		if err := w.write("particles/velocity", chunk.Float32, n, 3, chunk.Float32s(flat3(vel))); err != nil {
			return err
		}
	} else {
		w.suppress("particles/velocity")
	}
	angmom := gather(s.AngMom, tags, [4]float32{})
	if ShouldWrite(zero, forced, angmom, [4]float32{}) {
		if err := w.write("particles/angmom", chunk.Float32, n, 4, chunk.Float32s(flat4(angmom))); err != nil {
			return err
		}
	} else {
		w.suppress("particles/angmom")
	}
	img := gather(s.Image, tags, [3]int32{})
	if !ShouldWrite(zero, forced, img, [3]int32{}) {
		w.suppress("particles/image")
		return nil
	}
	flat := make([]int32, 0, 3*len(img))
	for _, v := range img {
		flat = append(flat, v[:]...)
	}
	return w.write("particles/image", chunk.Int32, n, 3, chunk.Int32s(flat))
}

// writeBonded writes the count, type table, type ids and groups of one
// connectivity table. Empty tables are not written at all.
func writeBonded[G [2]uint32 | [3]uint32 | [4]uint32](w *Writer, name string, c *Connectivity[G]) error {
	n := c.Len()
	if n == 0 {
		return nil
	}
	var g G
	if err := w.write(name+"/N", chunk.Uint32, 1, 1, chunk.Uint32s([]uint32{uint32(n)})); err != nil {
		return err
	}
	if err := w.writeTypes(name+"/types", c.Types, true); err != nil {
		return err
	}
	if err := w.write(name+"/typeid", chunk.Uint32, uint32(n), 1, chunk.Uint32s(c.TypeID)); err != nil {
		return err
	}
	return w.write(name+"/group", chunk.Uint32, uint32(n), uint32(len(g)), chunk.Uint32s(flatten(c.Group)))
}

func (w *Writer) writeTopology(t *Topology) error {
	if err := writeBonded(w, "bonds", &t.Bonds); err != nil {
		return err
	}
	if err := writeBonded(w, "angles", &t.Angles); err != nil {
		return err
	}
	if err := writeBonded(w, "dihedrals", &t.Dihedrals); err != nil {
		return err
	}
	if err := writeBonded(w, "impropers", &t.Impropers); err != nil {
		return err
	}
	n := t.Constraints.Len()
	if n == 0 {
		return nil
	}
	if err := w.write("constraints/N", chunk.Uint32, 1, 1, chunk.Uint32s([]uint32{uint32(n)})); err != nil {
		return err
	}
	if err := w.write("constraints/value", chunk.Float32, uint32(n), 1, chunk.Float32s(t.Constraints.Value)); err != nil {
		return err
	}
	return w.write("constraints/group", chunk.Uint32, uint32(n), 2, chunk.Uint32s(flatten(t.Constraints.Group)))
}

// Close closes the trajectory file, if it was ever opened. Closing a
// closed writer does nothing.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.handle == nil {
		return nil
	}
	if err := w.handle.Close(); err != nil {
		w.log.Error().Err(err).Msg("closing trajectory file")
		return errDecorate(err, "Close")
	}
	w.log.Info().Uint64("frames", w.handle.NFrames()).Msg("closed trajectory file")
	return nil
}

func flat3(v [][3]float32) []float32 {
	ret := make([]float32, 0, 3*len(v))
	for _, r := range v {
		ret = append(ret, r[:]...)
	}
	return ret
}

func flat4(v [][4]float32) []float32 {
	ret := make([]float32, 0, 4*len(v))
	for _, r := range v {
		ret = append(ret, r[:]...)
	}
	return ret
}
