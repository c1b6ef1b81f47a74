package stf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	gsd "github.com/rmera/gogsd"
)

func TestSTFWriteRead(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "test.stf")
	w, err := NewWriter(name, 2, map[string]string{"prec": "3", "units": "sigma"})
	if err != nil {
		Te.Fatal(err)
	}
	frames := [][]float64{
		{0, 0, 0, 1.2345, -2.5, 3},
		{0.1, 0.2, 0.3, -1, -2, -3},
	}
	box := []float64{10, 0, 0, 0, 10, 0, 0, 0, 12.5}
	for i, f := range frames {
		var err error
		if i == 0 {
			err = w.WNext(mat.NewDense(2, 3, f), box)
		} else {
			err = w.WNext(mat.NewDense(2, 3, f))
		}
		if err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.WNext(mat.NewDense(3, 3, nil)); err == nil {
		Te.Error("a frame with the wrong number of particles was written")
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}

	r, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if header["prec"] != "3" || header["units"] != "sigma" || r.Len() != 2 {
		Te.Errorf("wrong header %v for %d particles", header, r.Len())
	}
	coords := mat.NewDense(2, 3, nil)
	rbox := make([]float64, 9)
	for i, f := range frames {
		if err := r.Next(coords, rbox); err != nil {
			Te.Fatal(err)
		}
		if !mat.EqualApprox(coords, mat.NewDense(2, 3, f), 1e-3) {
			Te.Errorf("frame %d read as %v", i, mat.Formatted(coords))
		}
	}
	if rbox[8] != 12.5 {
		Te.Errorf("box read as %v", rbox)
	}
	err = r.Next(coords)
	var last gsd.LastFrameError
	if !errors.As(err, &last) {
		Te.Errorf("expected the end of the trajectory, got %v", err)
	}
	if r.Readable() {
		Te.Error("reader still readable after the last frame")
	}
}

func TestExport(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "traj.gsd")
	opts := gsd.DefaultOptions()
	opts.Logger = zerolog.Nop()
	w := gsd.NewWriter(name, nil, opts)
	snap := &gsd.Snapshot{
		Box:      gsd.Box{L: [3]float32{5, 5, 5}},
		Position: [][3]float32{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		Types:    []string{"A"},
	}
	for step := uint64(0); step < 4; step++ {
		snap.Position[0][0] = float32(step)
		if err := w.WriteFrame(step, snap, nil, true); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	tr, err := gsd.OpenTrajectory(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer tr.Close()
	out := filepath.Join(dir, "traj.stf")
	n, err := Export(tr, out, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 4 {
		Te.Errorf("exported %d frames, expected 4", n)
	}
	r, _, err := New(out)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	coords := mat.NewDense(3, 3, nil)
	box := make([]float64, 9)
	for i := 0; i < 4; i++ {
		if err := r.Next(coords, box); err != nil {
			Te.Fatal(err)
		}
		if coords.At(0, 0) != float64(i) || coords.At(2, 2) != 3 || box[4] != 5 {
			Te.Errorf("frame %d exported as %v, box %v", i, mat.Formatted(coords), box)
		}
	}
}
