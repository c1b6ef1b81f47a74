package gsdplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	gsd "github.com/rmera/gogsd"
)

func TestBoxVolume(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "traj.gsd")
	opts := gsd.DefaultOptions()
	opts.Logger = zerolog.Nop()
	w := gsd.NewWriter(name, nil, opts)
	snap := &gsd.Snapshot{
		Position: [][3]float32{{0, 0, 0}},
		Types:    []string{"A"},
	}
	for i := 0; i < 5; i++ {
		l := float32(10 - i)
		snap.Box = gsd.Box{L: [3]float32{l, l, l}}
		if err := w.WriteFrame(uint64(1000*i), snap, nil, true); err != nil {
			Te.Fatal(err)
		}
	}
	w.Close()
	tr, err := gsd.OpenTrajectory(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer tr.Close()
	pts, err := VolumeSeries(tr)
	if err != nil {
		Te.Fatal(err)
	}
	if len(pts) != 5 || pts[4].X != 4000 || pts[4].Y != 216 || pts[0].Y != 1000 {
		Te.Errorf("wrong volume series %v", pts)
	}
	out := filepath.Join(dir, "volume.png")
	if err := BoxVolume(tr, out); err != nil {
		Te.Fatal(err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		Te.Errorf("no plot written: %v", err)
	}
}
