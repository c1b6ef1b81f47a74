package dcd

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	gsd "github.com/rmera/gogsd"
)

// Export copies every remaining frame of src, with its box, into a new DCD
// file called name, and returns the number of frames copied.
func Export(src gsd.Traj, name, title string) (int, error) {
	w, err := NewWriter(name, src.Len(), title)
	if err != nil {
		return 0, errDecorate(err, "Export")
	}
	coords := mat.NewDense(src.Len(), 3, nil)
	box := make([]float64, 9)
	frames := 0
	for src.Readable() {
		err = src.Next(coords, box)
		var last gsd.LastFrameError
		if errors.As(err, &last) {
			break
		}
		if err == nil {
			err = w.WNext(coords, box)
		}
		if err != nil {
			w.Close()
			return frames, errDecorate(err, "Export")
		}
		frames++
	}
	return frames, w.Close()
}
