package stf

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	gsd "github.com/rmera/gogsd"
)

// Export copies every remaining frame of src, with its box, into a new STF
// file called name, and returns the number of frames copied.
func Export(src gsd.Traj, name string, header map[string]string) (int, error) {
	if src.Len() < 1 {
		return 0, &Error{"trajectory has no particles", name, []string{"Export"}, true}
	}
	w, err := NewWriter(name, src.Len(), header)
	if err != nil {
		return 0, err
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
		if err != nil {
			w.Close()
			return frames, err
		}
		if err = w.WNext(coords, box); err != nil {
			w.Close()
			return frames, err
		}
		frames++
	}
	return frames, w.Close()
}
