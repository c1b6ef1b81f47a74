package gsd

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/gogsd/store"
)

func TestTrajectoryFallback(t *testing.T) {
	name := tempFile(t)
	w := NewWriter(name, nil, allDynamic())
	snap := threeParticles()
	snap.Dimensions = 2
	snap.Mass = []float32{2, 2, 2}
	snap.Orientation = [][4]float32{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}}
	snap.Box = Box{L: [3]float32{4, 5, 1}, XY: 0.5}
	writeFrames(t, w, snap, nil, 0)
	snap.Mass = nil
	snap.Orientation = nil
	snap.Position[1] = [3]float32{2, 3, 0}
	writeFrames(t, w, snap, nil, 50)
	require.NoError(t, w.Close())

	tr, err := OpenTrajectory(name)
	require.NoError(t, err)
	defer tr.Close()
	var _ Traj = tr
	require.Equal(t, 3, tr.Len())
	require.Equal(t, uint64(2), tr.NFrames())
	dims, err := tr.Dimensions()
	require.NoError(t, err)
	require.Equal(t, 2, dims)

	//attributes were written in frame 1 (typeid), so the missing mass is the default.
	mass, err := tr.Float32s(1, "particles/mass", []float32{DefaultMass})
	require.NoError(t, err)
	require.Equal(t, []float32{1, 1, 1}, mass)
	mass, err = tr.Float32s(0, "particles/mass", []float32{DefaultMass})
	require.NoError(t, err)
	require.Equal(t, []float32{2, 2, 2}, mass)
	orient, err := tr.Float32s(1, "particles/orientation", DefaultOrientation[:])
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}, orient)
	//neither frame has velocities.
	vel, err := tr.Float32s(1, "particles/velocity", []float32{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, make([]float32, 9), vel)
	types, err := tr.Types(1)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, types)

	b, err := tr.Box(1)
	require.NoError(t, err)
	require.Equal(t, snap.Box, b)
	step, err := tr.Step(1)
	require.NoError(t, err)
	require.Equal(t, uint64(50), step)

	coords := mat.NewDense(3, 3, nil)
	box := make([]float64, 9)
	require.NoError(t, tr.Next(coords, box))
	require.Equal(t, 1.0, coords.At(1, 0))
	require.Equal(t, []float64{4, 0, 0, 2.5, 5, 0, 0, 0, 1}, box)
	require.NoError(t, tr.Next(coords))
	require.Equal(t, 3.0, coords.At(1, 1))
	err = tr.Next(nil)
	var last LastFrameError
	require.ErrorAs(t, err, &last)
	require.False(t, tr.Readable())

	_, err = tr.Step(2)
	require.Error(t, err)
}

func TestTrajectoryStaticCategory(t *testing.T) {
	name := tempFile(t)
	w := NewWriter(name, nil, testOptions())
	snap := threeParticles()
	snap.Velocity = [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	writeFrames(t, w, snap, nil, 0, 10)
	require.NoError(t, w.Close())
	require.NotContains(t, chunkNames(t, name, 1), "particles/velocity")

	tr, err := OpenTrajectory(name)
	require.NoError(t, err)
	defer tr.Close()
	//momenta are not dynamic, so frame 1 has frame 0's.
	vel, err := tr.Float32s(1, "particles/velocity", []float32{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, vel)
}

func TestTrajectoryTypesChange(t *testing.T) {
	name := tempFile(t)
	w := NewWriter(name, nil, allDynamic())
	snap := threeParticles()
	writeFrames(t, w, snap, nil, 0)
	snap.Types = []string{"A", "B", "C"}
	writeFrames(t, w, snap, nil, 1, 2)
	require.NoError(t, w.Close())
	require.Contains(t, chunkNames(t, name, 1), "particles/types")
	require.NotContains(t, chunkNames(t, name, 2), "particles/types")

	tr, err := OpenTrajectory(name)
	require.NoError(t, err)
	defer tr.Close()
	for i, want := range [][]string{{"A", "B"}, {"A", "B", "C"}, {"A", "B", "C"}} {
		types, err := tr.Types(uint64(i))
		require.NoError(t, err)
		require.Equal(t, want, types)
	}
}

func TestTrajectoryRejects(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, store.Create(name, "test", "other", store.MakeVersion(1, 0)))
	_, err := OpenTrajectory(name)
	require.Error(t, err)

	_, err = OpenTrajectory(tempFile(t))
	require.True(t, store.IsOpenKind(err, store.NotFound))

	coords := mat.NewDense(2, 3, nil)
	name = tempFile(t)
	w := NewWriter(name, nil, testOptions())
	writeFrames(t, w, threeParticles(), nil, 0)
	require.NoError(t, w.Close())
	tr, err := OpenTrajectory(name)
	require.NoError(t, err)
	defer tr.Close()
	require.Error(t, tr.Next(coords))
}
