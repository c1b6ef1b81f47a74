package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gsd "github.com/rmera/gogsd"
	"github.com/rmera/gogsd/internal/logging"
)

// LatticeOptions are the flags of the lattice command.
type LatticeOptions struct {
	Side    int
	Spacing float64
	Frames  int
	Every   uint64
	Config  string
}

// NewLatticeCommand creates the lattice command.
func NewLatticeCommand() *cobra.Command {
	opts := &LatticeOptions{}
	cmd := &cobra.Command{
		Use:   "lattice <file.gsd>",
		Short: "Write a trajectory of a simple cubic lattice drifting along x",
		Long: `Write a trajectory of a simple cubic lattice of side^3 particles that
drifts along x by a tenth of the spacing per frame.

The writer options (overwrite, truncate, dynamic, force, application and
sync) can be given in a YAML file with --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := runLattice(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames of %d particles written to %s\n", opts.Frames, n, args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Side, "side", 3, "particles per lattice side")
	cmd.Flags().Float64Var(&opts.Spacing, "spacing", 1.5, "distance between lattice sites")
	cmd.Flags().IntVar(&opts.Frames, "frames", 10, "frames to write")
	cmd.Flags().Uint64Var(&opts.Every, "every", 1000, "time steps between frames")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML file with the writer options")
	return cmd
}

// Lattice returns a snapshot of a simple cubic lattice of side^3
// particles, centered on the origin in a cubic box.
func Lattice(side int, spacing float64) *gsd.Snapshot {
	l := float32(float64(side) * spacing)
	s := &gsd.Snapshot{
		Box:   gsd.Box{L: [3]float32{l, l, l}},
		Types: []string{"A"},
	}
	half := float64(side-1) * spacing / 2
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			for k := 0; k < side; k++ {
				s.Position = append(s.Position, [3]float32{
					float32(float64(i)*spacing - half),
					float32(float64(j)*spacing - half),
					float32(float64(k)*spacing - half),
				})
			}
		}
	}
	return s
}

func runLattice(filename string, o *LatticeOptions) (int, error) {
	if o.Side < 1 || o.Frames < 1 {
		return 0, fmt.Errorf("side and frames must be positive")
	}
	opts := gsd.DefaultOptions()
	if o.Config != "" {
		var err error
		if opts, err = gsd.LoadOptions(o.Config); err != nil {
			return 0, err
		}
	}
	opts.Logger = *logging.L()
	w := gsd.NewWriter(filename, nil, opts)
	snap := Lattice(o.Side, o.Spacing)
	for f := 0; f < o.Frames; f++ {
		if err := w.WriteFrame(uint64(f)*o.Every, snap, nil, true); err != nil {
			w.Close()
			return 0, err
		}
		for i := range snap.Position {
			snap.Position[i][0] += float32(o.Spacing / 10)
		}
	}
	return snap.Len(), w.Close()
}
