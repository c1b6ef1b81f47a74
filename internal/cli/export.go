package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gsd "github.com/rmera/gogsd"
	"github.com/rmera/gogsd/internal/logging"
	"github.com/rmera/gogsd/traj/dcd"
	"github.com/rmera/gogsd/traj/stf"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var format string
	var prec int
	cmd := &cobra.Command{
		Use:   "export <file.gsd> <output>",
		Short: "Export the positions and boxes of a trajectory to STF or DCD",
		Long: `Export the positions and boxes of every frame of a trajectory.

The output format is taken from --format or, if not given, from the
extension of the output file (.stf or .dcd).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
			}
			tr, err := gsd.OpenTrajectory(args[0])
			if err != nil {
				return err
			}
			defer tr.Close()
			var n int
			switch format {
			case "stf":
				n, err = stf.Export(tr, args[1], map[string]string{"prec": fmt.Sprint(prec), "source": filepath.Base(args[0])})
			case "dcd":
				n, err = dcd.Export(tr, args[1], filepath.Base(args[0]))
			default:
				return fmt.Errorf("unknown export format %q: must be stf or dcd", format)
			}
			if err != nil {
				return err
			}
			logging.L().Info().Str("file", args[1]).Int("frames", n).Msg("exported trajectory")
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s\n", n, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format (stf|dcd)")
	cmd.Flags().IntVar(&prec, "prec", stf.DefaultPrec, "decimal places kept in STF files")
	return cmd
}
