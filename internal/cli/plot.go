package cli

import (
	"github.com/spf13/cobra"

	gsd "github.com/rmera/gogsd"
	"github.com/rmera/gogsd/gsdplot"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot <file.gsd> <image>",
		Short: "Plot the box volume against the time step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := gsd.OpenTrajectory(args[0])
			if err != nil {
				return err
			}
			defer tr.Close()
			return gsdplot.BoxVolume(tr, args[1])
		},
	}
}
