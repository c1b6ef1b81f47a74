package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gsd "github.com/rmera/gogsd"
	"github.com/rmera/gogsd/internal/logging"
	"github.com/rmera/gogsd/store"
)

// NewTruncateCommand creates the truncate command.
func NewTruncateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <file.gsd>",
		Short: "Remove every frame of a trajectory, keeping its header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := store.OpenAppend(args[0], gsd.SchemaName, gsd.SchemaVersion)
			if err != nil {
				return err
			}
			n := h.NFrames()
			if err := h.Truncate(); err != nil {
				h.Close()
				return err
			}
			if err := h.Close(); err != nil {
				return err
			}
			logging.L().Info().Str("file", args[0]).Uint64("frames", n).Msg("truncated trajectory file")
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames removed from %s\n", n, args[0])
			return nil
		},
	}
}
