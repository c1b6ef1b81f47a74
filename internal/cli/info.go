package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	gsd "github.com/rmera/gogsd"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	var frame int
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header and frames of a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0], frame)
		},
	}
	cmd.Flags().IntVarP(&frame, "frame", "f", -1, "also list the chunks of this frame")
	return cmd
}

func runInfo(w io.Writer, filename string, frame int) error {
	st, err := os.Stat(filename)
	if err != nil {
		return err
	}
	tr, err := gsd.OpenTrajectory(filename)
	if err != nil {
		return err
	}
	defer tr.Close()
	h := tr.Handle()
	hd := h.Header()
	fmt.Fprintf(w, "file:        %s\n", filepath.Base(filename))
	fmt.Fprintf(w, "size:        %s (%d bytes)\n", humanize.Bytes(uint64(st.Size())), st.Size())
	fmt.Fprintf(w, "application: %s\n", hd.Application)
	fmt.Fprintf(w, "schema:      %s %d.%d\n", hd.Schema, hd.SchemaVersion.Major(), hd.SchemaVersion.Minor())
	fmt.Fprintf(w, "frames:      %d\n", tr.NFrames())
	if d := h.Discarded(); d > 0 {
		fmt.Fprintf(w, "unfinished:  %s after the last frame\n", humanize.Bytes(uint64(d)))
	}
	if tr.NFrames() == 0 {
		return nil
	}
	dims, err := tr.Dimensions()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "particles:   %d\n", tr.Len())
	fmt.Fprintf(w, "dimensions:  %d\n", dims)
	for i := uint64(0); i < tr.NFrames(); i++ {
		step, err := tr.Step(i)
		if err != nil {
			return err
		}
		chunks, err := h.Chunks(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "frame %d: step %d, %d chunks\n", i, step, len(chunks))
	}
	if frame < 0 {
		return nil
	}
	chunks, err := h.Chunks(uint64(frame))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "chunks of frame %d:\n", frame)
	for _, c := range chunks {
		fmt.Fprintf(w, "  %-26s %-7s %dx%d\n", c.Name, c.Kind, c.Rows, c.Cols)
	}
	return nil
}
