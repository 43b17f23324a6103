package main

import (
	"fmt"

	"github.com/cwbudde/waveio"
	"github.com/spf13/cobra"
)

func newInfoCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the format and chunk layout of a WAVE file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := waveio.Open(args[0])
			if err != nil {
				return err
			}
			defer rd.Close()

			state.logger.Debug("opened file", "path", args[0], "frames", rd.Len())

			out := cmd.OutOrStdout()
			wf := rd.WaveFormat()

			fmt.Fprintf(out, "Channels: %d\n", wf.NumChannels)
			fmt.Fprintf(out, "SampleRate: %d\n", wf.SampleRate)
			fmt.Fprintf(out, "BitsPerSample: %d\n", wf.BitsPerSample)
			fmt.Fprintf(out, "Frames: %d\n", wf.FrameCount)
			fmt.Fprintf(out, "Duration: %s\n", wf.DurationTime())
			fmt.Fprintln(out, "Chunks:")

			for i, c := range rd.Chunks() {
				fmt.Fprintf(out, "\t[%d]\t%s\n", i, c)
			}

			return nil
		},
	}
}
