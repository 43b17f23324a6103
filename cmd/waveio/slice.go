package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/waveio"
	"github.com/spf13/cobra"
)

// copyBlockFrames bounds the memory used while copying.
const copyBlockFrames = 65536

var errChannelChange = errors.New("changing the channel count is not supported")

func newSliceCmd(state *cliState) *cobra.Command {
	var (
		start, stop int
		from, to    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "slice <in> <out>",
		Short: "Copy a range of frames into a new WAVE file",
		Long: "Copy frames [start, stop) of <in> into <out>. Negative bounds count from the end.\n" +
			"The output keeps the input format unless --writer-* flags override it.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := waveio.Open(args[0])
			if err != nil {
				return err
			}
			defer rd.Close()

			if cmd.Flags().Changed("from") {
				start = waveio.FramesFromDuration(from, rd.SampleRate())
			}

			if cmd.Flags().Changed("to") {
				stop = waveio.FramesFromDuration(to, rd.SampleRate())
			} else if !cmd.Flags().Changed("stop") {
				stop = waveio.End
			}

			cfg := state.cfg.Writer.WriterConfig(rd)
			if cfg.NumChannels != 0 && cfg.NumChannels != rd.NumChannels() {
				return fmt.Errorf("%w: %d -> %d", errChannelChange, rd.NumChannels(), cfg.NumChannels)
			}

			n, err := copyFrames(rd, args[1], cfg, start, stop)
			if err != nil {
				return err
			}

			state.logger.Info("sliced", "in", args[0], "out", args[1], "frames", n)

			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "First frame to copy")
	cmd.Flags().IntVar(&stop, "stop", 0, "Frame to stop before (default: end of file)")
	cmd.Flags().DurationVar(&from, "from", 0, "Start time, overrides --start")
	cmd.Flags().DurationVar(&to, "to", 0, "Stop time, overrides --stop")

	return cmd
}

// copyFrames writes the normalized range [start, stop) of rd to path and
// returns the number of frames copied.
func copyFrames(rd *waveio.Reader, path string, cfg waveio.WriterConfig, start, stop int) (int, error) {
	first := normalizeBound(start, rd.Len())
	frames := max(0, normalizeBound(stop, rd.Len())-first)

	err := waveio.WriteFile(path, cfg, func(w *waveio.Writer) error {
		for pos := first; pos < first+frames; pos += copyBlockFrames {
			block, err := rd.GetRange(pos, min(pos+copyBlockFrames, first+frames))
			if err != nil {
				return err
			}

			if err := w.WriteBlock(block); err != nil {
				return err
			}
		}

		return nil
	})

	return frames, err
}

func normalizeBound(i, n int) int {
	if i < 0 {
		return max(i+n, 0)
	}

	return min(i, n)
}
