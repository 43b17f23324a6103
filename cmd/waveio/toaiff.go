package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/waveio"
	"github.com/go-audio/aiff"
	"github.com/spf13/cobra"
)

// aiffBitDepth is the depth of every converted file: the samples are
// already normalized to 16 bits.
const aiffBitDepth = 16

func newToAIFFCmd(state *cliState) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "toaiff <in>",
		Short: "Convert a WAVE file into a 16-bit AIFF file",
		Long:  "Convert a WAVE file into a 16-bit AIFF file stored next to the source unless --output is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			outPath := output
			if outPath == "" {
				outPath = aiffPath(args[0])
			}

			n, err := convertToAIFF(args[0], outPath)
			if err != nil {
				return err
			}

			state.logger.Info("converted", "in", args[0], "out", outPath, "frames", n)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path (default: source path with .aif extension)")

	return cmd
}

func aiffPath(sourcePath string) string {
	return sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"
}

func convertToAIFF(inPath, outPath string) (n int, err error) {
	rd, err := waveio.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer rd.Close()

	outFile, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	defer func() {
		err = errors.Join(err, outFile.Close())
	}()

	encoder := aiff.NewEncoder(outFile, rd.SampleRate(), aiffBitDepth, rd.NumChannels())

	for pos := 0; pos < rd.Len(); pos += copyBlockFrames {
		block, err := rd.GetRange(pos, pos+copyBlockFrames)
		if err != nil {
			return n, err
		}

		if err := encoder.Write(block.IntBuffer(rd.SampleRate())); err != nil {
			return n, fmt.Errorf("failed to encode frames at %d: %w", pos, err)
		}

		n += block.NumFrames()
	}

	if err := encoder.Close(); err != nil {
		return n, fmt.Errorf("failed to finalize %s: %w", outPath, err)
	}

	return n, nil
}
