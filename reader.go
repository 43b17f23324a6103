package waveio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// End stands for an open stop bound in GetRange and SetRange.
const End = math.MaxInt

// Reader gives random access to the frames of a PCM WAVE file. It holds no
// read cursor: every call computes its own absolute offset. Calls may be
// issued concurrently when the source implements io.ReaderAt (as *os.File
// and *bytes.Reader do); otherwise the caller must serialize them.
type Reader struct {
	r      io.ReadSeeker
	closer io.Closer

	format   WaveFormat
	fmtChunk *FmtChunk
	index    *RiffIndex
}

// NewReader scans the container headers of r. The source is not rewound
// after scanning and is not closed by the Reader.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	idx, err := ScanRIFF(r, riff.WavFormatID)
	if err != nil {
		return nil, err
	}

	wf, fmtChunk, err := ParseWaveFormat(r, idx)
	if err != nil {
		return nil, err
	}

	return &Reader{
		r:        r,
		format:   wf,
		fmtChunk: fmtChunk,
		index:    idx,
	}, nil
}

// Open opens the named file for reading. The returned Reader owns the file
// and closes it in Close.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rd, err := NewReader(file)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to read %s: %w", path, err), file.Close())
	}

	rd.closer = file

	return rd, nil
}

// Close releases the file opened by Open. It is a no-op for readers built
// with NewReader.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}

	c := r.closer
	r.closer = nil

	return c.Close()
}

// NumChannels returns 1 or 2.
func (r *Reader) NumChannels() int { return r.format.NumChannels }

// SampleRate returns the number of frames per second.
func (r *Reader) SampleRate() int { return r.format.SampleRate }

// BitsPerSample returns the bit depth declared in the fmt chunk.
func (r *Reader) BitsPerSample() int { return r.format.BitsPerSample }

// Len returns the number of frames.
func (r *Reader) Len() int { return r.format.FrameCount }

// Duration returns the length of the file in seconds.
func (r *Reader) Duration() float64 { return r.format.Duration }

// Shape returns [frames] for mono and [frames, 2] for stereo.
func (r *Reader) Shape() []int { return r.format.Shape() }

// WaveFormat returns the parsed format record.
func (r *Reader) WaveFormat() WaveFormat { return r.format }

// Format returns the audio format of the decoded content.
func (r *Reader) Format() *audio.Format {
	if r == nil {
		return nil
	}

	return r.format.AudioFormat()
}

// Get returns frame i. Negative indices count from the end.
func (r *Reader) Get(i int) (Sample, error) {
	n := r.format.FrameCount
	if i < 0 {
		i += n
	}

	if i < 0 || i >= n {
		return Sample{}, fmt.Errorf("%w: frame %d of %d", ErrIndexOutOfRange, i, n)
	}

	buf := make([]byte, r.format.BytesPerFrame)

	err := readFullAt(r.r, r.format.frameOffset(i), buf)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to read frame %d: %w", i, err)
	}

	return r.format.Layout.DecodeFrame(buf), nil
}

// GetRange returns frames [start, stop). Bounds follow slice semantics:
// negative values count from the end, and both bounds are clamped into the
// file, so an inverted range yields an empty block. Pass End for an open
// stop.
func (r *Reader) GetRange(start, stop int) (*SampleBlock, error) {
	return r.GetRangeStep(start, stop, 1)
}

// GetRangeStep is GetRange with an explicit step. Only a step of 1 is
// supported.
func (r *Reader) GetRangeStep(start, stop, step int) (*SampleBlock, error) {
	if step != 1 {
		return nil, fmt.Errorf("%w: got %d", errStrideNotOne, step)
	}

	n := r.format.FrameCount
	start = clampBound(start, n)
	stop = clampBound(stop, n)

	frames := max(0, stop-start)
	block := &SampleBlock{NumChannels: r.format.NumChannels, Data: make([]int16, frames*r.format.NumChannels)}

	if frames == 0 {
		return block, nil
	}

	buf := make([]byte, frames*r.format.BytesPerFrame)

	err := readFullAt(r.r, r.format.frameOffset(start), buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames [%d, %d): %w", start, stop, err)
	}

	r.format.Layout.DecodeBlock(block.Data, buf)

	return block, nil
}

// ReadAll decodes every frame of the file.
func (r *Reader) ReadAll() (*SampleBlock, error) {
	return r.GetRange(0, End)
}

// String implements the Stringer interface.
func (r *Reader) String() string {
	return fmt.Sprintf("%d Hz @ %d bits, %d channel(s), %d frames, duration: %s",
		r.format.SampleRate, r.format.BitsPerSample, r.format.NumChannels, r.format.FrameCount, r.format.DurationTime())
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}

		return i
	}

	return min(i, n)
}
