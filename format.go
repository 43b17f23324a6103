package waveio

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// WaveFormat describes the PCM layout and the location of the sample data of
// a WAVE file. It is derived once when a file is opened.
type WaveFormat struct {
	NumChannels   int
	SampleRate    int
	BitsPerSample int
	BytesPerFrame int
	// DataOffset is the absolute position of the first frame.
	DataOffset int64
	// DataSize is the data chunk length as declared by the container.
	DataSize uint32
	// FrameCount is DataSize/BytesPerFrame; a trailing partial frame is
	// ignored.
	FrameCount int
	// Duration is in seconds.
	Duration float64
	Layout   Layout
}

// ParseWaveFormat validates the fmt chunk of a WAVE index and locates its
// data chunk.
func ParseWaveFormat(r io.ReadSeeker, idx *RiffIndex) (WaveFormat, *FmtChunk, error) {
	if idx == nil {
		return WaveFormat{}, nil, errNilSource
	}

	if idx.FormType != riff.WavFormatID {
		return WaveFormat{}, nil, fmt.Errorf("%w: expecting RIFF type %q, got %q", ErrFormat, riff.WavFormatID[:], idx.FormType[:])
	}

	fmtEntry, err := idx.Find(riff.FmtID)
	if err != nil {
		return WaveFormat{}, nil, err
	}

	chunk, err := openChunk(r, fmtEntry)
	if err != nil {
		return WaveFormat{}, nil, err
	}

	fmtChunk, err := decodeFmtChunk(chunk)
	if err != nil {
		return WaveFormat{}, nil, fmt.Errorf("failed to decode fmt chunk: %w", err)
	}

	if fmtChunk.FormatTag != wavFormatPCM {
		return WaveFormat{}, nil, fmt.Errorf("%w: compression code %d", ErrUnsupportedFormat, fmtChunk.FormatTag)
	}

	layout, err := LayoutFor(int(fmtChunk.NumChannels), int(fmtChunk.BitsPerSample))
	if err != nil {
		return WaveFormat{}, nil, err
	}

	dataEntry, err := idx.Find(riff.DataFormatID)
	if err != nil {
		return WaveFormat{}, nil, err
	}

	wf := WaveFormat{
		NumChannels:   layout.NumChannels(),
		SampleRate:    int(fmtChunk.SampleRate),
		BitsPerSample: int(fmtChunk.BitsPerSample),
		BytesPerFrame: layout.BytesPerFrame(),
		DataOffset:    dataEntry.Offset,
		DataSize:      dataEntry.Size,
		Layout:        layout,
	}
	wf.FrameCount = int(dataEntry.Size) / wf.BytesPerFrame

	if wf.SampleRate > 0 {
		wf.Duration = float64(wf.FrameCount) / float64(wf.SampleRate)
	}

	return wf, fmtChunk, nil
}

// Shape is [frames] for mono files and [frames, 2] for stereo files.
func (f WaveFormat) Shape() []int {
	if f.NumChannels == 2 {
		return []int{f.FrameCount, 2}
	}

	return []int{f.FrameCount}
}

// AudioFormat returns the go-audio description of the format.
func (f WaveFormat) AudioFormat() *audio.Format {
	return &audio.Format{NumChannels: f.NumChannels, SampleRate: f.SampleRate}
}

// DurationTime returns Duration as a time.Duration.
func (f WaveFormat) DurationTime() time.Duration {
	return time.Duration(f.Duration * float64(time.Second))
}

func (f WaveFormat) frameOffset(frame int) int64 {
	return f.DataOffset + int64(frame)*int64(f.BytesPerFrame)
}
