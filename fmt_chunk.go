package waveio

import (
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

const (
	wavFormatPCM = 1
	fmtChunkSize = 16
)

// FmtChunk stores the parsed WAV fmt chunk.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	// ExtraData holds whatever follows the first 16 bytes, including the
	// extension size field. It is kept as is and never interpreted.
	ExtraData []byte
}

func (f *FmtChunk) Clone() *FmtChunk {
	if f == nil {
		return nil
	}

	out := *f
	out.ExtraData = append([]byte(nil), f.ExtraData...)

	return &out
}

func decodeFmtChunk(chunk *riff.Chunk) (*FmtChunk, error) {
	if chunk == nil {
		return nil, errNilSource
	}

	if chunk.Size < fmtChunkSize {
		return nil, fmt.Errorf("%w: fmt chunk is %d bytes, want at least %d", ErrFormat, chunk.Size, fmtChunkSize)
	}

	fmtChunk := &FmtChunk{}

	err := chunk.ReadLE(&fmtChunk.FormatTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav format: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.NumChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample rate: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.AvgBytesPerSec)
	if err != nil {
		return nil, fmt.Errorf("failed to read avg bytes/sec: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BlockAlign)
	if err != nil {
		return nil, fmt.Errorf("failed to read block align: %w", err)
	}

	err = chunk.ReadLE(&fmtChunk.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to read bit depth: %w", err)
	}

	if chunk.Size == fmtChunkSize {
		return fmtChunk, nil
	}

	extra, err := io.ReadAll(io.LimitReader(chunk.R, int64(chunk.Size-fmtChunkSize)))
	if err != nil {
		return nil, fmt.Errorf("failed to read fmt extension: %w", err)
	}

	fmtChunk.ExtraData = extra

	return fmtChunk, nil
}
