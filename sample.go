package waveio

import (
	"fmt"

	"github.com/go-audio/audio"
)

const scalePCM16 = 32768.0

// Sample is one frame of centered 16-bit audio. Only the first NumChannels
// values are meaningful.
type Sample struct {
	Values      [2]int16
	NumChannels int
}

// Mono returns a mono sample holding v.
func Mono(v int16) Sample {
	return Sample{NumChannels: 1, Values: [2]int16{v}}
}

// Stereo returns a stereo sample holding the left and right values.
func Stereo(left, right int16) Sample {
	return Sample{NumChannels: 2, Values: [2]int16{left, right}}
}

// Value returns the value of the given channel.
func (s Sample) Value(channel int) int16 {
	return s.Values[channel]
}

// Slice returns the meaningful values of the frame.
func (s Sample) Slice() []int16 {
	return append([]int16(nil), s.Values[:s.NumChannels]...)
}

// String implements the Stringer interface.
func (s Sample) String() string {
	if s.NumChannels == 2 {
		return fmt.Sprintf("(%d, %d)", s.Values[0], s.Values[1])
	}

	return fmt.Sprint(s.Values[0])
}

// SampleBlock is a dense run of frames. Stereo data is interleaved as
// [L0, R0, L1, R1, ...].
type SampleBlock struct {
	NumChannels int
	Data        []int16
}

// NewSampleBlock wraps interleaved data without copying it.
func NewSampleBlock(numChannels int, data []int16) *SampleBlock {
	return &SampleBlock{NumChannels: numChannels, Data: data}
}

// NumFrames returns the number of whole frames in the block.
func (b *SampleBlock) NumFrames() int {
	if b == nil || b.NumChannels == 0 {
		return 0
	}

	return len(b.Data) / b.NumChannels
}

// Frame returns the i-th frame of the block.
func (b *SampleBlock) Frame(i int) Sample {
	s := Sample{NumChannels: b.NumChannels}
	copy(s.Values[:b.NumChannels], b.Data[i*b.NumChannels:])

	return s
}

// Channel returns a copy of a single channel's values.
func (b *SampleBlock) Channel(channel int) []int16 {
	n := b.NumFrames()

	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = b.Data[i*b.NumChannels+channel]
	}

	return out
}

// IntBuffer converts the block to a go-audio integer buffer.
func (b *SampleBlock) IntBuffer(sampleRate int) *audio.IntBuffer {
	data := make([]int, len(b.Data))
	for i, v := range b.Data {
		data[i] = int(v)
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: b.NumChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// Float32Buffer converts the block to a go-audio float buffer normalized to
// [-1, 1).
func (b *SampleBlock) Float32Buffer(sampleRate int) *audio.Float32Buffer {
	data := make([]float32, len(b.Data))
	for i, v := range b.Data {
		data[i] = float32(float64(v) / scalePCM16)
	}

	return &audio.Float32Buffer{
		Format:         &audio.Format{NumChannels: b.NumChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}
