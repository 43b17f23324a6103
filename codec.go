package waveio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Layout identifies one of the supported PCM sample layouts. A layout is
// chosen once per file and binds the matching decode/encode functions.
type Layout uint8

const (
	layoutInvalid Layout = iota
	// Mono8 is 8-bit unsigned, one channel.
	Mono8
	// Stereo8 is 8-bit unsigned, two interleaved channels.
	Stereo8
	// Mono16 is 16-bit little-endian signed, one channel. Bit depths 9..15
	// are stored in the same 2 byte container.
	Mono16
	// Stereo16 is 16-bit little-endian signed, two interleaved channels.
	Stereo16
)

const (
	minBitDepth = 8
	maxBitDepth = 16
	pcm8Center  = 128
	pcm8Scale   = 256
)

// LayoutFor returns the layout for the given channel count and bit depth.
func LayoutFor(numChannels, bitsPerSample int) (Layout, error) {
	if bitsPerSample < minBitDepth || bitsPerSample > maxBitDepth {
		return layoutInvalid, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bitsPerSample)
	}

	wide := bitsPerSample > minBitDepth

	switch {
	case numChannels == 1 && !wide:
		return Mono8, nil
	case numChannels == 2 && !wide:
		return Stereo8, nil
	case numChannels == 1:
		return Mono16, nil
	case numChannels == 2:
		return Stereo16, nil
	default:
		return layoutInvalid, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, numChannels)
	}
}

// NumChannels returns 1 or 2, or 0 for an invalid layout.
func (l Layout) NumChannels() int {
	return l.codec().channels
}

// SampleBytes returns the storage size of a single channel sample.
func (l Layout) SampleBytes() int {
	return l.codec().sampleBytes
}

// BytesPerFrame returns the storage size of one frame across all channels.
func (l Layout) BytesPerFrame() int {
	c := l.codec()

	return c.channels * c.sampleBytes
}

// String implements the Stringer interface.
func (l Layout) String() string {
	switch l {
	case Mono8:
		return "8-bit mono"
	case Stereo8:
		return "8-bit stereo"
	case Mono16:
		return "16-bit mono"
	case Stereo16:
		return "16-bit stereo"
	default:
		return "invalid layout"
	}
}

// DecodeFrame decodes exactly one frame. len(b) must be BytesPerFrame.
func (l Layout) DecodeFrame(b []byte) Sample {
	return l.codec().decodeFrame(b)
}

// DecodeBlock decodes the whole frames contained in src into dst, which
// must hold at least len(src)/SampleBytes values. It returns the number of
// values written.
func (l Layout) DecodeBlock(dst []int16, src []byte) int {
	c := l.codec()
	n := len(src) / c.sampleBytes
	n -= n % max(c.channels, 1)
	c.decodeBlock(dst[:n], src[:n*c.sampleBytes])

	return n
}

// EncodeBlock encodes src into dst, which must hold at least
// len(src)*SampleBytes bytes. It returns the number of bytes written.
func (l Layout) EncodeBlock(dst []byte, src []int16) int {
	c := l.codec()
	n := len(src) * c.sampleBytes
	c.encodeBlock(dst[:n], src)

	return n
}

type codec struct {
	channels    int
	sampleBytes int
	decodeFrame func([]byte) Sample
	decodeBlock func(dst []int16, src []byte)
	encodeBlock func(dst []byte, src []int16)
}

var codecs = [...]codec{
	layoutInvalid: {
		decodeFrame: func([]byte) Sample { return Sample{} },
		decodeBlock: func([]int16, []byte) {},
		encodeBlock: func([]byte, []int16) {},
		sampleBytes: 1,
	},
	Mono8: {
		channels:    1,
		sampleBytes: 1,
		decodeFrame: func(b []byte) Sample {
			return Sample{NumChannels: 1, Values: [2]int16{Decode8(b[0])}}
		},
		decodeBlock: decodeBlock8,
		encodeBlock: encodeBlock8,
	},
	Stereo8: {
		channels:    2,
		sampleBytes: 1,
		decodeFrame: func(b []byte) Sample {
			return Sample{NumChannels: 2, Values: [2]int16{Decode8(b[0]), Decode8(b[1])}}
		},
		decodeBlock: decodeBlock8,
		encodeBlock: encodeBlock8,
	},
	Mono16: {
		channels:    1,
		sampleBytes: 2,
		decodeFrame: func(b []byte) Sample {
			return Sample{NumChannels: 1, Values: [2]int16{Decode16(b[0:2])}}
		},
		decodeBlock: decodeBlock16,
		encodeBlock: encodeBlock16,
	},
	Stereo16: {
		channels:    2,
		sampleBytes: 2,
		decodeFrame: func(b []byte) Sample {
			return Sample{NumChannels: 2, Values: [2]int16{Decode16(b[0:2]), Decode16(b[2:4])}}
		},
		decodeBlock: decodeBlock16,
		encodeBlock: encodeBlock16,
	},
}

func (l Layout) codec() *codec {
	if int(l) >= len(codecs) {
		return &codecs[layoutInvalid]
	}

	return &codecs[l]
}

// Decode8 maps an unsigned 8-bit sample onto the centered 16-bit range.
func Decode8(b byte) int16 {
	return int16((int(b) - pcm8Center) * pcm8Scale)
}

// Decode16 reads a little-endian signed 16-bit sample. The wire order is
// fixed, so the result does not depend on the host byte order.
func Decode16(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}

// Encode8 keeps the top byte of the re-biased centered value, truncated to 8
// bits. Values in the topmost quantization step (32640 and up) wrap to 0.
func Encode8(v int16) byte {
	return byte((int(v)+pcm8Center)>>8 + pcm8Center)
}

// Encode16 writes v as little-endian signed 16-bit into b[0:2].
func Encode16(b []byte, v int16) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}

// Clamp16 saturates v into the signed 16-bit range.
func Clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}

	if v < math.MinInt16 {
		return math.MinInt16
	}

	return int16(v)
}

// ClampInts saturates every value of src into the signed 16-bit range.
func ClampInts(src []int) []int16 {
	out := make([]int16, len(src))
	for i, v := range src {
		out[i] = Clamp16(v)
	}

	return out
}

func decodeBlock8(dst []int16, src []byte) {
	for i, b := range src {
		dst[i] = Decode8(b)
	}
}

func decodeBlock16(dst []int16, src []byte) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[2*i:]))
	}
}

func encodeBlock8(dst []byte, src []int16) {
	for i, v := range src {
		dst[i] = Encode8(v)
	}
}

func encodeBlock16(dst []byte, src []int16) {
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
	}
}
