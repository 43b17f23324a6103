package waveio

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-audio/riff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFormat(t *testing.T, data []byte) (WaveFormat, *FmtChunk, error) {
	t.Helper()

	r := bytes.NewReader(data)

	idx, err := ScanRIFF(r, riff.WavFormatID)
	require.NoError(t, err)

	return ParseWaveFormat(r, idx)
}

func TestParseWaveFormat(t *testing.T) {
	testCases := []struct {
		desc   string
		fmt    testChunk
		data   []byte
		layout Layout
		frames int
		shape  []int
	}{
		{"16 bit mono", fmtChunkOf(1, 8000, 16), pcm16(1, 2, 3, 4), Mono16, 4, []int{4}},
		{"16 bit stereo", fmtChunkOf(2, 8000, 16), pcm16(1, 2, 3, 4), Stereo16, 2, []int{2, 2}},
		{"8 bit mono", fmtChunkOf(1, 8000, 8), []byte{1, 2, 3}, Mono8, 3, []int{3}},
		{"8 bit stereo", fmtChunkOf(2, 8000, 8), []byte{1, 2, 3, 4}, Stereo8, 2, []int{2, 2}},
		{"12 bit mono", fmtChunkOf(1, 8000, 12), pcm16(1, 2), Mono16, 2, []int{2}},
		{"partial trailing frame", fmtChunkOf(2, 8000, 16), append(pcm16(1, 2, 3), 0xAA), Stereo16, 1, []int{1, 2}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.desc, func(t *testing.T) {
			data := riffBytes("WAVE", testCase.fmt, testChunk{id: "data", data: testCase.data})

			wf, fmtChunk, err := parseFormat(t, data)
			require.NoError(t, err)

			assert.Equal(t, testCase.layout, wf.Layout)
			assert.Equal(t, testCase.frames, wf.FrameCount)
			assert.Equal(t, testCase.shape, wf.Shape())
			assert.Equal(t, uint32(len(testCase.data)), wf.DataSize)
			assert.Equal(t, int64(44), wf.DataOffset)
			assert.Equal(t, testCase.layout.BytesPerFrame(), wf.BytesPerFrame)
			assert.Equal(t, uint16(wavFormatPCM), fmtChunk.FormatTag)
			assert.Equal(t, 8000, wf.SampleRate)
		})
	}
}

func TestParseWaveFormatDuration(t *testing.T) {
	wf, _, err := parseFormat(t, monoWAV(4, 1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	assert.InDelta(t, 1.5, wf.Duration, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, wf.DurationTime())

	wf, _, err = parseFormat(t, monoWAV(0, 1, 2))
	require.NoError(t, err)
	assert.Zero(t, wf.Duration)
	assert.Equal(t, 2, wf.FrameCount)
}

func TestParseWaveFormatExtendedFmt(t *testing.T) {
	payload := append(fmtPayload(wavFormatPCM, 1, 22050, 16), 0, 0)
	data := riffBytes("WAVE", testChunk{id: "fmt ", data: payload}, testChunk{id: "data", data: pcm16(5)})

	wf, fmtChunk, err := parseFormat(t, data)
	require.NoError(t, err)

	assert.Equal(t, 22050, wf.SampleRate)
	assert.Equal(t, []byte{0, 0}, fmtChunk.ExtraData)
	assert.Equal(t, uint32(44100), fmtChunk.AvgBytesPerSec)
	assert.Equal(t, uint16(2), fmtChunk.BlockAlign)
}

func TestParseWaveFormatErrors(t *testing.T) {
	data := testChunk{id: "data", data: pcm16(1, 2)}

	testCases := []struct {
		desc   string
		chunks []testChunk
		err    error
	}{
		{"compression code 2", []testChunk{{id: "fmt ", data: fmtPayload(2, 1, 8000, 4)}, data}, ErrUnsupportedFormat},
		{"ieee float", []testChunk{{id: "fmt ", data: fmtPayload(3, 1, 8000, 32)}, data}, ErrUnsupportedFormat},
		{"three channels", []testChunk{fmtChunkOf(3, 8000, 16), data}, ErrUnsupportedFormat},
		{"no channels", []testChunk{fmtChunkOf(0, 8000, 16), data}, ErrUnsupportedFormat},
		{"24 bits", []testChunk{fmtChunkOf(1, 8000, 24), data}, ErrUnsupportedFormat},
		{"4 bits", []testChunk{fmtChunkOf(1, 8000, 4), data}, ErrUnsupportedFormat},
		{"missing data", []testChunk{fmtChunkOf(1, 8000, 16)}, ErrChunkNotFound},
		{"missing fmt", []testChunk{data}, ErrChunkNotFound},
		{"short fmt", []testChunk{{id: "fmt ", data: fmtPayload(wavFormatPCM, 1, 8000, 16)[:14]}, data}, ErrFormat},
	}

	for _, testCase := range testCases {
		t.Run(testCase.desc, func(t *testing.T) {
			_, _, err := parseFormat(t, riffBytes("WAVE", testCase.chunks...))
			require.ErrorIs(t, err, testCase.err)
		})
	}
}

func TestParseWaveFormatWrongForm(t *testing.T) {
	r := bytes.NewReader(riffBytes("AVI ", fmtChunkOf(1, 8000, 16)))

	idx, err := ScanRIFF(r, [4]byte{})
	require.NoError(t, err)

	_, _, err = ParseWaveFormat(r, idx)
	require.ErrorIs(t, err, ErrFormat)

	_, _, err = ParseWaveFormat(r, nil)
	require.Error(t, err)
}

func TestWaveFormatAudioFormat(t *testing.T) {
	wf, _, err := parseFormat(t, riffBytes("WAVE", fmtChunkOf(2, 48000, 16), testChunk{id: "data", data: pcm16(0, 0)}))
	require.NoError(t, err)

	f := wf.AudioFormat()
	assert.Equal(t, 2, f.NumChannels)
	assert.Equal(t, 48000, f.SampleRate)
}
