package waveio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// riffBytes assembles a RIFF container. Odd payloads get a zero pad byte
// and the declared length is derived from the assembled size.
func riffBytes(form string, chunks ...testChunk) []byte {
	out := make([]byte, 12, 64)
	copy(out[0:4], "RIFF")
	copy(out[8:12], form)

	for _, c := range chunks {
		var hdr [8]byte
		copy(hdr[0:4], c.id)

		size := c.size
		if size == 0 {
			size = uint32(len(c.data))
		}

		binary.LittleEndian.PutUint32(hdr[4:8], size)
		out = append(out, hdr[:]...)
		out = append(out, c.data...)

		if len(c.data)%2 == 1 {
			out = append(out, 0)
		}
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	return out
}

func fmtPayload(tag, channels uint16, rate uint32, bits uint16) []byte {
	align := channels * ((bits + 7) / 8)

	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], tag)
	binary.LittleEndian.PutUint16(b[2:4], channels)
	binary.LittleEndian.PutUint32(b[4:8], rate)
	binary.LittleEndian.PutUint32(b[8:12], rate*uint32(align))
	binary.LittleEndian.PutUint16(b[12:14], align)
	binary.LittleEndian.PutUint16(b[14:16], bits)

	return b
}

func fmtChunkOf(channels uint16, rate uint32, bits uint16) testChunk {
	return testChunk{id: "fmt ", data: fmtPayload(wavFormatPCM, channels, rate, bits)}
}

func pcm16(values ...int16) []byte {
	b := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}

	return b
}

// monoWAV builds a 16-bit mono file holding values.
func monoWAV(rate uint32, values ...int16) []byte {
	return riffBytes("WAVE", fmtChunkOf(1, rate, 16), testChunk{id: "data", data: pcm16(values...)})
}

func newTestReader(t *testing.T, data []byte) *Reader {
	t.Helper()

	rd, err := NewReader(NewBuffer(data))
	require.NoError(t, err)

	return rd
}

func parseChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		chunks = append(chunks, testChunk{id: id, size: size, data: append([]byte(nil), data[offset:end]...)})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func parseChunksFromFile(t *testing.T, path string) []testChunk {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, err := parseChunks(data)
	require.NoError(t, err)

	return chunks
}

func chunkIDs(chunks []testChunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.id
	}

	return ids
}
