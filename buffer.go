package waveio

import (
	"errors"
	"io"
)

var errNegativePosition = errors.New("seek before start")

// Buffer is an in-memory byte stream that can back both a Reader and a
// Writer. Writes past the end grow the buffer; writes inside it overwrite.
// The zero value is an empty buffer ready to use.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns a Buffer reading from data. The buffer takes ownership
// of the slice.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the buffer content. The slice aliases the buffer until the
// next write.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the size of the content.
func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.data))))
			copy(grown, b.data)
			b.data = grown
		} else {
			old := len(b.data)
			b.data = b.data[:end]

			if b.pos > int64(old) {
				clear(b.data[old:b.pos])
			}
		}
	}

	n := copy(b.data[b.pos:end], p)
	b.pos = end

	return n, nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)

	return n, nil
}

// ReadAt implements io.ReaderAt. It doesn't move the stream position.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativePosition
	}

	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if pos < 0 {
		return 0, errNegativePosition
	}

	b.pos = pos

	return pos, nil
}
