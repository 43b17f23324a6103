package waveio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
)

var errNilSource = errors.New("nil byte source")

// ChunkEntry locates the payload of a single chunk inside a RIFF container.
type ChunkEntry struct {
	ID [4]byte
	// Offset is the absolute position of the payload, right past the 8 byte
	// chunk header.
	Offset int64
	// Size is the declared payload length. It never includes the pad byte.
	Size uint32
}

// String implements the Stringer interface.
func (c ChunkEntry) String() string {
	return fmt.Sprintf("%q at %d (%d bytes)", c.ID[:], c.Offset, c.Size)
}

// End returns the offset of the next chunk header.
func (c ChunkEntry) End() int64 {
	return c.Offset + paddedSize(c.Size)
}

// RiffIndex is the ordered list of chunks found in a RIFF container.
type RiffIndex struct {
	FormType [4]byte
	// Size is the container length declared in the RIFF header.
	Size   uint32
	Chunks []ChunkEntry
}

// ScanRIFF reads the RIFF header of r and indexes every chunk header that
// fits in the declared container length. Chunk payloads are skipped, not read.
// A zero form accepts any form type.
func ScanRIFF(r io.ReadSeeker, form [4]byte) (*RiffIndex, error) {
	if r == nil {
		return nil, errNilSource
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to the RIFF header: %w", err)
	}

	parser := riff.New(r)

	id, size, err := parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read RIFF header: %w", ErrFormat, err)
	}

	if id != riff.RiffID {
		return nil, fmt.Errorf("%w: %q - %w", ErrFormat, id[:], riff.ErrFmtNotSupported)
	}

	parser.ID = id
	parser.Size = size

	err = binary.Read(r, binary.BigEndian, &parser.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read form type: %w", ErrFormat, err)
	}

	if form != ([4]byte{}) && parser.Format != form {
		return nil, fmt.Errorf("%w: expecting RIFF type %q, got %q", ErrFormat, form[:], parser.Format[:])
	}

	idx := &RiffIndex{FormType: parser.Format, Size: size}

	// The container ends at size+8; a chunk header still fits while next is
	// at most size.
	pos, next := int64(riffHeaderSize), int64(riffHeaderSize)
	for next <= int64(size) {
		if next != pos {
			if next < pos {
				return nil, fmt.Errorf("%w at offset %d", errBadChunkLength, pos)
			}

			if _, err := r.Seek(next, io.SeekStart); err != nil {
				return nil, fmt.Errorf("failed to seek to chunk at %d: %w", next, err)
			}

			pos = next
		}

		chunkID, chunkSize, err := parser.IDnSize()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read chunk header at %d: %w", ErrFormat, pos, err)
		}

		pos += chunkHeaderSize
		next = pos + paddedSize(chunkSize)

		idx.Chunks = append(idx.Chunks, ChunkEntry{ID: chunkID, Offset: pos, Size: chunkSize})
	}

	return idx, nil
}

// Find returns the first chunk with the given id, in container order.
func (x *RiffIndex) Find(id [4]byte) (ChunkEntry, error) {
	if x != nil {
		for _, c := range x.Chunks {
			if c.ID == id {
				return c, nil
			}
		}
	}

	return ChunkEntry{}, fmt.Errorf("%w: %q", ErrChunkNotFound, id[:])
}

// ChunkData reads the whole payload of the first chunk with the given id.
func (x *RiffIndex) ChunkData(r io.ReadSeeker, id [4]byte) ([]byte, error) {
	c, err := x.Find(id)
	if err != nil {
		return nil, err
	}

	data := make([]byte, c.Size)

	err = readFullAt(r, c.Offset, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk %q: %w", id[:], err)
	}

	return data, nil
}

// openChunk exposes a chunk payload through the riff.Chunk reading helpers.
func openChunk(r io.ReadSeeker, c ChunkEntry) (*riff.Chunk, error) {
	if ra, ok := r.(io.ReaderAt); ok {
		return &riff.Chunk{ID: c.ID, Size: int(c.Size), R: io.NewSectionReader(ra, c.Offset, int64(c.Size))}, nil
	}

	if _, err := r.Seek(c.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to chunk %q: %w", c.ID[:], err)
	}

	return &riff.Chunk{ID: c.ID, Size: int(c.Size), R: io.LimitReader(r, int64(c.Size))}, nil
}

// readFullAt fills p from the absolute offset off. Sources implementing
// io.ReaderAt are read without moving any shared cursor.
func readFullAt(r io.ReadSeeker, off int64, p []byte) error {
	if r == nil {
		return errNilSource
	}

	if ra, ok := r.(io.ReaderAt); ok {
		n, err := ra.ReadAt(p, off)
		if n == len(p) {
			return nil
		}

		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return err
	}

	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	_, err := io.ReadFull(r, p)

	return err
}

// paddedSize rounds a chunk length up to the RIFF word boundary.
func paddedSize(size uint32) int64 {
	return (int64(size) + 1) &^ 1
}
