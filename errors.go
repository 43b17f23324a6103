package waveio

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat indicates a byte stream that is not a well-formed RIFF
	// container, or whose chunk framing is inconsistent.
	ErrFormat = errors.New("malformed RIFF container")
	// ErrUnsupportedFormat indicates a valid container whose content can't be
	// handled: a non-PCM compression code, a channel count other than 1 or 2,
	// a bit depth outside 8..16 or a slice step other than 1.
	ErrUnsupportedFormat = errors.New("unsupported wav format")
	// ErrChunkNotFound is returned when a required chunk is absent.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrIndexOutOfRange is returned for frame indices outside the file, or
	// negative indices passed to a Writer.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidValue is the parent of all argument and state errors raised by
	// a Writer.
	ErrInvalidValue = errors.New("invalid value")

	// ErrOutOfSequence is returned when a write does not start where the
	// previous one ended.
	ErrOutOfSequence = fmt.Errorf("%w: writes must be in sequence", ErrInvalidValue)
	// ErrShapeMismatch is returned when the supplied samples don't match the
	// requested range or the writer's channel count.
	ErrShapeMismatch = fmt.Errorf("%w: sample shape mismatch", ErrInvalidValue)
	// ErrWriterClosed is returned by writes issued after Close.
	ErrWriterClosed = fmt.Errorf("%w: writer is closed", ErrInvalidValue)
	// ErrInvalidConfig is returned for writer configurations with bad channel
	// counts, bit depths or sample rates, or with unknown keys.
	ErrInvalidConfig = fmt.Errorf("%w: bad writer configuration", ErrInvalidValue)

	errBadChunkLength = fmt.Errorf("%w: bad chunk length", ErrFormat)
	errStrideNotOne   = fmt.Errorf("%w: stride must be 1", ErrUnsupportedFormat)
)
