package waveio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// Writer configuration defaults.
const (
	DefaultSampleRate    = 44100
	DefaultNumChannels   = 1
	DefaultBitsPerSample = 16
)

const (
	// RIFF header + fmt chunk + fact chunk + data chunk header.
	writerHeaderSize = riffHeaderSize + chunkHeaderSize + fmtChunkSize + chunkHeaderSize + 4 + chunkHeaderSize
	riffSizePos      = 4
	factChunkPos     = riffHeaderSize + chunkHeaderSize + fmtChunkSize
	factFramesPos    = factChunkPos + chunkHeaderSize
	placeholderSize  = math.MaxUint32
)

var (
	// CIDFact is the chunk ID for the fact chunk.
	CIDFact = [4]byte{'f', 'a', 'c', 't'}

	errDataTooLarge = fmt.Errorf("%w: data exceeds the RIFF size limit", ErrInvalidValue)
	errNilBuffer    = fmt.Errorf("%w: can't write a nil buffer", ErrInvalidValue)
)

// FormatSource is anything that can describe a WAVE format. Both *Reader and
// *Writer implement it.
type FormatSource interface {
	WaveFormat() WaveFormat
}

// WriterConfig configures a Writer. Zero fields are unset: they take the
// value of Reference when one is given and the package defaults otherwise.
type WriterConfig struct {
	SampleRate    int
	NumChannels   int
	BitsPerSample int
	// Reference optionally provides the base format, e.g. the Reader whose
	// content is being copied.
	Reference FormatSource
}

func (c WriterConfig) resolve() (WaveFormat, error) {
	sampleRate, numChans, bitDepth := DefaultSampleRate, DefaultNumChannels, DefaultBitsPerSample
	if c.Reference != nil {
		ref := c.Reference.WaveFormat()
		sampleRate, numChans, bitDepth = ref.SampleRate, ref.NumChannels, ref.BitsPerSample
	}

	if c.SampleRate != 0 {
		sampleRate = c.SampleRate
	}

	if c.NumChannels != 0 {
		numChans = c.NumChannels
	}

	if c.BitsPerSample != 0 {
		bitDepth = c.BitsPerSample
	}

	layout, err := LayoutFor(numChans, bitDepth)
	if err != nil {
		return WaveFormat{}, fmt.Errorf("%w: %d channels, %d bits per sample", ErrInvalidConfig, numChans, bitDepth)
	}

	// The byte rate field is a uint32.
	if sampleRate <= 0 || int64(sampleRate) > math.MaxUint32/int64(layout.BytesPerFrame()) {
		return WaveFormat{}, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	}

	return WaveFormat{
		NumChannels:   numChans,
		SampleRate:    sampleRate,
		BitsPerSample: bitDepth,
		BytesPerFrame: layout.BytesPerFrame(),
		DataOffset:    writerHeaderSize,
		Layout:        layout,
	}, nil
}

// Writer writes PCM frames to a WAVE file in strictly ascending, contiguous
// order. The container lengths are written as placeholders and patched by
// Close, so a Writer must always be closed. WithWriter and WriteFile close it
// on every exit path, including errors returned by the body.
type Writer struct {
	w      io.WriteSeeker
	closer io.Closer

	format WaveFormat
	cursor int
	closed bool
	buf    []byte
}

// NewWriter emits a provisional header to w and returns a Writer positioned
// at frame 0. The destination is not closed by the Writer. Prefer WithWriter
// unless the Writer has to outlive a single function.
func NewWriter(w io.WriteSeeker, cfg WriterConfig) (*Writer, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil destination", ErrInvalidValue)
	}

	wf, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to the start of the destination: %w", err)
	}

	_, err = w.Write(wavHeader(wf))
	if err != nil {
		return nil, fmt.Errorf("failed to write the wav header: %w", err)
	}

	return &Writer{w: w, format: wf}, nil
}

// Create creates the named file and a Writer owning it. Close patches the
// header and closes the file.
func Create(path string, cfg WriterConfig) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	wr, err := NewWriter(file, cfg)
	if err != nil {
		return nil, errors.Join(err, file.Close())
	}

	wr.closer = file

	return wr, nil
}

// WithWriter runs fn with a Writer on w and closes the Writer on every exit
// path. Errors from fn and from Close are both reported.
func WithWriter(w io.WriteSeeker, cfg WriterConfig, fn func(*Writer) error) (err error) {
	wr, err := NewWriter(w, cfg)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, wr.Close())
	}()

	return fn(wr)
}

// WriteFile is WithWriter for a newly created file.
func WriteFile(path string, cfg WriterConfig, fn func(*Writer) error) (err error) {
	wr, err := Create(path, cfg)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, wr.Close())
	}()

	return fn(wr)
}

// SetRange writes the interleaved samples as frames [start, stop). start
// must equal Cursor. Pass End as stop to infer it from the sample count.
// Values outside the 16-bit range are saturated.
//
// samples is a flat interleaved slice ([L0, R0, L1, R1, ...] for stereo), so
// only its length is checked against the channel count: four values written
// to a stereo Writer are two frames. Use WriteBlock or Set to have the
// channel count of the data itself checked.
func (w *Writer) SetRange(start, stop int, samples []int) error {
	stop, err := w.checkRange(start, stop, len(samples))
	if err != nil {
		return err
	}

	return w.writeFrames(start, stop, ClampInts(samples))
}

// Set writes a single frame at index i.
func (w *Writer) Set(i int, s Sample) error {
	if s.NumChannels != w.format.NumChannels {
		return fmt.Errorf("%w: %d channel frame for a %d channel writer", ErrShapeMismatch, s.NumChannels, w.format.NumChannels)
	}

	return w.WriteBlockAt(i, &SampleBlock{NumChannels: s.NumChannels, Data: s.Values[:s.NumChannels]})
}

// Append writes the interleaved samples right after the last written frame.
// The samples are checked as in SetRange.
func (w *Writer) Append(samples []int) error {
	return w.SetRange(w.cursor, End, samples)
}

// WriteBlock appends a block of frames.
func (w *Writer) WriteBlock(b *SampleBlock) error {
	return w.WriteBlockAt(w.cursor, b)
}

// WriteBlockAt writes a block of frames starting at frame start.
func (w *Writer) WriteBlockAt(start int, b *SampleBlock) error {
	if b == nil {
		return errNilBuffer
	}

	if b.NumChannels != w.format.NumChannels {
		return fmt.Errorf("%w: %d channel block for a %d channel writer", ErrShapeMismatch, b.NumChannels, w.format.NumChannels)
	}

	stop, err := w.checkRange(start, End, len(b.Data))
	if err != nil {
		return err
	}

	return w.writeFrames(start, stop, b.Data)
}

// WriteIntBuffer appends a go-audio buffer. Its values are taken as centered
// 16-bit samples and saturated.
func (w *Writer) WriteIntBuffer(buf *audio.IntBuffer) error {
	if buf == nil {
		return errNilBuffer
	}

	if buf.Format != nil && buf.Format.NumChannels != w.format.NumChannels {
		return fmt.Errorf("%w: %d channel buffer for a %d channel writer", ErrShapeMismatch, buf.Format.NumChannels, w.format.NumChannels)
	}

	return w.Append(buf.Data)
}

// Cursor returns the number of frames written so far.
func (w *Writer) Cursor() int { return w.cursor }

// Closed reports whether Close was called.
func (w *Writer) Closed() bool { return w.closed }

// WaveFormat returns the configured format, sized to the frames written so
// far.
func (w *Writer) WaveFormat() WaveFormat {
	wf := w.format
	wf.FrameCount = w.cursor
	wf.DataSize = uint32(w.cursor * wf.BytesPerFrame)
	wf.Duration = float64(w.cursor) / float64(wf.SampleRate)

	return wf
}

// Format returns the audio format being written.
func (w *Writer) Format() *audio.Format {
	if w == nil {
		return nil
	}

	return w.format.AudioFormat()
}

// String implements the Stringer interface.
func (w *Writer) String() string {
	return fmt.Sprintf("%d Hz @ %d bits, %d channel(s), %d frames written",
		w.format.SampleRate, w.format.BitsPerSample, w.format.NumChannels, w.cursor)
}

// Close patches the RIFF, fact and data lengths. Further writes fail with
// ErrWriterClosed; further calls to Close are no-ops. The destination is
// closed only if the Writer was built by Create.
func (w *Writer) Close() error {
	if w == nil || w.closed {
		return nil
	}

	w.closed = true

	err := w.finalize()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
		w.closer = nil
	}

	return err
}

func (w *Writer) checkRange(start, stop, numSamples int) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}

	if start < 0 || stop < 0 {
		return 0, fmt.Errorf("%w: negative bounds [%d, %d)", ErrIndexOutOfRange, start, stop)
	}

	numChans := w.format.NumChannels
	if numSamples%numChans != 0 {
		return 0, fmt.Errorf("%w: %d values for %d channels", ErrShapeMismatch, numSamples, numChans)
	}

	frames := numSamples / numChans

	switch {
	case stop == End:
		stop = start + frames
	case stop < start:
		return 0, fmt.Errorf("%w: stop %d before start %d", ErrIndexOutOfRange, stop, start)
	case stop-start != frames:
		return 0, fmt.Errorf("%w: %d frames for range [%d, %d)", ErrShapeMismatch, frames, start, stop)
	}

	if start != w.cursor {
		return 0, fmt.Errorf("%w: write at %d, expected %d", ErrOutOfSequence, start, w.cursor)
	}

	if int64(stop)*int64(w.format.BytesPerFrame)+1 > math.MaxUint32-w.format.DataOffset+chunkHeaderSize {
		return 0, errDataTooLarge
	}

	return stop, nil
}

func (w *Writer) writeFrames(start, stop int, data []int16) error {
	if stop == start {
		return nil
	}

	n := len(data) * w.format.Layout.SampleBytes()
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
	}

	buf := w.buf[:n]
	w.format.Layout.EncodeBlock(buf, data)

	if _, err := w.w.Seek(w.format.frameOffset(start), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to frame %d: %w", start, err)
	}

	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frames [%d, %d): %w", start, stop, err)
	}

	w.cursor = stop

	return nil
}

func (w *Writer) finalize() error {
	dataSize := uint32(w.cursor * w.format.BytesPerFrame)
	pad := dataSize % 2

	// RIFF data must be word aligned; the pad byte is not part of the data
	// chunk length.
	if pad == 1 {
		if _, err := w.w.Seek(w.format.DataOffset+int64(dataSize), io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to the data pad byte: %w", err)
		}

		if _, err := w.w.Write([]byte{0}); err != nil {
			return fmt.Errorf("failed to write the data pad byte: %w", err)
		}
	}

	if _, err := w.w.Seek(riffSizePos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to file size position: %w", err)
	}

	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(w.format.DataOffset)-chunkHeaderSize+dataSize+pad)

	if _, err := w.w.Write(size[:]); err != nil {
		return fmt.Errorf("%w when writing the total written bytes", err)
	}

	if _, err := w.w.Seek(factFramesPos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to fact chunk position: %w", err)
	}

	var tail [12]byte
	binary.LittleEndian.PutUint32(tail[0:4], uint32(w.cursor))
	copy(tail[4:8], riff.DataFormatID[:])
	binary.LittleEndian.PutUint32(tail[8:12], dataSize)

	if _, err := w.w.Write(tail[:]); err != nil {
		return fmt.Errorf("%w when writing wav data chunk size header", err)
	}

	// jump back to the end of the file.
	if _, err := w.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := w.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}

// wavHeader lays out the provisional header: RIFF, fmt, fact and the data
// chunk header, with every length that depends on the frame count set to a
// placeholder.
func wavHeader(wf WaveFormat) []byte {
	hdr := make([]byte, writerHeaderSize)

	copy(hdr[0:4], riff.RiffID[:])
	binary.LittleEndian.PutUint32(hdr[4:8], placeholderSize)
	copy(hdr[8:12], riff.WavFormatID[:])

	copy(hdr[12:16], riff.FmtID[:])
	binary.LittleEndian.PutUint32(hdr[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(hdr[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(wf.NumChannels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(wf.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(wf.SampleRate*wf.BytesPerFrame))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(wf.BytesPerFrame))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(wf.BitsPerSample))

	copy(hdr[36:40], CIDFact[:])
	binary.LittleEndian.PutUint32(hdr[40:44], 4)
	binary.LittleEndian.PutUint32(hdr[44:48], placeholderSize)

	copy(hdr[48:52], riff.DataFormatID[:])
	binary.LittleEndian.PutUint32(hdr[52:56], placeholderSize)

	return hdr
}
