// Package waveio reads and writes uncompressed PCM audio stored in RIFF/WAVE
// files.
//
// Every supported sample depth (8 to 16 bits, mono or stereo) is exposed as
// signed 16-bit values centered at zero. 8-bit data is scaled by 256 on read
// and quantized back to its top byte on write.
//
// A Reader is a read-only, randomly indexable view of a file:
//
//	r, err := waveio.Open("in.wav")
//	last, err := r.Get(-1)                  // last frame
//	tail, err := r.GetRange(-r.SampleRate(), waveio.End) // last second
//
// A Writer appends frames in strict order and patches the container lengths
// when closed:
//
//	err := waveio.WriteFile("out.wav", waveio.WriterConfig{SampleRate: 8000}, func(w *waveio.Writer) error {
//		return w.Append([]int{100, 200, 300, 400})
//	})
//
// Only the fmt and data chunks are interpreted; other chunks are indexed and
// can be read raw through Reader.ChunkData.
package waveio
