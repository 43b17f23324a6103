package waveio

// FmtChunk returns a copy of the parsed fmt chunk.
func (r *Reader) FmtChunk() *FmtChunk {
	if r == nil {
		return nil
	}

	return r.fmtChunk.Clone()
}

// Chunks returns a copy of the chunk index, including chunks that are not
// interpreted.
func (r *Reader) Chunks() []ChunkEntry {
	if r == nil || r.index == nil {
		return nil
	}

	return append([]ChunkEntry(nil), r.index.Chunks...)
}

// ChunkData reads the raw payload of the first chunk with the given id.
func (r *Reader) ChunkData(id [4]byte) ([]byte, error) {
	return r.index.ChunkData(r.r, id)
}
