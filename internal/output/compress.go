package output

import (
	"bytes"
	"compress/zlib"
	"fmt"
)

// compressBlockSize is the chunk size the streaming zlib writer flushes
// at, matching the reference tool's 8192-byte block writer.
const compressBlockSize = 8192

// compress zlib-compresses data as a single complete stream, writing it
// in compressBlockSize chunks and flushing between them the way a
// streaming compressor would, then finishing the stream (zlib's Close
// is the Go equivalent of a Z_FINISH flush).
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	for off := 0; off < len(data); off += compressBlockSize {
		end := off + compressBlockSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return nil, fmt.Errorf("compressing block at %d: %w", off, err)
		}
		if end < len(data) {
			if err := w.Flush(); err != nil {
				return nil, fmt.Errorf("flushing compressed block: %w", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing zlib stream: %w", err)
	}
	return buf.Bytes(), nil
}

// decompress reverses compress, used by the round-trip test.
func decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening zlib stream: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("reading zlib stream: %w", err)
	}
	return buf.Bytes(), nil
}
