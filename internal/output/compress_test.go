package output

import (
	"bytes"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog, "), 1000)

	compressed, err := compress(data)
	if err != nil {
		t.Fatalf("compress() error = %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}

	decompressed, err := decompress(compressed)
	if err != nil {
		t.Fatalf("decompress() error = %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("round trip did not reproduce the original bytes")
	}
}

func TestCompressEmptyInput(t *testing.T) {
	compressed, err := compress(nil)
	if err != nil {
		t.Fatalf("compress() error = %v", err)
	}
	decompressed, err := decompress(compressed)
	if err != nil {
		t.Fatalf("decompress() error = %v", err)
	}
	if len(decompressed) != 0 {
		t.Errorf("expected empty round trip, got %d bytes", len(decompressed))
	}
}
