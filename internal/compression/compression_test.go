package compression

import (
	"bytes"
	"io"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Snappy", Snappy, false},
		{" snappy ", Snappy, false},
		{"zstd", None, true},
	}

	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStreamRoundTrip(t *testing.T) {
	// 1MB of repeating data (highly compressible)
	original := make([]byte, 1024*1024)
	for i := range original {
		original[i] = byte(i % 251)
	}

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := NewWriter(&buf, algo)
			if err != nil {
				t.Fatalf("NewWriter failed: %v", err)
			}
			if _, err := w.Write(original); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			if algo == Snappy && buf.Len() >= len(original) {
				t.Errorf("Expected compressed size < %d, got %d", len(original), buf.Len())
			}

			r, err := NewReader(&buf, algo)
			if err != nil {
				t.Fatalf("NewReader failed: %v", err)
			}
			decompressed, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if !bytes.Equal(original, decompressed) {
				t.Error("Decompressed data does not match original")
			}
		})
	}
}

func TestSnappyReader_Corrupt(t *testing.T) {
	r, _ := NewReader(bytes.NewReader([]byte("definitely not snappy")), Snappy)
	if _, err := io.ReadAll(r); err == nil {
		t.Error("Expected error reading corrupt snappy stream")
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if _, err := NewWriter(io.Discard, Algorithm(9)); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
	if _, err := NewReader(bytes.NewReader(nil), Algorithm(9)); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
}
