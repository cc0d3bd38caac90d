package audio

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"io"
	"testing"
)

func TestParseFpcalcOutput(t *testing.T) {
	output := "FILE=/music/a.flac\nDURATION=565\nFINGERPRINT=1,2,3,4294967295\n"

	duration, raw, err := parseFpcalcOutput(output)
	if err != nil {
		t.Fatalf("parseFpcalcOutput: %v", err)
	}
	if duration != 565 {
		t.Errorf("got duration %v, want 565", duration)
	}
	want := []uint32{1, 2, 3, 4294967295}
	if len(raw) != len(want) {
		t.Fatalf("got %d values, want %d", len(raw), len(want))
	}
	for i := range want {
		if raw[i] != want[i] {
			t.Errorf("raw[%d] = %d, want %d", i, raw[i], want[i])
		}
	}
}

func TestParseFpcalcOutputMissingFingerprint(t *testing.T) {
	if _, _, err := parseFpcalcOutput("DURATION=10\n"); err == nil {
		t.Fatal("got nil error, want failure for missing FINGERPRINT=")
	}
}

func TestEncodeFingerprintRoundTrips(t *testing.T) {
	raw := []uint32{10, 20, 30, 4000000000}

	encoded, err := encodeFingerprint(raw)
	if err != nil {
		t.Fatalf("encodeFingerprint: %v", err)
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer zr.Close()

	decompressed, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read decompressed: %v", err)
	}
	if len(decompressed) != len(raw)*4 {
		t.Fatalf("got %d decompressed bytes, want %d", len(decompressed), len(raw)*4)
	}
	for i, want := range raw {
		if got := binary.LittleEndian.Uint32(decompressed[i*4:]); got != want {
			t.Errorf("value %d = %d, want %d", i, got, want)
		}
	}
}
