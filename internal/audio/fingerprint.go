package audio

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"github.com/oxur/tessitura/internal/tesserr"
)

// Fingerprint is the result of fingerprinting one audio file: the
// zlib+base64-encoded little-endian u32 vector, and the duration fpcalc
// itself reported while decoding the file to mono 16-bit PCM at 11025 Hz.
type Fingerprint struct {
	Encoded      string
	DurationSecs float64
}

// Compute decodes the audio file at path and returns its acoustic
// fingerprint (spec §4.4.2). It shells to fpcalc -raw so the underlying
// vector can be re-encoded per the project's own convention instead of
// fpcalc's.
func Compute(path string) (Fingerprint, error) {
	if _, err := exec.LookPath("fpcalc"); err != nil {
		return Fingerprint{}, tesserr.IO(path, errors.New("fpcalc not found on PATH"))
	}

	cmd := exec.Command("fpcalc", "-raw", "-rate", "11025", "-channels", "1", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return Fingerprint{}, tesserr.IO(path, errors.New("fpcalc: "+stderr.String()))
	}

	duration, raw, err := parseFpcalcOutput(string(out))
	if err != nil {
		return Fingerprint{}, tesserr.Parse("fpcalc", err.Error())
	}

	encoded, err := encodeFingerprint(raw)
	if err != nil {
		return Fingerprint{}, tesserr.Serialization("encode fingerprint", err)
	}

	return Fingerprint{Encoded: encoded, DurationSecs: duration}, nil
}

// parseFpcalcOutput extracts DURATION= and FINGERPRINT= (a comma
// separated list of signed 32-bit integers in -raw mode) from fpcalc's
// stdout.
func parseFpcalcOutput(output string) (duration float64, raw []uint32, err error) {
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "DURATION="):
			duration, err = strconv.ParseFloat(strings.TrimPrefix(line, "DURATION="), 64)
			if err != nil {
				return 0, nil, err
			}
		case strings.HasPrefix(line, "FINGERPRINT="):
			fields := strings.Split(strings.TrimPrefix(line, "FINGERPRINT="), ",")
			raw = make([]uint32, 0, len(fields))
			for _, f := range fields {
				f = strings.TrimSpace(f)
				if f == "" {
					continue
				}
				n, err := strconv.ParseInt(f, 10, 64)
				if err != nil {
					return 0, nil, err
				}
				raw = append(raw, uint32(n))
			}
		}
	}
	if raw == nil {
		return 0, nil, errors.New("fpcalc output missing FINGERPRINT=")
	}
	return duration, raw, nil
}

// encodeFingerprint converts a raw fingerprint vector to bytes
// (little-endian), zlib-compresses them, and base64-encodes the result —
// the same transform the original prototype's encode_fingerprint
// applies.
func encodeFingerprint(fp []uint32) (string, error) {
	buf := make([]byte, len(fp)*4)
	for i, v := range fp {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(buf); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}
