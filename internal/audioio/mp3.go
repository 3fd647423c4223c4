package audioio

import (
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3Mono decodes an MP3 stream and averages its two channels.
// go-mp3 always yields 16-bit little-endian stereo PCM.
func DecodeMP3Mono(r io.Reader) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode failed: %w", err)
	}

	const frameBytes = 4
	var out []float64
	if n := dec.Length(); n > 0 {
		out = make([]float64, 0, n/frameBytes)
	}

	buf := make([]byte, 16384)
	var carry []byte
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if len(carry) > 0 {
				chunk = append(carry, chunk...)
				carry = nil
			}
			whole := len(chunk) - len(chunk)%frameBytes
			for i := 0; i < whole; i += frameBytes {
				left := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
				right := int16(uint16(chunk[i+2]) | uint16(chunk[i+3])<<8)
				out = append(out, (float64(left)+float64(right))/(2*32768.0))
			}
			if whole < len(chunk) {
				carry = append([]byte(nil), chunk[whole:]...)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("mp3 read failed: %w", err)
		}
	}
	return out, dec.SampleRate(), nil
}
