package audiograph

import (
	"github.com/cwbudde/harmonic-realms/internal/audioio"
)

// Sink receives the audio that reaches the end of the graph.
type Sink interface {
	Write(block []float64) error
	Close() error
}

// Discard is a destination that drops all audio.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write([]float64) error { return nil }
func (discard) Close() error          { return nil }

// WAVRecorder collects the routed audio and writes a mono 16-bit WAV file on Close.
type WAVRecorder struct {
	path       string
	sampleRate int
	data       []float32
	closed     bool
}

func NewWAVRecorder(path string, sampleRate int) *WAVRecorder {
	return &WAVRecorder{path: path, sampleRate: sampleRate}
}

func (r *WAVRecorder) Write(block []float64) error {
	for _, v := range block {
		r.data = append(r.data, float32(v))
	}
	return nil
}

// Frames returns the number of samples recorded so far.
func (r *WAVRecorder) Frames() int { return len(r.data) }

func (r *WAVRecorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return audioio.WriteMonoWAV(r.path, r.data, r.sampleRate)
}
