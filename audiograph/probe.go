package audiograph

import "strings"

// Factory creates an audio context at the requested sample rate.
type Factory func(sampleRate int) (*Context, error)

// Candidate is one context implementation that may or may not be usable on
// the current host.
type Candidate struct {
	Name      string
	Available func() bool
	New       Factory
}

// Resolve probes the candidates in order and returns the first available
// one. Hosts call it once at startup and inject the result into a Binding.
func Resolve(candidates ...Candidate) (Candidate, error) {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
		if c.New == nil {
			continue
		}
		if c.Available == nil || c.Available() {
			return c, nil
		}
	}
	if len(names) == 0 {
		return Candidate{}, ErrNoAudioContext
	}
	return Candidate{}, &probeError{tried: names}
}

type probeError struct {
	tried []string
}

func (e *probeError) Error() string {
	return ErrNoAudioContext.Error() + " (tried " + strings.Join(e.tried, ", ") + ")"
}

func (e *probeError) Unwrap() error { return ErrNoAudioContext }

// NullCandidate is always available and discards the routed audio.
func NullCandidate() Candidate {
	return Candidate{
		Name:      "null",
		Available: func() bool { return true },
		New: func(sampleRate int) (*Context, error) {
			return NewContext("null", sampleRate, Discard)
		},
	}
}

// RecorderCandidate is available when path is set and records the routed
// audio to a WAV file.
func RecorderCandidate(path string) Candidate {
	return Candidate{
		Name:      "wav-recorder",
		Available: func() bool { return path != "" },
		New: func(sampleRate int) (*Context, error) {
			return NewContext("wav-recorder", sampleRate, NewWAVRecorder(path, sampleRate))
		},
	}
}
