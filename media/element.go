// Package media models a playable audio element: a decoded track plus a
// playback clock driven by play, pause, seek and volume controls.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/harmonic-realms/internal/audioio"
)

var (
	ErrUnsupportedFormat = errors.New("media: unsupported audio format")
	ErrEmptyTrack        = errors.New("media: track contains no samples")
	ErrVolumeRange       = errors.New("media: volume must be in [0, 1]")
	ErrInvalidTime       = errors.New("media: invalid time")
)

// Element is a mono track with a playback position. It starts paused at 0.
// Element is not safe for concurrent use.
type Element struct {
	src        string
	samples    []float64
	sampleRate int

	position float64
	paused   bool
	ended    bool
	volume   float64
}

// Span describes the stretch of track time covered by one Advance call.
type Span struct {
	Start   float64
	End     float64
	Playing bool
	Volume  float64
}

// NewElement wraps decoded mono samples.
func NewElement(samples []float64, sampleRate int) (*Element, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("media: invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyTrack
	}
	return &Element{
		samples:    samples,
		sampleRate: sampleRate,
		paused:     true,
		volume:     1,
	}, nil
}

// Open loads and decodes an audio file. The format is taken from the extension.
func Open(path string) (*Element, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	el, err := decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	el.src = path
	return el, nil
}

// Decode decodes in-memory audio data of the given format ("mp3" or "wav").
func Decode(data []byte, format string) (*Element, error) {
	return decode(bytes.NewReader(data), strings.ToLower(format))
}

func decode(r io.ReadSeeker, format string) (*Element, error) {
	var (
		samples []float64
		rate    int
		err     error
	)
	switch format {
	case "mp3":
		samples, rate, err = audioio.DecodeMP3Mono(r)
	case "wav", "wave":
		samples, rate, err = audioio.DecodeWAVMono(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return NewElement(samples, rate)
}

// Src returns the path the element was opened from, if any.
func (e *Element) Src() string { return e.src }

// SampleRate returns the native rate of the decoded track.
func (e *Element) SampleRate() int { return e.sampleRate }

// Samples returns the decoded mono track. Callers must not modify it.
func (e *Element) Samples() []float64 { return e.samples }

// Duration returns the track length in seconds.
func (e *Element) Duration() float64 {
	return float64(len(e.samples)) / float64(e.sampleRate)
}

func (e *Element) CurrentTime() float64 { return e.position }
func (e *Element) Paused() bool         { return e.paused }
func (e *Element) Ended() bool          { return e.ended }
func (e *Element) Volume() float64      { return e.volume }

// Play starts or resumes playback. Playing an ended track restarts it.
func (e *Element) Play() {
	if e.ended {
		e.position = 0
		e.ended = false
	}
	e.paused = false
}

func (e *Element) Pause() {
	e.paused = true
}

// Seek moves the playback position, clamped into [0, Duration].
func (e *Element) Seek(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: seek to %g", ErrInvalidTime, t)
	}
	d := e.Duration()
	if t < 0 {
		t = 0
	}
	if t > d {
		t = d
	}
	e.position = t
	e.ended = false
	return nil
}

func (e *Element) SetVolume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w (got %g)", ErrVolumeRange, v)
	}
	e.volume = v
	return nil
}

// Advance moves the clock forward by dt seconds while playing. Reaching the
// end of the track pauses the element and marks it ended.
func (e *Element) Advance(dt float64) Span {
	span := Span{Start: e.position, End: e.position, Volume: e.volume}
	if e.paused || e.ended || !(dt > 0) {
		return span
	}
	span.Playing = true
	end := e.position + dt
	if d := e.Duration(); end >= d {
		end = d
		e.ended = true
		e.paused = true
	}
	e.position = end
	span.End = end
	return span
}

// Sync follows an external player clock. Small forward steps advance the
// clock normally. Anything else is treated as a seek.
func (e *Element) Sync(t float64, playing bool) (Span, error) {
	const maxStep = 0.25
	if playing {
		if e.ended && t < e.position {
			e.ended = false
		}
		e.paused = false
	} else {
		e.paused = true
	}
	dt := t - e.position
	if dt >= 0 && dt <= maxStep {
		return e.Advance(dt), nil
	}
	if err := e.Seek(t); err != nil {
		return Span{}, err
	}
	return Span{Start: e.position, End: e.position, Volume: e.volume}, nil
}
