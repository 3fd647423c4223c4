// Package audiograph routes a media element through an analyser node into an
// audio destination. The graph is built once per element and never rewired.
package audiograph

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/harmonic-realms/analyser"
	"github.com/cwbudde/harmonic-realms/internal/audioio"
	"github.com/cwbudde/harmonic-realms/media"
)

var (
	ErrSourceExists   = errors.New("audiograph: element is already connected to a source node")
	ErrAlreadyBound   = errors.New("audiograph: binding already has a source for another element")
	ErrNoAudioContext = errors.New("audiograph: no audio context implementation available")
)

// Context owns the sample rate, the destination and the source nodes of an
// audio graph.
type Context struct {
	backend     string
	sampleRate  int
	destination Sink
	sources     map[*media.Element]*MediaSource
}

// NewContext creates a context. A nil destination discards audio.
func NewContext(backend string, sampleRate int, destination Sink) (*Context, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audiograph: invalid sample rate %d", sampleRate)
	}
	if destination == nil {
		destination = Discard
	}
	return &Context{
		backend:     backend,
		sampleRate:  sampleRate,
		destination: destination,
		sources:     make(map[*media.Element]*MediaSource),
	}, nil
}

func (c *Context) Backend() string   { return c.backend }
func (c *Context) SampleRate() int   { return c.sampleRate }
func (c *Context) Destination() Sink { return c.destination }

// SourceCount returns the number of source nodes created on this context.
func (c *Context) SourceCount() int { return len(c.sources) }

// CreateMediaElementSource creates the source node for el, resampling its
// track to the context rate. An element can feed only one source node.
func (c *Context) CreateMediaElementSource(el *media.Element) (*MediaSource, error) {
	if el == nil {
		return nil, fmt.Errorf("audiograph: nil media element")
	}
	if _, ok := c.sources[el]; ok {
		return nil, ErrSourceExists
	}
	track, err := audioio.ResampleIfNeeded(el.Samples(), el.SampleRate(), c.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("audiograph: resample %d -> %d Hz: %w", el.SampleRate(), c.sampleRate, err)
	}
	src := &MediaSource{
		element: el,
		rate:    c.sampleRate,
		track:   track,
	}
	c.sources[el] = src
	return src, nil
}

// CreateAnalyser creates an analyser running at the context rate.
func (c *Context) CreateAnalyser(opts analyser.Options) (*analyser.Analyser, error) {
	return analyser.New(c.sampleRate, opts)
}

// Close flushes and releases the destination.
func (c *Context) Close() error {
	return c.destination.Close()
}

// MediaSource renders a media element's output at the context rate.
type MediaSource struct {
	element *media.Element
	rate    int
	track   []float64

	block []float64
	carry float64
}

func (s *MediaSource) Element() *media.Element { return s.element }

// Render returns the audio covered by span. A span that is not playing
// yields dt seconds of silence. The returned slice is reused by the next call.
func (s *MediaSource) Render(span media.Span, dt float64) []float64 {
	if !span.Playing {
		if !(dt > 0) {
			return s.block[:0]
		}
		s.carry += dt * float64(s.rate)
		n := int(s.carry)
		s.carry -= float64(n)
		out := s.grow(n)
		for i := range out {
			out[i] = 0
		}
		return out
	}

	from := s.frameAt(span.Start)
	to := s.frameAt(span.End)
	if to < from {
		to = from
	}
	out := s.grow(to - from)
	for i := range out {
		out[i] = s.track[from+i] * span.Volume
	}
	return out
}

func (s *MediaSource) frameAt(t float64) int {
	i := int(math.Round(t * float64(s.rate)))
	if i < 0 {
		return 0
	}
	if i > len(s.track) {
		return len(s.track)
	}
	return i
}

func (s *MediaSource) grow(n int) []float64 {
	if cap(s.block) < n {
		s.block = make([]float64, n)
	}
	return s.block[:n]
}
