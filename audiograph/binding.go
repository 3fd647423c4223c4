package audiograph

import (
	"fmt"

	"github.com/cwbudde/harmonic-realms/analyser"
	"github.com/cwbudde/harmonic-realms/media"
)

// Binding lazily builds the graph element -> source -> analyser -> destination.
// Setup may be called any number of times. The context and the source are
// created at most once.
type Binding struct {
	newContext Factory
	sampleRate int
	opts       analyser.Options

	ctx      *Context
	source   *MediaSource
	analyser *analyser.Analyser
}

// NewBinding returns an unbound binding that will create its context with
// newContext on first Setup.
func NewBinding(newContext Factory, sampleRate int, opts analyser.Options) *Binding {
	return &Binding{
		newContext: newContext,
		sampleRate: sampleRate,
		opts:       opts,
	}
}

// Setup connects el to a new analyser. Repeating the call with the same
// element is a no-op. A different element is rejected with ErrAlreadyBound.
func (b *Binding) Setup(el *media.Element) error {
	if el == nil {
		return fmt.Errorf("audiograph: nil media element")
	}
	if b.ctx == nil {
		if b.newContext == nil {
			return ErrNoAudioContext
		}
		ctx, err := b.newContext(b.sampleRate)
		if err != nil {
			return fmt.Errorf("audiograph: create context: %w", err)
		}
		b.ctx = ctx
	}

	if b.source != nil {
		if b.source.Element() != el {
			return ErrAlreadyBound
		}
		return nil
	}

	an, err := b.ctx.CreateAnalyser(b.opts)
	if err != nil {
		return err
	}
	src, err := b.ctx.CreateMediaElementSource(el)
	if err != nil {
		return err
	}
	b.source = src
	b.analyser = an
	return nil
}

// Analyser returns the analyser once Setup has succeeded.
func (b *Binding) Analyser() (*analyser.Analyser, bool) {
	return b.analyser, b.analyser != nil
}

// Context returns the audio context, or nil before the first Setup.
func (b *Binding) Context() *Context { return b.ctx }

// SourceNodes returns the number of source nodes created so far.
func (b *Binding) SourceNodes() int {
	if b.ctx == nil {
		return 0
	}
	return b.ctx.SourceCount()
}

// Pump advances the bound element by dt seconds and routes the produced
// audio through the analyser into the destination. It does nothing before Setup.
func (b *Binding) Pump(dt float64) error {
	if b.source == nil {
		return nil
	}
	return b.route(b.source.Element().Advance(dt), dt)
}

// Follow is Pump for hosts whose player owns the clock: the element is synced
// to t and the covered span is routed. dt is the host's frame time. Silence
// after a seek or pause is capped at one analysis window.
func (b *Binding) Follow(t float64, playing bool, dt float64) error {
	if b.source == nil {
		return nil
	}
	span, err := b.source.Element().Sync(t, playing)
	if err != nil {
		return err
	}
	if !span.Playing {
		dt = min(dt, b.windowSeconds())
	}
	return b.route(span, dt)
}

func (b *Binding) windowSeconds() float64 {
	return float64(b.analyser.FFTSize()) / float64(b.ctx.SampleRate())
}

func (b *Binding) route(span media.Span, dt float64) error {
	block := b.source.Render(span, dt)
	b.analyser.Write(block)
	return b.ctx.Destination().Write(block)
}

// Close releases the context, if one was created.
func (b *Binding) Close() error {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Close()
}
