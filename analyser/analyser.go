// Package analyser implements a frequency-domain analyser node: it keeps the
// most recent block of a mono signal and reports windowed, smoothed
// magnitude spectra as bytes or decibels.
package analyser

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	dspwindow "github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
)

const (
	MinFFTSize = 32
	MaxFFTSize = 32768
)

var (
	ErrFFTSize      = errors.New("analyser: fft size must be a power of two in [32, 32768]")
	ErrSmoothing    = errors.New("analyser: smoothing time constant must be in [0, 1]")
	ErrDecibelRange = errors.New("analyser: min decibels must be below max decibels")
)

// Options configures an Analyser.
type Options struct {
	FFTSize               int
	SmoothingTimeConstant float64
	MinDecibels           float64
	MaxDecibels           float64
}

// DefaultOptions returns the analyser defaults used by browsers.
func DefaultOptions() Options {
	return Options{
		FFTSize:               2048,
		SmoothingTimeConstant: 0.8,
		MinDecibels:           -100,
		MaxDecibels:           -30,
	}
}

// Validate reports whether the options describe a usable analyser.
func (o Options) Validate() error {
	if o.FFTSize < MinFFTSize || o.FFTSize > MaxFFTSize || o.FFTSize&(o.FFTSize-1) != 0 {
		return fmt.Errorf("%w (got %d)", ErrFFTSize, o.FFTSize)
	}
	if math.IsNaN(o.SmoothingTimeConstant) || o.SmoothingTimeConstant < 0 || o.SmoothingTimeConstant > 1 {
		return fmt.Errorf("%w (got %g)", ErrSmoothing, o.SmoothingTimeConstant)
	}
	if !(o.MinDecibels < o.MaxDecibels) {
		return fmt.Errorf("%w (got %g >= %g)", ErrDecibelRange, o.MinDecibels, o.MaxDecibels)
	}
	return nil
}

// Analyser is not safe for concurrent use.
type Analyser struct {
	opts       Options
	sampleRate int

	ring    []float64
	ringPos int

	window   []float64
	frame    []float64
	spectrum []complex128
	smoothed []float64
	forward  func(dst []complex128, src []float64)

	// current is set once smoothed reflects the samples written so far.
	current bool
}

// New creates an analyser for a signal sampled at sampleRate.
func New(sampleRate int, opts Options) (*Analyser, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analyser: invalid sample rate %d", sampleRate)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := opts.FFTSize
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("analyser: fft plan: %w", err)
	}
	window, err := dspwindow.Blackman(n, dspwindow.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("analyser: window: %w", err)
	}
	return &Analyser{
		opts:       opts,
		sampleRate: sampleRate,
		ring:       make([]float64, n),
		window:     window,
		frame:      make([]float64, n),
		spectrum:   make([]complex128, n/2+1),
		smoothed:   make([]float64, n/2),
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
	}, nil
}

// Options returns the analyser configuration.
func (a *Analyser) Options() Options { return a.opts }

// SampleRate returns the rate of the analysed signal in Hz.
func (a *Analyser) SampleRate() int { return a.sampleRate }

// FFTSize returns the analysis window length in samples.
func (a *Analyser) FFTSize() int { return a.opts.FFTSize }

// FrequencyBinCount returns the number of bins in a snapshot (FFTSize/2).
func (a *Analyser) FrequencyBinCount() int { return a.opts.FFTSize / 2 }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyser) BinFrequency(k int) float64 {
	return float64(k) * float64(a.sampleRate) / float64(a.opts.FFTSize)
}

// Write appends time-domain samples. Only the last FFTSize samples are kept.
func (a *Analyser) Write(block []float64) {
	if len(block) == 0 {
		return
	}
	a.current = false
	n := len(a.ring)
	if len(block) >= n {
		copy(a.ring, block[len(block)-n:])
		a.ringPos = 0
		return
	}
	for _, v := range block {
		a.ring[a.ringPos] = v
		a.ringPos++
		if a.ringPos == n {
			a.ringPos = 0
		}
	}
}

// Reset clears the signal history and the smoothing state.
func (a *Analyser) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.ringPos = 0
	a.current = false
}

// ByteFrequencyData writes the smoothed spectrum to dst as bytes, mapping
// [MinDecibels, MaxDecibels] linearly onto [0, 255]. At most
// FrequencyBinCount values are written. The spectrum is computed once per
// written block, so reading it twice without a Write smooths only once.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.analyse()
	span := a.opts.MaxDecibels - a.opts.MinDecibels
	n := min(len(dst), len(a.smoothed))
	for k := 0; k < n; k++ {
		db := dspcore.LinearToDB(a.smoothed[k])
		scaled := 255.0 / span * (db - a.opts.MinDecibels)
		dst[k] = byte(math.Floor(dspcore.Clamp(scaled, 0, 255)))
	}
}

// FloatFrequencyData writes the smoothed spectrum to dst in decibels.
// Silent bins are -Inf. It shares the per-block spectrum with ByteFrequencyData.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.analyse()
	n := min(len(dst), len(a.smoothed))
	for k := 0; k < n; k++ {
		dst[k] = dspcore.LinearToDB(a.smoothed[k])
	}
}

// ByteTimeDomainData writes the current waveform to dst, with 128 as the
// zero line. At most FFTSize values are written.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := len(a.ring)
	count := min(len(dst), n)
	start := n - count
	for i := 0; i < count; i++ {
		v := a.ring[(a.ringPos+start+i)%n]
		dst[i] = byte(math.Floor(dspcore.Clamp(128*(1+v), 0, 255)))
	}
}

func (a *Analyser) analyse() {
	if a.current {
		return
	}
	a.current = true
	n := len(a.ring)
	for i := 0; i < n; i++ {
		a.frame[i] = a.ring[(a.ringPos+i)%n] * a.window[i]
	}
	a.forward(a.spectrum, a.frame)

	tau := a.opts.SmoothingTimeConstant
	scale := 1.0 / float64(n)
	for k := range a.smoothed {
		mag := cmplx.Abs(a.spectrum[k]) * scale
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			mag = 0
		}
		a.smoothed[k] = dspcore.FlushDenormals(tau*a.smoothed[k] + (1-tau)*mag)
	}
}

// Level returns the mean of a byte snapshot normalised to [0, 1].
// ok is false for an empty snapshot.
func Level(snapshot []byte) (level float64, ok bool) {
	if len(snapshot) == 0 {
		return 0, false
	}
	var sum int
	for _, v := range snapshot {
		sum += int(v)
	}
	return float64(sum) / float64(len(snapshot)) / 255.0, true
}
