// Package visual holds the animated shapes of the scene. Each shape derives
// its transform from elapsed time and, for the sphere, an influence value.
package visual

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

const (
	SphereColor    = "#ff6b6b"
	SphereRadius   = 1.0
	SphereSegments = 32

	pulseAmplitude = 0.1
	pulseRate      = 2.0
	influenceGain  = 0.5
)

// Sphere is a unit sphere whose uniform scale pulses over time.
type Sphere struct {
	Position [3]float64

	influence float64
	scale     float64
}

// NewSphere returns a sphere at the origin with zero influence.
func NewSphere() *Sphere {
	return &Sphere{scale: 1}
}

// Influence returns the current frequency influence in [0, 1].
func (s *Sphere) Influence() float64 { return s.influence }

// SetInfluence sets the frequency influence, clamped to [0, 1]. NaN counts as 0.
func (s *Sphere) SetInfluence(f float64) {
	if math.IsNaN(f) {
		f = 0
	}
	s.influence = dspcore.Clamp(f, 0, 1)
}

// Scale returns 1 + 0.1*sin(2t) + 0.5*f for elapsed time t.
func (s *Sphere) Scale(t float64) float64 {
	return 1 + pulseAmplitude*math.Sin(pulseRate*t) + influenceGain*s.influence
}

// Update applies the scale for elapsed time t.
func (s *Sphere) Update(t float64) {
	s.scale = s.Scale(t)
}

// CurrentScale returns the scale applied by the last Update.
func (s *Sphere) CurrentScale() [3]float64 {
	return [3]float64{s.scale, s.scale, s.scale}
}
