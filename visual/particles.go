package visual

import (
	"math"
	"math/rand"
)

const (
	DefaultParticleCount = 1000
	ParticleSize         = 0.05
	ParticleColor        = "#ffffff"

	// FieldSide is the edge length of the cube the particles are spread over.
	FieldSide = 10.0

	swayAmplitude = 0.2
	swayRateX     = 0.3
	swayRateY     = 0.5
)

// Particles is a fixed cloud of points. Only the orientation of the whole
// cloud animates.
type Particles struct {
	positions []float32
	rotation  [3]float64
}

// NewParticles spreads count points uniformly over [-5, 5) on each axis.
// A non-positive count yields an empty cloud.
func NewParticles(count int, rng *rand.Rand) *Particles {
	if count < 0 {
		count = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	half := float32(FieldSide / 2)
	below := math.Nextafter32(half, 0)

	pos := make([]float32, count*3)
	for i := range pos {
		v := float32((rng.Float64() - 0.5) * FieldSide)
		// float32 rounding can land exactly on the open upper bound
		if v >= half {
			v = below
		}
		pos[i] = v
	}
	return &Particles{positions: pos}
}

// Count returns the number of points.
func (p *Particles) Count() int { return len(p.positions) / 3 }

// Positions returns the flat xyz buffer. Callers must not modify it.
func (p *Particles) Positions() []float32 { return p.positions }

// Rotation returns the cloud orientation (Euler angles, radians) at time t.
func (p *Particles) Rotation(t float64) [3]float64 {
	return [3]float64{
		math.Sin(t*swayRateX) * swayAmplitude,
		math.Sin(t*swayRateY) * swayAmplitude,
		0,
	}
}

func (p *Particles) Update(t float64) {
	p.rotation = p.Rotation(t)
}

// CurrentRotation returns the rotation applied by the last Update.
func (p *Particles) CurrentRotation() [3]float64 { return p.rotation }
