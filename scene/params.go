package scene

import (
	"fmt"

	"github.com/cwbudde/harmonic-realms/analyser"
	"github.com/cwbudde/harmonic-realms/visual"
)

const DefaultAudioPath = "public/1.mp3"

// Params configures a scene run.
type Params struct {
	// SampleRate is the audio context rate the track is resampled to.
	SampleRate int
	FPS        int

	Analyser analyser.Options

	ParticleCount int
	// ParticleSeed seeds the particle cloud. Zero picks a random seed.
	ParticleSeed int64

	AudioPath string

	// SphereReactive feeds the energy scalar into the sphere's influence.
	// When false the influence stays at zero and the sphere only pulses.
	SphereReactive bool

	CameraSpring SpringParams
}

// SpringParams configures optional camera easing. A zero Frequency disables it.
type SpringParams struct {
	Frequency float64
	Damping   float64
}

// Enabled reports whether camera easing is on.
func (s SpringParams) Enabled() bool { return s.Frequency > 0 }

// NewDefaultParams returns the stock scene configuration.
func NewDefaultParams() *Params {
	return &Params{
		SampleRate:    48000,
		FPS:           60,
		Analyser:      analyser.DefaultOptions(),
		ParticleCount: visual.DefaultParticleCount,
		AudioPath:     DefaultAudioPath,
	}
}

// Validate checks ranges that would otherwise fail later at setup time.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be > 0")
	}
	if p.FPS < 1 || p.FPS > 1000 {
		return fmt.Errorf("fps must be in [1, 1000]")
	}
	if err := p.Analyser.Validate(); err != nil {
		return err
	}
	if p.ParticleCount < 0 {
		return fmt.Errorf("particle_count must be >= 0")
	}
	if p.CameraSpring.Frequency < 0 {
		return fmt.Errorf("camera_spring.frequency must be >= 0")
	}
	if p.CameraSpring.Enabled() && p.CameraSpring.Damping <= 0 {
		return fmt.Errorf("camera_spring.damping must be > 0 when the spring is enabled")
	}
	return nil
}
