package scene

import (
	"github.com/charmbracelet/harmonica"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/harmonic-realms/analyser"
	"github.com/cwbudde/harmonic-realms/visual"
)

// Spectrum is the part of an analyser the driver reads each tick.
type Spectrum interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// SpectrumSource returns the spectrum once the audio graph exists.
type SpectrumSource func() (Spectrum, bool)

// FromAnalyser adapts anything exposing an optional *analyser.Analyser, such
// as an audiograph.Binding.
func FromAnalyser(p interface {
	Analyser() (*analyser.Analyser, bool)
}) SpectrumSource {
	return func() (Spectrum, bool) {
		an, ok := p.Analyser()
		if !ok || an == nil {
			return nil, false
		}
		return an, true
	}
}

// Driver turns the analyser's current snapshot into the energy scalar and
// pushes the camera back by it.
type Driver struct {
	source SpectrumSource
	camera *Camera
	sphere *visual.Sphere

	spring    *harmonica.Spring
	springPos float64
	springVel float64

	snapshot  []byte
	energy    float64
	hasEnergy bool
}

// NewDriver creates a driver for camera. When sphere is non-nil the energy
// scalar is also written to the sphere's influence.
func NewDriver(source SpectrumSource, camera *Camera, sphere *visual.Sphere, fps int, spring SpringParams) *Driver {
	d := &Driver{
		source:    source,
		camera:    camera,
		sphere:    sphere,
		springPos: camera.Distance(),
	}
	if spring.Enabled() {
		s := harmonica.NewSpring(harmonica.FPS(fps), spring.Frequency, spring.Damping)
		d.spring = &s
	}
	return d
}

// Energy returns the last energy scalar. ok is false until an analyser has
// produced one.
func (d *Driver) Energy() (energy float64, ok bool) {
	return d.energy, d.hasEnergy
}

// Update reads one snapshot and sets the camera distance to
// BaseDistance + DistanceRange*energy. Without an analyser it does nothing.
func (d *Driver) Update(float64) {
	if d.source == nil {
		return
	}
	an, ok := d.source()
	if !ok {
		return
	}
	bins := an.FrequencyBinCount()
	if cap(d.snapshot) < bins {
		d.snapshot = make([]byte, bins)
	}
	d.snapshot = d.snapshot[:bins]
	an.ByteFrequencyData(d.snapshot)

	level, ok := analyser.Level(d.snapshot)
	if !ok {
		return
	}
	d.energy = level
	d.hasEnergy = true

	target := BaseDistance + DistanceRange*level
	if d.spring != nil {
		d.springPos, d.springVel = d.spring.Update(d.springPos, d.springVel, target)
		target = dspcore.Clamp(d.springPos, BaseDistance, BaseDistance+DistanceRange)
	}
	d.camera.SetDistance(target)

	if d.sphere != nil {
		d.sphere.SetInfluence(level)
	}
}
