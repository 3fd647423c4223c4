// Package scene drives the audio-reactive scene: it reads the analyser each
// tick, moves the camera, animates the shapes and reports a Frame.
package scene

import (
	"math/rand"
	"time"

	"github.com/cwbudde/harmonic-realms/visual"
)

// Ticker is anything updated once per rendered frame from elapsed time.
type Ticker interface {
	Update(t float64)
}

// Clock is the timing of one tick.
type Clock struct {
	Frame   int
	Elapsed float64
	Delta   float64
}

// Scene is the fixed set of scene objects. It is not safe for concurrent use.
type Scene struct {
	Camera    *Camera
	Sphere    *visual.Sphere
	Particles *visual.Particles

	driver  *Driver
	tickers []Ticker
	clock   Clock
}

// New builds the scene. source may be nil, or may have no analyser yet; the
// camera then stays at BaseDistance.
func New(params *Params, source SpectrumSource) (*Scene, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	seed := params.ParticleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Scene{
		Camera:    NewCamera(),
		Sphere:    visual.NewSphere(),
		Particles: visual.NewParticles(params.ParticleCount, rand.New(rand.NewSource(seed))),
	}
	var reactive *visual.Sphere
	if params.SphereReactive {
		reactive = s.Sphere
	}
	s.driver = NewDriver(source, s.Camera, reactive, params.FPS, params.CameraSpring)

	// Driver first so a reactive sphere sees this tick's energy.
	s.tickers = []Ticker{s.driver, s.Sphere, s.Particles}
	return s, nil
}

// Driver returns the scene's camera driver.
func (s *Scene) Driver() *Driver { return s.driver }

// Tick runs every ticker once for the given clock.
func (s *Scene) Tick(c Clock) {
	s.clock = c
	for _, t := range s.tickers {
		t.Update(c.Elapsed)
	}
}

// Frame describes the scene state after the last Tick.
type Frame struct {
	Index     int            `json:"frame"`
	Elapsed   float64        `json:"elapsed"`
	Energy    *float64       `json:"energy"`
	Camera    CameraState    `json:"camera"`
	Sphere    SphereState    `json:"sphere"`
	Particles ParticlesState `json:"particles"`
}

type CameraState struct {
	Position [3]float64 `json:"position"`
	Distance float64    `json:"distance"`
}

type SphereState struct {
	Scale     [3]float64 `json:"scale"`
	Influence float64    `json:"influence"`
}

type ParticlesState struct {
	Rotation [3]float64 `json:"rotation"`
	Count    int        `json:"count"`
}

func (s *Scene) Frame() Frame {
	f := Frame{
		Index:   s.clock.Frame,
		Elapsed: s.clock.Elapsed,
		Camera: CameraState{
			Position: s.Camera.Position(),
			Distance: s.Camera.Distance(),
		},
		Sphere: SphereState{
			Scale:     s.Sphere.CurrentScale(),
			Influence: s.Sphere.Influence(),
		},
		Particles: ParticlesState{
			Rotation: s.Particles.CurrentRotation(),
			Count:    s.Particles.Count(),
		},
	}
	if e, ok := s.driver.Energy(); ok {
		f.Energy = &e
	}
	return f
}
