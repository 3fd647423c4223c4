package scene

import "github.com/cwbudde/harmonic-realms/visual"

// Description is the static part of the scene a host renderer builds once.
type Description struct {
	Camera    CameraSpec    `json:"camera"`
	Controls  ControlsSpec  `json:"controls"`
	Lights    []LightSpec   `json:"lights"`
	Sphere    SphereSpec    `json:"sphere"`
	Particles ParticlesSpec `json:"particles"`
}

type CameraSpec struct {
	Position [3]float64 `json:"position"`
	FOV      float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}

type ControlsSpec struct {
	Rotate bool `json:"rotate"`
	Zoom   bool `json:"zoom"`
}

type LightSpec struct {
	Kind      string      `json:"kind"`
	Intensity float64     `json:"intensity"`
	Position  *[3]float64 `json:"position,omitempty"`
}

type SphereSpec struct {
	Position [3]float64 `json:"position"`
	Radius   float64    `json:"radius"`
	Segments int        `json:"segments"`
	Color    string     `json:"color"`
}

type ParticlesSpec struct {
	Count int     `json:"count"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// Describe returns the static description of s.
func (s *Scene) Describe() Description {
	pointPos := [3]float64{10, 10, 10}
	return Description{
		Camera: CameraSpec{
			Position: [3]float64{0, 0, BaseDistance},
			FOV:      FieldOfView,
			Near:     NearPlane,
			Far:      FarPlane,
		},
		Controls: ControlsSpec{Rotate: true, Zoom: false},
		Lights: []LightSpec{
			{Kind: "ambient", Intensity: 0.5},
			{Kind: "point", Intensity: 1, Position: &pointPos},
		},
		Sphere: SphereSpec{
			Position: s.Sphere.Position,
			Radius:   visual.SphereRadius,
			Segments: visual.SphereSegments,
			Color:    visual.SphereColor,
		},
		Particles: ParticlesSpec{
			Count: s.Particles.Count(),
			Size:  visual.ParticleSize,
			Color: visual.ParticleColor,
		},
	}
}
