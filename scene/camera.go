package scene

import (
	"errors"
	"math"
)

const (
	// BaseDistance is the camera distance from the origin in silence.
	BaseDistance = 5.0
	// DistanceRange is how far full-scale energy pushes the camera back.
	DistanceRange = 2.0

	FieldOfView = 75.0
	NearPlane   = 0.1
	FarPlane    = 1000.0

	minPolar = 1e-6
)

var ErrZoomDisabled = errors.New("scene: zoom is disabled")

// Camera is a perspective camera orbiting the origin. It starts on the +z
// axis at BaseDistance.
type Camera struct {
	azimuth  float64
	polar    float64
	distance float64
	dir      [3]float64
}

func NewCamera() *Camera {
	return &Camera{
		polar:    math.Pi / 2,
		distance: BaseDistance,
		dir:      [3]float64{0, 0, 1},
	}
}

func (c *Camera) Distance() float64 { return c.distance }

// SetDistance moves the camera along its current direction.
func (c *Camera) SetDistance(d float64) {
	c.distance = d
}

// Position returns the camera position in world space.
func (c *Camera) Position() [3]float64 {
	return [3]float64{c.dir[0] * c.distance, c.dir[1] * c.distance, c.dir[2] * c.distance}
}

// Angles returns the orbit azimuth and polar angle in radians.
func (c *Camera) Angles() (azimuth, polar float64) { return c.azimuth, c.polar }

// Orbit rotates the camera around the origin. The polar angle is kept
// strictly between the poles. The distance is unchanged.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	c.azimuth = math.Remainder(c.azimuth+dAzimuth, 2*math.Pi)
	c.polar = math.Min(math.Max(c.polar+dPolar, minPolar), math.Pi-minPolar)

	sp := math.Sin(c.polar)
	c.dir = [3]float64{
		sp * math.Sin(c.azimuth),
		math.Cos(c.polar),
		sp * math.Cos(c.azimuth),
	}
}

// Zoom always fails: the scene only allows rotation.
func (c *Camera) Zoom(float64) error {
	return ErrZoomDisabled
}
