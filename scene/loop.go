package scene

import (
	"context"
	"fmt"
	"time"
)

// Pump advances the audio graph by dt seconds before the scene ticks.
type Pump func(dt float64) error

// Loop schedules scene ticks at a fixed display rate.
type Loop struct {
	fps   int
	scene *Scene
	pump  Pump
	clock Clock
}

// NewLoop creates a loop for s. pump may be nil.
func NewLoop(fps int, s *Scene, pump Pump) (*Loop, error) {
	if fps < 1 {
		return nil, fmt.Errorf("scene: fps must be >= 1 (got %d)", fps)
	}
	if s == nil {
		return nil, fmt.Errorf("scene: nil scene")
	}
	return &Loop{fps: fps, scene: s, pump: pump}, nil
}

// FrameDuration returns the nominal time between ticks.
func (l *Loop) FrameDuration() time.Duration {
	return time.Second / time.Duration(l.fps)
}

// Elapsed returns the time covered by the ticks so far, in seconds.
func (l *Loop) Elapsed() float64 { return l.clock.Elapsed }

// Step advances the clock by dt, pumps audio and ticks the scene once.
func (l *Loop) Step(dt float64) (Frame, error) {
	if dt < 0 {
		dt = 0
	}
	if l.pump != nil {
		if err := l.pump(dt); err != nil {
			return Frame{}, fmt.Errorf("scene: audio pump: %w", err)
		}
	}
	l.clock.Delta = dt
	l.clock.Elapsed += dt
	l.scene.Tick(l.clock)
	f := l.scene.Frame()
	l.clock.Frame++
	return f, nil
}

// RunFrames runs n ticks at exactly 1/fps seconds each, as fast as possible.
func (l *Loop) RunFrames(n int, fn func(Frame) error) error {
	dt := 1.0 / float64(l.fps)
	for i := 0; i < n; i++ {
		f, err := l.Step(dt)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run ticks in real time until ctx is done or fn returns an error. Delta
// times are measured, so a slow callback stretches dt instead of queueing ticks.
func (l *Loop) Run(ctx context.Context, fn func(Frame) error) error {
	ticker := time.NewTicker(l.FrameDuration())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			f, err := l.Step(dt)
			if err != nil {
				return err
			}
			if fn != nil {
				if err := fn(f); err != nil {
					return err
				}
			}
		}
	}
}
