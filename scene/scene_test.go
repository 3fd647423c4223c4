package scene

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/harmonic-realms/analyser"
	"github.com/cwbudde/harmonic-realms/audiograph"
	"github.com/cwbudde/harmonic-realms/media"
)

type fixedSpectrum struct {
	bins  []byte
	reads int
}

func (f *fixedSpectrum) FrequencyBinCount() int { return len(f.bins) }
func (f *fixedSpectrum) ByteFrequencyData(dst []byte) {
	f.reads++
	copy(dst, f.bins)
}

func sourceOf(sp Spectrum) SpectrumSource {
	return func() (Spectrum, bool) { return sp, true }
}

func filled(n int, v byte) *fixedSpectrum {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return &fixedSpectrum{bins: b}
}

func testParams() *Params {
	p := NewDefaultParams()
	p.ParticleSeed = 1
	return p
}

func TestFullScaleSnapshotPushesCameraToSeven(t *testing.T) {
	s := mustScene(t, testParams(), sourceOf(filled(1024, 255)))
	s.Tick(Clock{Elapsed: 0.5})
	f := s.Frame()
	if f.Energy == nil || *f.Energy != 1.0 {
		t.Fatalf("energy = %v, want 1", f.Energy)
	}
	if f.Camera.Position[2] != 7 || f.Camera.Distance != 7 {
		t.Fatalf("camera = %+v, want z=7", f.Camera)
	}
}

func TestSilentSnapshotKeepsCameraAtFive(t *testing.T) {
	s := mustScene(t, testParams(), sourceOf(filled(1024, 0)))
	s.Tick(Clock{Elapsed: 0.5})
	f := s.Frame()
	if f.Energy == nil || *f.Energy != 0 {
		t.Fatalf("energy = %v, want 0", f.Energy)
	}
	if f.Camera.Position[2] != 5 {
		t.Fatalf("camera z = %f, want 5", f.Camera.Position[2])
	}
}

func TestNoAnalyserLeavesEnergyAbsent(t *testing.T) {
	missing := func() (Spectrum, bool) { return nil, false }
	for _, src := range []SpectrumSource{nil, missing} {
		s := mustScene(t, testParams(), src)
		s.Tick(Clock{Elapsed: 1})
		f := s.Frame()
		if f.Energy != nil {
			t.Fatalf("energy must be absent without an analyser, got %f", *f.Energy)
		}
		if f.Camera.Distance != BaseDistance {
			t.Fatalf("camera distance = %f, want %f", f.Camera.Distance, BaseDistance)
		}
	}
}

func TestCameraDistanceRange(t *testing.T) {
	sp := filled(256, 0)
	s := mustScene(t, testParams(), sourceOf(sp))
	for v := 0; v <= 255; v++ {
		for i := range sp.bins {
			sp.bins[i] = byte(v)
		}
		s.Tick(Clock{Elapsed: float64(v)})
		d := s.Camera.Distance()
		if d < 5 || d > 7 {
			t.Fatalf("distance %f out of [5, 7] for level %d", d, v)
		}
		want := 5 + 2*float64(v)/255
		if math.Abs(d-want) > 1e-12 {
			t.Fatalf("distance %f, want %f", d, want)
		}
	}
}

func TestSphereFaithfulByDefault(t *testing.T) {
	s := mustScene(t, testParams(), sourceOf(filled(64, 255)))
	s.Tick(Clock{Elapsed: 0})
	f := s.Frame()
	if f.Sphere.Influence != 0 || f.Sphere.Scale[0] != 1 {
		t.Fatalf("sphere must ignore audio unless reactive: %+v", f.Sphere)
	}
}

func TestSphereReactiveUsesEnergy(t *testing.T) {
	p := testParams()
	p.SphereReactive = true
	s := mustScene(t, p, sourceOf(filled(64, 255)))
	s.Tick(Clock{Elapsed: 0})
	f := s.Frame()
	if f.Sphere.Influence != 1 || f.Sphere.Scale[0] != 1.5 {
		t.Fatalf("reactive sphere = %+v, want influence 1 and scale 1.5", f.Sphere)
	}
}

func TestCameraSpringEasesTowardTarget(t *testing.T) {
	p := testParams()
	p.CameraSpring = SpringParams{Frequency: 6, Damping: 1}
	s := mustScene(t, p, sourceOf(filled(64, 255)))

	s.Tick(Clock{Elapsed: 0})
	first := s.Camera.Distance()
	if first <= 5 || first >= 7 {
		t.Fatalf("first eased distance = %f, want strictly inside (5, 7)", first)
	}
	prev := first
	for i := 1; i < 600; i++ {
		s.Tick(Clock{Elapsed: float64(i) / 60})
		d := s.Camera.Distance()
		if d < prev-1e-9 || d > 7 {
			t.Fatalf("critically damped spring should approach 7 monotonically: %f -> %f", prev, d)
		}
		prev = d
	}
	if math.Abs(prev-7) > 1e-3 {
		t.Fatalf("spring settled at %f, want 7", prev)
	}
}

func TestCameraOrbitKeepsDistanceAndZoomDisabled(t *testing.T) {
	c := NewCamera()
	if c.Position() != [3]float64{0, 0, 5} {
		t.Fatalf("initial position = %v", c.Position())
	}
	c.Orbit(math.Pi/2, 0)
	p := c.Position()
	if math.Abs(p[0]-5) > 1e-9 || math.Abs(p[2]) > 1e-9 {
		t.Fatalf("quarter orbit position = %v, want +x", p)
	}
	c.Orbit(0, -10)
	if _, polar := c.Angles(); polar <= 0 {
		t.Fatalf("polar angle must stay above the pole, got %f", polar)
	}
	c.SetDistance(6)
	p = c.Position()
	if r := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]); math.Abs(r-6) > 1e-9 {
		t.Fatalf("radius = %f, want 6", r)
	}
	if err := c.Zoom(2); !errors.Is(err, ErrZoomDisabled) {
		t.Fatalf("expected ErrZoomDisabled, got %v", err)
	}
}

func TestEmptyParticleFieldScene(t *testing.T) {
	p := testParams()
	p.ParticleCount = 0
	s := mustScene(t, p, nil)
	s.Tick(Clock{Elapsed: 2})
	if s.Frame().Particles.Count != 0 || s.Describe().Particles.Count != 0 {
		t.Fatalf("expected empty particle field")
	}
}

func TestParamsValidate(t *testing.T) {
	if err := NewDefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cases := []func(*Params){
		func(p *Params) { p.SampleRate = 0 },
		func(p *Params) { p.FPS = 0 },
		func(p *Params) { p.ParticleCount = -1 },
		func(p *Params) { p.Analyser.FFTSize = 100 },
		func(p *Params) { p.CameraSpring = SpringParams{Frequency: 5} },
		func(p *Params) { p.CameraSpring = SpringParams{Frequency: -1, Damping: 1} },
	}
	for i, mutate := range cases {
		p := NewDefaultParams()
		mutate(p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
		if _, err := New(p, nil); err == nil {
			t.Fatalf("case %d: New should reject invalid params", i)
		}
	}
}

func TestLoopRunFrames(t *testing.T) {
	sp := filled(32, 128)
	s := mustScene(t, testParams(), sourceOf(sp))
	pumped := 0.0
	l, err := NewLoop(60, s, func(dt float64) error {
		pumped += dt
		return nil
	})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	var frames []Frame
	if err := l.RunFrames(120, func(f Frame) error {
		frames = append(frames, f)
		return nil
	}); err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	if len(frames) != 120 || sp.reads != 120 {
		t.Fatalf("frames=%d reads=%d, want 120 each", len(frames), sp.reads)
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Index != i || !(frames[i].Elapsed > frames[i-1].Elapsed) {
			t.Fatalf("frame %d out of order: %+v after %+v", i, frames[i], frames[i-1])
		}
	}
	if math.Abs(pumped-2) > 1e-9 || math.Abs(l.Elapsed()-2) > 1e-9 {
		t.Fatalf("pumped=%f elapsed=%f, want 2s", pumped, l.Elapsed())
	}
}

func TestLoopStopsOnErrors(t *testing.T) {
	s := mustScene(t, testParams(), nil)
	boom := errors.New("boom")

	l, _ := NewLoop(30, s, func(float64) error { return boom })
	if err := l.RunFrames(3, nil); !errors.Is(err, boom) {
		t.Fatalf("expected pump error, got %v", err)
	}

	l, _ = NewLoop(30, s, nil)
	calls := 0
	err := l.RunFrames(10, func(Frame) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) || calls != 2 {
		t.Fatalf("expected callback error after 2 calls, got %v after %d", err, calls)
	}

	if _, err := NewLoop(0, s, nil); err == nil {
		t.Fatalf("expected error for fps=0")
	}
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	s := mustScene(t, testParams(), nil)
	l, _ := NewLoop(200, s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	err := l.Run(ctx, func(f Frame) error {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks < 3 {
		t.Fatalf("ticks=%d, want at least 3", ticks)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestSceneWithAudioGraph(t *testing.T) {
	const sr = 48000
	samples := make([]float64, sr)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*220*float64(i)/sr)
	}
	el, err := media.NewElement(samples, sr)
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	b := audiograph.NewBinding(audiograph.NullCandidate().New, sr, analyser.DefaultOptions())

	s := mustScene(t, testParams(), FromAnalyser(b))
	l, _ := NewLoop(60, s, b.Pump)
	f, err := l.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if f.Energy != nil {
		t.Fatalf("energy must be absent before Setup")
	}

	if err := b.Setup(el); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	el.Play()
	var last Frame
	if err := l.RunFrames(30, func(f Frame) error { last = f; return nil }); err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	if last.Energy == nil || *last.Energy <= 0 || *last.Energy > 1 {
		t.Fatalf("expected energy in (0, 1], got %v", last.Energy)
	}
	if last.Camera.Distance <= 5 || last.Camera.Distance > 7 {
		t.Fatalf("camera distance %f, want in (5, 7]", last.Camera.Distance)
	}
}

func TestFrameJSON(t *testing.T) {
	s := mustScene(t, testParams(), nil)
	s.Tick(Clock{Frame: 3, Elapsed: 0.05})
	b, err := json.Marshal(s.Frame())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["frame"].(float64) != 3 {
		t.Fatalf("frame index missing: %s", b)
	}
	if v, ok := m["energy"]; !ok || v != nil {
		t.Fatalf("energy should be null before an analyser exists: %s", b)
	}
}

func mustScene(t *testing.T, p *Params, src SpectrumSource) *Scene {
	t.Helper()
	s, err := New(p, src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}
