package preset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/harmonic-realms/analyser"
)

func TestLoadJSONAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{
  "sample_rate": 44100,
  "fps": 30,
  "audio_path": "audio/1.mp3",
  "particle_count": 250,
  "particle_seed": 99,
  "sphere_reactive": true,
  "analyser": {
    "fft_size": 1024,
    "smoothing_time_constant": 0.5
  },
  "camera_spring": {
    "frequency": 4
  }
}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.SampleRate != 44100 || p.FPS != 30 {
		t.Fatalf("rate/fps mismatch: %+v", p)
	}
	if want := filepath.Join(dir, "audio", "1.mp3"); p.AudioPath != want {
		t.Fatalf("audio path mismatch: got=%q want=%q", p.AudioPath, want)
	}
	if p.ParticleCount != 250 || p.ParticleSeed != 99 || !p.SphereReactive {
		t.Fatalf("scene fields mismatch: %+v", p)
	}
	if p.Analyser.FFTSize != 1024 || p.Analyser.SmoothingTimeConstant != 0.5 {
		t.Fatalf("analyser mismatch: %+v", p.Analyser)
	}
	if p.Analyser.MinDecibels != -100 || p.Analyser.MaxDecibels != -30 {
		t.Fatalf("unset analyser fields should keep defaults: %+v", p.Analyser)
	}
	if p.CameraSpring.Frequency != 4 || p.CameraSpring.Damping != 1 {
		t.Fatalf("spring mismatch: %+v", p.CameraSpring)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("loaded params invalid: %v", err)
	}
}

func TestLoadJSONDefaultsWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(presetPath, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.AudioPath != "public/1.mp3" || p.ParticleCount != 1000 || p.SphereReactive || p.CameraSpring.Enabled() {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestLoadJSONRejectsInvalidAnalyser(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	content := `{"analyser": {"fft_size": 1000}}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	if _, err := LoadJSON(presetPath); !errors.Is(err, analyser.ErrFFTSize) {
		t.Fatalf("expected ErrFFTSize, got %v", err)
	}
}

func TestLoadJSONRejectsInvalidRanges(t *testing.T) {
	for _, content := range []string{
		`{"fps": 0}`,
		`{"sample_rate": -1}`,
		`{"particle_count": -5}`,
		`{"camera_spring": {"frequency": 3, "damping": 0}}`,
		`{"analyser": {"min_decibels": -10}}`,
	} {
		dir := t.TempDir()
		presetPath := filepath.Join(dir, "preset.json")
		if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
			t.Fatalf("write preset: %v", err)
		}
		if _, err := LoadJSON(presetPath); err == nil {
			t.Fatalf("expected error for %s", content)
		}
	}
}

func TestApplyFileNilCases(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
}
