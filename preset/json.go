package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/harmonic-realms/scene"
)

// File is the JSON schema for scene presets.
type File struct {
	SampleRate     *int             `json:"sample_rate"`
	FPS            *int             `json:"fps"`
	AudioPath      string           `json:"audio_path"`
	ParticleCount  *int             `json:"particle_count"`
	ParticleSeed   *int64           `json:"particle_seed"`
	SphereReactive *bool            `json:"sphere_reactive"`
	Analyser       *AnalyserSetting `json:"analyser"`
	CameraSpring   *SpringSetting   `json:"camera_spring"`
}

// AnalyserSetting is a partial analyser override entry in a preset file.
type AnalyserSetting struct {
	FFTSize               *int     `json:"fft_size"`
	SmoothingTimeConstant *float64 `json:"smoothing_time_constant"`
	MinDecibels           *float64 `json:"min_decibels"`
	MaxDecibels           *float64 `json:"max_decibels"`
}

// SpringSetting enables camera easing.
type SpringSetting struct {
	Frequency *float64 `json:"frequency"`
	Damping   *float64 `json:"damping"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*scene.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := scene.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if f.AudioPath != "" && !filepath.IsAbs(p.AudioPath) {
		base := filepath.Dir(path)
		p.AudioPath = filepath.Clean(filepath.Join(base, p.AudioPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *scene.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return fmt.Errorf("sample_rate must be > 0")
		}
		dst.SampleRate = *f.SampleRate
	}
	if f.FPS != nil {
		if *f.FPS < 1 || *f.FPS > 1000 {
			return fmt.Errorf("fps must be in [1,1000]")
		}
		dst.FPS = *f.FPS
	}
	if f.AudioPath != "" {
		dst.AudioPath = strings.TrimSpace(f.AudioPath)
	}
	if f.ParticleCount != nil {
		if *f.ParticleCount < 0 {
			return fmt.Errorf("particle_count must be >= 0")
		}
		dst.ParticleCount = *f.ParticleCount
	}
	if f.ParticleSeed != nil {
		dst.ParticleSeed = *f.ParticleSeed
	}
	if f.SphereReactive != nil {
		dst.SphereReactive = *f.SphereReactive
	}

	if a := f.Analyser; a != nil {
		opts := dst.Analyser
		if a.FFTSize != nil {
			opts.FFTSize = *a.FFTSize
		}
		if a.SmoothingTimeConstant != nil {
			opts.SmoothingTimeConstant = *a.SmoothingTimeConstant
		}
		if a.MinDecibels != nil {
			opts.MinDecibels = *a.MinDecibels
		}
		if a.MaxDecibels != nil {
			opts.MaxDecibels = *a.MaxDecibels
		}
		if err := opts.Validate(); err != nil {
			return fmt.Errorf("analyser: %w", err)
		}
		dst.Analyser = opts
	}

	if s := f.CameraSpring; s != nil {
		spring := dst.CameraSpring
		if s.Frequency != nil {
			if *s.Frequency < 0 {
				return fmt.Errorf("camera_spring.frequency must be >= 0")
			}
			spring.Frequency = *s.Frequency
		}
		if s.Damping != nil {
			if *s.Damping <= 0 {
				return fmt.Errorf("camera_spring.damping must be > 0")
			}
			spring.Damping = *s.Damping
		}
		if spring.Enabled() && spring.Damping <= 0 {
			spring.Damping = 1
		}
		dst.CameraSpring = spring
	}
	return nil
}
