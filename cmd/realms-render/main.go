package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/harmonic-realms/audiograph"
	"github.com/cwbudde/harmonic-realms/media"
	"github.com/cwbudde/harmonic-realms/preset"
	"github.com/cwbudde/harmonic-realms/scene"
)

func main() {
	presetPath := flag.String("preset", "assets/presets/default.json", "Preset JSON file path (empty for built-in defaults, which need -audio)")
	audioPath := flag.String("audio", "", "Audio file override (.mp3 or .wav); the default preset plays assets/audio/demo.wav")
	duration := flag.Float64("duration", 10.0, "Seconds of scene time to render (<= 0 renders the whole track)")
	fps := flag.Int("fps", 0, "Frame rate override")
	seed := flag.Int64("seed", 0, "Particle seed override (0 keeps the preset value)")
	reactive := flag.Bool("reactive", false, "Feed the energy scalar into the sphere scale")
	output := flag.String("output", "-", "Frames output path (JSON lines, - for stdout)")
	record := flag.String("record", "", "Record the routed audio to this WAV path")
	realtime := flag.Bool("realtime", false, "Tick at wall-clock speed instead of as fast as possible")
	flag.Parse()

	params := scene.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		params = p
	}
	if *audioPath != "" {
		params.AudioPath = *audioPath
	}
	if *fps > 0 {
		params.FPS = *fps
	}
	if *seed != 0 {
		params.ParticleSeed = *seed
	}
	if *reactive {
		params.SphereReactive = true
	}
	if err := params.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %v\n", err)
		os.Exit(1)
	}

	if err := run(params, *duration, *output, *record, *realtime); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(params *scene.Params, duration float64, output string, record string, realtime bool) error {
	el, err := media.Open(params.AudioPath)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}

	backend, err := audiograph.Resolve(audiograph.RecorderCandidate(record), audiograph.NullCandidate())
	if err != nil {
		return err
	}
	binding := audiograph.NewBinding(backend.New, params.SampleRate, params.Analyser)
	defer binding.Close()

	if err := binding.Setup(el); err != nil {
		return fmt.Errorf("audio graph: %w", err)
	}
	el.Play()

	sc, err := scene.New(params, scene.FromAnalyser(binding))
	if err != nil {
		return err
	}
	loop, err := scene.NewLoop(params.FPS, sc, binding.Pump)
	if err != nil {
		return err
	}

	if duration <= 0 {
		duration = el.Duration()
	}
	fmt.Fprintf(os.Stderr, "Rendering %.2fs of %s (%.2fs @ %d Hz) at %d fps, backend %s, %d particles...\n",
		duration, params.AudioPath, el.Duration(), el.SampleRate(), params.FPS, backend.Name, sc.Particles.Count())

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	enc := json.NewEncoder(bw)

	frames := 0
	var peak float64
	emit := func(f scene.Frame) error {
		frames++
		if f.Energy != nil && *f.Energy > peak {
			peak = *f.Energy
		}
		return enc.Encode(f)
	}

	if realtime {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, time.Duration(duration*float64(time.Second)))
		defer cancel()
		err = loop.Run(ctx, emit)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		err = loop.RunFrames(int(duration*float64(params.FPS)+0.5), emit)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := binding.Close(); err != nil {
		return fmt.Errorf("close audio destination: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %d frames (%.2fs scene time, peak energy %.3f)\n", frames, loop.Elapsed(), peak)
	return nil
}
