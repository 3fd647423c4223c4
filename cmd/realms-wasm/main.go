//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/harmonic-realms/audiograph"
	"github.com/cwbudde/harmonic-realms/media"
	"github.com/cwbudde/harmonic-realms/scene"
)

var (
	params      *scene.Params
	binding     *audiograph.Binding
	globalScene *scene.Scene
	loop        *scene.Loop
	element     *media.Element
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("realmsInit", js.FuncOf(realmsInit))
	js.Global().Set("realmsLoadAudio", js.FuncOf(realmsLoadAudio))
	js.Global().Set("realmsTick", js.FuncOf(realmsTick))
	js.Global().Set("realmsParticles", js.FuncOf(realmsParticles))
	js.Global().Set("realmsOrbit", js.FuncOf(realmsOrbit))
	js.Global().Set("realmsDescribe", js.FuncOf(realmsDescribe))

	println("WASM realms module loaded")
	<-c
}

// audioContextCandidates probes the browser for an audio context constructor.
// Only the context's sample rate is used; analysis runs in Go.
func audioContextCandidates() []audiograph.Candidate {
	probe := func(name string) audiograph.Candidate {
		return audiograph.Candidate{
			Name: name,
			Available: func() bool {
				ctor := js.Global().Get(name)
				return ctor.Truthy()
			},
			New: func(sampleRate int) (*audiograph.Context, error) {
				ctx := js.Global().Get(name).New()
				if sr := ctx.Get("sampleRate"); sr.Truthy() {
					sampleRate = sr.Int()
				}
				ctx.Call("close")
				return audiograph.NewContext(name, sampleRate, audiograph.Discard)
			},
		}
	}
	return []audiograph.Candidate{probe("AudioContext"), probe("webkitAudioContext")}
}

func realmsInit(this js.Value, args []js.Value) interface{} {
	params = scene.NewDefaultParams()
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		opts := args[0]
		if v := opts.Get("particleCount"); v.Type() == js.TypeNumber {
			params.ParticleCount = v.Int()
		}
		if v := opts.Get("seed"); v.Type() == js.TypeNumber {
			params.ParticleSeed = int64(v.Int())
		}
		if v := opts.Get("sphereReactive"); v.Type() == js.TypeBoolean {
			params.SphereReactive = v.Bool()
		}
	}

	backend, err := audiograph.Resolve(audioContextCandidates()...)
	if err != nil {
		println("No audio context:", err.Error())
		return nil
	}
	binding = audiograph.NewBinding(backend.New, params.SampleRate, params.Analyser)

	sc, err := scene.New(params, scene.FromAnalyser(binding))
	if err != nil {
		println("Scene init failed:", err.Error())
		return nil
	}
	globalScene = sc
	loop, err = scene.NewLoop(params.FPS, sc, nil)
	if err != nil {
		println("Loop init failed:", err.Error())
		return nil
	}
	println("Realms initialized with backend", backend.Name, "and", sc.Particles.Count(), "particles")
	return nil
}

func realmsLoadAudio(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || binding == nil {
		return nil
	}

	arrayBuffer := args[0]
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		println("Audio data is empty")
		return nil
	}
	data := make([]byte, length)
	js.CopyBytesToGo(data, js.Global().Get("Uint8Array").New(arrayBuffer))

	el, err := media.Decode(data, args[1].String())
	if err != nil {
		println("Failed to decode audio:", err.Error())
		return nil
	}
	if err := binding.Setup(el); err != nil {
		println("Audio graph setup failed:", err.Error())
		return nil
	}
	element = el
	println("Audio loaded:", length, "bytes,", el.Duration(), "seconds")
	return nil
}

// realmsTick(elapsed, currentTime, playing) runs one frame. The browser's
// <audio> element owns playback, so the Go element follows its clock.
func realmsTick(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || loop == nil {
		return nil
	}
	elapsed := args[0].Float()
	dt := elapsed - loop.Elapsed()

	if element != nil && len(args) >= 3 {
		if err := binding.Follow(args[1].Float(), args[2].Bool(), dt); err != nil {
			println("Audio sync failed:", err.Error())
		}
	}

	f, err := loop.Step(dt)
	if err != nil {
		println("Tick failed:", err.Error())
		return nil
	}

	out := map[string]interface{}{
		"frame":          f.Index,
		"elapsed":        f.Elapsed,
		"cameraPosition": vec3(f.Camera.Position),
		"sphereScale":    vec3(f.Sphere.Scale),
		"particlesRot":   vec3(f.Particles.Rotation),
	}
	if f.Energy != nil {
		out["energy"] = *f.Energy
	} else {
		out["energy"] = nil
	}
	return js.ValueOf(out)
}

func realmsParticles(this js.Value, args []js.Value) interface{} {
	if globalScene == nil {
		return nil
	}
	pos := globalScene.Particles.Positions()
	arr := js.Global().Get("Float32Array").New(len(pos))
	for i, v := range pos {
		arr.SetIndex(i, v)
	}
	return arr
}

func realmsOrbit(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalScene == nil {
		return nil
	}
	globalScene.Camera.Orbit(args[0].Float(), args[1].Float())
	return nil
}

func realmsDescribe(this js.Value, args []js.Value) interface{} {
	if globalScene == nil {
		return nil
	}
	d := globalScene.Describe()
	lights := make([]interface{}, 0, len(d.Lights))
	for _, l := range d.Lights {
		light := map[string]interface{}{
			"kind":      l.Kind,
			"intensity": l.Intensity,
		}
		if l.Position != nil {
			light["position"] = vec3(*l.Position)
		}
		lights = append(lights, light)
	}
	return js.ValueOf(map[string]interface{}{
		"camera": map[string]interface{}{
			"position": vec3(d.Camera.Position),
			"fov":      d.Camera.FOV,
			"near":     d.Camera.Near,
			"far":      d.Camera.Far,
		},
		"controls": map[string]interface{}{
			"rotate": d.Controls.Rotate,
			"zoom":   d.Controls.Zoom,
		},
		"lights": lights,
		"sphere": map[string]interface{}{
			"position": vec3(d.Sphere.Position),
			"radius":   d.Sphere.Radius,
			"segments": d.Sphere.Segments,
			"color":    d.Sphere.Color,
		},
		"particles": map[string]interface{}{
			"count": d.Particles.Count,
			"size":  d.Particles.Size,
			"color": d.Particles.Color,
		},
	})
}

func vec3(v [3]float64) []interface{} {
	return []interface{}{v[0], v[1], v[2]}
}
