// Package polysaw is a six voice subtractive synthesizer. Each voice runs
// a band-limited oscillator through a state variable filter and an ADSR
// amplifier. Two instrument-wide LFOs, the delayed MG and the mod wheel
// LFO, are rendered once per buffer and shared by every voice.
package polysaw

import (
	"fmt"

	"github.com/justyntemme/polyvoice/pkg/dsp/envelope"
	"github.com/justyntemme/polyvoice/pkg/dsp/gain"
	"github.com/justyntemme/polyvoice/pkg/dsp/modulation"
	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/framework/voice"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// NumVoices is the size of the polysaw voice pool.
const NumVoices = 6

const (
	// mgRelease fades the MG out after a note off.
	mgRelease = 0.010
	// volumeSmoothingMs removes zipper noise from volume changes.
	volumeSmoothingMs = 20.0
	// clipThreshold is where the output soft clipper starts to bend.
	clipThreshold = 0.9
)

// Modulation is the per-buffer data shared by all voices: the delayed MG
// LFO and the mod wheel LFO, one value per sample.
type Modulation struct {
	MG    []float32
	Wheel []float32
}

func (m Modulation) Slice(start, end int) Modulation {
	return Modulation{MG: m.MG[start:end], Wheel: m.Wheel[start:end]}
}

// Synth is the polysaw instrument. Initialize must be called before
// processing.
type Synth struct {
	*plugin.Base
	params *params

	poly *voice.Poly[Modulation, *Voice]

	mg    *modulation.LFO
	mgEnv *envelope.AR
	wheel *modulation.LFO

	mgBuf    []float32
	wheelBuf []float32

	volume *param.Smoother
	// settled is false until the first buffer after a reset, which
	// starts the volume smoother at its target
	settled bool
}

// New builds an uninitialized polysaw with its default patch.
func New() *Synth {
	s := &Synth{
		Base: plugin.NewBase(plugin.Info{
			ID:       "com.polyvoice.polysaw",
			Name:     "PolySaw",
			Version:  "1.0.0",
			Vendor:   "polyvoice",
			Category: "Instrument|Synth",
			Voices:   NumVoices,
		}),
		params: newParams(),
	}
	if err := s.Parameters().Add(s.params.all()...); err != nil {
		debug.Error("polysaw: %v", err)
	}

	s.OnInitialize(s.initialize)
	s.OnReset(s.reset)
	return s
}

func (s *Synth) initialize(env process.Environment) error {
	poly, err := voice.New[Modulation](env, s.Info().Voices, func(_ int, sampleRate float64) *Voice {
		return newVoice(sampleRate, s.params)
	})
	if err != nil {
		return fmt.Errorf("polysaw: %w", err)
	}
	s.poly = poly

	s.mg = modulation.NewLFO(env.SampleRate)
	s.wheel = modulation.NewLFO(env.SampleRate)
	s.mgEnv = envelope.NewAR(env.SampleRate)
	s.mgEnv.SetRelease(mgRelease)

	s.mgBuf = make([]float32, env.MaxSamplesPerCall)
	s.wheelBuf = make([]float32, env.MaxSamplesPerCall)

	s.volume = param.NewSmootherForTime(param.ExponentialSmoothing, env.SampleRate, volumeSmoothingMs)
	s.reset()
	return nil
}

// reset returns the instrument to its freshly initialized state.
func (s *Synth) reset() {
	if s.poly == nil {
		return
	}
	s.poly.Reset()
	s.mg.Reset()
	s.wheel.Reset()
	s.mgEnv.Reset()
	s.settled = false
}

// Poly exposes the voice pool, mostly for tests and metering.
func (s *Synth) Poly() *voice.Poly[Modulation, *Voice] {
	return s.poly
}

// handleMG restarts the MG delay on every note on and fades the MG out on
// note off.
func (s *Synth) handleMG(data midi.Data) {
	switch data.Type {
	case midi.EventTypeNoteOn:
		s.mgEnv.Duck()
	case midi.EventTypeNoteOff:
		s.mgEnv.Release()
	}
}

// HandleEvents applies note events between buffers.
func (s *Synth) HandleEvents(events []midi.Data, _ param.BufferStates) {
	s.poly.HandleEvents(events)
	for _, e := range events {
		s.handleMG(e)
	}
}

// Process renders one buffer into ctx.Output.
func (s *Synth) Process(ctx *process.Context) {
	numFrames := ctx.NumSamples()
	shared := Modulation{MG: s.mgBuf[:numFrames], Wheel: s.wheelBuf[:numFrames]}
	s.renderModulation(ctx.Events.All(), ctx.Params, shared)

	s.poly.Process(ctx.Events, ctx.Params, shared, ctx.Output)

	// volume and soft clip, the same gain on every channel
	gains := ctx.WorkBuffer()
	volume := ctx.Params.Numeric(s.params.volume).Cursor()
	if !s.settled && len(gains) > 0 {
		s.volume.Reset(gain.DbToLinear(ctx.Params.Numeric(s.params.volume).Value(0)))
		s.settled = true
	}
	for i := range gains {
		s.volume.SetTarget(gain.DbToLinear(volume.Next()))
		gains[i] = float32(s.volume.Next())
	}
	ctx.ApplyGain(gains)
	ctx.ProcessChannels(func(_ int, output []float32) {
		gain.SoftClipBuffer(output, clipThreshold)
	})
}

// renderModulation fills the shared LFO buffers, applying the MG delay
// envelope at each note event's offset.
func (s *Synth) renderModulation(events []midi.Event, params param.BufferStates, out Modulation) {
	mgRate := params.Numeric(s.params.mgRate).Cursor()
	mgDelay := params.Numeric(s.params.mgDelay).Cursor()
	wheelRate := params.Numeric(s.params.wheelRate).Cursor()

	voice.ProcessEvents(events, len(out.MG), s.handleMG, func(start, end int) {
		for i := start; i < end; i++ {
			s.mg.SetFrequency(rateToFrequency(mgRate.Next(), 0))
			s.mgEnv.SetAttack(mgDelay.Next() / 1000)
			out.MG[i] = s.mgEnv.Next() * float32(s.mg.Process())

			// the wheel runs a little slower than the MG so the two
			// don't phase lock
			s.wheel.SetFrequency(rateToFrequency(wheelRate.Next(), -1))
			out.Wheel[i] = float32(s.wheel.Process())
		}
	})
}

// rateToFrequency maps a 0-100% rate to roughly 0.1-20 Hz along a pitch
// scale, offset by detune semitones.
func rateToFrequency(rate, detune float64) float64 {
	return midi.PitchToFrequency(-75+rate*0.9+detune, 0)
}
