// Package sine is a small polyphonic instrument: one sine oscillator and
// an attack/release envelope per voice.
package sine

import (
	"fmt"

	"github.com/justyntemme/polyvoice/pkg/dsp"
	"github.com/justyntemme/polyvoice/pkg/dsp/gain"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/framework/voice"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// Parameter IDs
const (
	ParamAttack uint32 = iota
	ParamRelease
	ParamLevel
	ParamTranspose
	ParamTuning
)

// NumVoices is the size of the sine voice pool.
const NumVoices = 8

// Synth is the sine instrument. Initialize must be called before
// processing.
type Synth struct {
	*plugin.Base

	attack  *param.Parameter
	release *param.Parameter
	level   *param.Parameter

	transpose *param.Parameter
	tuning    *param.Parameter

	poly *voice.Poly[voice.NoSharedData, *Voice]
}

// New builds an uninitialized sine instrument with default parameters.
func New() *Synth {
	s := &Synth{
		Base: plugin.NewBase(plugin.Info{
			ID:       "com.polyvoice.sine",
			Name:     "Sine",
			Version:  "1.0.0",
			Vendor:   "polyvoice",
			Category: "Instrument|Synth",
			Voices:   NumVoices,
		}),
		attack:  param.TimeParameter(ParamAttack, "Attack", 1, 5000, 10).Build(),
		release: param.TimeParameter(ParamRelease, "Release", 1, 5000, 100).Build(),
		level:   param.GainParameter(ParamLevel, "Level").Default(-6).Build(),

		transpose: param.SemitoneParameter(ParamTranspose, "Transpose", 24, 0).Build(),
		// reference pitch of A4
		tuning: param.FrequencyParameter(ParamTuning, "Tuning", 415, 466, 440).ShortName("A4").Build(),
	}
	s.Parameters().Add(s.attack, s.release, s.level, s.transpose, s.tuning)

	s.OnInitialize(s.initialize)
	s.OnReset(func() {
		if s.poly != nil {
			s.poly.Reset()
		}
	})
	return s
}

func (s *Synth) initialize(env process.Environment) error {
	poly, err := voice.New[voice.NoSharedData](env, s.Info().Voices, func(_ int, sampleRate float64) *Voice {
		return newVoice(sampleRate, s.attack, s.release, s.transpose, s.tuning)
	})
	if err != nil {
		return fmt.Errorf("sine: %w", err)
	}
	s.poly = poly
	return nil
}

// Poly exposes the voice pool, mostly for tests and metering.
func (s *Synth) Poly() *voice.Poly[voice.NoSharedData, *Voice] {
	return s.poly
}

// HandleEvents applies note events between buffers.
func (s *Synth) HandleEvents(events []midi.Data, _ param.BufferStates) {
	s.poly.HandleEvents(events)
}

// Process renders one buffer into ctx.Output.
func (s *Synth) Process(ctx *process.Context) {
	s.poly.Process(ctx.Events, ctx.Params, voice.NoSharedData{}, ctx.Output)

	level := ctx.Params.Numeric(s.level)
	if level.IsConstant() {
		g := float32(gain.DbToLinear(level.Value(0)))
		ctx.ProcessChannels(func(_ int, output []float32) {
			dsp.Scale(output, g)
		})
		return
	}

	gains := ctx.WorkBuffer()
	cursor := level.Cursor()
	for i := range gains {
		gains[i] = float32(gain.DbToLinear(cursor.Next()))
	}
	ctx.ApplyGain(gains)
}
