package polysaw

import (
	"math"

	"github.com/justyntemme/polyvoice/pkg/dsp/envelope"
	"github.com/justyntemme/polyvoice/pkg/dsp/filter"
	"github.com/justyntemme/polyvoice/pkg/dsp/oscillator"
	"github.com/justyntemme/polyvoice/pkg/dsp/utility"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/voice"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

const (
	// PitchBendWidth is the range of the Pitch Bend parameter in semitones.
	PitchBendWidth = 2.0
	// MaxWheelDepth is the wheel LFO depth in semitones at full wheel.
	MaxWheelDepth = 12.0
	// MaxTimbreDepth is how far full timbre opens the filter, in semitones.
	MaxTimbreDepth = 60.0
	// MaxMGDepth is the MG depth in semitones at 100%.
	MaxMGDepth = 12.0

	trackingBase = 60.0
	voiceLevel   = 0.3
	dcCutoffHz   = 10.0
)

// Voice is one polysaw note.
type Voice struct {
	sampleRate float64
	params     *params

	osc *oscillator.Oscillator
	vcf *filter.SVF
	env *envelope.ADSR
	dc  *utility.DCBlocker

	pitch    float64
	velocity float32
}

func newVoice(sampleRate float64, p *params) *Voice {
	return &Voice{
		sampleRate: sampleRate,
		params:     p,
		osc:        oscillator.New(sampleRate),
		vcf:        filter.NewSVF(sampleRate),
		env:        envelope.New(sampleRate),
		dc:         utility.NewDCBlocker(dcCutoffHz, sampleRate),
	}
}

// HandleEvent starts or releases the note. A silent voice clears its
// oscillator and filter state first.
func (v *Voice) HandleEvent(data midi.Data) {
	switch data.Type {
	case midi.EventTypeNoteOn:
		if v.env.Quiescent() {
			v.osc.Reset()
			v.vcf.Reset()
			v.dc.Reset()
		}
		v.pitch = float64(data.Note.Pitch) + float64(data.Note.Tuning)
		v.velocity = data.Note.Velocity
		v.env.Trigger()
	case midi.EventTypeNoteOff:
		v.env.Release()
	}
}

// cursors walks every numeric parameter a voice reads per sample.
type cursors struct {
	width, cutoff, resonance, tracking, filterEnv param.Cursor
	attack, decay, sustain, release, velocity     param.Cursor
	mgPitch, mgFilter                             param.Cursor
	wheel, wheelPitch, wheelFilter                param.Cursor
	pitchBend, timbre, timbreFilter               param.Cursor
}

func (v *Voice) cursors(states param.BufferStates) cursors {
	p := v.params
	c := func(q *param.Parameter) param.Cursor {
		return states.Numeric(q).Cursor()
	}
	return cursors{
		width: c(p.width), cutoff: c(p.cutoff), resonance: c(p.resonance),
		tracking: c(p.tracking), filterEnv: c(p.filterEnv),
		attack: c(p.attack), decay: c(p.decay), sustain: c(p.sustain),
		release: c(p.release), velocity: c(p.velocity),
		mgPitch: c(p.mgPitch), mgFilter: c(p.mgFilter),
		wheel: c(p.wheel), wheelPitch: c(p.wheelPitch), wheelFilter: c(p.wheelFilter),
		pitchBend: c(p.pitchBend), timbre: c(p.timbre), timbreFilter: c(p.timbreFilter),
	}
}

func (v *Voice) Process(events []midi.Event, states param.BufferStates, expression voice.NoteExpressionCurve, shared Modulation, output []float32) {
	pc := v.cursors(states)
	shape := states.Numeric(v.params.shape)
	mode := states.Numeric(v.params.filterMode)
	expr := expression.Cursor()

	voice.ProcessEvents(events, len(output), v.HandleEvent, func(start, end int) {
		for i := start; i < end; i++ {
			st := expr.Next()
			mg := float64(shared.MG[i])
			wheelMG := float64(shared.Wheel[i]) * pc.wheel.Next() * 0.01

			v.env.SetADSR(pc.attack.Next()/1000, pc.decay.Next()/1000, pc.sustain.Next()*0.01, pc.release.Next()/1000)
			env := float64(v.env.Next())

			bend := pc.pitchBend.Next()*PitchBendWidth + float64(st.PitchBend)
			timbre := pc.timbre.Next() + float64(st.Timbre)

			pitch := v.pitch + bend +
				MaxMGDepth*pc.mgPitch.Next()*0.01*mg +
				MaxWheelDepth*pc.wheelPitch.Next()*0.01*wheelMG
			v.osc.SetIncrement(oscillator.PitchToIncrement(pitch, v.sampleRate))

			width := pc.width.Next()
			var x float32
			switch Shape(shape.Index(i)) {
			case ShapeSquare:
				x = v.osc.Square()
			case ShapeTriangle:
				x = v.osc.Triangle()
			case ShapePulse:
				x = v.osc.Pulse(0.05 + 0.009*width)
			default:
				x = v.osc.Saw()
			}

			cutoff := pc.cutoff.Next() +
				MaxMGDepth*pc.mgFilter.Next()*0.01*mg +
				MaxWheelDepth*pc.wheelFilter.Next()*0.01*wheelMG +
				MaxTimbreDepth*pc.timbreFilter.Next()*0.01*timbre +
				0.01*(pc.tracking.Next()*(v.pitch+bend-trackingBase)+pc.filterEnv.Next()*env*128)
			v.vcf.SetFrequency(v.sampleRate, midi.PitchToFrequency(cutoff, 0))
			v.vcf.SetQ(math.Exp2(-0.5 + 0.035*pc.resonance.Next()))
			x = v.vcf.Process(x, filter.Mode(mode.Index(i)))

			sens := pc.velocity.Next() * 0.01
			level := float32(1 + (float64(v.velocity)-1)*sens)
			level += (1 - level) * st.Aftertouch

			output[i] = v.dc.Process(x) * float32(env) * level * voiceLevel
		}
	})
}

// Quiescent reports whether the envelope has finished.
func (v *Voice) Quiescent() bool {
	return v.env.Quiescent()
}

func (v *Voice) Reset() {
	v.osc.Reset()
	v.vcf.Reset()
	v.env.Reset()
	v.dc.Reset()
	v.pitch = 0
	v.velocity = 0
}
