package sine

import (
	"math"

	"github.com/justyntemme/polyvoice/pkg/dsp/envelope"
	"github.com/justyntemme/polyvoice/pkg/dsp/oscillator"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/voice"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// voiceLevel leaves headroom for all voices sounding at once.
const voiceLevel = 0.25

// Voice plays one sine note. Per-note pitch bend shifts the pitch in
// semitones and aftertouch raises the level towards full scale. Transpose
// and the A4 reference shift every note.
type Voice struct {
	sampleRate float64

	osc *oscillator.Oscillator
	env *envelope.AR

	attack    *param.Parameter
	release   *param.Parameter
	transpose *param.Parameter
	tuning    *param.Parameter

	pitch    float64
	offset   float64 // transpose plus tuning, in semitones
	bend     float32
	velocity float32
}

func newVoice(sampleRate float64, attack, release, transpose, tuning *param.Parameter) *Voice {
	return &Voice{
		sampleRate: sampleRate,
		osc:        oscillator.New(sampleRate),
		env:        envelope.NewAR(sampleRate),
		attack:     attack,
		release:    release,
		transpose:  transpose,
		tuning:     tuning,
	}
}

// pitchOffset converts a transpose and an A4 reference into semitones.
func pitchOffset(transpose, a4 float64) float64 {
	return transpose + 12*math.Log2(a4/440)
}

// HandleEvent starts or releases the note. A voice that has gone silent
// restarts its oscillator phase on the next note.
func (v *Voice) HandleEvent(data midi.Data) {
	switch data.Type {
	case midi.EventTypeNoteOn:
		if v.env.Quiescent() {
			v.osc.Reset()
		}
		v.pitch = float64(data.Note.Pitch) + float64(data.Note.Tuning)
		v.velocity = data.Note.Velocity
		v.tune()
		v.env.Trigger()
	case midi.EventTypeNoteOff:
		v.env.Release()
	}
}

func (v *Voice) tune() {
	v.osc.SetIncrement(oscillator.PitchToIncrement(v.pitch+v.offset+float64(v.bend), v.sampleRate))
}

func (v *Voice) Process(events []midi.Event, params param.BufferStates, expression voice.NoteExpressionCurve, _ voice.NoSharedData, output []float32) {
	attack := params.Numeric(v.attack).Cursor()
	release := params.Numeric(v.release).Cursor()
	transpose := params.Numeric(v.transpose).Cursor()
	tuning := params.Numeric(v.tuning).Cursor()
	expr := expression.Cursor()

	voice.ProcessEvents(events, len(output), v.HandleEvent, func(start, end int) {
		for i := start; i < end; i++ {
			v.env.SetAttack(attack.Next() / 1000)
			v.env.SetRelease(release.Next() / 1000)

			offset := pitchOffset(transpose.Next(), tuning.Next())
			state := expr.Next()
			if state.PitchBend != v.bend || offset != v.offset {
				v.bend = state.PitchBend
				v.offset = offset
				v.tune()
			}

			amp := v.velocity + (1-v.velocity)*state.Aftertouch
			output[i] = v.osc.Sine() * v.env.Next() * amp * voiceLevel
		}
	})
}

// Quiescent reports whether the envelope has finished.
func (v *Voice) Quiescent() bool {
	return v.env.Quiescent()
}

func (v *Voice) Reset() {
	v.osc.Reset()
	v.env.Reset()
	v.pitch = 0
	v.offset = 0
	v.bend = 0
	v.velocity = 0
}
