package voice

import (
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// rampShared is cross-voice data that depends on the absolute sample
// position, so slicing mistakes show up in the output.
type rampShared struct {
	values []float32
}

func newRampShared(start, n int) rampShared {
	values := make([]float32, n)
	for i := range values {
		values[i] = float32((start+i)%100) / 1000
	}
	return rampShared{values: values}
}

func (r rampShared) Slice(start, end int) rampShared {
	if r.values == nil {
		return r
	}
	return rampShared{values: r.values[start:end]}
}

func (r rampShared) at(i int) float32 {
	if i < len(r.values) {
		return r.values[i]
	}
	return 0
}

type loggedEvent struct {
	data  midi.Data
	clock int
}

// fakeVoice is a phase ramp with a halving release. It only advances
// while rendering, so its output is independent of how calls are split.
type fakeVoice struct {
	maxSamples int
	sampleRate float64

	record bool
	log    []loggedEvent
	bends  []float32
	calls  int

	clock int
	pitch float32
	amp   float32
	gate  bool
	phase float32
}

func newFakeVoice(maxSamples int, sampleRate float64) *fakeVoice {
	return &fakeVoice{maxSamples: maxSamples, sampleRate: sampleRate}
}

func recordingFactory(maxSamples int, sampleRate float64) *fakeVoice {
	v := newFakeVoice(maxSamples, sampleRate)
	v.record = true
	return v
}

func (v *fakeVoice) HandleEvent(d midi.Data) {
	if v.record {
		v.log = append(v.log, loggedEvent{data: d, clock: v.clock})
	}
	switch d.Type {
	case midi.EventTypeNoteOn:
		if v.Quiescent() {
			v.phase = 0
		}
		v.pitch = float32(d.Note.Pitch)
		v.amp = d.Note.Velocity
		v.gate = true
	case midi.EventTypeNoteOff:
		v.gate = false
	}
}

func (v *fakeVoice) Process(events []midi.Event, params param.BufferStates, expression NoteExpressionCurve, shared rampShared, output []float32) {
	v.calls++
	cur := expression.Cursor()
	ProcessEvents(events, len(output), v.HandleEvent, func(start, end int) {
		for i := start; i < end; i++ {
			e := cur.Next()
			if v.record {
				v.bends = append(v.bends, e.PitchBend)
			}
			output[i] = v.amp * (v.phase + e.PitchBend + e.Timbre + shared.at(i))
			v.phase += (v.pitch + e.PitchBend) / 1000
			if v.phase >= 1 {
				v.phase -= 1
			}
			if !v.gate {
				v.amp *= 0.5
				if v.amp < 1e-4 {
					v.amp = 0
				}
			}
			v.clock++
		}
	})
}

func (v *fakeVoice) Quiescent() bool {
	return !v.gate && v.amp == 0
}

func (v *fakeVoice) Reset() {
	*v = fakeVoice{maxSamples: v.maxSamples, sampleRate: v.sampleRate, record: v.record}
}
