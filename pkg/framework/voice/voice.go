// Package voice implements the polyphonic voice engine: a fixed pool of
// voices, note-to-voice assignment with stealing, per-note expression
// curves and the sample-accurate render loop that drives and mixes the
// voices.
package voice

import (
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// Voice renders one note at a time. S is the cross-voice data the
// instrument computes once per buffer (an LFO, for example).
type Voice[S any] interface {
	// HandleEvent applies a NoteOn or NoteOff. It must not render.
	HandleEvent(event midi.Data)

	// Process renders exactly len(output) samples into output. Events are
	// relative to the start of output and must be handled at their
	// offsets. Expression, params and shared cover the same range.
	Process(events []midi.Event, params param.BufferStates, expression NoteExpressionCurve, shared S, output []float32)

	// Quiescent reports that the voice will output silence, and not change
	// state, until its next NoteOn.
	Quiescent() bool

	// Reset returns the voice to its freshly constructed state.
	Reset()
}

// Factory constructs a voice for buffers of up to maxSamplesPerCall.
type Factory[V any] func(maxSamplesPerCall int, sampleRate float64) V

// SharedData is the cross-voice data handed to every voice. Slice must
// narrow it to [start, end) of the current buffer without allocating.
type SharedData[S any] interface {
	Slice(start, end int) S
}

// NoSharedData is the SharedData of instruments without cross-voice data.
type NoSharedData struct{}

func (NoSharedData) Slice(start, end int) NoSharedData {
	return NoSharedData{}
}

// ProcessEvents splits a render of numFrames samples at event offsets:
// render is called for each run of samples and handle for each event, in
// time order.
func ProcessEvents(events []midi.Event, numFrames int, handle func(midi.Data), render func(start, end int)) {
	pos := 0
	for _, e := range events {
		if e.SampleOffset > pos {
			render(pos, e.SampleOffset)
			pos = e.SampleOffset
		}
		handle(e.Data)
	}
	if pos < numFrames {
		render(pos, numFrames)
	}
}
