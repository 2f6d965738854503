// Package snapshot renders instruments offline for tests. The helpers
// render the same material in different ways (buffer sizes, resets,
// events delivered outside of buffers) so that tests can require the
// results to match.
package snapshot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

var ErrMismatch = errors.New("snapshots differ")

// Params configures a snapshot render. Rendering is always mono.
type Params struct {
	SampleRate    float64
	MaxBufferSize int
}

func DefaultParams() Params {
	return Params{SampleRate: 48000, MaxBufferSize: 512}
}

// Factory creates a fresh, uninitialized instrument.
type Factory func() plugin.Synth

// Overrides maps parameter names to display strings, e.g. "Cutoff": "2 kHz".
type Overrides map[string]string

// renderer streams an instrument through consecutive buffers of at most
// maxBufferSize samples.
type renderer struct {
	synth  plugin.Synth
	params Params
	ctx    *process.Context
	queue  *midi.EventQueue
	events []midi.Event
}

func newRenderer(factory Factory, p Params, overrides Overrides) (*renderer, error) {
	synth := factory()
	env := process.Environment{
		SampleRate:        p.SampleRate,
		MaxSamplesPerCall: p.MaxBufferSize,
		Channels:          1,
	}
	if err := synth.Initialize(env); err != nil {
		return nil, err
	}

	reg := synth.Parameters()
	reg.ResetToDefaults()
	for _, name := range sortedKeys(overrides) {
		if err := reg.Set(name, overrides[name]); err != nil {
			return nil, err
		}
	}

	return &renderer{
		synth:  synth,
		params: p,
		ctx:    process.NewContext(env),
		queue:  midi.NewEventQueue(),
		events: make([]midi.Event, 0, 64),
	}, nil
}

// render processes numFrames samples with events placed relative to the
// first of them.
func (r *renderer) render(numFrames int, events []midi.Event) ([]float32, error) {
	r.queue.Clear()
	for _, e := range events {
		r.queue.Add(midi.TimedEvent{Time: int64(e.SampleOffset), Data: e.Data})
	}

	output := make([]float32, numFrames)
	for start := 0; start < numFrames; start += r.params.MaxBufferSize {
		end := min(start+r.params.MaxBufferSize, numFrames)

		r.events = r.queue.EventsInRange(int64(start), int64(end), r.events[:0])
		buffer, err := midi.NewEvents(r.events, end-start)
		if err != nil {
			return nil, fmt.Errorf("buffer at %d: %w", start, err)
		}

		r.ctx.Prepare(end-start, buffer, param.NewBufferStates(r.synth.Parameters(), end-start))
		r.synth.Process(r.ctx)
		copy(output[start:end], r.ctx.Output[0])
	}
	return output, nil
}

// Generate renders numFrames samples of a fresh instrument, splitting the
// render into buffers of p.MaxBufferSize.
func Generate(factory Factory, numFrames int, p Params, overrides Overrides, events []midi.Event) ([]float32, error) {
	r, err := newRenderer(factory, p, overrides)
	if err != nil {
		return nil, err
	}
	r.synth.SetProcessing(true)
	return r.render(numFrames, events)
}

// GenerateWithReset renders the events twice on one instrument, stopping
// and restarting processing in between. A correct instrument produces the
// same output both times.
func GenerateWithReset(factory Factory, numFrames int, p Params, overrides Overrides, events []midi.Event) (before, after []float32, err error) {
	r, err := newRenderer(factory, p, overrides)
	if err != nil {
		return nil, nil, err
	}

	r.synth.SetProcessing(true)
	if before, err = r.render(numFrames, events); err != nil {
		return nil, nil, err
	}
	r.synth.SetProcessing(false)
	r.synth.SetProcessing(true)
	if after, err = r.render(numFrames, events); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// GenerateSeparateEvents delivers every event through HandleEvents and
// renders the audio between events with empty buffers.
func GenerateSeparateEvents(factory Factory, numFrames int, p Params, overrides Overrides, events []midi.Event) ([]float32, error) {
	r, err := newRenderer(factory, p, overrides)
	if err != nil {
		return nil, err
	}
	r.synth.SetProcessing(true)

	output := make([]float32, numFrames)
	states := param.NewBufferStates(r.synth.Parameters(), 0)
	data := make([]midi.Data, 1)
	pos, next := 0, 0
	for pos < numFrames {
		for next < len(events) && events[next].SampleOffset <= pos {
			data[0] = events[next].Data
			r.synth.HandleEvents(data, states)
			next++
		}

		to := numFrames
		if next < len(events) {
			to = min(events[next].SampleOffset, numFrames)
		}
		chunk, err := r.render(to-pos, nil)
		if err != nil {
			return nil, err
		}
		copy(output[pos:to], chunk)
		pos = to
	}
	return output, nil
}

// SingleNoteEvents holds middle C from the start for 80% of numFrames.
func SingleNoteEvents(numFrames int) []midi.Event {
	note := midi.NoteData{ID: midi.NoteIDFromPitch(60), Pitch: 60, Velocity: 1}
	return []midi.Event{
		{SampleOffset: 0, Data: midi.NoteOn(note)},
		{SampleOffset: int(float32(numFrames) * 0.8), Data: midi.NoteOff(note)},
	}
}

// Basic renders a single note with the default params.
func Basic(factory Factory, numFrames int, overrides Overrides) ([]float32, error) {
	return Generate(factory, numFrames, DefaultParams(), overrides, SingleNoteEvents(numFrames))
}

// AllApproxEqual reports how a and b differ when any pair of samples is
// further apart than tolerance.
func AllApproxEqual(a, b []float32, tolerance float32) error {
	if diff := debug.CompareBuffers(a, b, tolerance); diff != "" {
		return fmt.Errorf("%w: %s", ErrMismatch, diff)
	}
	return nil
}

func sortedKeys(m Overrides) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
