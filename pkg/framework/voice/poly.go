package voice

import (
	"fmt"

	"github.com/justyntemme/polyvoice/pkg/dsp"
	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// DefaultMaxEventsPerBuffer bounds the events one Process call reads.
const DefaultMaxEventsPerBuffer = 1024

// ErrInvalidEnvironment is returned by New for an unusable environment.
var ErrInvalidEnvironment = process.ErrInvalidEnvironment

// Options tunes the fixed capacities of a Poly.
type Options struct {
	MaxEventsPerBuffer int
}

// Poly drives a fixed pool of voices of type V. All memory is allocated
// by New; Process and HandleEvents never allocate.
type Poly[S SharedData[S], V Voice[S]] struct {
	state  *State
	voices []V

	maxSamples int
	maxEvents  int

	slotEvents [][]midi.Event
	slotPoints [][]NoteExpressionPoint
	segment    []midi.Event
	mix        []float32
	scratch    []float32

	dropped uint64
}

// New builds a pool of maxVoices voices with default options.
func New[S SharedData[S], V Voice[S]](env process.Environment, maxVoices int, factory Factory[V]) (*Poly[S, V], error) {
	return NewWithOptions[S](env, maxVoices, factory, Options{})
}

// NewWithOptions builds a pool of maxVoices voices, calling factory once
// per slot. It fails with ErrNoVoices or ErrInvalidEnvironment.
func NewWithOptions[S SharedData[S], V Voice[S]](env process.Environment, maxVoices int, factory Factory[V], opts Options) (*Poly[S, V], error) {
	if env.SampleRate <= 0 || env.MaxSamplesPerCall <= 0 {
		return nil, fmt.Errorf("voice pool: sample rate %v, %d samples per call: %w",
			env.SampleRate, env.MaxSamplesPerCall, ErrInvalidEnvironment)
	}
	state, err := NewState(maxVoices)
	if err != nil {
		return nil, fmt.Errorf("voice pool: %w", err)
	}
	maxEvents := opts.MaxEventsPerBuffer
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEventsPerBuffer
	}

	p := &Poly[S, V]{
		state:      state,
		voices:     make([]V, maxVoices),
		maxSamples: env.MaxSamplesPerCall,
		maxEvents:  maxEvents,
		slotEvents: make([][]midi.Event, maxVoices),
		slotPoints: make([][]NoteExpressionPoint, maxVoices),
		// a stolen note adds a NoteOff to the incoming NoteOn
		segment: make([]midi.Event, 0, 2*maxEvents),
		mix:     make([]float32, env.MaxSamplesPerCall),
		scratch: make([]float32, env.MaxSamplesPerCall),
	}
	for i := range p.voices {
		p.voices[i] = factory(env.MaxSamplesPerCall, env.SampleRate)
		p.slotEvents[i] = make([]midi.Event, 0, 2*maxEvents)
		p.slotPoints[i] = make([]NoteExpressionPoint, 0, maxEvents+1)
	}

	debug.Debug("voice pool: %d voices, %d samples per call at %.0f Hz, %d events per buffer",
		maxVoices, env.MaxSamplesPerCall, env.SampleRate, maxEvents)
	return p, nil
}

// NumVoices returns the size of the pool.
func (p *Poly[S, V]) NumVoices() int {
	return len(p.voices)
}

// Voice returns the voice in slot i.
func (p *Poly[S, V]) Voice(i int) V {
	return p.voices[i]
}

// Slot returns the pool's view of slot i.
func (p *Poly[S, V]) Slot(i int) SlotInfo {
	return p.state.Slot(i)
}

// ActiveVoices returns how many slots hold a note. Released notes that
// are still ringing out don't count.
func (p *Poly[S, V]) ActiveVoices() int {
	return p.state.ActiveVoices()
}

// DroppedEvents counts events ignored because a buffer carried more than
// MaxEventsPerBuffer of them.
func (p *Poly[S, V]) DroppedEvents() uint64 {
	return p.dropped
}

// SetProcessing resets the pool and every voice when processing stops, so
// that resuming sounds like a fresh instrument.
func (p *Poly[S, V]) SetProcessing(processing bool) {
	if !processing {
		p.Reset()
	}
}

// Reset returns every slot to idle and resets every voice.
func (p *Poly[S, V]) Reset() {
	p.state.Reset()
	for i := range p.voices {
		p.voices[i].Reset()
	}
	p.dropped = 0
}

// HandleEvents applies events outside of a render, as if they arrived in
// a zero-length buffer.
func (p *Poly[S, V]) HandleEvents(events []midi.Data) {
	for _, data := range events {
		step := p.state.Dispatch(data)
		if step.Voice < 0 {
			continue
		}
		for k := 0; k < step.Len(); k++ {
			p.voices[step.Voice].HandleEvent(step.Event(k))
		}
	}
	p.state.Compress()
}

// Process renders the buffer described by events and adds the sum of all
// voices to every channel of output. Each channel must hold at least
// events.NumFrames() samples.
func (p *Poly[S, V]) Process(events midi.Events, params param.BufferStates, shared S, output [][]float32) {
	numFrames := events.NumFrames()
	p.dispatch(events.All())

	for start := 0; start < numFrames; start += p.maxSamples {
		end := min(start+p.maxSamples, numFrames)
		p.renderWindow(start, end, params, shared, output)
	}

	p.state.Compress()
}

// dispatch runs every event through the pool, collecting the events and
// expression breakpoints of each slot.
func (p *Poly[S, V]) dispatch(events []midi.Event) {
	for i := range p.voices {
		p.slotEvents[i] = p.slotEvents[i][:0]
		p.slotPoints[i] = append(p.slotPoints[i][:0], NoteExpressionPoint{State: p.state.Expression(i)})
	}

	if len(events) > p.maxEvents {
		p.dropped += uint64(len(events) - p.maxEvents)
		events = events[:p.maxEvents]
	}

	for _, e := range events {
		step := p.state.Dispatch(e.Data)
		if step.Voice < 0 {
			continue
		}
		v := step.Voice
		for k := 0; k < step.Len(); k++ {
			p.slotEvents[v] = append(p.slotEvents[v], midi.Event{SampleOffset: e.SampleOffset, Data: step.Event(k)})
		}
		if step.HasExpression {
			points := p.slotPoints[v]
			if last := &points[len(points)-1]; last.SampleOffset == e.SampleOffset {
				last.State = step.Expression
			} else {
				p.slotPoints[v] = append(points, NoteExpressionPoint{SampleOffset: e.SampleOffset, State: step.Expression})
			}
		}
	}
}

// renderWindow renders [start, end) of the buffer, which fits in the
// voices' maximum call size.
func (p *Poly[S, V]) renderWindow(start, end int, params param.BufferStates, shared S, output [][]float32) {
	mix := p.mix[:end-start]
	clear(mix)

	for v := range p.voices {
		events := p.slotEvents[v]
		first := 0
		for first < len(events) && events[first].SampleOffset < start {
			first++
		}
		curve := curveFromPoints(p.slotPoints[v])

		pos := start
		next := first
		for pos < end {
			// events at pos belong to this segment; the next note event
			// after pos starts a new one
			segEnd := end
			last := next
			for last < len(events) && events[last].SampleOffset < end {
				if events[last].SampleOffset > pos {
					segEnd = events[last].SampleOffset
					break
				}
				last++
			}

			if last == next && p.voices[v].Quiescent() {
				pos = segEnd
				continue
			}

			p.segment = p.segment[:0]
			for _, e := range events[next:last] {
				e.SampleOffset -= pos
				p.segment = append(p.segment, e)
			}

			out := p.scratch[:segEnd-pos]
			clear(out)
			p.voices[v].Process(p.segment, params.Slice(pos, segEnd), curve.Slice(pos, segEnd), shared.Slice(pos, segEnd), out)

			dsp.Add(mix[pos-start:], out)

			next = last
			pos = segEnd
		}
	}

	for ch := range output {
		dsp.Add(output[ch][start:end], mix)
	}
}
