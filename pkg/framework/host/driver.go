// Package host streams an instrument in real time: it pulls events off
// an absolute-time queue, calls the instrument one buffer at a time and
// hands interleaved frames to an audio backend.
package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// Driver renders a Synth on the sample clock of its EventQueue. Render and
// Read must be called from one goroutine; Position may be read from any.
type Driver struct {
	synth    plugin.Synth
	env      process.Environment
	queue    *midi.EventQueue
	ctx      *process.Context
	profiler *debug.RenderProfiler

	events   []midi.Event
	frames   []float32
	position atomic.Int64
	late     atomic.Uint64
}

// NewDriver initializes synth for env and starts processing.
func NewDriver(synth plugin.Synth, env process.Environment, queue *midi.EventQueue) (*Driver, error) {
	if err := synth.Initialize(env); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", synth.Info().Name, err)
	}

	d := &Driver{
		synth:    synth,
		env:      env,
		queue:    queue,
		ctx:      process.NewContext(env),
		profiler: debug.NewRenderProfiler(env.SampleRate),
		events:   make([]midi.Event, 0, 256),
		frames:   make([]float32, env.MaxSamplesPerCall*env.Channels),
	}
	synth.SetProcessing(true)

	debug.Info("%s: %d voices at %.0f Hz, %d-sample buffers",
		synth.Info(), synth.Info().Voices, env.SampleRate, env.MaxSamplesPerCall)
	return d, nil
}

func (d *Driver) Environment() process.Environment {
	return d.env
}

// Position returns the sample time of the next frame to be rendered.
func (d *Driver) Position() int64 {
	return d.position.Load()
}

// LateEvents counts events that were queued for a time already rendered.
// They play at the start of the next buffer.
func (d *Driver) LateEvents() uint64 {
	return d.late.Load()
}

func (d *Driver) Profiler() *debug.RenderProfiler {
	return d.profiler
}

// Render fills out with interleaved frames. len(out) must be a multiple
// of the channel count.
func (d *Driver) Render(out []float32) {
	channels := d.env.Channels
	numFrames := len(out) / channels
	for pos := 0; pos < numFrames; {
		n := min(numFrames-pos, d.env.MaxSamplesPerCall)
		d.renderBuffer(n)
		d.ctx.Interleave(out[pos*channels : (pos+n)*channels])
		pos += n
	}
}

// Read implements io.Reader with little-endian float32 frames, the
// format audio players pull. Partial frames are never returned.
func (d *Driver) Read(p []byte) (int, error) {
	frameBytes := 4 * d.env.Channels
	numFrames := min(len(p)/frameBytes, d.env.MaxSamplesPerCall)
	if numFrames == 0 {
		return 0, nil
	}

	frames := d.frames[:numFrames*d.env.Channels]
	d.Render(frames)
	for i, s := range frames {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return len(frames) * 4, nil
}

// Stop silences the instrument. Queued events are kept.
func (d *Driver) Stop() {
	d.synth.SetProcessing(false)
}

func (d *Driver) renderBuffer(numFrames int) {
	start := d.position.Load()
	end := start + int64(numFrames)

	// the queue holds times >= 0, so asking from 0 also returns events
	// that arrived after their buffer was rendered
	d.events = d.queue.EventsInRange(0, end, d.events[:0])
	for i := range d.events {
		offset := d.events[i].SampleOffset - int(start)
		if offset < 0 {
			offset = 0
			d.late.Add(1)
		}
		d.events[i].SampleOffset = offset
	}
	d.queue.RemoveProcessedEvents(end)

	events, err := midi.NewEvents(d.events, numFrames)
	if err != nil {
		// unreachable with a sorted queue
		debug.Error("dropping events at %d: %v", start, err)
		events = midi.EmptyEvents(numFrames)
	}

	began := time.Now()
	d.ctx.Prepare(numFrames, events, param.NewBufferStates(d.synth.Parameters(), numFrames))
	d.synth.Process(d.ctx)
	d.profiler.RecordRender(time.Since(began), numFrames)

	d.position.Store(end)
}
