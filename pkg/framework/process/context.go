// Package process provides the per-call processing context handed to
// instruments.
package process

import (
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// Context describes one processing call: the output channels to add into,
// the events that fall inside them and the parameter view.
type Context struct {
	Output     [][]float32
	Events     midi.Events
	Params     param.BufferStates
	SampleRate float64

	channels   [][]float32
	workBuffer []float32
}

// NewContext pre-allocates output channels and a work buffer for env.
func NewContext(env Environment) *Context {
	channels := make([][]float32, env.Channels)
	for ch := range channels {
		channels[ch] = make([]float32, env.MaxSamplesPerCall)
	}
	return &Context{
		SampleRate: env.SampleRate,
		channels:   channels,
		workBuffer: make([]float32, env.MaxSamplesPerCall),
	}
}

// Prepare points Output at the first numFrames samples of the owned
// channels, zeroes them and stores the events and parameters.
func (c *Context) Prepare(numFrames int, events midi.Events, params param.BufferStates) {
	if c.Output == nil || len(c.Output) != len(c.channels) {
		c.Output = make([][]float32, len(c.channels))
	}
	for ch := range c.channels {
		c.Output[ch] = c.channels[ch][:numFrames]
	}
	c.Events = events
	c.Params = params
	c.Clear()
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Output) > 0 {
		return len(c.Output[0])
	}
	return c.Events.NumFrames()
}

func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	return c.workBuffer[:c.NumSamples()]
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}
