// Package plugin provides instrument metadata, a shared base and the
// processor contract the host driver talks to.
package plugin

import (
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

// Synth is implemented by every instrument.
type Synth interface {
	Info() Info
	Parameters() *param.Registry

	// Initialize is called once before the first SetProcessing(true).
	Initialize(env process.Environment) error

	// SetProcessing(false) silences every voice and forgets all notes.
	SetProcessing(processing bool)

	// HandleEvents applies events outside of any buffer.
	HandleEvents(events []midi.Data, params param.BufferStates)

	// Process adds one buffer of output into ctx.Output - no allocations!
	Process(ctx *process.Context)
}
