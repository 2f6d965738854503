package plugin

import (
	"fmt"

	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
)

// Base provides the parts every instrument shares: metadata, the
// parameter registry, the processing environment and lifecycle hooks.
type Base struct {
	info   Info
	params *param.Registry
	env    process.Environment

	onInitialize    func(env process.Environment) error
	onSetProcessing func(processing bool)
	onReset         func()
}

func NewBase(info Info) *Base {
	return &Base{
		info:   info,
		params: param.NewRegistry(),
	}
}

func (b *Base) Info() Info {
	return b.info
}

// Parameters returns the parameter registry for configuration
func (b *Base) Parameters() *param.Registry {
	return b.params
}

// Environment returns the environment passed to Initialize.
func (b *Base) Environment() process.Environment {
	return b.env
}

// Initialize validates env and runs the OnInitialize hook.
func (b *Base) Initialize(env process.Environment) error {
	if err := b.info.Validate(); err != nil {
		return err
	}
	if err := env.Validate(); err != nil {
		return fmt.Errorf("%s: %w", b.info.Name, err)
	}
	b.env = env

	debug.Debug("%s: initialize at %.0f Hz, %d samples per call, %d channels",
		b.info.Name, env.SampleRate, env.MaxSamplesPerCall, env.Channels)

	if b.onInitialize != nil {
		return b.onInitialize(env)
	}
	return nil
}

// SetProcessing runs the OnSetProcessing hook, then OnReset when
// processing stops.
func (b *Base) SetProcessing(processing bool) {
	if b.onSetProcessing != nil {
		b.onSetProcessing(processing)
	}
	if !processing && b.onReset != nil {
		b.onReset()
	}
}

func (b *Base) OnInitialize(fn func(env process.Environment) error) {
	b.onInitialize = fn
}

func (b *Base) OnSetProcessing(fn func(processing bool)) {
	b.onSetProcessing = fn
}

// OnReset sets a callback for when the instrument should drop all sounding notes
func (b *Base) OnReset(fn func()) {
	b.onReset = fn
}
