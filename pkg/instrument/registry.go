// Package instrument names the instruments the command line can play.
package instrument

import (
	"errors"
	"fmt"
	"sort"

	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/instrument/polysaw"
	"github.com/justyntemme/polyvoice/pkg/instrument/sine"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Constructor creates a fresh, uninitialized instrument.
type Constructor func() plugin.Synth

var registry = map[string]Constructor{
	"sine":    func() plugin.Synth { return sine.New() },
	"polysaw": func() plugin.Synth { return polysaw.New() },
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q (have %v): %w", name, Names(), ErrUnknownInstrument)
	}
	return c, nil
}

// Names returns the registered instrument names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
