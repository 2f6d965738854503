package plugin

import (
	"errors"
	"fmt"
)

var ErrInvalidInfo = errors.New("invalid instrument info")

// Info contains instrument metadata
type Info struct {
	ID       string // Unique identifier (e.g., "com.polyvoice.sine")
	Name     string // Display name, also the CLI lookup key
	Version  string
	Vendor   string
	Category string // e.g. "Instrument|Synth"
	Voices   int    // Pool size
}

// Validate checks the fields the host relies on.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInfo)
	}
	if i.Name == "" {
		return fmt.Errorf("%w: %s has no name", ErrInvalidInfo, i.ID)
	}
	if i.Voices < 1 {
		return fmt.Errorf("%w: %s has %d voices", ErrInvalidInfo, i.ID, i.Voices)
	}
	return nil
}

func (i Info) String() string {
	if i.Vendor == "" {
		return fmt.Sprintf("%s %s", i.Name, i.Version)
	}
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.Vendor)
}
