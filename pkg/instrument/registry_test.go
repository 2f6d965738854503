package instrument

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			synth := c()
			if err := synth.Info().Validate(); err != nil {
				t.Errorf("Invalid info: %v", err)
			}
			if synth.Parameters().Count() == 0 {
				t.Error("Expected parameters")
			}
		})
	}

	if _, err := Lookup("theremin"); !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("Expected ErrUnknownInstrument, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 2 || names[0] != "polysaw" || names[1] != "sine" {
		t.Errorf("Expected [polysaw sine], got %v", names)
	}
}
