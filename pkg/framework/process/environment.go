package process

import (
	"errors"
	"fmt"
)

// ErrInvalidEnvironment is returned for a non-positive sample rate,
// buffer size or channel count.
var ErrInvalidEnvironment = errors.New("invalid processing environment")

// Environment is fixed when an instrument is constructed.
type Environment struct {
	SampleRate        float64
	MaxSamplesPerCall int
	Channels          int
}

func (e Environment) Validate() error {
	if e.SampleRate <= 0 {
		return fmt.Errorf("sample rate %v: %w", e.SampleRate, ErrInvalidEnvironment)
	}
	if e.MaxSamplesPerCall <= 0 {
		return fmt.Errorf("max samples per call %d: %w", e.MaxSamplesPerCall, ErrInvalidEnvironment)
	}
	if e.Channels <= 0 {
		return fmt.Errorf("%d channels: %w", e.Channels, ErrInvalidEnvironment)
	}
	return nil
}
