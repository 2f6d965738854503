// Package envelope provides envelope generators for voices and modulation.
package envelope

import "math"

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents envelope idle state
	StageIdle Stage = iota
	// StageAttack represents envelope attack phase
	StageAttack
	// StageDecay represents envelope decay phase
	StageDecay
	// StageSustain represents envelope sustain phase
	StageSustain
	// StageRelease represents envelope release phase
	StageRelease
)

// ADSR implements an Attack-Decay-Sustain-Release envelope generator
type ADSR struct {
	sampleRate float64

	// Parameters (in seconds for A,D,R and 0-1 for S)
	attack  float64
	decay   float64
	sustain float64
	release float64

	// Coefficients (pre-calculated for efficiency)
	attackCoef  float64
	decayCoef   float64
	releaseCoef float64

	// State
	stage  Stage
	value  float64
	target float64
}

// New creates a new ADSR envelope
func New(sampleRate float64) *ADSR {
	env := &ADSR{
		sampleRate: sampleRate,
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
		stage:      StageIdle,
		value:      0.0,
		target:     0.0,
	}
	env.updateCoefficients()
	return env
}

// SetAttack sets the attack time in seconds
func (e *ADSR) SetAttack(seconds float64) {
	e.attack = math.Max(0.001, seconds) // Minimum 1ms
	e.updateCoefficients()
}

// SetDecay sets the decay time in seconds
func (e *ADSR) SetDecay(seconds float64) {
	e.decay = math.Max(0.001, seconds)
	e.updateCoefficients()
}

// SetSustain sets the sustain level (0-1)
func (e *ADSR) SetSustain(level float64) {
	e.sustain = math.Max(0.0, math.Min(1.0, level))
}

// SetRelease sets the release time in seconds
func (e *ADSR) SetRelease(seconds float64) {
	e.release = math.Max(0.001, seconds)
	e.updateCoefficients()
}

// SetADSR sets all parameters at once. Coefficients are only recomputed
// when a time changes, so it is cheap to call once per render.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	attack = math.Max(0.001, attack)
	decay = math.Max(0.001, decay)
	release = math.Max(0.001, release)
	e.sustain = math.Max(0.0, math.Min(1.0, sustain))
	if attack == e.attack && decay == e.decay && release == e.release {
		return
	}
	e.attack, e.decay, e.release = attack, decay, release
	e.updateCoefficients()
}

// updateCoefficients recalculates the exponential coefficients
func (e *ADSR) updateCoefficients() {
	// Using exponential curves for natural sound
	// coef = exp(-1 / (time * sampleRate))
	e.attackCoef = calcCoef(e.attack, e.sampleRate)
	e.decayCoef = calcCoef(e.decay, e.sampleRate)
	e.releaseCoef = calcCoef(e.release, e.sampleRate)
}

// calcCoef calculates exponential coefficient for a given time
func calcCoef(timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0.0 {
		return 0.0
	}
	return math.Exp(-1.0 / (timeSeconds * sampleRate))
}

// Trigger starts the attack stage (note on). A sounding envelope attacks
// from its current value rather than jumping back to zero.
func (e *ADSR) Trigger() {
	e.stage = StageAttack
	e.target = 1.0
}

// Release starts the release stage (note off)
func (e *ADSR) Release() {
	if e.stage != StageIdle {
		e.stage = StageRelease
		e.target = 0.0
	}
}

// Reset immediately returns the envelope to idle
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0.0
	e.target = 0.0
}

// Quiescent reports whether the envelope is idle and outputs zero.
func (e *ADSR) Quiescent() bool {
	return e.stage == StageIdle
}

// Value returns the last generated value.
func (e *ADSR) Value() float32 {
	return float32(e.value)
}

// GetStage returns the current envelope stage
func (e *ADSR) GetStage() Stage {
	return e.stage
}

// Next generates the next envelope value
func (e *ADSR) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value = e.target + (e.value-e.target)*e.attackCoef
		if e.value >= 0.999 {
			e.value = 1.0
			e.stage = StageDecay
			e.target = e.sustain
		}

	case StageDecay:
		e.value = e.target + (e.value-e.target)*e.decayCoef
		if e.value <= e.sustain+0.001 {
			e.value = e.sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.value = e.sustain

	case StageRelease:
		e.value = e.target + (e.value-e.target)*e.releaseCoef
		if e.value <= 0.001 {
			e.value = 0.0
			e.stage = StageIdle
		}

	case StageIdle:
		e.value = 0.0
	}

	return float32(e.value)
}

// AR implements a simple Attack-Release envelope. Once released it
// settles to exactly zero.
type AR struct {
	sampleRate float64

	// Parameters
	attack  float64
	release float64

	// Coefficients
	attackCoef  float64
	releaseCoef float64

	// State
	active bool
	value  float64
	target float64
}

// NewAR creates a new AR envelope
func NewAR(sampleRate float64) *AR {
	env := &AR{
		sampleRate: sampleRate,
		attack:     0.01,
		release:    0.1,
	}
	env.updateCoefficients()
	return env
}

// SetAttack sets the attack time in seconds. Setting the current time
// again costs nothing.
func (e *AR) SetAttack(seconds float64) {
	seconds = math.Max(0.001, seconds)
	if seconds == e.attack {
		return
	}
	e.attack = seconds
	e.updateCoefficients()
}

// SetRelease sets the release time in seconds
func (e *AR) SetRelease(seconds float64) {
	seconds = math.Max(0.001, seconds)
	if seconds == e.release {
		return
	}
	e.release = seconds
	e.updateCoefficients()
}

// updateCoefficients recalculates the exponential coefficients
func (e *AR) updateCoefficients() {
	e.attackCoef = calcCoef(e.attack, e.sampleRate)
	e.releaseCoef = calcCoef(e.release, e.sampleRate)
}

// Trigger starts the attack phase
func (e *AR) Trigger() {
	e.active = true
	e.target = 1.0
}

// Release starts the release phase
func (e *AR) Release() {
	e.active = false
	e.target = 0.0
}

// Duck drops the envelope to zero and attacks again, e.g. to fade an LFO
// in after each new note.
func (e *AR) Duck() {
	e.value = 0
	e.Trigger()
}

func (e *AR) Reset() {
	e.active = false
	e.value = 0.0
	e.target = 0.0
}

// Quiescent reports whether the envelope is released and silent.
func (e *AR) Quiescent() bool {
	return !e.active && e.value == 0
}

// Next generates the next envelope value
func (e *AR) Next() float32 {
	if e.active {
		e.value = e.target + (e.value-e.target)*e.attackCoef
		if e.value >= 0.999 {
			e.value = 1.0
		}
	} else {
		e.value = e.target + (e.value-e.target)*e.releaseCoef
		if e.value <= 0.0001 {
			e.value = 0.0
		}
	}
	return float32(e.value)
}
