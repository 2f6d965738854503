package main

import (
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/justyntemme/polyvoice/pkg/midi"
)

var ErrInvalidScore = errors.New("invalid score")

// tailSeconds is rendered after the last event of a score that does not
// set its length, so releases can ring out.
const tailSeconds = 1.0

// Setting is a parameter assignment made by a score.
type Setting struct {
	Name  string
	Value string
}

// Score is a note list on an absolute sample clock.
type Score struct {
	Events   []midi.TimedEvent
	Settings []Setting
	// Length is the number of frames to render.
	Length int64
}

// scoreBuilder collects events while a script runs.
type scoreBuilder struct {
	rate   float64
	score  Score
	nextID int32
	length float64
}

// LoadScore runs the Lua script at path.
func LoadScore(path string, sampleRate float64) (*Score, error) {
	return runScore(sampleRate, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// ParseScore runs a Lua script held in memory.
func ParseScore(src string, sampleRate float64) (*Score, error) {
	return runScore(sampleRate, func(L *lua.LState) error {
		return L.DoString(src)
	})
}

// runScore exposes the score functions to a fresh interpreter:
//
//	id = note(time, pitch, duration [, velocity [, tuning]])
//	bend(id, time, semitones)
//	timbre(id, time, amount)
//	pressure(id, time, amount)
//	set(name, value)
//	length(seconds)
//
// Times are in seconds. The global rate holds the sample rate.
func runScore(sampleRate float64, run func(L *lua.LState) error) (*Score, error) {
	b := &scoreBuilder{rate: sampleRate, nextID: 1}

	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("rate", lua.LNumber(sampleRate))
	L.SetGlobal("note", L.NewFunction(b.note))
	L.SetGlobal("bend", L.NewFunction(b.expression(midi.ExpressionPitchBend)))
	L.SetGlobal("timbre", L.NewFunction(b.expression(midi.ExpressionTimbre)))
	L.SetGlobal("pressure", L.NewFunction(b.expression(midi.ExpressionAftertouch)))
	L.SetGlobal("set", L.NewFunction(b.set))
	L.SetGlobal("length", L.NewFunction(b.setLength))

	if err := run(L); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	return b.finish(), nil
}

func (b *scoreBuilder) frames(seconds float64) int64 {
	return int64(math.Round(seconds * b.rate))
}

func (b *scoreBuilder) checkTime(L *lua.LState, n int) float64 {
	t := float64(L.CheckNumber(n))
	if t < 0 || math.IsNaN(t) {
		L.ArgError(n, "time must not be negative")
	}
	return t
}

func (b *scoreBuilder) note(L *lua.LState) int {
	start := b.checkTime(L, 1)
	pitch := L.CheckInt(2)
	duration := float64(L.CheckNumber(3))
	velocity := float64(L.OptNumber(4, 1))
	tuning := float64(L.OptNumber(5, 0))

	if pitch < 0 || pitch > 127 {
		L.ArgError(2, "pitch must be 0-127")
	}
	if duration <= 0 {
		L.ArgError(3, "duration must be positive")
	}
	if velocity < 0 || velocity > 1 {
		L.ArgError(4, "velocity must be 0-1")
	}

	id := b.nextID
	b.nextID++
	data := midi.NoteData{
		ID:       midi.NoteIDFromHost(id),
		Pitch:    uint8(pitch),
		Velocity: float32(velocity),
		Tuning:   float32(tuning),
	}
	b.score.Events = append(b.score.Events,
		midi.TimedEvent{Time: b.frames(start), Data: midi.NoteOn(data)},
		midi.TimedEvent{Time: b.frames(start + duration), Data: midi.NoteOff(data)},
	)

	L.Push(lua.LNumber(id))
	return 1
}

func (b *scoreBuilder) expression(kind midi.ExpressionKind) lua.LGFunction {
	return func(L *lua.LState) int {
		id := L.CheckInt(1)
		at := b.checkTime(L, 2)
		value := float64(L.CheckNumber(3))
		if id <= 0 || int32(id) >= b.nextID {
			L.ArgError(1, "unknown note id")
		}

		b.score.Events = append(b.score.Events, midi.TimedEvent{
			Time: b.frames(at),
			Data: midi.Expression(midi.NoteIDFromHost(int32(id)), kind, float32(value)),
		})
		return 0
	}
}

func (b *scoreBuilder) set(L *lua.LState) int {
	b.score.Settings = append(b.score.Settings, Setting{
		Name:  L.CheckString(1),
		Value: L.CheckString(2),
	})
	return 0
}

func (b *scoreBuilder) setLength(L *lua.LState) int {
	seconds := float64(L.CheckNumber(1))
	if seconds <= 0 {
		L.ArgError(1, "length must be positive")
	}
	b.length = seconds
	return 0
}

func (b *scoreBuilder) finish() *Score {
	s := b.score
	if b.length > 0 {
		s.Length = b.frames(b.length)
		return &s
	}

	var last int64
	for _, e := range s.Events {
		last = max(last, e.Time)
	}
	s.Length = last + b.frames(tailSeconds)
	return &s
}
