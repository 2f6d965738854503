// Package midi provides the structured note events consumed by the voice engine.
package midi

import (
	"errors"
	"fmt"
	"math"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypeNoteExpression
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	case EventTypeNoteExpression:
		return "NoteExpression"
	default:
		return "Unknown"
	}
}

type noteIDKind uint8

const (
	noteIDPitch noteIDKind = iota
	noteIDHost
)

// NoteID correlates a note-on with its later note-off and expression events.
// It is comparable with ==. Two notes sounding at the same pitch must carry
// different ids; the engine never infers identity from pitch.
type NoteID struct {
	kind  noteIDKind
	value int32
}

// NoteIDFromPitch builds an id for hosts that don't supply their own note ids.
func NoteIDFromPitch(pitch uint8) NoteID {
	return NoteID{kind: noteIDPitch, value: int32(pitch)}
}

// NoteIDFromHost wraps a host-assigned note id.
func NoteIDFromHost(id int32) NoteID {
	return NoteID{kind: noteIDHost, value: id}
}

func (id NoteID) String() string {
	if id.kind == noteIDPitch {
		return fmt.Sprintf("pitch:%d", id.value)
	}
	return fmt.Sprintf("id:%d", id.value)
}

// NoteData is carried by both note-on and note-off events.
type NoteData struct {
	ID       NoteID
	Pitch    uint8   // 0-127
	Velocity float32 // 0-1
	Tuning   float32 // offset in semitones
}

// ExpressionKind selects which per-note control an expression event updates.
type ExpressionKind uint8

const (
	ExpressionPitchBend ExpressionKind = iota
	ExpressionAftertouch
	ExpressionTimbre
)

func (k ExpressionKind) String() string {
	switch k {
	case ExpressionPitchBend:
		return "PitchBend"
	case ExpressionAftertouch:
		return "Aftertouch"
	case ExpressionTimbre:
		return "Timbre"
	default:
		return "Unknown"
	}
}

// NoteExpressionData is a single per-note control update.
type NoteExpressionData struct {
	ID    NoteID
	Kind  ExpressionKind
	Value float32 // semitones for pitch bend, 0-1 otherwise
}

// Data is the payload of an event. It is a tagged value rather than an
// interface so events can be copied around the audio thread without boxing.
type Data struct {
	Type       EventType
	Note       NoteData
	Expression NoteExpressionData
}

// NoteOn wraps note as a note-on event.
func NoteOn(note NoteData) Data {
	return Data{Type: EventTypeNoteOn, Note: note}
}

// NoteOff wraps note as a note-off event.
func NoteOff(note NoteData) Data {
	return Data{Type: EventTypeNoteOff, Note: note}
}

// Expression sets one expression field of the note with the given id.
func Expression(id NoteID, kind ExpressionKind, value float32) Data {
	return Data{
		Type:       EventTypeNoteExpression,
		Expression: NoteExpressionData{ID: id, Kind: kind, Value: value},
	}
}

// NoteID returns the id the event refers to.
func (d Data) NoteID() NoteID {
	if d.Type == EventTypeNoteExpression {
		return d.Expression.ID
	}
	return d.Note.ID
}

func (d Data) String() string {
	switch d.Type {
	case EventTypeNoteOn, EventTypeNoteOff:
		return fmt.Sprintf("%s{id:%s, pitch:%d, vel:%.3f, tuning:%.2f}",
			d.Type, d.Note.ID, d.Note.Pitch, d.Note.Velocity, d.Note.Tuning)
	case EventTypeNoteExpression:
		return fmt.Sprintf("%s{id:%s, %s:%.3f}",
			d.Type, d.Expression.ID, d.Expression.Kind, d.Expression.Value)
	default:
		return "Unknown{}"
	}
}

// Event is a Data placed at a sample offset inside the current buffer.
type Event struct {
	SampleOffset int
	Data         Data
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%d", e.Data, e.SampleOffset)
}

var (
	// ErrEventOutOfRange is returned when an event offset falls outside the buffer.
	ErrEventOutOfRange = errors.New("event offset outside buffer")
	// ErrEventsOutOfOrder is returned when offsets decrease.
	ErrEventsOutOfOrder = errors.New("event offsets are not sorted")
)

// Events is the validated event list for one buffer: every offset lies in
// [0, NumFrames) and offsets never decrease.
type Events struct {
	events    []Event
	numFrames int
}

// NewEvents validates events against a buffer of numFrames samples.
// The slice is not copied.
func NewEvents(events []Event, numFrames int) (Events, error) {
	last := 0
	for i, e := range events {
		if e.SampleOffset < 0 || e.SampleOffset >= numFrames {
			return Events{}, fmt.Errorf("event %d at offset %d (buffer %d): %w",
				i, e.SampleOffset, numFrames, ErrEventOutOfRange)
		}
		if e.SampleOffset < last {
			return Events{}, fmt.Errorf("event %d at offset %d after %d: %w",
				i, e.SampleOffset, last, ErrEventsOutOfOrder)
		}
		last = e.SampleOffset
	}
	return Events{events: events, numFrames: numFrames}, nil
}

// EmptyEvents is an event list with no events for a buffer of numFrames.
func EmptyEvents(numFrames int) Events {
	return Events{numFrames: numFrames}
}

// All returns the underlying events. Callers must not modify them.
func (e Events) All() []Event {
	return e.events
}

// Len returns the number of events in the buffer.
func (e Events) Len() int {
	return len(e.events)
}

// NumFrames returns the length of the buffer in samples.
func (e Events) NumFrames() int {
	return e.numFrames
}

// PitchToFrequency converts a fractional MIDI pitch to Hz.
func PitchToFrequency(pitch float64, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((pitch-69.0)/12.0)
}

// NoteToFrequency converts a MIDI note number to Hz.
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	return PitchToFrequency(float64(note), tuningA4)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNumberToName returns the note name with its octave, C4 being 60.
func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
