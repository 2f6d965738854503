package midi

import (
	"errors"
	"testing"
)

func TestNoteOnEvent(t *testing.T) {
	event := Event{
		SampleOffset: 100,
		Data: NoteOn(NoteData{
			ID:       NoteIDFromPitch(60),
			Pitch:    60,
			Velocity: 0.5,
		}),
	}

	if event.Data.Type != EventTypeNoteOn {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOn, event.Data.Type)
	}

	if event.Data.NoteID() != NoteIDFromPitch(60) {
		t.Errorf("Expected id %v, got %v", NoteIDFromPitch(60), event.Data.NoteID())
	}

	expected := "NoteOn{id:pitch:60, pitch:60, vel:0.500, tuning:0.00}@100"
	if event.String() != expected {
		t.Errorf("Expected string %s, got %s", expected, event.String())
	}
}

func TestNoteExpressionEvent(t *testing.T) {
	data := Expression(NoteIDFromHost(7), ExpressionTimbre, 0.25)

	if data.Type != EventTypeNoteExpression {
		t.Errorf("Expected type %v, got %v", EventTypeNoteExpression, data.Type)
	}
	if data.NoteID() != NoteIDFromHost(7) {
		t.Errorf("Expected id %v, got %v", NoteIDFromHost(7), data.NoteID())
	}

	expected := "NoteExpression{id:id:7, Timbre:0.250}"
	if data.String() != expected {
		t.Errorf("Expected string %s, got %s", expected, data.String())
	}
}

func TestNoteIDIdentity(t *testing.T) {
	if NoteIDFromPitch(60) == NoteIDFromHost(60) {
		t.Error("Pitch-derived and host ids must not collide")
	}
	if NoteIDFromHost(3) != NoteIDFromHost(3) {
		t.Error("Equal host ids should compare equal")
	}
	if NoteIDFromHost(3) == NoteIDFromHost(4) {
		t.Error("Different host ids should not compare equal")
	}
}

func TestNewEvents(t *testing.T) {
	on := NoteOn(NoteData{ID: NoteIDFromPitch(60), Pitch: 60, Velocity: 1})
	off := NoteOff(NoteData{ID: NoteIDFromPitch(60), Pitch: 60, Velocity: 1})

	t.Run("Valid", func(t *testing.T) {
		events, err := NewEvents([]Event{{0, on}, {10, off}, {10, on}}, 20)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if events.Len() != 3 || events.NumFrames() != 20 {
			t.Errorf("Expected 3 events over 20 frames, got %d over %d", events.Len(), events.NumFrames())
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := NewEvents([]Event{{20, on}}, 20)
		if !errors.Is(err, ErrEventOutOfRange) {
			t.Errorf("Expected ErrEventOutOfRange, got %v", err)
		}
		_, err = NewEvents([]Event{{-1, on}}, 20)
		if !errors.Is(err, ErrEventOutOfRange) {
			t.Errorf("Expected ErrEventOutOfRange, got %v", err)
		}
	})

	t.Run("OutOfOrder", func(t *testing.T) {
		_, err := NewEvents([]Event{{10, on}, {5, off}}, 20)
		if !errors.Is(err, ErrEventsOutOfOrder) {
			t.Errorf("Expected ErrEventsOutOfOrder, got %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		events := EmptyEvents(64)
		if events.Len() != 0 || events.NumFrames() != 64 {
			t.Errorf("Unexpected empty events: %d over %d", events.Len(), events.NumFrames())
		}
	})
}

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		note uint8
		freq float64
	}{
		{69, 440.0},  // A4
		{60, 261.63}, // Middle C (C4)
		{57, 220.0},  // A3
		{81, 880.0},  // A5
	}

	for _, tt := range tests {
		freq := NoteToFrequency(tt.note, 440.0)
		if diff := freq - tt.freq; diff > 0.01 || diff < -0.01 {
			t.Errorf("For note %d, expected frequency %f, got %f", tt.note, tt.freq, freq)
		}
	}

	if f := PitchToFrequency(69.5, 0); f <= 440 || f >= 466.17 {
		t.Errorf("Quarter-tone above A4 should sit between A4 and A#4, got %f", f)
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := []struct {
		note uint8
		name string
	}{
		{60, "C4"},  // Middle C
		{69, "A4"},  // A440
		{0, "C-1"},  // Lowest MIDI note
		{127, "G9"}, // Highest MIDI note
		{61, "C#4"},
		{70, "A#4"},
	}

	for _, tt := range tests {
		name := NoteNumberToName(tt.note)
		if name != tt.name {
			t.Errorf("For note %d, expected name %s, got %s", tt.note, tt.name, name)
		}
	}
}
