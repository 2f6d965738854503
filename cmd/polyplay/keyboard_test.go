package main

import (
	"strings"
	"testing"

	"github.com/justyntemme/polyvoice/pkg/midi"
)

func TestKeyboardPress(t *testing.T) {
	k := newKeyboard()

	events, quit := k.press('a')
	if quit {
		t.Fatal("Expected no quit")
	}
	if len(events) != 1 || events[0].Type != midi.EventTypeNoteOn {
		t.Fatalf("Expected one NoteOn, got %v", events)
	}
	if events[0].Note.Pitch != 60 {
		t.Errorf("Expected pitch 60, got %d", events[0].Note.Pitch)
	}
	on := events[0].Note

	t.Run("Toggle", func(t *testing.T) {
		events, _ := k.press('a')
		if len(events) != 1 || events[0].Type != midi.EventTypeNoteOff {
			t.Fatalf("Expected one NoteOff, got %v", events)
		}
		if events[0].NoteID() != on.ID {
			t.Errorf("Expected NoteOff for %v, got %v", on.ID, events[0].NoteID())
		}
	})

	t.Run("FreshIDs", func(t *testing.T) {
		events, _ := k.press('a')
		if events[0].NoteID() == on.ID {
			t.Error("Expected a retriggered key to get a new note id")
		}
		k.press('a')
	})

	t.Run("Unmapped", func(t *testing.T) {
		events, quit := k.press('m')
		if len(events) != 0 || quit {
			t.Errorf("Expected unmapped key to do nothing, got %v %v", events, quit)
		}
	})
}

func TestKeyboardOctave(t *testing.T) {
	k := newKeyboard()

	k.press('x')
	events, _ := k.press('k')
	if events[0].Note.Pitch != 84 {
		t.Errorf("Expected pitch 84, got %d", events[0].Note.Pitch)
	}

	for i := 0; i < 20; i++ {
		k.press('z')
	}
	if k.octave != minOctave {
		t.Errorf("Expected octave %d, got %d", minOctave, k.octave)
	}
	events, _ = k.press('a')
	if events[0].Note.Pitch != 12 {
		t.Errorf("Expected pitch 12, got %d", events[0].Note.Pitch)
	}

	for i := 0; i < 20; i++ {
		k.press('x')
	}
	if k.octave != maxOctave {
		t.Errorf("Expected octave %d, got %d", maxOctave, k.octave)
	}
	if events, _ := k.press('\''); events[0].Note.Pitch != 125 {
		t.Errorf("Expected pitch 125, got %d", events[0].Note.Pitch)
	}
}

func TestKeyboardRelease(t *testing.T) {
	t.Run("Space", func(t *testing.T) {
		k := newKeyboard()
		k.press('a')
		k.press('d')
		events, quit := k.press(' ')
		if quit {
			t.Error("Expected space not to quit")
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 NoteOffs, got %d", len(events))
		}
		for _, e := range events {
			if e.Type != midi.EventTypeNoteOff {
				t.Errorf("Expected NoteOff, got %v", e)
			}
		}
		if len(k.held) != 0 {
			t.Errorf("Expected no held notes, got %d", len(k.held))
		}
	})

	t.Run("Quit", func(t *testing.T) {
		for _, key := range []byte{'q', 0x1b, 0x03} {
			k := newKeyboard()
			k.press('a')
			events, quit := k.press(key)
			if !quit {
				t.Errorf("Expected key %q to quit", key)
			}
			if len(events) != 1 || events[0].Type != midi.EventTypeNoteOff {
				t.Errorf("Expected key %q to release the held note, got %v", key, events)
			}
		}
	})
}

func TestPlayKeys(t *testing.T) {
	collect := func(input string) []midi.Data {
		var all []midi.Data
		err := playKeys(strings.NewReader(input), newKeyboard(), func(events []midi.Data) {
			all = append(all, events...)
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return all
	}

	t.Run("ReleasesAtEOF", func(t *testing.T) {
		events := collect("ad")
		if len(events) != 4 {
			t.Fatalf("Expected 4 events, got %d", len(events))
		}
		for i, e := range events[2:] {
			if e.Type != midi.EventTypeNoteOff {
				t.Errorf("Event %d: expected NoteOff, got %v", i+2, e)
			}
		}
	})

	t.Run("StopsAtQuit", func(t *testing.T) {
		events := collect("aqd")
		if len(events) != 2 {
			t.Fatalf("Expected NoteOn and NoteOff, got %v", events)
		}
		if events[1].Type != midi.EventTypeNoteOff {
			t.Errorf("Expected NoteOff, got %v", events[1])
		}
	})
}
