package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/justyntemme/polyvoice/pkg/midi"
)

// keyRow maps the home row to semitones above C, the way trackers lay
// out a piano on a computer keyboard.
const keyRow = "awsedftgyhujkolp;'"

const (
	minOctave     = 0
	maxOctave     = 8
	defaultOctave = 4
)

// keyboard turns key presses into note events. Terminals report no key
// releases, so each key toggles its note.
type keyboard struct {
	octave   int
	velocity float32
	held     map[byte]midi.NoteData
	nextID   int32
}

func newKeyboard() *keyboard {
	return &keyboard{
		octave:   defaultOctave,
		velocity: 0.8,
		held:     make(map[byte]midi.NoteData),
		nextID:   1,
	}
}

// press handles one key. It reports quit for q, Escape and Ctrl-C.
func (k *keyboard) press(key byte) (events []midi.Data, quit bool) {
	switch key {
	case 'q', 0x1b, 0x03:
		return k.releaseAll(), true
	case 'z':
		k.octave = max(minOctave, k.octave-1)
		return nil, false
	case 'x':
		k.octave = min(maxOctave, k.octave+1)
		return nil, false
	case ' ':
		return k.releaseAll(), false
	}

	if n, ok := k.held[key]; ok {
		delete(k.held, key)
		return []midi.Data{midi.NoteOff(n)}, false
	}

	semitone := strings.IndexByte(keyRow, key)
	if semitone < 0 {
		return nil, false
	}
	pitch := 12*(k.octave+1) + semitone
	if pitch > 127 {
		return nil, false
	}

	n := midi.NoteData{
		ID:       midi.NoteIDFromHost(k.nextID),
		Pitch:    uint8(pitch),
		Velocity: k.velocity,
	}
	k.nextID++
	k.held[key] = n
	return []midi.Data{midi.NoteOn(n)}, false
}

func (k *keyboard) releaseAll() []midi.Data {
	events := make([]midi.Data, 0, len(k.held))
	for key, n := range k.held {
		events = append(events, midi.NoteOff(n))
		delete(k.held, key)
	}
	return events
}

// readKeys puts the terminal in raw mode and calls send with the events
// for each key until a quit key or the end of input.
func readKeys(in *os.File, send func([]midi.Data)) error {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer term.Restore(fd, state)
	}

	return playKeys(in, newKeyboard(), send)
}

func playKeys(r io.Reader, k *keyboard, send func([]midi.Data)) error {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			events, quit := k.press(buf[0])
			if len(events) > 0 {
				send(events)
			}
			if quit {
				return nil
			}
		}
		if err == io.EOF {
			if rest := k.releaseAll(); len(rest) > 0 {
				send(rest)
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
