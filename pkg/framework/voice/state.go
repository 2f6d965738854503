package voice

import (
	"cmp"
	"errors"
	"slices"

	"github.com/justyntemme/polyvoice/pkg/midi"
)

// ErrNoVoices is returned when a pool is built with no voices.
var ErrNoVoices = errors.New("voice pool needs at least one voice")

type slot struct {
	active     bool
	order      uint64
	id         midi.NoteID
	pitch      uint8
	expression NoteExpressionState
}

// SlotInfo is a read-only snapshot of one voice slot.
type SlotInfo struct {
	Active     bool
	Order      uint64
	ID         midi.NoteID
	Pitch      uint8
	Expression NoteExpressionState
}

type orderEntry struct {
	index int
	order uint64
}

// State assigns notes to a fixed number of voice slots.
//
// Idle slots are ranked by when they were freed and active slots by when
// they were assigned. A note-on takes the longest-idle slot, or steals the
// oldest active one when every slot is busy. Orders only ever compare
// within their own group, and Compress renumbers each group densely
// without changing its ranking.
type State struct {
	slots   []slot
	scratch []orderEntry
}

// NewState builds a pool of numVoices idle slots.
func NewState(numVoices int) (*State, error) {
	if numVoices <= 0 {
		return nil, ErrNoVoices
	}
	s := &State{
		slots:   make([]slot, numVoices),
		scratch: make([]orderEntry, 0, numVoices),
	}
	s.Reset()
	return s, nil
}

// Reset makes every slot idle, with slot 0 next in line.
func (s *State) Reset() {
	for i := range s.slots {
		s.slots[i] = slot{order: uint64(i)}
	}
}

// NumVoices returns the number of slots.
func (s *State) NumVoices() int {
	return len(s.slots)
}

// Slot returns a snapshot of slot i.
func (s *State) Slot(i int) SlotInfo {
	sl := s.slots[i]
	return SlotInfo{
		Active:     sl.active,
		Order:      sl.order,
		ID:         sl.id,
		Pitch:      sl.pitch,
		Expression: sl.expression,
	}
}

// Expression returns the expression state currently held by slot i.
func (s *State) Expression(i int) NoteExpressionState {
	return s.slots[i].expression
}

// ActiveVoices returns the number of slots bound to a note.
func (s *State) ActiveVoices() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].active {
			n++
		}
	}
	return n
}

// Step is the outcome of dispatching one event: the slot it went to, the
// events that slot's voice must handle (a steal produces a NoteOff for the
// old note followed by the NoteOn) and, when the slot's expression
// changed, the new state.
type Step struct {
	Voice         int // -1 when the event was dropped
	Expression    NoteExpressionState
	HasExpression bool

	events    [2]midi.Data
	numEvents int
}

// Len returns the number of events for the voice.
func (st Step) Len() int {
	return st.numEvents
}

// Event returns event i of the step, for i < Len().
func (st Step) Event(i int) midi.Data {
	return st.events[i]
}

func (st *Step) push(d midi.Data) {
	st.events[st.numEvents] = d
	st.numEvents++
}

// Dispatch applies one event to the pool.
func (s *State) Dispatch(data midi.Data) Step {
	switch data.Type {
	case midi.EventTypeNoteOn:
		return s.noteOn(data)
	case midi.EventTypeNoteOff:
		return s.noteOff(data)
	case midi.EventTypeNoteExpression:
		return s.noteExpression(data.Expression)
	}
	return Step{Voice: -1}
}

func (s *State) noteOn(data midi.Data) Step {
	note := data.Note
	idle, oldest := -1, -1
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.active {
			if idle < 0 || sl.order < s.slots[idle].order {
				idle = i
			}
			continue
		}
		if sl.id == note.ID {
			// retrigger: same slot, same order
			step := Step{Voice: i}
			step.push(data)
			s.resetExpression(i, &step)
			return step
		}
		if oldest < 0 || sl.order < s.slots[oldest].order {
			oldest = i
		}
	}

	step := Step{Voice: idle}
	if idle < 0 {
		stolen := s.slots[oldest]
		step.Voice = oldest
		step.push(midi.NoteOff(midi.NoteData{
			ID:       stolen.id,
			Pitch:    stolen.pitch,
			Velocity: 1,
		}))
	}
	step.push(data)

	order := s.nextActiveOrder()
	sl := &s.slots[step.Voice]
	sl.active = true
	sl.order = order
	sl.id = note.ID
	sl.pitch = note.Pitch
	s.resetExpression(step.Voice, &step)
	return step
}

func (s *State) resetExpression(i int, step *Step) {
	sl := &s.slots[i]
	var def NoteExpressionState
	if sl.expression.differs(def) {
		step.Expression = def
		step.HasExpression = true
	}
	sl.expression = def
}

func (s *State) noteOff(data midi.Data) Step {
	i := s.findActive(data.Note.ID)
	if i < 0 {
		return Step{Voice: -1}
	}
	order := s.nextIdleOrder()
	sl := &s.slots[i]
	sl.active = false
	sl.order = order

	step := Step{Voice: i}
	step.push(data)
	return step
}

func (s *State) noteExpression(e midi.NoteExpressionData) Step {
	i := s.findActive(e.ID)
	if i < 0 {
		return Step{Voice: -1}
	}
	step := Step{Voice: i}
	sl := &s.slots[i]
	merged := sl.expression.With(e.Kind, e.Value)
	if merged.differs(sl.expression) {
		step.Expression = merged
		step.HasExpression = true
	}
	// Sub-epsilon changes are still stored; only the breakpoint is skipped.
	sl.expression = merged
	return step
}

func (s *State) findActive(id midi.NoteID) int {
	for i := range s.slots {
		if s.slots[i].active && s.slots[i].id == id {
			return i
		}
	}
	return -1
}

func (s *State) nextActiveOrder() uint64 {
	return s.nextOrder(true)
}

func (s *State) nextIdleOrder() uint64 {
	return s.nextOrder(false)
}

func (s *State) nextOrder(active bool) uint64 {
	var next uint64
	for i := range s.slots {
		if s.slots[i].active == active && s.slots[i].order+1 > next {
			next = s.slots[i].order + 1
		}
	}
	return next
}

// Compress renumbers idle and active orders to 0..k within each group,
// keeping their relative order.
func (s *State) Compress() {
	s.compressGroup(false)
	s.compressGroup(true)
}

func (s *State) compressGroup(active bool) {
	s.scratch = s.scratch[:0]
	for i := range s.slots {
		if s.slots[i].active == active {
			s.scratch = append(s.scratch, orderEntry{index: i, order: s.slots[i].order})
		}
	}
	slices.SortFunc(s.scratch, func(a, b orderEntry) int {
		return cmp.Compare(a.order, b.order)
	})
	for rank, e := range s.scratch {
		s.slots[e.index].order = uint64(rank)
	}
}
