package voice

import (
	"errors"
	"fmt"

	"github.com/justyntemme/polyvoice/pkg/midi"
)

// ErrInvalidCurve is returned for an empty curve, a curve not starting at
// offset 0 or one whose offsets do not strictly increase.
var ErrInvalidCurve = errors.New("invalid note expression curve")

// expressionEpsilon is the smallest change that produces a breakpoint.
const expressionEpsilon = 1e-6

// NoteExpressionState is the per-note continuous control state. Every
// field is 0 when a note starts.
type NoteExpressionState struct {
	PitchBend  float32 // semitones
	Aftertouch float32
	Timbre     float32
}

// With returns the state with one field replaced.
func (s NoteExpressionState) With(kind midi.ExpressionKind, value float32) NoteExpressionState {
	switch kind {
	case midi.ExpressionPitchBend:
		s.PitchBend = value
	case midi.ExpressionAftertouch:
		s.Aftertouch = value
	case midi.ExpressionTimbre:
		s.Timbre = value
	}
	return s
}

func (s NoteExpressionState) differs(o NoteExpressionState) bool {
	return absDiff(s.PitchBend, o.PitchBend) > expressionEpsilon ||
		absDiff(s.Aftertouch, o.Aftertouch) > expressionEpsilon ||
		absDiff(s.Timbre, o.Timbre) > expressionEpsilon
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}

// NoteExpressionPoint is a breakpoint: State holds from SampleOffset until
// the next point.
type NoteExpressionPoint struct {
	SampleOffset int
	State        NoteExpressionState
}

// NoteExpressionCurve is the expression of one voice over a range of
// samples. Values are step-held: sample i reads the latest breakpoint at
// or before i. A curve is a read-only view; copying and slicing it never
// allocates.
type NoteExpressionCurve struct {
	initial NoteExpressionState
	// points after the initial one, with offsets relative to the
	// underlying buffer, all strictly inside (start, start+length)
	points []NoteExpressionPoint
	start  int
}

// NewNoteExpressionCurve validates points and builds a curve over them.
// The slice is not copied.
func NewNoteExpressionCurve(points []NoteExpressionPoint) (NoteExpressionCurve, error) {
	if len(points) == 0 {
		return NoteExpressionCurve{}, fmt.Errorf("no points: %w", ErrInvalidCurve)
	}
	if points[0].SampleOffset != 0 {
		return NoteExpressionCurve{}, fmt.Errorf("first point at offset %d: %w", points[0].SampleOffset, ErrInvalidCurve)
	}
	for i := 1; i < len(points); i++ {
		if points[i].SampleOffset <= points[i-1].SampleOffset {
			return NoteExpressionCurve{}, fmt.Errorf("point %d at offset %d after %d: %w",
				i, points[i].SampleOffset, points[i-1].SampleOffset, ErrInvalidCurve)
		}
	}
	return curveFromPoints(points), nil
}

// DefaultNoteExpressionCurve is a curve holding the default state.
func DefaultNoteExpressionCurve() NoteExpressionCurve {
	return NoteExpressionCurve{}
}

// curveFromPoints skips validation; points are built by the dispatch loop.
func curveFromPoints(points []NoteExpressionPoint) NoteExpressionCurve {
	return NoteExpressionCurve{initial: points[0].State, points: points[1:]}
}

// Len returns the number of breakpoints, at least 1.
func (c NoteExpressionCurve) Len() int {
	return len(c.points) + 1
}

// Point returns breakpoint k with its offset relative to the view.
func (c NoteExpressionCurve) Point(k int) NoteExpressionPoint {
	if k == 0 {
		return NoteExpressionPoint{State: c.initial}
	}
	p := c.points[k-1]
	p.SampleOffset -= c.start
	return p
}

// StateAt returns the state held at sample i of the view.
func (c NoteExpressionCurve) StateAt(i int) NoteExpressionState {
	t := c.start + i
	state := c.initial
	for _, p := range c.points {
		if p.SampleOffset > t {
			break
		}
		state = p.State
	}
	return state
}

// Slice restricts the curve to samples [start, end) of the view. The first
// point of the result is the state held at start.
func (c NoteExpressionCurve) Slice(start, end int) NoteExpressionCurve {
	from := c.start + start
	to := c.start + end

	initial := c.StateAt(start)
	lo := 0
	for lo < len(c.points) && c.points[lo].SampleOffset <= from {
		lo++
	}
	hi := lo
	for hi < len(c.points) && c.points[hi].SampleOffset < to {
		hi++
	}
	return NoteExpressionCurve{
		initial: initial,
		points:  c.points[lo:hi],
		start:   from,
	}
}

// Cursor returns an iterator over per-sample states from the start of the
// view. The curve can be iterated any number of times.
func (c NoteExpressionCurve) Cursor() Cursor {
	return Cursor{curve: c, state: c.initial}
}

// Cursor steps through a curve one sample at a time.
type Cursor struct {
	curve NoteExpressionCurve
	pos   int
	next  int
	state NoteExpressionState
}

// Next returns the state at the current sample and advances.
func (c *Cursor) Next() NoteExpressionState {
	t := c.curve.start + c.pos
	for c.next < len(c.curve.points) && c.curve.points[c.next].SampleOffset <= t {
		c.state = c.curve.points[c.next].State
		c.next++
	}
	c.pos++
	return c.state
}
