package param

// Point is an automation breakpoint in plain units.
type Point struct {
	SampleOffset int
	Value        float64
}

// Automation carries the breakpoints of one parameter for one buffer.
// Offsets must be increasing.
type Automation struct {
	ID     uint32
	Points []Point
}

// BufferStates is the read-only view of every parameter for one buffer.
// Parameters without automation read their current stored value for the
// whole buffer. It is a value type and slicing it never allocates.
type BufferStates struct {
	registry   *Registry
	automation []Automation
	start      int
	numFrames  int
}

// NewBufferStates builds the view for a buffer of numFrames samples.
// The automation slice is not copied.
func NewBufferStates(registry *Registry, numFrames int, automation ...Automation) BufferStates {
	return BufferStates{
		registry:   registry,
		automation: automation,
		numFrames:  numFrames,
	}
}

func (s BufferStates) NumFrames() int {
	return s.numFrames
}

// Slice narrows the view to [start, end) of the current view.
func (s BufferStates) Slice(start, end int) BufferStates {
	s.start += start
	s.numFrames = end - start
	return s
}

// Numeric returns the state of p over the view.
func (s BufferStates) Numeric(p *Parameter) State {
	for i := range s.automation {
		if s.automation[i].ID == p.ID && len(s.automation[i].Points) > 0 {
			return State{points: s.automation[i].Points, start: s.start}
		}
	}
	return State{constant: p.GetPlainValue(), start: s.start}
}

// ByID looks the parameter up in the registry. Prefer resolving the
// *Parameter once and calling Numeric on the audio thread.
func (s BufferStates) ByID(id uint32) (State, bool) {
	if s.registry == nil {
		return State{}, false
	}
	p := s.registry.Get(id)
	if p == nil {
		return State{}, false
	}
	return s.Numeric(p), true
}

// State is one parameter's value over a buffer view.
type State struct {
	constant float64
	points   []Point
	start    int
}

// IsConstant reports whether the value is the same for every sample.
func (st State) IsConstant() bool {
	return len(st.points) == 0
}

// Value returns the plain value at sample i of the view, interpolating
// linearly between breakpoints and holding outside them.
func (st State) Value(i int) float64 {
	if len(st.points) == 0 {
		return st.constant
	}
	return interpolate(st.points, st.start+i)
}

// Index returns the value held at sample i, rounded to the nearest whole
// step. Use it for enumerated parameters.
func (st State) Index(i int) int {
	if len(st.points) == 0 {
		return roundIndex(st.constant)
	}
	return roundIndex(hold(st.points, st.start+i))
}

// Cursor iterates the state sample by sample from the start of the view.
func (st State) Cursor() Cursor {
	return Cursor{state: st}
}

// Cursor walks a State without searching the breakpoints at every sample.
type Cursor struct {
	state State
	pos   int
	seg   int
}

// Next returns the interpolated value at the current sample and advances.
func (c *Cursor) Next() float64 {
	points := c.state.points
	if len(points) == 0 {
		return c.state.constant
	}
	t := c.state.start + c.pos
	c.pos++

	for c.seg+1 < len(points) && points[c.seg+1].SampleOffset <= t {
		c.seg++
	}
	return lerpSegment(points, c.seg, t)
}

func interpolate(points []Point, t int) float64 {
	seg := 0
	for seg+1 < len(points) && points[seg+1].SampleOffset <= t {
		seg++
	}
	return lerpSegment(points, seg, t)
}

// lerpSegment evaluates t against the segment starting at points[seg],
// where points[seg+1] (if any) lies after t.
func lerpSegment(points []Point, seg int, t int) float64 {
	p := points[seg]
	if t <= p.SampleOffset || seg+1 >= len(points) {
		return p.Value
	}
	q := points[seg+1]
	frac := float64(t-p.SampleOffset) / float64(q.SampleOffset-p.SampleOffset)
	return p.Value + (q.Value-p.Value)*frac
}

func hold(points []Point, t int) float64 {
	v := points[0].Value
	for _, p := range points {
		if p.SampleOffset > t {
			break
		}
		v = p.Value
	}
	return v
}

func roundIndex(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
