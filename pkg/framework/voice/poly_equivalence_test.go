package voice

import (
	"math"
	"testing"

	"github.com/justyntemme/polyvoice/pkg/framework/param"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

const scriptLength = 2048

// script overlaps notes on a pool of two so that stealing, expression and
// releases all happen.
func script() []midi.TimedEvent {
	at := func(t int64, d midi.Data) midi.TimedEvent { return midi.TimedEvent{Time: t, Data: d} }
	return []midi.TimedEvent{
		at(0, noteOn(1, 60)),
		at(100, noteOn(2, 64)),
		at(150, midi.Expression(midi.NoteIDFromHost(1), midi.ExpressionPitchBend, 0.5)),
		at(200, noteOn(3, 67)),
		at(300, midi.Expression(midi.NoteIDFromHost(3), midi.ExpressionTimbre, 0.3)),
		at(300, midi.Expression(midi.NoteIDFromHost(3), midi.ExpressionAftertouch, 0.1)),
		at(400, noteOff(2, 64)),
		at(500, noteOn(4, 60)),
		at(500, noteOn(5, 72)),
		at(700, noteOff(3, 67)),
		at(800, noteOff(4, 60)),
		at(900, noteOn(6, 48)),
		at(901, midi.Expression(midi.NoteIDFromHost(6), midi.ExpressionPitchBend, -2)),
		at(1000, noteOff(6, 48)),
		at(1500, noteOn(7, 55)),
		at(1800, noteOff(7, 55)),
	}
}

// renderChunked renders the script in calls whose sizes come from sizes,
// cycling.
func renderChunked(t *testing.T, p *testPoly, sizes []int) []float32 {
	t.Helper()
	q := midi.NewEventQueue()
	q.AddMultiple(script())

	out := make([]float32, 0, scriptLength)
	var buf []midi.Event
	for pos, k := 0, 0; pos < scriptLength; k++ {
		n := min(sizes[k%len(sizes)], scriptLength-pos)
		buf = q.EventsInRange(int64(pos), int64(pos+n), buf[:0])
		events := mustEvents(t, buf, n)
		output := [][]float32{make([]float32, n)}
		p.Process(events, param.BufferStates{}, newRampShared(pos, n), output)
		out = append(out, output[0]...)
		pos += n
	}
	return out
}

// renderSeparateEvents hands every event to HandleEvents between
// event-free renders.
func renderSeparateEvents(t *testing.T, p *testPoly) []float32 {
	t.Helper()
	out := make([]float32, 0, scriptLength)
	pos := 0
	render := func(end int) {
		if end <= pos {
			return
		}
		n := end - pos
		output := [][]float32{make([]float32, n)}
		p.Process(midi.EmptyEvents(n), param.BufferStates{}, newRampShared(pos, n), output)
		out = append(out, output[0]...)
		pos = end
	}
	for _, e := range script() {
		render(int(e.Time))
		p.HandleEvents([]midi.Data{e.Data})
	}
	render(scriptLength)
	return out
}

func assertApproxEqual(t *testing.T, name string, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("%s: sample %d = %f, want %f", name, i, got[i], want[i])
		}
	}
}

func TestPolyChunkInvariance(t *testing.T) {
	reference := renderChunked(t, newTestPoly(t, 2, scriptLength, newFakeVoice), []int{scriptLength})

	nonZero := false
	for _, s := range reference {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("Reference render is silent")
	}

	tests := []struct {
		name       string
		maxSamples int
		sizes      []int
	}{
		{"Halves", scriptLength, []int{scriptLength / 2}},
		{"Blocks64", 64, []int{64}},
		{"Irregular", 512, []int{37, 1, 250, 100, 3}},
		// calls bigger than the voices' maximum are split internally
		{"SmallVoiceBuffers", 48, []int{scriptLength}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderChunked(t, newTestPoly(t, 2, tt.maxSamples, newFakeVoice), tt.sizes)
			assertApproxEqual(t, tt.name, got, reference)
		})
	}
}

func TestPolySeparateEvents(t *testing.T) {
	reference := renderChunked(t, newTestPoly(t, 2, scriptLength, newFakeVoice), []int{scriptLength})
	got := renderSeparateEvents(t, newTestPoly(t, 2, scriptLength, newFakeVoice))
	assertApproxEqual(t, "separate events", got, reference)
}

func TestPolyResetIdempotence(t *testing.T) {
	p := newTestPoly(t, 2, 256, newFakeVoice)
	first := renderChunked(t, p, []int{256})

	// stop in the middle of sounding notes
	q := midi.NewEventQueue()
	q.AddMultiple(script())
	p.Process(mustEvents(t, q.EventsInRange(0, 128, nil), 128), param.BufferStates{}, newRampShared(0, 128), [][]float32{make([]float32, 128)})

	p.SetProcessing(false)
	p.SetProcessing(true)

	for i := 0; i < p.NumVoices(); i++ {
		if p.Slot(i).Active {
			t.Errorf("Slot %d still active after reset", i)
		}
	}

	second := renderChunked(t, p, []int{256})
	assertApproxEqual(t, "after reset", second, first)
}
