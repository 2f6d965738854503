package midi

import (
	"sync"
	"testing"
)

func noteOnAt(time int64, pitch uint8) TimedEvent {
	return TimedEvent{
		Time: time,
		Data: NoteOn(NoteData{ID: NoteIDFromPitch(pitch), Pitch: pitch, Velocity: 1}),
	}
}

func TestEventQueue(t *testing.T) {
	q := NewEventQueue()

	if !q.IsEmpty() {
		t.Error("Expected queue to be empty")
	}
	if q.Size() != 0 {
		t.Errorf("Expected size 0, got %d", q.Size())
	}

	q.Add(noteOnAt(100, 60))
	q.Add(noteOnAt(200, 61))
	q.Add(noteOnAt(50, 62))

	if q.IsEmpty() {
		t.Error("Expected queue to not be empty")
	}
	if q.Size() != 3 {
		t.Errorf("Expected size 3, got %d", q.Size())
	}
	if last, ok := q.Last(); !ok || last != 200 {
		t.Errorf("Expected last event at 200, got %d (%v)", last, ok)
	}
}

func TestEventQueueSorting(t *testing.T) {
	q := NewEventQueue()

	q.AddMultiple([]TimedEvent{noteOnAt(300, 62), noteOnAt(100, 60), noteOnAt(200, 61)})

	events := q.All()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	times := []int64{100, 200, 300}
	for i, event := range events {
		if event.Time != times[i] {
			t.Errorf("Event %d: expected time %d, got %d", i, times[i], event.Time)
		}
	}
}

func TestEventQueueStableForSameTime(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(10, 64))
	q.Add(noteOnAt(0, 50))
	q.Add(noteOnAt(10, 65))

	events := q.EventsInRange(0, 20, nil)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[1].Data.Note.Pitch != 64 || events[2].Data.Note.Pitch != 65 {
		t.Errorf("Events at the same time must keep insertion order, got %d then %d",
			events[1].Data.Note.Pitch, events[2].Data.Note.Pitch)
	}
}

func TestEventsInRange(t *testing.T) {
	q := NewEventQueue()
	for i, time := range []int64{0, 50, 100, 150, 200} {
		q.Add(noteOnAt(time, uint8(60+i)))
	}

	tests := []struct {
		start    int64
		end      int64
		expected int
		first    int
	}{
		{0, 100, 2, 0},
		{50, 150, 2, 0},
		{100, 200, 2, 0},
		{0, 250, 5, 0},
		{250, 300, 0, 0},
		{-50, 0, 0, 0},
		{25, 75, 1, 25},
	}

	for _, tt := range tests {
		events := q.EventsInRange(tt.start, tt.end, nil)
		if len(events) != tt.expected {
			t.Errorf("Range [%d, %d): expected %d events, got %d",
				tt.start, tt.end, tt.expected, len(events))
			continue
		}
		if len(events) > 0 && events[0].SampleOffset != tt.first {
			t.Errorf("Range [%d, %d): expected first offset %d, got %d",
				tt.start, tt.end, tt.first, events[0].SampleOffset)
		}
	}
}

func TestEventsInRangeReusesDestination(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(5, 60))
	q.Add(noteOnAt(6, 61))

	dst := make([]Event, 0, 8)
	allocs := testing.AllocsPerRun(100, func() {
		dst = q.EventsInRange(0, 10, dst[:0])
	})
	if allocs != 0 {
		t.Errorf("Expected no allocations with a large enough destination, got %v", allocs)
	}
	if len(dst) != 2 {
		t.Errorf("Expected 2 events, got %d", len(dst))
	}
}

func TestRemoveProcessedEvents(t *testing.T) {
	q := NewEventQueue()
	q.AddMultiple([]TimedEvent{noteOnAt(0, 60), noteOnAt(100, 61), noteOnAt(200, 62)})

	q.RemoveProcessedEvents(100)
	if q.Size() != 2 {
		t.Fatalf("Expected 2 events left, got %d", q.Size())
	}
	if events := q.All(); events[0].Time != 100 {
		t.Errorf("Expected first remaining event at 100, got %d", events[0].Time)
	}

	q.Clear()
	if !q.IsEmpty() {
		t.Error("Expected queue to be empty after Clear")
	}
}

func TestEventQueueConcurrentAdd(t *testing.T) {
	q := NewEventQueue()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Add(noteOnAt(int64(i), uint8(g)))
			}
		}(g)
	}
	wg.Wait()

	if q.Size() != 400 {
		t.Errorf("Expected 400 events, got %d", q.Size())
	}
}
