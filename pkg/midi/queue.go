package midi

import (
	"sort"
	"sync"
)

// TimedEvent is an event placed on an absolute sample clock.
type TimedEvent struct {
	Time int64
	Data Data
}

// EventQueue holds events on an absolute sample clock until the host
// driver pulls them into the buffer they fall in. It is safe to add events
// from another goroutine (a keyboard reader, for example).
type EventQueue struct {
	events []TimedEvent
	mu     sync.Mutex
	sorted bool
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]TimedEvent, 0, 128),
		sorted: true,
	}
}

// Add queues one event
func (q *EventQueue) Add(event TimedEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
	q.sorted = false
}

// AddMultiple queues events under a single lock
func (q *EventQueue) AddMultiple(events []TimedEvent) {
	if len(events) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, events...)
	q.sorted = false
}

// EventsInRange appends the events with start <= Time < end to dst,
// re-based so that start becomes offset 0, and returns the extended slice.
func (q *EventQueue) EventsInRange(start, end int64, dst []Event) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	startIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].Time >= start
	})

	for i := startIdx; i < len(q.events) && q.events[i].Time < end; i++ {
		dst = append(dst, Event{
			SampleOffset: int(q.events[i].Time - start),
			Data:         q.events[i].Data,
		})
	}
	return dst
}

// All returns a sorted copy of the queued events.
func (q *EventQueue) All() []TimedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	result := make([]TimedEvent, len(q.events))
	copy(result, q.events)
	return result
}

// Clear drops every queued event
func (q *EventQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = q.events[:0]
	q.sorted = true
}

// RemoveProcessedEvents drops every event with Time < upTo.
func (q *EventQueue) RemoveProcessedEvents(upTo int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	keepIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].Time >= upTo
	})

	if keepIdx > 0 {
		n := copy(q.events, q.events[keepIdx:])
		q.events = q.events[:n]
	}
}

// Last returns the time of the latest queued event.
func (q *EventQueue) Last() (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return 0, false
	}
	if !q.sorted {
		q.sortEvents()
	}
	return q.events[len(q.events)-1].Time, true
}

// Size returns the number of queued events
func (q *EventQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) IsEmpty() bool {
	return q.Size() == 0
}

// sortEvents is stable so events added for the same instant keep their order.
func (q *EventQueue) sortEvents() {
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].Time < q.events[j].Time
	})
	q.sorted = true
}
