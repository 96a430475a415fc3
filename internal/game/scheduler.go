package game

import "container/heap"

type scheduledEvent struct {
	at   float64
	seq  uint64
	name string
	fn   func()
}

type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*scheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return ev
}

// Scheduler runs deferred effects against the frame clock. Events fire in
// (time, sequence) order, so two events due in the same frame always run in
// the order they were scheduled.
type Scheduler struct {
	now    float64
	seq    uint64
	events eventHeap
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the frame clock in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Advance moves the frame clock. It never runs events.
func (s *Scheduler) Advance(now float64) {
	if now > s.now {
		s.now = now
	}
}

// After schedules fn to run delay seconds after the current frame clock.
func (s *Scheduler) After(delay float64, name string, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.events, &scheduledEvent{at: s.now + delay, seq: s.seq, name: name, fn: fn})
}

// RunDue runs every event due at or before the current clock, including
// events scheduled by the callbacks themselves if they are already due.
// It returns the number of events run.
func (s *Scheduler) RunDue() int {
	ran := 0
	for len(s.events) > 0 && s.events[0].at <= s.now {
		ev := heap.Pop(&s.events).(*scheduledEvent)
		ev.fn()
		ran++
	}
	return ran
}

// Cancel drops pending events with the given name.
func (s *Scheduler) Cancel(name string) int {
	kept := s.events[:0]
	dropped := 0
	for _, ev := range s.events {
		if ev.name == name {
			dropped++
			continue
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
	heap.Init(&s.events)
	return dropped
}

// Clear drops every pending event.
func (s *Scheduler) Clear() {
	s.events = nil
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int {
	return len(s.events)
}
