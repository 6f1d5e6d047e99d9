package pipeline

import "compassevb/decode"

// EventBuilder groups a time-ordered hit stream into coincidence events: a
// run of hits whose timestamps all fall within window of the event's first
// hit. A hit outside the window closes the current event and opens the
// next one with itself as the new first hit.
//
// The final event is not closed by any hit that follows it, since none
// does. This repo does not auto-flush that trailing partial event when the
// stream ends; call Flush to obtain it explicitly.
type EventBuilder struct {
	window  float64
	current []decode.Hit
	ready   [][]decode.Hit
}

// NewEventBuilder returns a builder that closes an event once a hit arrives
// more than window (in nanoseconds) past the event's first hit.
func NewEventBuilder(window float64) *EventBuilder {
	return &EventBuilder{window: window}
}

// Push adds the next globally time-ordered hit. If it falls outside the
// current event's window, the current event is closed and queued for
// Take, and a new event begins with hit as its first member.
func (b *EventBuilder) Push(hit decode.Hit) {
	if len(b.current) == 0 {
		b.current = append(b.current, hit)
		return
	}
	if hit.Timestamp-b.current[0].Timestamp > b.window {
		b.ready = append(b.ready, b.current)
		b.current = []decode.Hit{hit}
		return
	}
	b.current = append(b.current, hit)
}

// Ready reports whether at least one closed event is waiting to be taken.
func (b *EventBuilder) Ready() bool {
	return len(b.ready) > 0
}

// Take removes and returns the oldest closed event. It panics if Ready is
// false; callers are expected to check first.
func (b *EventBuilder) Take() []decode.Hit {
	event := b.ready[0]
	b.ready = b.ready[1:]
	return event
}

// Flush closes and returns whatever partial event is currently open,
// without waiting for a hit outside its window. Calling Flush on an empty
// builder returns nil. This is the explicit opt-in alternative to the
// default end-of-stream behavior, which drops the trailing partial event.
func (b *EventBuilder) Flush() []decode.Hit {
	if len(b.current) == 0 {
		return nil
	}
	event := b.current
	b.current = nil
	return event
}
