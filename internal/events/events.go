// Package events provides a small in-process publish/subscribe bus used by
// observable state containers to notify the presentation layer.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultBufferSize is used when NewEventBus is given a non-positive size.
	DefaultBufferSize = 256
	// MaxBufferSize caps per-subscriber channel buffers.
	MaxBufferSize = 10000
)

// EventType defines the types of events that can be emitted
type EventType string

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBaseEvent stamps an event of the given type with the current time.
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now()}
}

// subscriber is one buffered channel and the event types it accepts.
// A nil filter accepts every type.
type subscriber struct {
	ch     chan Event
	filter map[EventType]struct{}
}

func (s subscriber) accepts(t EventType) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[t]
	return ok
}

// EventBus fans events out to buffered subscriber channels. Publishing never
// blocks: a subscriber that falls behind loses events and the bus counts them.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscriber
	bufferSize int
	closed     bool
	dropped    atomic.Int64
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize events.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferSize > MaxBufferSize {
		bufferSize = MaxBufferSize
	}
	return &EventBus{bufferSize: bufferSize}
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are given. The channel is closed by Close.
func (eb *EventBus) Subscribe(types ...EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	sub := subscriber{ch: make(chan Event, eb.bufferSize)}
	if len(types) > 0 {
		sub.filter = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.filter[t] = struct{}{}
		}
	}
	eb.subs = append(eb.subs, sub)
	return sub.ch
}

// Publish delivers event to every interested subscriber with room in its
// buffer. Publishing on a closed bus is a no-op.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}
	for _, sub := range eb.subs {
		if !sub.accepts(event.Type()) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Events already buffered can still
// be received. Close is idempotent.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true
	for _, sub := range eb.subs {
		close(sub.ch)
	}
	eb.subs = nil
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (eb *EventBus) Dropped() int64 {
	return eb.dropped.Load()
}
