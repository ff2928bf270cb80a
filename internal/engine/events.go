package engine

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/quillworks/quill/pkg/models"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventTurnStarted indicates an agent invocation has started.
	EventTurnStarted EventType = "turn_started"
	// EventTurnCompleted indicates an agent invocation completed and its
	// output was folded into the session state.
	EventTurnCompleted EventType = "turn_completed"
	// EventTurnFailed indicates an agent invocation failed; state unchanged.
	EventTurnFailed EventType = "turn_failed"
	// EventAwaitingHuman indicates the loop suspended for human input.
	EventAwaitingHuman EventType = "awaiting_human"
	// EventHumanInput indicates human input was folded into the session.
	EventHumanInput EventType = "human_input"
	// EventSessionDone indicates the session reached a terminal decision.
	EventSessionDone EventType = "session_done"
)

// Event is emitted by the engine for observers such as the TUI. Events are
// advisory; the session state snapshot is the authoritative record.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Agent is the related agent, if applicable.
	Agent models.AgentID
	// Message provides additional context about the event.
	Message string
	// Err contains error details for turn_failed events.
	Err error
	// TurnCount is the session's turn count after the event.
	TurnCount int
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter provides a thread-safe event channel for engine observers.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event to subscribers. If the channel stays full past a
// short grace period the event is dropped rather than stalling the loop.
func (e *EventEmitter) Emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[engine] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of dropped events.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Called once the session is done.
func (e *EventEmitter) Close() {
	close(e.events)
}
