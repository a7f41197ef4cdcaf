package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "task.loaded".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Task event types.
const (
	TypeTaskLoaded         = "task.loaded"
	TypeTaskFetchStarted   = "task.fetch_started"
	TypeTaskFetchSucceeded = "task.fetch_succeeded"
	TypeTaskFetchFailed    = "task.fetch_failed"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// TaskLoadedEvent is emitted after stored data has been read into state.
type TaskLoadedEvent struct {
	baseEvent
	FetchCount   int
	ResponseCode string
}

// NewTaskLoadedEvent creates a TaskLoadedEvent.
func NewTaskLoadedEvent(fetchCount int, responseCode string) TaskLoadedEvent {
	return TaskLoadedEvent{
		baseEvent:    newBaseEvent(TypeTaskLoaded),
		FetchCount:   fetchCount,
		ResponseCode: responseCode,
	}
}

// TaskFetchStartedEvent is emitted when a fetch enters the loading state.
type TaskFetchStartedEvent struct {
	baseEvent
}

// NewTaskFetchStartedEvent creates a TaskFetchStartedEvent.
func NewTaskFetchStartedEvent() TaskFetchStartedEvent {
	return TaskFetchStartedEvent{baseEvent: newBaseEvent(TypeTaskFetchStarted)}
}

// TaskFetchSucceededEvent is emitted once a successful result is applied.
type TaskFetchSucceededEvent struct {
	baseEvent
	FetchCount   int    // counter after the increment
	ResponseCode string // "" when the server omitted it
	Persisted    bool   // whether the record was written to storage
}

// NewTaskFetchSucceededEvent creates a TaskFetchSucceededEvent.
func NewTaskFetchSucceededEvent(fetchCount int, responseCode string, persisted bool) TaskFetchSucceededEvent {
	return TaskFetchSucceededEvent{
		baseEvent:    newBaseEvent(TypeTaskFetchSucceeded),
		FetchCount:   fetchCount,
		ResponseCode: responseCode,
		Persisted:    persisted,
	}
}

// TaskFetchFailedEvent is emitted once a failure is applied.
type TaskFetchFailedEvent struct {
	baseEvent
	Kind    string // error kind identifier, e.g. "timeout"
	Message string // user-visible message
}

// NewTaskFetchFailedEvent creates a TaskFetchFailedEvent.
func NewTaskFetchFailedEvent(kind, message string) TaskFetchFailedEvent {
	return TaskFetchFailedEvent{
		baseEvent: newBaseEvent(TypeTaskFetchFailed),
		Kind:      kind,
		Message:   message,
	}
}
