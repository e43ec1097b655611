// Package history defines an optional audit trail of agent lifecycle events.
// Sink failures are reported to the operator but never fail the lifecycle
// operation that produced the event.
package history

import (
	"context"
	"time"
)

// EventType is the kind of lifecycle event.
type EventType string

const (
	EventSpawned EventType = "spawned"
	EventStopped EventType = "stopped"
	EventCleaned EventType = "cleaned"
)

// Event records one lifecycle transition of a tracked agent.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
}

// Sink is a destination for history events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
