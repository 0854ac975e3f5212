package interfaces

import (
	"context"

	"github.com/merxlabs/merx/internal/models"
)

// EventType identifies an event category for subscription
type EventType string

const (
	// EventJobProgress fires after every per-item completion
	EventJobProgress EventType = "job_progress"
	// EventJobFinished fires once on the terminal transition
	EventJobFinished EventType = "job_finished"
)

// JobProgressPayload is the payload for job progress and terminal events.
// LastResult is nil on terminal events that follow a cancellation before
// any item was processed.
type JobProgressPayload struct {
	Snapshot   *models.JobSnapshot `json:"snapshot"`
	LastResult *models.ItemResult  `json:"last_result,omitempty"`
}

// Event is a published notification
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler processes a published event. Handler errors are logged
// and swallowed, never propagated to the publisher.
type EventHandler func(ctx context.Context, event Event) error

// EventService is the fire-and-forget progress notifier. Publish is
// at-most-once per call with no retry; the authoritative state is always
// recoverable from the job store.
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
	Close() error
}
