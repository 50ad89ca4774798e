package events

import (
	"github.com/billie-coop/locomplete/internal/completion"
)

// EventType identifies the type of event
type EventType string

const (
	// Broker events
	CompletionTriggeredEvent EventType = "completion.triggered"

	// Session events
	ItemsUpdatedEvent  EventType = "session.items_updated"
	ItemCommittedEvent EventType = "session.item_committed"
	DismissedEvent     EventType = "session.dismissed"
	SessionFaultEvent  EventType = "session.fault"

	// Config events
	ConfigReloadedEvent EventType = "config.reloaded"

	// wildcard matches every event type
	wildcard EventType = "*"
)

// Event represents an event in the system
type Event struct {
	Type    EventType
	Payload any
}

// Event payload types

type TriggeredPayload struct {
	SessionID string
	ViewID    string
	Trigger   completion.Trigger
}

type ItemsUpdatedPayload struct {
	SessionID string
	ViewID    string
	Items     completion.ComputedItems
}

type ItemCommittedPayload struct {
	SessionID string
	ViewID    string
	Item      *completion.Item
	Behavior  completion.CommitBehavior
}

type DismissedPayload struct {
	SessionID string
	ViewID    string
}

type FaultPayload struct {
	SessionID string
	Operation string
	Err       error
}

type ConfigReloadedPayload struct {
	Path string
}
