package events

import "time"

// EventType identifies an audit/integration event published by the portal.
type EventType string

const (
	UserLoggedIn   EventType = "user.logged_in"
	UserLoggedOut  EventType = "user.logged_out"
	ProfileUpdated EventType = "user.profile_updated"
	TaskSubmitted  EventType = "task.submitted"
	GradeRecorded  EventType = "grade.recorded"
)

// Event is the envelope published to the event bus. Payload is event-specific
// and kept small; consumers fetch full records through the API when needed.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorID    string         `json:"actor_id,omitempty"`
	ActorRole  string         `json:"actor_role,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}
