// Package queue defines auth event payloads exchanged over the
// message broker and the background consumer that turns them into an
// audit log.
package queue

// Event types carried in AuthEvent.Type.
const (
	EventUserCreated = "user.created"
	EventUserLogin   = "user.login"
)

// AuthEvent is published whenever a user is created or logs in. It
// contains enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database. Password
// material is never part of an event.
type AuthEvent struct {
	Type       string   `json:"type"`
	UserID     uint64   `json:"user_id"`
	Username   string   `json:"username"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	RemoteIP   string   `json:"remote_ip,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
