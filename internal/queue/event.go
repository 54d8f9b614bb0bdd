// Package queue defines the security audit events exchanged over the
// message broker and the background consumer that records them.
package queue

// Audit event kinds published by the auth handlers.
const (
	EventUserRegistered  = "user.registered"
	EventPasswordChanged = "password.changed"
)

// AuthEvent is published whenever an account is created or its
// credential changes. It carries enough for an audit line without
// querying the primary database; it never contains secrets.
type AuthEvent struct {
	Kind     string `json:"kind"`
	UserID   uint64 `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	At       string `json:"at"`
}
