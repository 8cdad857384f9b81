// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a new account is created.  It
// carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type UserRegisteredEvent struct {
    UserID       uint64 `json:"user_id"`
    Name         string `json:"name"`
    Email        string `json:"email"`
    Role         string `json:"role"`
    RegisteredAt string `json:"registered_at"`
}
