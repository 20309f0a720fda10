package database

import (
	"context"
	"time"
)

// AuthEvent records the outcome of one register or login attempt.
type AuthEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	Distance  *float64  `json:"distance,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthEventWriter stores audit events.
type AuthEventWriter interface {
	// Record stores the event; ID and CreatedAt are filled in when empty
	Record(ctx context.Context, event *AuthEvent) error
}

// AuthEventReader lists audit events.
type AuthEventReader interface {
	// Recent returns the newest events first
	Recent(ctx context.Context, limit int) ([]AuthEvent, error)
}
