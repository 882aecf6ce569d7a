package models

import "time"

// AuditLog is an immutable append-only record of a mutating action.
// Entries are never updated; the only delete-shaped entries are the
// explicit audit rows written when a note is removed.
type AuditLog struct {
	ID         int64     `json:"id" db:"id"`
	RequestID  string    `json:"request_id" db:"request_id"` // correlation id, uuid
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Summary    *string   `json:"summary,omitempty" db:"summary"`
	ActorID    *int64    `json:"actor_id,omitempty" db:"actor_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
