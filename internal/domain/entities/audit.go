package entities

import "time"

// AuditEntry is a history row written on every terminal transition.
type AuditEntry struct {
	ID       int64
	GuildID  string
	Kind     string
	EntityID int64
	Action   string
	ActorID   string // empty for natural expiration
	Details   string
	CreatedAt time.Time
}
