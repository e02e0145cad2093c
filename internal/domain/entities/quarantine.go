package entities

import "time"

// QuarantineEntry represents a member under quarantine. PreviousRoles is the
// role snapshot taken before the quarantine role was applied; it never
// contains the guild everyone-role nor the quarantine role itself.
type QuarantineEntry struct {
	ID            int64
	GuildID       string
	TargetID      string
	ModeratorID   string
	Reason        string
	PreviousRoles []string
	Active        bool
	ExpiresAt     time.Time // zero = indefinite quarantine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expires reports whether the entry has an automatic expiration.
func (q *QuarantineEntry) Expires() bool {
	return !q.ExpiresAt.IsZero()
}
