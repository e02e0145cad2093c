package entities

import "time"

// GuildSettings holds the per-guild moderation configuration.
type GuildSettings struct {
	GuildID          string
	QuarantineRoleID string
	ModeratorRoleID  string
	AuditChannelID   string
	UpdatedAt        time.Time
}
