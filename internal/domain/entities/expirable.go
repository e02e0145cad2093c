package entities

import "time"

// MessageRef points at the rendered Discord message backing an entity.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" || r.MessageID == ""
}

// ExpirableRow is the minimal projection the lifecycle engine works on:
// enough to re-arm a timer or feed the sweep, nothing kind-specific.
type ExpirableRow struct {
	ID        int64
	GuildID   string
	ExpiresAt time.Time
}
