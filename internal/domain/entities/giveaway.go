package entities

import "time"

// Giveaway is a timed giveaway; WinnerUserIDs is only ever written by the
// expiration effect or an explicit reroll, never by entry creation.
type Giveaway struct {
	ID               int64
	GuildID          string
	ChannelID        string
	MessageID        string // empty until first render
	CreatorID        string
	Prize            string
	WinnersRequested int
	RequiredRoleID   string // empty = no role requirement
	RequiredLevel    int    // 0 = no level requirement
	Active           bool
	ExpiresAt        time.Time
	WinnerUserIDs    []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Ref returns the render reference of the giveaway message.
func (g *Giveaway) Ref() MessageRef {
	return MessageRef{ChannelID: g.ChannelID, MessageID: g.MessageID}
}

type GiveawayEntry struct {
	GiveawayID int64
	UserID     string
	EnteredAt  time.Time
}
