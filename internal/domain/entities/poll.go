package entities

import "time"

// Poll is a timed poll rendered as a message with one button per option.
type Poll struct {
	ID            int64
	GuildID       string
	ChannelID     string
	MessageID     string // empty until first render
	CreatorID     string
	Question      string
	AllowMultiple bool
	Anonymous     bool
	Active        bool
	ExpiresAt     time.Time
	Options       []PollOption
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Ref returns the render reference of the poll message.
func (p *Poll) Ref() MessageRef {
	return MessageRef{ChannelID: p.ChannelID, MessageID: p.MessageID}
}

// Option returns the option with the given id, or nil.
func (p *Poll) Option(optionID int64) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

type PollOption struct {
	ID       int64
	PollID   int64
	Text     string
	Emoji    string
	Position int
}

type PollVote struct {
	PollID   int64
	OptionID int64
	UserID   string
	VotedAt  time.Time
}

// OptionTally is the per-option vote count used for rendering results.
type OptionTally struct {
	OptionID int64
	Text     string
	Emoji    string
	Count    int
}
