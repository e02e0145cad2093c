package input

import (
	"context"
	"time"

	"modbot/internal/domain/entities"
)

type CreatePollParams struct {
	GuildID       string
	ChannelID     string
	CreatorID     string
	Question      string
	Options       []string
	AllowMultiple bool
	Anonymous     bool
	Duration      time.Duration
}

// VoteResult tells the adapter how to phrase the reply.
type VoteResult struct {
	// Added is false when a multi-choice vote was toggled off.
	Added bool
	// Replaced is true when a single-choice vote displaced a prior one.
	Replaced bool
}

type PollUseCase interface {
	CreatePoll(ctx context.Context, params CreatePollParams) (*entities.Poll, error)
	Vote(ctx context.Context, pollID, optionID int64, userID string) (VoteResult, error)
	EndPoll(ctx context.Context, pollID int64, actorID string, privileged bool) error
}
