package output

import (
	"context"

	"modbot/internal/domain/entities"
)

type PollRepository interface {
	LifecycleStore

	// Create persists the poll and its options, assigning their ids.
	Create(ctx context.Context, poll *entities.Poll) error
	FindByID(ctx context.Context, id int64) (*entities.Poll, error)
	SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error

	// ReplaceVote removes any prior vote by the user on this poll and
	// inserts the new one, atomically (single-choice polls). Returns
	// whether a prior vote was displaced.
	ReplaceVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error)

	// ToggleVote inserts the (option, user) vote if absent or deletes it if
	// present (multi-choice polls). Returns whether the vote is now present.
	ToggleVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error)

	// Tallies returns per-option vote counts in option order.
	Tallies(ctx context.Context, pollID int64) ([]entities.OptionTally, error)
}
