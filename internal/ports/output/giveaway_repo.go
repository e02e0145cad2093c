package output

import (
	"context"

	"modbot/internal/domain/entities"
)

type GiveawayRepository interface {
	LifecycleStore

	Create(ctx context.Context, giveaway *entities.Giveaway) error
	FindByID(ctx context.Context, id int64) (*entities.Giveaway, error)
	ListActive(ctx context.Context, guildID string) ([]entities.Giveaway, error)
	SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error

	// AddEntry inserts a unique (giveaway, user) entry. The uniqueness
	// constraint lives in the store; duplicates surface as
	// domain.ErrAlreadyEntered.
	AddEntry(ctx context.Context, giveawayID int64, userID string) error
	CountEntries(ctx context.Context, giveawayID int64) (int, error)
	ListEntries(ctx context.Context, giveawayID int64) ([]string, error)
	SetWinners(ctx context.Context, giveawayID int64, winnerUserIDs []string) error
}
