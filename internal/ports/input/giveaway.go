package input

import (
	"context"
	"time"

	"modbot/internal/domain/entities"
)

type StartGiveawayParams struct {
	GuildID          string
	ChannelID        string
	CreatorID        string
	Prize            string
	WinnersRequested int
	RequiredRoleID   string
	RequiredLevel    int
	Duration         time.Duration
}

type GiveawayUseCase interface {
	StartGiveaway(ctx context.Context, params StartGiveawayParams) (*entities.Giveaway, error)

	// Enter validates the entry requirements against the member's current
	// roles and level, then records the entry.
	Enter(ctx context.Context, giveawayID int64, userID string, memberRoleIDs []string) error

	EndGiveaway(ctx context.Context, giveawayID int64, actorID string, privileged bool) error

	// Reroll redraws winners for an already-ended giveaway.
	Reroll(ctx context.Context, giveawayID int64, actorID string, privileged bool) ([]string, error)

	ListActive(ctx context.Context, guildID string) ([]entities.Giveaway, error)
}
