package output

import (
	"context"

	"modbot/internal/domain/entities"
)

type SettingsRepository interface {
	// Get returns the guild settings, or zero-valued settings when the
	// guild has never been configured.
	Get(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	Upsert(ctx context.Context, settings *entities.GuildSettings) error
}

// LevelProvider exposes the member level used for giveaway entry gating.
// Members without a recorded level are level 0.
type LevelProvider interface {
	Level(ctx context.Context, guildID, userID string) (int, error)
}
