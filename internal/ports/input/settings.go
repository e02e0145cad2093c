package input

import (
	"context"

	"modbot/internal/domain/entities"
)

type SettingsUseCase interface {
	Get(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	Update(ctx context.Context, settings *entities.GuildSettings) error
}
