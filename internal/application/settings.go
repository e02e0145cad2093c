package application

import (
	"context"

	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

type SettingsService struct {
	repo output.SettingsRepository
}

func NewSettingsService(repo output.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	return s.repo.Get(ctx, guildID)
}

func (s *SettingsService) Update(ctx context.Context, settings *entities.GuildSettings) error {
	return s.repo.Upsert(ctx, settings)
}
