package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

var _ output.SettingsRepository = (*SettingsRepository)(nil)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get never fails on an unconfigured guild: it returns zero-valued settings.
func (r *SettingsRepository) Get(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	var s entities.GuildSettings
	err := r.pool.QueryRow(ctx, `
		SELECT guild_id, quarantine_role_id, moderator_role_id, audit_channel_id, updated_at
		FROM guild_settings WHERE guild_id = $1`, guildID,
	).Scan(&s.GuildID, &s.QuarantineRoleID, &s.ModeratorRoleID, &s.AuditChannelID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entities.GuildSettings{GuildID: guildID}, nil
		}
		return nil, fmt.Errorf("get guild settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *entities.GuildSettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, quarantine_role_id, moderator_role_id, audit_channel_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE SET
			quarantine_role_id = excluded.quarantine_role_id,
			moderator_role_id = excluded.moderator_role_id,
			audit_channel_id = excluded.audit_channel_id,
			updated_at = now()`,
		settings.GuildID, settings.QuarantineRoleID, settings.ModeratorRoleID, settings.AuditChannelID)
	if err != nil {
		return fmt.Errorf("upsert guild settings: %w", err)
	}
	return nil
}
