package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

var _ output.GiveawayRepository = (*GiveawayRepository)(nil)

type GiveawayRepository struct {
	pool *pgxpool.Pool
}

func NewGiveawayRepository(pool *pgxpool.Pool) *GiveawayRepository {
	return &GiveawayRepository{pool: pool}
}

func (r *GiveawayRepository) Create(ctx context.Context, g *entities.Giveaway) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO giveaways (guild_id, channel_id, message_id, creator_id, prize, winners_requested, required_role_id, required_level, active, expires_at, winner_user_ids)
		VALUES ($1, $2, '', $3, $4, $5, $6, $7, true, $8, '{}')
		RETURNING id, created_at, updated_at`,
		g.GuildID, g.ChannelID, g.CreatorID, g.Prize, g.WinnersRequested, g.RequiredRoleID, g.RequiredLevel, timeToPgtype(g.ExpiresAt),
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create giveaway: %w", err)
	}
	g.Active = true
	return nil
}

func (r *GiveawayRepository) FindByID(ctx context.Context, id int64) (*entities.Giveaway, error) {
	g, err := scanGiveaway(r.pool.QueryRow(ctx, `
		SELECT id, guild_id, channel_id, message_id, creator_id, prize, winners_requested, required_role_id, required_level, active, expires_at, winner_user_ids, created_at, updated_at
		FROM giveaways WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GiveawayRepository) ListActive(ctx context.Context, guildID string) ([]entities.Giveaway, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, channel_id, message_id, creator_id, prize, winners_requested, required_role_id, required_level, active, expires_at, winner_user_ids, created_at, updated_at
		FROM giveaways WHERE guild_id = $1 AND active ORDER BY expires_at`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list active giveaways: %w", err)
	}
	defer rows.Close()

	var out []entities.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *GiveawayRepository) SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE giveaways SET channel_id = $2, message_id = $3, updated_at = now() WHERE id = $1`,
		id, ref.ChannelID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("set giveaway message ref: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) AddEntry(ctx context.Context, giveawayID int64, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO giveaway_entries (giveaway_id, user_id) VALUES ($1, $2)`,
		giveawayID, userID)
	if err != nil {
		return mapConflict(fmt.Errorf("add giveaway entry: %w", err), domain.ErrAlreadyEntered)
	}
	return nil
}

func (r *GiveawayRepository) CountEntries(ctx context.Context, giveawayID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM giveaway_entries WHERE giveaway_id = $1`, giveawayID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count giveaway entries: %w", err)
	}
	return count, nil
}

func (r *GiveawayRepository) ListEntries(ctx context.Context, giveawayID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM giveaway_entries WHERE giveaway_id = $1 ORDER BY entered_at`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("list giveaway entries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan giveaway entry: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func (r *GiveawayRepository) SetWinners(ctx context.Context, giveawayID int64, winnerUserIDs []string) error {
	if winnerUserIDs == nil {
		winnerUserIDs = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE giveaways SET winner_user_ids = $2, updated_at = now() WHERE id = $1`,
		giveawayID, winnerUserIDs)
	if err != nil {
		return fmt.Errorf("set giveaway winners: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) FindActiveScheduled(ctx context.Context, guildID string) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM giveaways
		WHERE guild_id = $1 AND active AND expires_at IS NOT NULL`, guildID)
}

func (r *GiveawayRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM giveaways
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at LIMIT $2`, now, limit)
}

func (r *GiveawayRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE giveaways SET active = false, updated_at = now() WHERE id = $1 AND active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate giveaway: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *GiveawayRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM giveaways WHERE NOT active AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge giveaways: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanGiveaway(row pgx.Row) (*entities.Giveaway, error) {
	var (
		g         entities.Giveaway
		expiresAt pgtype.Timestamptz
	)
	err := row.Scan(&g.ID, &g.GuildID, &g.ChannelID, &g.MessageID, &g.CreatorID, &g.Prize,
		&g.WinnersRequested, &g.RequiredRoleID, &g.RequiredLevel, &g.Active, &expiresAt,
		&g.WinnerUserIDs, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan giveaway: %w", err)
	}
	g.ExpiresAt = pgtypeTimestamptzToTime(expiresAt)
	return &g, nil
}
