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

var _ output.QuarantineRepository = (*QuarantineRepository)(nil)

type QuarantineRepository struct {
	pool *pgxpool.Pool
}

func NewQuarantineRepository(pool *pgxpool.Pool) *QuarantineRepository {
	return &QuarantineRepository{pool: pool}
}

func (r *QuarantineRepository) Create(ctx context.Context, entry *entities.QuarantineEntry) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quarantine_entries (guild_id, target_id, moderator_id, reason, previous_roles, active, expires_at)
		VALUES ($1, $2, $3, $4, $5, true, $6)
		RETURNING id, created_at, updated_at`,
		entry.GuildID, entry.TargetID, entry.ModeratorID, entry.Reason, entry.PreviousRoles, timeToPgtype(entry.ExpiresAt),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create quarantine entry: %w", mapConflict(err, domain.ErrAlreadyQuarantined))
	}
	entry.Active = true
	return nil
}

func (r *QuarantineRepository) FindByID(ctx context.Context, id int64) (*entities.QuarantineEntry, error) {
	return r.scanOne(ctx, `
		SELECT id, guild_id, target_id, moderator_id, reason, previous_roles, active, expires_at, created_at, updated_at
		FROM quarantine_entries WHERE id = $1`, id)
}

func (r *QuarantineRepository) FindActiveByTarget(ctx context.Context, guildID, targetID string) (*entities.QuarantineEntry, error) {
	return r.scanOne(ctx, `
		SELECT id, guild_id, target_id, moderator_id, reason, previous_roles, active, expires_at, created_at, updated_at
		FROM quarantine_entries WHERE guild_id = $1 AND target_id = $2 AND active`, guildID, targetID)
}

func (r *QuarantineRepository) ListActive(ctx context.Context, guildID string) ([]entities.QuarantineEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, target_id, moderator_id, reason, previous_roles, active, expires_at, created_at, updated_at
		FROM quarantine_entries WHERE guild_id = $1 AND active ORDER BY created_at`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list active quarantines: %w", err)
	}
	defer rows.Close()

	var out []entities.QuarantineEntry
	for rows.Next() {
		entry, err := scanQuarantine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (r *QuarantineRepository) FindActiveScheduled(ctx context.Context, guildID string) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM quarantine_entries
		WHERE guild_id = $1 AND active AND expires_at IS NOT NULL`, guildID)
}

func (r *QuarantineRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM quarantine_entries
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at LIMIT $2`, now, limit)
}

func (r *QuarantineRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quarantine_entries SET active = false, updated_at = now()
		WHERE id = $1 AND active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate quarantine entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *QuarantineRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM quarantine_entries WHERE NOT active AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge quarantine entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *QuarantineRepository) scanOne(ctx context.Context, query string, args ...any) (*entities.QuarantineEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get quarantine entry: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get quarantine entry: %w", err)
		}
		return nil, domain.ErrNotFound
	}
	return scanQuarantine(rows)
}

func scanQuarantine(row pgx.Row) (*entities.QuarantineEntry, error) {
	var (
		e         entities.QuarantineEntry
		expiresAt pgtype.Timestamptz
	)
	err := row.Scan(&e.ID, &e.GuildID, &e.TargetID, &e.ModeratorID, &e.Reason, &e.PreviousRoles, &e.Active, &expiresAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan quarantine entry: %w", err)
	}
	e.ExpiresAt = pgtypeTimestamptzToTime(expiresAt)
	return &e, nil
}

// queryExpirable runs a query returning (id, guild_id, expires_at) rows.
func queryExpirable(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]entities.ExpirableRow, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expirable rows: %w", err)
	}
	defer rows.Close()

	var out []entities.ExpirableRow
	for rows.Next() {
		var (
			row       entities.ExpirableRow
			expiresAt pgtype.Timestamptz
		)
		if err := rows.Scan(&row.ID, &row.GuildID, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan expirable row: %w", err)
		}
		row.ExpiresAt = pgtypeTimestamptzToTime(expiresAt)
		out = append(out, row)
	}
	return out, rows.Err()
}
