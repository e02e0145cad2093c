package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

var _ output.AuditRepository = (*AuditRepository)(nil)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Create(ctx context.Context, entry *entities.AuditEntry) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (guild_id, kind, entity_id, action, actor_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		entry.GuildID, entry.Kind, entry.EntityID, entry.Action, entry.ActorID, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) FindByEntity(ctx context.Context, kind string, entityID int64) ([]entities.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, kind, entity_id, action, actor_id, details, created_at
		FROM audit_log WHERE kind = $1 AND entity_id = $2 ORDER BY created_at`, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer rows.Close()

	var out []entities.AuditEntry
	for rows.Next() {
		var e entities.AuditEntry
		if err := rows.Scan(&e.ID, &e.GuildID, &e.Kind, &e.EntityID, &e.Action, &e.ActorID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
