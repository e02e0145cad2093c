package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"modbot/internal/ports/output"
)

var _ output.LevelProvider = (*LevelRepository)(nil)

// LevelRepository reads member levels maintained by an external leveling
// system; the bot only consumes them for giveaway entry gating.
type LevelRepository struct {
	pool *pgxpool.Pool
}

func NewLevelRepository(pool *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{pool: pool}
}

func (r *LevelRepository) Level(ctx context.Context, guildID, userID string) (int, error) {
	var level int
	err := r.pool.QueryRow(ctx, `
		SELECT level FROM user_levels WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get user level: %w", err)
	}
	return level, nil
}
