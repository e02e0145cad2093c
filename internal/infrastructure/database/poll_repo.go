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

var _ output.PollRepository = (*PollRepository)(nil)

type PollRepository struct {
	pool *pgxpool.Pool
}

func NewPollRepository(pool *pgxpool.Pool) *PollRepository {
	return &PollRepository{pool: pool}
}

func (r *PollRepository) Create(ctx context.Context, poll *entities.Poll) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO polls (guild_id, channel_id, message_id, creator_id, question, allow_multiple, anonymous, active, expires_at)
		VALUES ($1, $2, '', $3, $4, $5, $6, true, $7)
		RETURNING id, created_at, updated_at`,
		poll.GuildID, poll.ChannelID, poll.CreatorID, poll.Question, poll.AllowMultiple, poll.Anonymous, timeToPgtype(poll.ExpiresAt),
	).Scan(&poll.ID, &poll.CreatedAt, &poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create poll: %w", err)
	}

	for i := range poll.Options {
		opt := &poll.Options[i]
		opt.PollID = poll.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO poll_options (poll_id, text, emoji, position)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			poll.ID, opt.Text, opt.Emoji, opt.Position,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("create poll option: %w", err)
		}
	}

	poll.Active = true
	return tx.Commit(ctx)
}

func (r *PollRepository) FindByID(ctx context.Context, id int64) (*entities.Poll, error) {
	var (
		p         entities.Poll
		expiresAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, guild_id, channel_id, message_id, creator_id, question, allow_multiple, anonymous, active, expires_at, created_at, updated_at
		FROM polls WHERE id = $1`, id,
	).Scan(&p.ID, &p.GuildID, &p.ChannelID, &p.MessageID, &p.CreatorID, &p.Question, &p.AllowMultiple, &p.Anonymous, &p.Active, &expiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get poll: %w", err)
	}
	p.ExpiresAt = pgtypeTimestamptzToTime(expiresAt)

	rows, err := r.pool.Query(ctx, `
		SELECT id, poll_id, text, emoji, position FROM poll_options
		WHERE poll_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get poll options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var opt entities.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Emoji, &opt.Position); err != nil {
			return nil, fmt.Errorf("scan poll option: %w", err)
		}
		p.Options = append(p.Options, opt)
	}
	return &p, rows.Err()
}

func (r *PollRepository) SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE polls SET channel_id = $2, message_id = $3, updated_at = now() WHERE id = $1`,
		id, ref.ChannelID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("set poll message ref: %w", err)
	}
	return nil
}

// ReplaceVote deletes any prior vote by the user and inserts the new one in
// a single transaction, so two concurrent presses still leave exactly one
// row.
func (r *PollRepository) ReplaceVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent presses by the same user on the same poll; the
	// delete+insert pair below is not atomic on its own.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		fmt.Sprint(pollID), userID); err != nil {
		return false, fmt.Errorf("vote lock: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM poll_votes WHERE poll_id = $1 AND user_id = $2`, pollID, userID)
	if err != nil {
		return false, fmt.Errorf("delete prior vote: %w", err)
	}
	replaced := tag.RowsAffected() > 0

	_, err = tx.Exec(ctx, `
		INSERT INTO poll_votes (poll_id, option_id, user_id) VALUES ($1, $2, $3)`,
		pollID, optionID, userID)
	if err != nil {
		return false, fmt.Errorf("insert vote: %w", mapConflict(err, domain.ErrAlreadyVoted))
	}
	return replaced, tx.Commit(ctx)
}

// ToggleVote removes the exact (option, user) vote if present, otherwise
// inserts it. A concurrent duplicate insert is absorbed as "already on".
func (r *PollRepository) ToggleVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM poll_votes WHERE poll_id = $1 AND option_id = $2 AND user_id = $3`,
		pollID, optionID, userID)
	if err != nil {
		return false, fmt.Errorf("delete vote: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO poll_votes (poll_id, option_id, user_id) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		pollID, optionID, userID)
	if err != nil {
		return false, fmt.Errorf("insert vote: %w", err)
	}
	return true, nil
}

func (r *PollRepository) Tallies(ctx context.Context, pollID int64) ([]entities.OptionTally, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.text, o.emoji, count(v.user_id)
		FROM poll_options o
		LEFT JOIN poll_votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.emoji, o.position
		ORDER BY o.position`, pollID)
	if err != nil {
		return nil, fmt.Errorf("tally poll: %w", err)
	}
	defer rows.Close()

	var out []entities.OptionTally
	for rows.Next() {
		var t entities.OptionTally
		if err := rows.Scan(&t.OptionID, &t.Text, &t.Emoji, &t.Count); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PollRepository) FindActiveScheduled(ctx context.Context, guildID string) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM polls
		WHERE guild_id = $1 AND active AND expires_at IS NOT NULL`, guildID)
}

func (r *PollRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entities.ExpirableRow, error) {
	return queryExpirable(ctx, r.pool, `
		SELECT id, guild_id, expires_at FROM polls
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at LIMIT $2`, now, limit)
}

func (r *PollRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE polls SET active = false, updated_at = now() WHERE id = $1 AND active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate poll: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PollRepository) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM polls WHERE NOT active AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge polls: %w", err)
	}
	return tag.RowsAffected(), nil
}
