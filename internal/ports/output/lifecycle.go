package output

import (
	"context"
	"time"

	"modbot/internal/domain/entities"
)

// LifecycleStore is the persistence contract the engine needs from every
// entity kind: recovery scan, sweep scan, the conditional terminal write,
// and the retention purge. Each kind repository embeds it.
type LifecycleStore interface {
	// FindActiveScheduled returns active rows with a non-null deadline in
	// the guild, for re-arming timers after a restart.
	FindActiveScheduled(ctx context.Context, guildID string) ([]entities.ExpirableRow, error)

	// FindDue returns up to limit active rows across all guilds whose
	// deadline has passed.
	FindDue(ctx context.Context, now time.Time, limit int) ([]entities.ExpirableRow, error)

	// Deactivate flips active to false only if it is still true and reports
	// whether this call won the transition. Zero rows affected is the
	// expected outcome of a lost race, not an error.
	Deactivate(ctx context.Context, id int64) (bool, error)

	// PurgeInactiveBefore deletes inactive rows last updated before cutoff.
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
