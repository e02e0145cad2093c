package input

import (
	"context"
	"time"

	"modbot/internal/domain/entities"
)

type QuarantineUseCase interface {
	// Quarantine snapshots the member's roles, applies the quarantine role
	// and stores the entry. A zero duration means indefinite.
	Quarantine(ctx context.Context, guildID, targetID, moderatorID, reason string, duration time.Duration) (*entities.QuarantineEntry, error)

	// Release ends the target's active quarantine early. Requires privilege.
	Release(ctx context.Context, guildID, targetID, actorID string, privileged bool) error

	ListActive(ctx context.Context, guildID string) ([]entities.QuarantineEntry, error)
}
