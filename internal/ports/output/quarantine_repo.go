package output

import (
	"context"

	"modbot/internal/domain/entities"
)

type QuarantineRepository interface {
	LifecycleStore

	Create(ctx context.Context, entry *entities.QuarantineEntry) error
	FindByID(ctx context.Context, id int64) (*entities.QuarantineEntry, error)
	FindActiveByTarget(ctx context.Context, guildID, targetID string) (*entities.QuarantineEntry, error)
	ListActive(ctx context.Context, guildID string) ([]entities.QuarantineEntry, error)
}
