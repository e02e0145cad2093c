package output

import (
	"context"

	"modbot/internal/domain/entities"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *entities.AuditEntry) error
	FindByEntity(ctx context.Context, kind string, entityID int64) ([]entities.AuditEntry, error)
}
