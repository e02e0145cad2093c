package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

type QuarantineService struct {
	repo       output.QuarantineRepository
	settings   output.SettingsRepository
	audit      output.AuditRepository
	presenter  output.Presenter
	translator output.T
	engine     *Engine
	clock      clockwork.Clock
}

func NewQuarantineService(
	repo output.QuarantineRepository,
	settings output.SettingsRepository,
	audit output.AuditRepository,
	presenter output.Presenter,
	translator output.T,
	engine *Engine,
	clock clockwork.Clock,
) *QuarantineService {
	s := &QuarantineService{
		repo:       repo,
		settings:   settings,
		audit:      audit,
		presenter:  presenter,
		translator: translator,
		engine:     engine,
		clock:      clock,
	}
	engine.Register(s)
	return s
}

func (s *QuarantineService) Kind() domain.Kind            { return domain.KindQuarantine }
func (s *QuarantineService) Store() output.LifecycleStore { return s.repo }

// Quarantine snapshots the member's roles before the quarantine role is
// applied, swaps the roles and stores the entry. duration == 0 means
// indefinite: no deadline, no timer, released only by a moderator.
func (s *QuarantineService) Quarantine(ctx context.Context, guildID, targetID, moderatorID, reason string, duration time.Duration) (*entities.QuarantineEntry, error) {
	settings, err := s.settings.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings.QuarantineRoleID == "" {
		return nil, domain.ErrNoQuarantineRole
	}
	if existing, _ := s.repo.FindActiveByTarget(ctx, guildID, targetID); existing != nil {
		return nil, domain.ErrAlreadyQuarantined
	}

	memberRoles, err := s.presenter.MemberRoles(ctx, guildID, targetID)
	if err != nil {
		return nil, fmt.Errorf("member roles: %w", err)
	}
	// The snapshot must never contain the quarantine role or the implicit
	// everyone-role (its id equals the guild id), or restoration would
	// re-grant them.
	snapshot := make([]string, 0, len(memberRoles))
	for _, roleID := range memberRoles {
		if roleID == settings.QuarantineRoleID || roleID == guildID {
			continue
		}
		snapshot = append(snapshot, roleID)
	}

	entry := &entities.QuarantineEntry{
		GuildID:       guildID,
		TargetID:      targetID,
		ModeratorID:   moderatorID,
		Reason:        reason,
		PreviousRoles: snapshot,
		Active:        true,
	}
	if duration > 0 {
		entry.ExpiresAt = s.clock.Now().Add(duration)
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create quarantine: %w", err)
	}

	// Role edits after the row exists: the store stays authoritative even
	// when Discord rejects an edit.
	if err := s.presenter.RevokeRoles(ctx, guildID, targetID, snapshot); err != nil {
		slog.Warn("retrait des rôles échoué", "guild", guildID, "target", targetID, "error", err)
	}
	if err := s.presenter.GrantRoles(ctx, guildID, targetID, []string{settings.QuarantineRoleID}); err != nil {
		slog.Warn("application du rôle quarantaine échouée", "guild", guildID, "target", targetID, "error", err)
	}

	if entry.Expires() {
		s.engine.Arm(domain.KindQuarantine, entry.ID, entry.ExpiresAt)
	}

	s.presenter.NotifyDirect(ctx, targetID, s.translator.T("", "dm.quarantine.applied", map[string]any{
		"Reason": reason,
	}))
	s.writeAudit(ctx, entry, domain.AuditQuarantineCreated, moderatorID, reason)
	return entry, nil
}

// Release ends an active quarantine early through the same processor path
// as natural expiration.
func (s *QuarantineService) Release(ctx context.Context, guildID, targetID, actorID string, privileged bool) error {
	if !privileged {
		return domain.ErrForbidden
	}
	entry, err := s.repo.FindActiveByTarget(ctx, guildID, targetID)
	if err != nil {
		return domain.ErrNotFound
	}
	won, err := s.engine.Process(ctx, domain.KindQuarantine, entry.ID, actorID)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrAlreadyEnded
	}
	return nil
}

func (s *QuarantineService) ListActive(ctx context.Context, guildID string) ([]entities.QuarantineEntry, error) {
	return s.repo.ListActive(ctx, guildID)
}

// ApplyExpiration restores the role snapshot, filtered against the roles
// that still exist in the guild, and revokes the quarantine role.
func (s *QuarantineService) ApplyExpiration(ctx context.Context, id int64, actorID string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load quarantine %d: %w", id, err)
	}

	guildRoles, err := s.presenter.GuildRoles(ctx, entry.GuildID)
	if err != nil {
		return fmt.Errorf("guild roles: %w", err)
	}
	existing := make(map[string]struct{}, len(guildRoles))
	for _, roleID := range guildRoles {
		existing[roleID] = struct{}{}
	}
	restore := make([]string, 0, len(entry.PreviousRoles))
	for _, roleID := range entry.PreviousRoles {
		if _, ok := existing[roleID]; ok {
			restore = append(restore, roleID)
		}
	}

	settings, err := s.settings.Get(ctx, entry.GuildID)
	if err == nil && settings.QuarantineRoleID != "" {
		if err := s.presenter.RevokeRoles(ctx, entry.GuildID, entry.TargetID, []string{settings.QuarantineRoleID}); err != nil {
			slog.Warn("retrait du rôle quarantaine échoué", "guild", entry.GuildID, "target", entry.TargetID, "error", err)
		}
	}
	if err := s.presenter.GrantRoles(ctx, entry.GuildID, entry.TargetID, restore); err != nil {
		slog.Warn("restauration des rôles échouée", "guild", entry.GuildID, "target", entry.TargetID, "error", err)
	}

	s.presenter.NotifyDirect(ctx, entry.TargetID, s.translator.T("", "dm.quarantine.lifted", nil))
	s.writeAudit(ctx, entry, domain.AuditQuarantineEnded, actorID, "")
	return nil
}

func (s *QuarantineService) writeAudit(ctx context.Context, entry *entities.QuarantineEntry, action, actorID, details string) {
	err := s.audit.Create(ctx, &entities.AuditEntry{
		GuildID:  entry.GuildID,
		Kind:     string(domain.KindQuarantine),
		EntityID: entry.ID,
		Action:   action,
		ActorID:  actorID,
		Details:  details,
	})
	if err != nil {
		slog.Error("audit write failed", "action", action, "id", entry.ID, "error", err)
	}
}
