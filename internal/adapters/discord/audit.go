package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

var _ output.AuditRepository = (*AuditNotifier)(nil)

// AuditNotifier decorates the audit repository: every entry is persisted
// first, then mirrored to the guild's configured audit channel. Channel
// failures never fail the write.
type AuditNotifier struct {
	next     output.AuditRepository
	settings output.SettingsRepository
	session  *discordgo.Session
}

func NewAuditNotifier(next output.AuditRepository, settings output.SettingsRepository, session *discordgo.Session) *AuditNotifier {
	return &AuditNotifier{next: next, settings: settings, session: session}
}

func (n *AuditNotifier) Create(ctx context.Context, entry *entities.AuditEntry) error {
	if err := n.next.Create(ctx, entry); err != nil {
		return err
	}

	settings, err := n.settings.Get(ctx, entry.GuildID)
	if err != nil || settings.AuditChannelID == "" {
		return nil
	}
	if _, err := n.session.ChannelMessageSend(settings.AuditChannelID, formatAuditLine(entry)); err != nil {
		slog.Warn("envoi dans le salon d'audit échoué", "guild", entry.GuildID, "channel", settings.AuditChannelID, "error", err)
	}
	return nil
}

func (n *AuditNotifier) FindByEntity(ctx context.Context, kind string, entityID int64) ([]entities.AuditEntry, error) {
	return n.next.FindByEntity(ctx, kind, entityID)
}

func formatAuditLine(entry *entities.AuditEntry) string {
	actor := "expiration automatique"
	if entry.ActorID != "" {
		actor = fmt.Sprintf("<@%s>", entry.ActorID)
	}
	line := fmt.Sprintf("📋 `%s` • %s #%d • %s", entry.Action, entry.Kind, entry.EntityID, actor)
	if entry.Details != "" {
		line += " • " + entry.Details
	}
	return line
}
