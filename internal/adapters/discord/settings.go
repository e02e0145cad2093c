package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) HandleSettingsSet(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	if !h.isPrivileged(ctx, i) {
		respondEphemeral(s, i.Interaction, h.t("err.forbidden", nil))
		return
	}
	settings, err := h.settingsUseCase.Get(ctx, i.GuildID)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	settings.GuildID = i.GuildID

	opts := optionMap(sub)
	if opt, ok := opts["role_quarantaine"]; ok {
		settings.QuarantineRoleID = opt.RoleValue(s, i.GuildID).ID
	}
	if opt, ok := opts["role_moderateur"]; ok {
		settings.ModeratorRoleID = opt.RoleValue(s, i.GuildID).ID
	}
	if opt, ok := opts["salon_audit"]; ok {
		settings.AuditChannelID = opt.ChannelValue(s).ID
	}

	if err := h.settingsUseCase.Update(ctx, settings); err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	respondEphemeral(s, i.Interaction, h.t("reply.settings.updated", nil))
}

func (h *Handler) HandleSettingsView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if !h.isPrivileged(ctx, i) {
		respondEphemeral(s, i.Interaction, h.t("err.forbidden", nil))
		return
	}
	settings, err := h.settingsUseCase.Get(ctx, i.GuildID)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}

	format := func(kind, id string) string {
		if id == "" {
			return "non configuré"
		}
		return fmt.Sprintf("<%s%s>", kind, id)
	}
	lines := []string{
		"**Rôle quarantaine :** " + format("@&", settings.QuarantineRoleID),
		"**Rôle modérateur :** " + format("@&", settings.ModeratorRoleID),
		"**Salon d'audit :** " + format("#", settings.AuditChannelID),
	}
	respondEphemeral(s, i.Interaction, strings.Join(lines, "\n"))
}
