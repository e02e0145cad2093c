package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	pkgdiscord "modbot/pkg/discord"
)

func (h *Handler) HandleQuarantineAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	if !h.isPrivileged(ctx, i) {
		respondEphemeral(s, i.Interaction, h.t("err.forbidden", nil))
		return
	}
	opts := optionMap(sub)

	target := opts["membre"].UserValue(s)
	if target == nil {
		return
	}

	var duration time.Duration
	if opt, ok := opts["duree"]; ok {
		d, err := pkgdiscord.ParseDuration(opt.StringValue())
		if err != nil {
			respondEphemeral(s, i.Interaction, err.Error())
			return
		}
		duration = d
	}
	reason := ""
	if opt, ok := opts["raison"]; ok {
		reason = opt.StringValue()
	}

	// Le swap de rôles peut dépasser la fenêtre de réponse de 3 secondes.
	deferEphemeral(s, i.Interaction)

	entry, err := h.quarantineUseCase.Quarantine(ctx, i.GuildID, target.ID, i.Member.User.ID, reason, duration)
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}

	until := "∞"
	if entry.Expires() {
		until = pkgdiscord.FormatAbsolute(entry.ExpiresAt)
	}
	followupEphemeral(s, i.Interaction, h.t("reply.quarantine.applied", map[string]any{
		"Target": target.Mention(),
		"Until":  until,
	}))
}

func (h *Handler) HandleQuarantineRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := optionMap(sub)
	target := opts["membre"].UserValue(s)
	if target == nil {
		return
	}

	deferEphemeral(s, i.Interaction)

	err := h.quarantineUseCase.Release(ctx, i.GuildID, target.ID, i.Member.User.ID, h.isPrivileged(ctx, i))
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.quarantine.released", map[string]any{
		"Target": target.Mention(),
	}))
}

func (h *Handler) HandleQuarantineList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if !h.isPrivileged(ctx, i) {
		respondEphemeral(s, i.Interaction, h.t("err.forbidden", nil))
		return
	}
	entries, err := h.quarantineUseCase.ListActive(ctx, i.GuildID)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	if len(entries) == 0 {
		respondEphemeral(s, i.Interaction, h.t("reply.quarantine.none", nil))
		return
	}
	respondEmbedEphemeral(s, i.Interaction, pkgdiscord.BuildQuarantineListEmbed(entries))
}
