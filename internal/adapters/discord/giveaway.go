package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"modbot/internal/ports/input"
	pkgdiscord "modbot/pkg/discord"
)

func (h *Handler) HandleGiveawayStart(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	if !h.isPrivileged(ctx, i) {
		respondEphemeral(s, i.Interaction, h.t("err.forbidden", nil))
		return
	}
	opts := optionMap(sub)

	duration, err := pkgdiscord.ParseDuration(opts["duree"].StringValue())
	if err != nil {
		respondEphemeral(s, i.Interaction, err.Error())
		return
	}
	params := input.StartGiveawayParams{
		GuildID:          i.GuildID,
		ChannelID:        i.ChannelID,
		CreatorID:        i.Member.User.ID,
		Prize:            opts["lot"].StringValue(),
		WinnersRequested: 1,
		Duration:         duration,
	}
	if opt, ok := opts["gagnants"]; ok {
		params.WinnersRequested = int(opt.IntValue())
	}
	if opt, ok := opts["role_requis"]; ok {
		params.RequiredRoleID = opt.RoleValue(s, i.GuildID).ID
	}
	if opt, ok := opts["niveau_requis"]; ok {
		params.RequiredLevel = int(opt.IntValue())
	}

	deferEphemeral(s, i.Interaction)

	giveaway, err := h.giveawayUseCase.StartGiveaway(ctx, params)
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.giveaway.created", map[string]any{
		"ID": giveaway.ID,
	}))
}

func (h *Handler) HandleGiveawayEnd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := optionMap(sub)
	giveawayID := opts["id"].IntValue()

	deferEphemeral(s, i.Interaction)

	err := h.giveawayUseCase.EndGiveaway(ctx, giveawayID, i.Member.User.ID, h.isPrivileged(ctx, i))
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.giveaway.ended", nil))
}

func (h *Handler) HandleGiveawayReroll(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := optionMap(sub)
	giveawayID := opts["id"].IntValue()

	deferEphemeral(s, i.Interaction)

	winners, err := h.giveawayUseCase.Reroll(ctx, giveawayID, i.Member.User.ID, h.isPrivileged(ctx, i))
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.giveaway.rerolled", map[string]any{
		"Winners": pkgdiscord.FormatMentions(winners),
	}))
}

func (h *Handler) HandleGiveawayList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	giveaways, err := h.giveawayUseCase.ListActive(ctx, i.GuildID)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	if len(giveaways) == 0 {
		respondEphemeral(s, i.Interaction, h.t("reply.giveaway.none", nil))
		return
	}
	lines := make([]string, 0, len(giveaways))
	for _, g := range giveaways {
		lines = append(lines, fmt.Sprintf("`#%d` **%s** • %d gagnant(s) • tirage %s",
			g.ID, g.Prize, g.WinnersRequested, pkgdiscord.FormatDeadline(g.ExpiresAt)))
	}
	respondEphemeral(s, i.Interaction, strings.Join(lines, "\n"))
}

// HandleGiveawayEnter processes a press on the entry button.
func (h *Handler) HandleGiveawayEnter(s *discordgo.Session, i *discordgo.InteractionCreate, giveawayID int64) {
	ctx := context.Background()

	err := h.giveawayUseCase.Enter(ctx, giveawayID, i.Member.User.ID, i.Member.Roles)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	respondEphemeral(s, i.Interaction, h.t("reply.giveaway.entered", nil))
}
