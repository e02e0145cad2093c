package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"modbot/internal/ports/input"
	pkgdiscord "modbot/pkg/discord"
)

func (h *Handler) HandlePollCreate(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := optionMap(sub)

	duration, err := pkgdiscord.ParseDuration(opts["duree"].StringValue())
	if err != nil {
		respondEphemeral(s, i.Interaction, err.Error())
		return
	}

	options := make([]string, 0, 5)
	for _, name := range []string{"option1", "option2", "option3", "option4", "option5"} {
		if opt, ok := opts[name]; ok {
			options = append(options, opt.StringValue())
		}
	}
	params := input.CreatePollParams{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		CreatorID: i.Member.User.ID,
		Question:  opts["question"].StringValue(),
		Options:   options,
		Duration:  duration,
	}
	if opt, ok := opts["multiple"]; ok {
		params.AllowMultiple = opt.BoolValue()
	}
	if opt, ok := opts["anonyme"]; ok {
		params.Anonymous = opt.BoolValue()
	}

	deferEphemeral(s, i.Interaction)

	poll, err := h.pollUseCase.CreatePoll(ctx, params)
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.poll.created", map[string]any{
		"ID": poll.ID,
	}))
}

func (h *Handler) HandlePollEnd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := optionMap(sub)
	pollID := opts["id"].IntValue()

	deferEphemeral(s, i.Interaction)

	err := h.pollUseCase.EndPoll(ctx, pollID, i.Member.User.ID, h.isPrivileged(ctx, i))
	if err != nil {
		followupEphemeral(s, i.Interaction, h.t(pkgdiscord.DomainErrorKey(err), nil))
		return
	}
	followupEphemeral(s, i.Interaction, h.t("reply.poll.ended", nil))
}

// HandlePollVote processes a press on one of the option buttons.
func (h *Handler) HandlePollVote(s *discordgo.Session, i *discordgo.InteractionCreate, pollID, optionID int64) {
	ctx := context.Background()

	result, err := h.pollUseCase.Vote(ctx, pollID, optionID, i.Member.User.ID)
	if err != nil {
		h.respondDomainError(s, i.Interaction, err)
		return
	}
	key := "reply.poll.vote_added"
	switch {
	case result.Replaced:
		key = "reply.poll.vote_replaced"
	case !result.Added:
		key = "reply.poll.vote_removed"
	}
	respondEphemeral(s, i.Interaction, h.t(key, nil))
}
