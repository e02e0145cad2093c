package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
	pkgdiscord "modbot/pkg/discord"
)

var _ output.Presenter = (*Presenter)(nil)

// Presenter renders entities as Discord messages and applies role changes.
// The store stays authoritative: when a message was deleted out-of-band the
// edit failure is logged and swallowed, never propagated.
type Presenter struct {
	session *discordgo.Session
}

func NewPresenter(session *discordgo.Session) *Presenter {
	return &Presenter{session: session}
}

func (p *Presenter) SyncPoll(ctx context.Context, poll *entities.Poll, tallies []entities.OptionTally) (entities.MessageRef, error) {
	ended := !poll.Active
	embed := pkgdiscord.BuildPollEmbed(poll, tallies, ended)
	components := pkgdiscord.BuildPollComponents(poll, ended)
	return p.syncMessage(poll.Ref(), poll.ChannelID, embed, components)
}

func (p *Presenter) SyncGiveaway(ctx context.Context, giveaway *entities.Giveaway, entryCount int) (entities.MessageRef, error) {
	ended := !giveaway.Active
	embed := pkgdiscord.BuildGiveawayEmbed(giveaway, entryCount, ended)
	components := pkgdiscord.BuildGiveawayComponents(giveaway, ended)
	return p.syncMessage(giveaway.Ref(), giveaway.ChannelID, embed, components)
}

// syncMessage sends the message on first render, edits it afterwards.
func (p *Presenter) syncMessage(ref entities.MessageRef, channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (entities.MessageRef, error) {
	if ref.IsZero() {
		msg, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		if err != nil {
			return entities.MessageRef{}, fmt.Errorf("envoi du message: %w", err)
		}
		return entities.MessageRef{ChannelID: channelID, MessageID: msg.ID}, nil
	}

	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         ref.MessageID,
		Channel:    ref.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		// Message supprimé à la main, probablement. L'état en base prime.
		slog.Warn("❌ Erreur lors de la mise à jour du message", "channel", ref.ChannelID, "message", ref.MessageID, "error", err)
	}
	return ref, nil
}

func (p *Presenter) AnnounceWinners(ctx context.Context, giveaway *entities.Giveaway) error {
	var content string
	if len(giveaway.WinnerUserIDs) == 0 {
		content = fmt.Sprintf("🎉 Le giveaway **%s** est terminé, mais personne n'a participé.", giveaway.Prize)
	} else {
		content = fmt.Sprintf("🎉 Félicitations %s ! Vous remportez **%s** !",
			pkgdiscord.FormatMentions(giveaway.WinnerUserIDs), giveaway.Prize)
	}
	if _, err := p.session.ChannelMessageSend(giveaway.ChannelID, content); err != nil {
		return fmt.Errorf("annonce des gagnants: %w", err)
	}
	return nil
}

func (p *Presenter) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		if err := p.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
			return fmt.Errorf("ajout du rôle %s: %w", roleID, err)
		}
	}
	return nil
}

func (p *Presenter) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		if err := p.session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			return fmt.Errorf("retrait du rôle %s: %w", roleID, err)
		}
	}
	return nil
}

func (p *Presenter) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	member, err := p.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("récupération du membre %s: %w", userID, err)
	}
	return member.Roles, nil
}

func (p *Presenter) GuildRoles(ctx context.Context, guildID string) ([]string, error) {
	roles, err := p.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("récupération des rôles du serveur: %w", err)
	}
	ids := make([]string, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids, nil
}

func (p *Presenter) NotifyDirect(ctx context.Context, userID, message string) bool {
	ch, err := p.session.UserChannelCreate(userID)
	if err != nil || ch == nil {
		return false
	}
	if _, err := p.session.ChannelMessageSend(ch.ID, message); err != nil {
		// DMs fermés, rien à faire.
		return false
	}
	return true
}
