package discord

import (
	"fmt"
	"strings"

	"modbot/internal/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const (
	pollColor          = 0x5865F2
	pollEndedColor     = 0x99AAB5
	giveawayColor      = 0xF1C40F
	giveawayEndedColor = 0x99AAB5
	quarantineColor    = 0xE74C3C

	tallyBarWidth = 10
)

func tallyBar(count, total int) string {
	if total == 0 {
		return strings.Repeat("░", tallyBarWidth)
	}
	filled := count * tallyBarWidth / total
	return strings.Repeat("█", filled) + strings.Repeat("░", tallyBarWidth-filled)
}

func optionLine(t entities.OptionTally, total int, showCounts bool) string {
	label := t.Text
	if t.Emoji != "" {
		label = t.Emoji + " " + label
	}
	if !showCounts {
		return fmt.Sprintf("**%s**", label)
	}
	return fmt.Sprintf("**%s**\n%s %d vote(s)", label, tallyBar(t.Count, total), t.Count)
}

// BuildPollEmbed renders a poll with its per-option tallies. While the poll is
// anonymous and active only the options are shown; counts appear once ended.
func BuildPollEmbed(poll *entities.Poll, tallies []entities.OptionTally, ended bool) *discordgo.MessageEmbed {
	total := 0
	for _, t := range tallies {
		total += t.Count
	}
	showCounts := ended || !poll.Anonymous
	lines := make([]string, 0, len(tallies)+2)
	for _, t := range tallies {
		lines = append(lines, optionLine(t, total, showCounts))
	}
	mode := "un seul choix"
	if poll.AllowMultiple {
		mode = "choix multiples"
	}
	color := pollColor
	var footer string
	desc := strings.Join(lines, "\n\n")
	if ended {
		color = pollEndedColor
		footer = fmt.Sprintf("Sondage terminé • %d vote(s)", total)
	} else {
		// Timestamp markup does not render in footers, keep it in the body.
		desc += fmt.Sprintf("\n\nSe termine %s", FormatDeadline(poll.ExpiresAt))
		footer = "Sondage en cours • " + mode
	}
	return &discordgo.MessageEmbed{
		Title:       "📊 " + poll.Question,
		Description: desc,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// BuildPollComponents returns one button row per poll option. Buttons are
// disabled once the poll has ended so the terminal render stays clickable-free.
func BuildPollComponents(poll *entities.Poll, ended bool) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(poll.Options)+4)/5)
	buttons := make([]discordgo.MessageComponent, 0, 5)
	for _, opt := range poll.Options {
		btn := discordgo.Button{
			Label:    opt.Text,
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("poll_vote_%d_%d", poll.ID, opt.ID),
			Disabled: ended,
		}
		if opt.Emoji != "" {
			btn.Emoji = &discordgo.ComponentEmoji{Name: opt.Emoji}
		}
		buttons = append(buttons, btn)
		if len(buttons) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: buttons})
			buttons = make([]discordgo.MessageComponent, 0, 5)
		}
	}
	if len(buttons) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// BuildGiveawayEmbed renders a giveaway with its entry count and, once ended,
// the winner mentions.
func BuildGiveawayEmbed(g *entities.Giveaway, entryCount int, ended bool) *discordgo.MessageEmbed {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Lot :** %s\n", g.Prize))
	b.WriteString(fmt.Sprintf("**Gagnants :** %d\n", g.WinnersRequested))
	if g.RequiredRoleID != "" {
		b.WriteString(fmt.Sprintf("**Rôle requis :** <@&%s>\n", g.RequiredRoleID))
	}
	if g.RequiredLevel > 0 {
		b.WriteString(fmt.Sprintf("**Niveau requis :** %d\n", g.RequiredLevel))
	}
	b.WriteString(fmt.Sprintf("**Participants :** %d\n", entryCount))
	color := giveawayColor
	var footer string
	if ended {
		color = giveawayEndedColor
		if len(g.WinnerUserIDs) == 0 {
			b.WriteString("\nAucun participant, pas de gagnant.")
		} else {
			b.WriteString("\n**Résultats :** " + FormatMentions(g.WinnerUserIDs))
		}
		footer = "Giveaway terminé"
	} else {
		b.WriteString(fmt.Sprintf("\nTirage %s", FormatDeadline(g.ExpiresAt)))
		footer = "Clique sur 🎉 pour participer"
	}
	return &discordgo.MessageEmbed{
		Title:       "🎉 Giveaway",
		Description: b.String(),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// BuildGiveawayComponents returns the single entry button, disabled when ended.
func BuildGiveawayComponents(g *entities.Giveaway, ended bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Participer",
				Style:    discordgo.PrimaryButton,
				CustomID: fmt.Sprintf("giveaway_enter_%d", g.ID),
				Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
				Disabled: ended,
			},
		}},
	}
}

// BuildQuarantineListEmbed renders the active quarantines of a guild.
func BuildQuarantineListEmbed(entries []entities.QuarantineEntry) *discordgo.MessageEmbed {
	if len(entries) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🔒 Quarantaines actives",
			Description: "Aucune quarantaine active.",
			Color:       quarantineColor,
		}
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		until := "indéfinie"
		if e.Expires() {
			until = "jusqu'à " + FormatAbsolute(e.ExpiresAt)
		}
		reason := e.Reason
		if reason == "" {
			reason = "aucune raison"
		}
		lines = append(lines, fmt.Sprintf("<@%s> • %s • %s", e.TargetID, until, reason))
	}
	return &discordgo.MessageEmbed{
		Title:       "🔒 Quarantaines actives",
		Description: strings.Join(lines, "\n"),
		Color:       quarantineColor,
	}
}

// FormatMentions joins user ids as Discord mentions.
func FormatMentions(userIDs []string) string {
	mentions := make([]string, len(userIDs))
	for i, id := range userIDs {
		mentions[i] = fmt.Sprintf("<@%s>", id)
	}
	return strings.Join(mentions, ", ")
}
