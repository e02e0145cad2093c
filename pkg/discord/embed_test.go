package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modbot/internal/domain/entities"
)

func testPoll() *entities.Poll {
	return &entities.Poll{
		ID:        7,
		Question:  "Pizza ou sushi ?",
		Active:    true,
		ExpiresAt: time.Unix(1750000000, 0),
		Options: []entities.PollOption{
			{ID: 1, Text: "Pizza", Position: 0},
			{ID: 2, Text: "Sushi", Position: 1},
		},
	}
}

func TestBuildPollComponents(t *testing.T) {
	poll := testPoll()

	rows := BuildPollComponents(poll, false)
	require.Len(t, rows, 1)
	row, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	btn, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "poll_vote_7_1", btn.CustomID)
	assert.False(t, btn.Disabled)

	rows = BuildPollComponents(poll, true)
	row = rows[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[0].(discordgo.Button).Disabled)
}

func TestBuildPollEmbedAnonymousHidesCounts(t *testing.T) {
	poll := testPoll()
	poll.Anonymous = true
	tallies := []entities.OptionTally{
		{OptionID: 1, Text: "Pizza", Count: 3},
		{OptionID: 2, Text: "Sushi", Count: 1},
	}

	embed := BuildPollEmbed(poll, tallies, false)
	assert.NotContains(t, embed.Description, "3 vote(s)")

	embed = BuildPollEmbed(poll, tallies, true)
	assert.Contains(t, embed.Description, "3 vote(s)")
	assert.Contains(t, embed.Footer.Text, "4 vote(s)")
}

func TestBuildGiveawayEmbed(t *testing.T) {
	g := &entities.Giveaway{
		ID:               3,
		Prize:            "Nitro",
		WinnersRequested: 2,
		Active:           true,
		ExpiresAt:        time.Unix(1750000000, 0),
	}

	embed := BuildGiveawayEmbed(g, 5, false)
	assert.Contains(t, embed.Description, "Nitro")
	assert.Contains(t, embed.Description, "**Participants :** 5")

	g.Active = false
	g.WinnerUserIDs = []string{"alice", "bob"}
	embed = BuildGiveawayEmbed(g, 5, true)
	assert.Contains(t, embed.Description, "<@alice>, <@bob>")

	components := BuildGiveawayComponents(g, true)
	row := components[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[0].(discordgo.Button).Disabled)
}

func TestTallyBar(t *testing.T) {
	assert.Equal(t, 10, len([]rune(tallyBar(0, 0))))
	full := tallyBar(4, 4)
	assert.NotContains(t, full, "░")
}
