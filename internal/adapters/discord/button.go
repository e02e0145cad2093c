package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandleComponent routes button presses by custom-ID prefix. IDs carry the
// entity identifiers so a press survives bot restarts without any in-memory
// interaction state.
func (h *Handler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "poll_vote_"):
		pollID, optionID, ok := parsePollVoteID(customID)
		if !ok {
			return
		}
		h.HandlePollVote(s, i, pollID, optionID)
	case strings.HasPrefix(customID, "giveaway_enter_"):
		giveawayID, err := strconv.ParseInt(strings.TrimPrefix(customID, "giveaway_enter_"), 10, 64)
		if err != nil {
			return
		}
		h.HandleGiveawayEnter(s, i, giveawayID)
	}
}

func parsePollVoteID(customID string) (pollID, optionID int64, ok bool) {
	parts := strings.Split(strings.TrimPrefix(customID, "poll_vote_"), "_")
	if len(parts) != 2 {
		return 0, 0, false
	}
	pollID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	optionID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return pollID, optionID, true
}
