package output

import (
	"context"

	"modbot/internal/domain/entities"
)

// Presenter keeps the external representation of an entity (rendered
// message, role membership, notifications) in sync with the store. The
// store stays authoritative: implementations log and swallow edit failures
// on representations deleted out-of-band.
type Presenter interface {
	// SyncPoll creates or edits the poll message and returns its reference.
	SyncPoll(ctx context.Context, poll *entities.Poll, tallies []entities.OptionTally) (entities.MessageRef, error)

	// SyncGiveaway creates or edits the giveaway message and returns its reference.
	SyncGiveaway(ctx context.Context, giveaway *entities.Giveaway, entryCount int) (entities.MessageRef, error)

	// AnnounceWinners posts the winner announcement in the origin channel.
	AnnounceWinners(ctx context.Context, giveaway *entities.Giveaway) error

	GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
	RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error

	// MemberRoles returns the member's current role ids.
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)

	// GuildRoles returns the ids of the roles that currently exist in the guild.
	GuildRoles(ctx context.Context, guildID string) ([]string, error)

	// NotifyDirect sends a best-effort DM and reports delivery.
	NotifyDirect(ctx context.Context, userID, message string) bool
}
