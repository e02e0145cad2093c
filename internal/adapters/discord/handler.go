package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"modbot/internal/ports/input"
	"modbot/internal/ports/output"
)

// Handler handles Discord interactions using use cases.
type Handler struct {
	quarantineUseCase input.QuarantineUseCase
	pollUseCase       input.PollUseCase
	giveawayUseCase   input.GiveawayUseCase
	settingsUseCase   input.SettingsUseCase
	translator        output.T
	locale            string
}

// NewHandler creates a Handler.
func NewHandler(
	quarantineUseCase input.QuarantineUseCase,
	pollUseCase input.PollUseCase,
	giveawayUseCase input.GiveawayUseCase,
	settingsUseCase input.SettingsUseCase,
	translator output.T,
	locale string,
) *Handler {
	return &Handler{
		quarantineUseCase: quarantineUseCase,
		pollUseCase:       pollUseCase,
		giveawayUseCase:   giveawayUseCase,
		settingsUseCase:   settingsUseCase,
		translator:        translator,
		locale:            locale,
	}
}

func (h *Handler) t(key string, data map[string]any) string {
	return h.translator.T(h.locale, key, data)
}

// isPrivileged reports whether the member may run moderation actions:
// either the Manage Server permission or the configured moderator role.
func (h *Handler) isPrivileged(ctx context.Context, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionManageServer != 0 {
		return true
	}
	settings, err := h.settingsUseCase.Get(ctx, i.GuildID)
	if err != nil || settings.ModeratorRoleID == "" {
		return false
	}
	for _, roleID := range i.Member.Roles {
		if roleID == settings.ModeratorRoleID {
			return true
		}
	}
	return false
}
