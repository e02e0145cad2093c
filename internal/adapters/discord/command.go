package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Commands returns the slash-command definitions registered at startup.
func Commands() []*discordgo.ApplicationCommand {
	manageServer := int64(discordgo.PermissionManageServer)
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "quarantine",
			Description:              "Gérer les quarantaines",
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Mettre un membre en quarantaine",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "membre", Description: "Membre à mettre en quarantaine", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "duree", Description: "Durée (ex: 30m, 2h, 1d12h), vide = indéfinie", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "raison", Description: "Raison", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Lever la quarantaine d'un membre",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "membre", Description: "Membre à libérer", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lister les quarantaines actives",
				},
			},
		},
		{
			Name:        "poll",
			Description: "Créer et gérer des sondages",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Créer un sondage à durée limitée",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Question du sondage", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "duree", Description: "Durée (ex: 30m, 2h, 1d)", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "option1", Description: "Première option", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "option2", Description: "Deuxième option", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "option3", Description: "Troisième option", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "option4", Description: "Quatrième option", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "option5", Description: "Cinquième option", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "multiple", Description: "Autoriser plusieurs choix", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "anonyme", Description: "Masquer les résultats jusqu'à la fin", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Clôturer un sondage avant son échéance",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Identifiant du sondage", Required: true},
					},
				},
			},
		},
		{
			Name:        "giveaway",
			Description: "Créer et gérer des giveaways",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Lancer un giveaway à durée limitée",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "lot", Description: "Lot à gagner", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "duree", Description: "Durée (ex: 30m, 2h, 1d)", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "gagnants", Description: "Nombre de gagnants (défaut: 1)", Required: false},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role_requis", Description: "Rôle requis pour participer", Required: false},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "niveau_requis", Description: "Niveau minimum pour participer", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Terminer un giveaway et tirer les gagnants",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Identifiant du giveaway", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reroll",
					Description: "Retirer les gagnants d'un giveaway terminé",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Identifiant du giveaway", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lister les giveaways en cours",
				},
			},
		},
		{
			Name:                     "settings",
			Description:              "Configurer le bot pour ce serveur",
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Modifier la configuration",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role_quarantaine", Description: "Rôle appliqué aux membres en quarantaine", Required: false},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role_moderateur", Description: "Rôle autorisé aux actions de modération", Required: false},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "salon_audit", Description: "Salon recevant le journal d'audit", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Afficher la configuration actuelle",
				},
			},
		},
	}
}

// HandleCommand routes a slash command to its subcommand handler.
func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	switch data.Name {
	case "quarantine":
		switch sub.Name {
		case "add":
			h.HandleQuarantineAdd(s, i, sub)
		case "remove":
			h.HandleQuarantineRemove(s, i, sub)
		case "list":
			h.HandleQuarantineList(s, i)
		}
	case "poll":
		switch sub.Name {
		case "create":
			h.HandlePollCreate(s, i, sub)
		case "end":
			h.HandlePollEnd(s, i, sub)
		}
	case "giveaway":
		switch sub.Name {
		case "start":
			h.HandleGiveawayStart(s, i, sub)
		case "end":
			h.HandleGiveawayEnd(s, i, sub)
		case "reroll":
			h.HandleGiveawayReroll(s, i, sub)
		case "list":
			h.HandleGiveawayList(s, i)
		}
	case "settings":
		switch sub.Name {
		case "set":
			h.HandleSettingsSet(s, i, sub)
		case "view":
			h.HandleSettingsView(s, i)
		}
	}
}

// optionMap indexes subcommand options by name.
func optionMap(sub *discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		m[opt.Name] = opt
	}
	return m
}
