package discord

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"

	"modbot/internal/application"
	"modbot/internal/config"
	"modbot/internal/ports/output"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	config  *config.Config
	handler *Handler
	engine  *application.Engine
}

// Repositories groups the output adapters the bot wires into its use cases.
type Repositories struct {
	Quarantine output.QuarantineRepository
	Poll       output.PollRepository
	Giveaway   output.GiveawayRepository
	Audit      output.AuditRepository
	Settings   output.SettingsRepository
	Levels     output.LevelProvider
}

// NewBot creates a Bot and wires ports: output adapters -> engine ->
// application (use cases) -> handler.
func NewBot(cfg *config.Config, repos Repositories, translator output.T, clock clockwork.Clock) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("création de la session Discord: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	presenter := NewPresenter(s)
	engine := application.NewEngine(clock, application.EngineConfig{
		SweepInterval: cfg.SweepInterval,
		SweepPageSize: cfg.SweepPageSize,
		Retention:     cfg.Retention(),
	})

	audit := NewAuditNotifier(repos.Audit, repos.Settings, s)
	quarantineUC := application.NewQuarantineService(repos.Quarantine, repos.Settings, audit, presenter, translator, engine, clock)
	pollUC := application.NewPollService(repos.Poll, audit, presenter, engine, clock)
	giveawayUC := application.NewGiveawayService(repos.Giveaway, audit, presenter, repos.Levels, translator, engine, clock, cfg.GiveawayRerollExcludePrevious)
	settingsUC := application.NewSettingsService(repos.Settings)

	handler := NewHandler(quarantineUC, pollUC, giveawayUC, settingsUC, translator, cfg.DefaultLocale)

	bot := &Bot{
		session: s,
		config:  cfg,
		handler: handler,
		engine:  engine,
	}
	bot.setupHandlers()
	return bot, nil
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleGuildCreate)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handler.HandleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handler.HandleComponent(s, i)
	}
}

// handleGuildCreate fires for every guild at connect time and whenever the
// bot joins a new guild, which makes it the recovery entry point.
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	go b.engine.Recover(context.Background(), g.ID)
}

// Start runs the bot until ctx is cancelled or the process is interrupted.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	defer b.session.Close()

	for _, cmd := range Commands() {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
			slog.Warn("⚠️ Erreur lors de l'enregistrement de la commande", "command", cmd.Name, "error", err)
		}
	}

	go b.engine.Run(ctx)
	defer b.engine.Stop()

	slog.Info("🤖 Bot en ligne ! Appuyez sur CTRL+C pour quitter.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
	return nil
}
