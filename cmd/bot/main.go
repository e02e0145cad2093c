package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"modbot/internal/adapters/discord"
	"modbot/internal/config"
	"modbot/internal/infrastructure/database"
	"modbot/internal/infrastructure/i18n"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("❌ Configuration invalide", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		slog.Error("❌ Erreur lors de l'application des migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("❌ Erreur lors de l'initialisation de la base de données", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repos := discord.Repositories{
		Quarantine: database.NewQuarantineRepository(pool),
		Poll:       database.NewPollRepository(pool),
		Giveaway:   database.NewGiveawayRepository(pool),
		Audit:      database.NewAuditRepository(pool),
		Settings:   database.NewSettingsRepository(pool),
		Levels:     database.NewLevelRepository(pool),
	}
	translator := i18n.NewTranslator(cfg.DefaultLocale)

	bot, err := discord.NewBot(cfg, repos, translator, clockwork.NewRealClock())
	if err != nil {
		slog.Error("❌ Erreur lors de la création du bot", "error", err)
		os.Exit(1)
	}
	if err := bot.Start(ctx); err != nil {
		slog.Error("❌ Erreur lors du démarrage du bot", "error", err)
		os.Exit(1)
	}
}
