package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token          string
	DatabaseURL    string
	MigrationsPath string
	DefaultLocale  string

	SweepInterval time.Duration
	SweepPageSize int
	RetentionDays int

	// GiveawayRerollExcludePrevious removes prior winners from a reroll's
	// candidate pool.
	GiveawayRerollExcludePrevious bool
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{
		Token:                         os.Getenv("TOKEN"),
		DatabaseURL:                   os.Getenv("DATABASE_URL"),
		MigrationsPath:                os.Getenv("MIGRATIONS_PATH"),
		DefaultLocale:                 os.Getenv("DEFAULT_LOCALE"),
		SweepInterval:                 90 * time.Second,
		SweepPageSize:                 200,
		RetentionDays:                 30,
		GiveawayRerollExcludePrevious: os.Getenv("GIVEAWAY_REROLL_EXCLUDE_PREVIOUS") == "true",
	}

	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: SWEEP_INTERVAL invalide (%q): %w", v, err)
		}
		cfg.SweepInterval = d
	}
	if v := os.Getenv("SWEEP_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: SWEEP_PAGE_SIZE invalide (%q)", v)
		}
		cfg.SweepPageSize = n
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: RETENTION_DAYS invalide (%q)", v)
		}
		cfg.RetentionDays = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Retention renvoie la durée de rétention des lignes inactives.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
		c.DatabaseURL = "postgres://localhost:5432/modbot?sslmode=disable"
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	if strings.TrimSpace(c.MigrationsPath) == "" {
		c.MigrationsPath = "migrations"
	}
	if strings.TrimSpace(c.DefaultLocale) == "" {
		c.DefaultLocale = "fr"
	}

	return nil
}
