package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"modbot/internal/domain"
)

// ParseDuration parses a user supplied duration like "30m", "2h" or "1d12h".
// Units: m (minutes), h (heures), d (jours). Returns an error for empty,
// malformed or non-positive input.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return 0, fmt.Errorf("durée requise (ex: 30m, 2h, 1d12h)")
	}
	var total time.Duration
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'm' || r == 'h' || r == 'd':
			if num == "" {
				return 0, fmt.Errorf("durée invalide (attendu ex: 30m, 2h, 1d12h)")
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("durée invalide (attendu ex: 30m, 2h, 1d12h)")
			}
			switch r {
			case 'm':
				total += time.Duration(n) * time.Minute
			case 'h':
				total += time.Duration(n) * time.Hour
			case 'd':
				total += time.Duration(n) * 24 * time.Hour
			}
			num = ""
		default:
			return 0, fmt.Errorf("durée invalide (attendu ex: 30m, 2h, 1d12h)")
		}
	}
	if num != "" {
		return 0, fmt.Errorf("durée invalide (unité manquante, ex: 30m)")
	}
	if total <= 0 {
		return 0, domain.ErrDurationInPast
	}
	return total, nil
}

// FormatDeadline renders a deadline as a Discord relative timestamp so each
// client displays it in its own timezone ("dans 2 heures", etc).
func FormatDeadline(t time.Time) string {
	if t.IsZero() {
		return "jamais"
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// FormatAbsolute renders a deadline as a full localized date in the client.
func FormatAbsolute(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}
