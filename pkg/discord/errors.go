package discord

import "modbot/internal/domain"

// DomainErrorKey maps a domain error to its translation key. Unknown errors
// fall back to the generic message so raw internals never reach the user.
func DomainErrorKey(err error) string {
	if code := domain.Code(err); code != "" {
		return "err." + code
	}
	return "err.generic"
}
