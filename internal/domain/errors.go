package domain

import "errors"

// Error is a domain error carrying a stable code that the adapters map to
// user-facing messages (i18n keys), independent of the internal message.
type Error struct {
	ErrCode string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Code extracts the domain error code, or "" for non-domain errors.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.ErrCode
	}
	return ""
}

// Domain errors.
var (
	ErrNotFound           = &Error{"not_found", "entité non trouvée"}
	ErrAlreadyEnded       = &Error{"already_ended", "entité déjà terminée"}
	ErrAlreadyVoted       = &Error{"already_voted", "vote déjà enregistré"}
	ErrAlreadyEntered     = &Error{"already_entered", "participation déjà enregistrée"}
	ErrAlreadyQuarantined = &Error{"already_quarantined", "membre déjà en quarantaine"}
	ErrForbidden          = &Error{"forbidden", "seul le créateur ou un modérateur peut effectuer cette action"}
	ErrRequirementNotMet  = &Error{"requirement_not_met", "conditions de participation non remplies"}
	ErrStillActive        = &Error{"still_active", "entité encore active"}
	ErrInvalidOption      = &Error{"invalid_option", "option inconnue pour ce sondage"}
	ErrDurationInPast     = &Error{"duration_in_past", "la durée doit être dans le futur"}
	ErrNoQuarantineRole   = &Error{"no_quarantine_role", "aucun rôle de quarantaine configuré pour ce serveur"}
)
