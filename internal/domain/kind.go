package domain

// Kind identifies one of the time-bounded entity families the engine manages.
type Kind string

const (
	KindQuarantine Kind = "quarantine"
	KindPoll       Kind = "poll"
	KindGiveaway   Kind = "giveaway"
)

// Audit actions recorded in the audit log.
const (
	AuditQuarantineCreated = "quarantine_created"
	AuditQuarantineEnded   = "quarantine_ended"
	AuditPollCreated       = "poll_created"
	AuditPollEnded         = "poll_ended"
	AuditGiveawayCreated   = "giveaway_created"
	AuditGiveawayEnded     = "giveaway_ended"
	AuditGiveawayRerolled  = "giveaway_rerolled"
)
