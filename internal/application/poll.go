package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
	"modbot/internal/ports/input"
	"modbot/internal/ports/output"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 5
)

type PollService struct {
	repo      output.PollRepository
	audit     output.AuditRepository
	presenter output.Presenter
	engine    *Engine
	clock     clockwork.Clock
}

func NewPollService(
	repo output.PollRepository,
	audit output.AuditRepository,
	presenter output.Presenter,
	engine *Engine,
	clock clockwork.Clock,
) *PollService {
	s := &PollService{
		repo:      repo,
		audit:     audit,
		presenter: presenter,
		engine:    engine,
		clock:     clock,
	}
	engine.Register(s)
	return s
}

func (s *PollService) Kind() domain.Kind            { return domain.KindPoll }
func (s *PollService) Store() output.LifecycleStore { return s.repo }

func (s *PollService) CreatePoll(ctx context.Context, params input.CreatePollParams) (*entities.Poll, error) {
	if params.Duration <= 0 {
		return nil, domain.ErrDurationInPast
	}
	options := make([]entities.PollOption, 0, len(params.Options))
	for i, text := range params.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, entities.PollOption{Text: text, Position: i})
	}
	if len(options) < MinPollOptions || len(options) > MaxPollOptions {
		return nil, domain.ErrInvalidOption
	}

	poll := &entities.Poll{
		GuildID:       params.GuildID,
		ChannelID:     params.ChannelID,
		CreatorID:     params.CreatorID,
		Question:      params.Question,
		AllowMultiple: params.AllowMultiple,
		Anonymous:     params.Anonymous,
		Active:        true,
		ExpiresAt:     s.clock.Now().Add(params.Duration),
		Options:       options,
	}
	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}

	s.syncMessage(ctx, poll)
	s.engine.Arm(domain.KindPoll, poll.ID, poll.ExpiresAt)
	s.writeAudit(ctx, poll, domain.AuditPollCreated, params.CreatorID, poll.Question)
	return poll, nil
}

// Vote applies the single-choice replace or multi-choice toggle semantics.
// A press on an expired-but-still-active poll triggers expiration inline
// instead of accepting the stale interaction.
func (s *PollService) Vote(ctx context.Context, pollID, optionID int64, userID string) (input.VoteResult, error) {
	var res input.VoteResult

	poll, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		return res, domain.ErrNotFound
	}
	if !poll.Active {
		return res, domain.ErrAlreadyEnded
	}
	if s.clock.Now().After(poll.ExpiresAt) {
		if _, err := s.engine.Process(ctx, domain.KindPoll, poll.ID, ""); err != nil {
			slog.Error("expiration en ligne du sondage échouée", "poll", poll.ID, "error", err)
		}
		return res, domain.ErrAlreadyEnded
	}
	if poll.Option(optionID) == nil {
		return res, domain.ErrInvalidOption
	}

	if poll.AllowMultiple {
		added, err := s.repo.ToggleVote(ctx, pollID, optionID, userID)
		if err != nil {
			return res, fmt.Errorf("toggle vote: %w", err)
		}
		res.Added = added
	} else {
		replaced, err := s.repo.ReplaceVote(ctx, pollID, optionID, userID)
		if err != nil {
			return res, fmt.Errorf("replace vote: %w", err)
		}
		res.Added = true
		res.Replaced = replaced
	}

	s.syncMessage(ctx, poll)
	return res, nil
}

// EndPoll terminates a poll early; creator or privileged callers only.
func (s *PollService) EndPoll(ctx context.Context, pollID int64, actorID string, privileged bool) error {
	poll, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		return domain.ErrNotFound
	}
	if actorID != poll.CreatorID && !privileged {
		return domain.ErrForbidden
	}
	won, err := s.engine.Process(ctx, domain.KindPoll, pollID, actorID)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrAlreadyEnded
	}
	return nil
}

// ApplyExpiration renders the terminal tally message.
func (s *PollService) ApplyExpiration(ctx context.Context, id int64, actorID string) error {
	poll, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load poll %d: %w", id, err)
	}
	s.syncMessage(ctx, poll)
	s.writeAudit(ctx, poll, domain.AuditPollEnded, actorID, "")
	return nil
}

// syncMessage re-renders the poll message from current state; render
// failures are logged, never propagated.
func (s *PollService) syncMessage(ctx context.Context, poll *entities.Poll) {
	tallies, err := s.repo.Tallies(ctx, poll.ID)
	if err != nil {
		slog.Error("tally query failed", "poll", poll.ID, "error", err)
		return
	}
	ref, err := s.presenter.SyncPoll(ctx, poll, tallies)
	if err != nil {
		slog.Warn("mise à jour du message de sondage échouée", "poll", poll.ID, "error", err)
		return
	}
	if poll.MessageID == "" && !ref.IsZero() {
		if err := s.repo.SetMessageRef(ctx, poll.ID, ref); err != nil {
			slog.Error("store message ref failed", "poll", poll.ID, "error", err)
			return
		}
		poll.ChannelID = ref.ChannelID
		poll.MessageID = ref.MessageID
	}
}

func (s *PollService) writeAudit(ctx context.Context, poll *entities.Poll, action, actorID, details string) {
	err := s.audit.Create(ctx, &entities.AuditEntry{
		GuildID:  poll.GuildID,
		Kind:     string(domain.KindPoll),
		EntityID: poll.ID,
		Action:   action,
		ActorID:  actorID,
		Details:  details,
	})
	if err != nil {
		slog.Error("audit write failed", "action", action, "id", poll.ID, "error", err)
	}
}
