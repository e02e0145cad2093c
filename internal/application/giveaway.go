package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/jonboulle/clockwork"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
	"modbot/internal/ports/input"
	"modbot/internal/ports/output"
)

type GiveawayService struct {
	repo       output.GiveawayRepository
	audit      output.AuditRepository
	presenter  output.Presenter
	levels     output.LevelProvider
	translator output.T
	engine     *Engine
	clock      clockwork.Clock

	// rerollExcludePrevious removes prior winners from the reroll pool.
	rerollExcludePrevious bool
}

func NewGiveawayService(
	repo output.GiveawayRepository,
	audit output.AuditRepository,
	presenter output.Presenter,
	levels output.LevelProvider,
	translator output.T,
	engine *Engine,
	clock clockwork.Clock,
	rerollExcludePrevious bool,
) *GiveawayService {
	s := &GiveawayService{
		repo:                  repo,
		audit:                 audit,
		presenter:             presenter,
		levels:                levels,
		translator:            translator,
		engine:                engine,
		clock:                 clock,
		rerollExcludePrevious: rerollExcludePrevious,
	}
	engine.Register(s)
	return s
}

func (s *GiveawayService) Kind() domain.Kind            { return domain.KindGiveaway }
func (s *GiveawayService) Store() output.LifecycleStore { return s.repo }

func (s *GiveawayService) StartGiveaway(ctx context.Context, params input.StartGiveawayParams) (*entities.Giveaway, error) {
	if params.Duration <= 0 {
		return nil, domain.ErrDurationInPast
	}
	if params.WinnersRequested < 1 {
		params.WinnersRequested = 1
	}

	giveaway := &entities.Giveaway{
		GuildID:          params.GuildID,
		ChannelID:        params.ChannelID,
		CreatorID:        params.CreatorID,
		Prize:            params.Prize,
		WinnersRequested: params.WinnersRequested,
		RequiredRoleID:   params.RequiredRoleID,
		RequiredLevel:    params.RequiredLevel,
		Active:           true,
		ExpiresAt:        s.clock.Now().Add(params.Duration),
	}
	if err := s.repo.Create(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("create giveaway: %w", err)
	}

	s.syncMessage(ctx, giveaway)
	s.engine.Arm(domain.KindGiveaway, giveaway.ID, giveaway.ExpiresAt)
	s.writeAudit(ctx, giveaway, domain.AuditGiveawayCreated, params.CreatorID, giveaway.Prize)
	return giveaway, nil
}

// Enter records a unique entry after checking the role and level
// requirements. Requirements bind at entry time only; they are never
// re-checked at the draw.
func (s *GiveawayService) Enter(ctx context.Context, giveawayID int64, userID string, memberRoleIDs []string) error {
	giveaway, err := s.repo.FindByID(ctx, giveawayID)
	if err != nil {
		return domain.ErrNotFound
	}
	if !giveaway.Active {
		return domain.ErrAlreadyEnded
	}
	if s.clock.Now().After(giveaway.ExpiresAt) {
		if _, err := s.engine.Process(ctx, domain.KindGiveaway, giveaway.ID, ""); err != nil {
			slog.Error("expiration en ligne du giveaway échouée", "giveaway", giveaway.ID, "error", err)
		}
		return domain.ErrAlreadyEnded
	}

	if giveaway.RequiredRoleID != "" && !slices.Contains(memberRoleIDs, giveaway.RequiredRoleID) {
		return domain.ErrRequirementNotMet
	}
	if giveaway.RequiredLevel > 0 {
		level, err := s.levels.Level(ctx, giveaway.GuildID, userID)
		if err != nil {
			return fmt.Errorf("level lookup: %w", err)
		}
		if level < giveaway.RequiredLevel {
			return domain.ErrRequirementNotMet
		}
	}

	if err := s.repo.AddEntry(ctx, giveawayID, userID); err != nil {
		return err
	}
	s.syncMessage(ctx, giveaway)
	return nil
}

func (s *GiveawayService) EndGiveaway(ctx context.Context, giveawayID int64, actorID string, privileged bool) error {
	giveaway, err := s.repo.FindByID(ctx, giveawayID)
	if err != nil {
		return domain.ErrNotFound
	}
	if actorID != giveaway.CreatorID && !privileged {
		return domain.ErrForbidden
	}
	won, err := s.engine.Process(ctx, domain.KindGiveaway, giveawayID, actorID)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrAlreadyEnded
	}
	return nil
}

// Reroll redraws winners for an ended giveaway, re-running the same
// selection over the recorded entries.
func (s *GiveawayService) Reroll(ctx context.Context, giveawayID int64, actorID string, privileged bool) ([]string, error) {
	giveaway, err := s.repo.FindByID(ctx, giveawayID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if giveaway.Active {
		return nil, domain.ErrStillActive
	}
	if actorID != giveaway.CreatorID && !privileged {
		return nil, domain.ErrForbidden
	}

	entries, err := s.repo.ListEntries(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	pool := entries
	if s.rerollExcludePrevious && len(giveaway.WinnerUserIDs) > 0 {
		pool = make([]string, 0, len(entries))
		for _, userID := range entries {
			if !slices.Contains(giveaway.WinnerUserIDs, userID) {
				pool = append(pool, userID)
			}
		}
	}

	winners := drawWinners(pool, giveaway.WinnersRequested)
	if err := s.repo.SetWinners(ctx, giveawayID, winners); err != nil {
		return nil, fmt.Errorf("set winners: %w", err)
	}
	giveaway.WinnerUserIDs = winners

	s.announce(ctx, giveaway)
	s.writeAudit(ctx, giveaway, domain.AuditGiveawayRerolled, actorID, "")
	return winners, nil
}

func (s *GiveawayService) ListActive(ctx context.Context, guildID string) ([]entities.Giveaway, error) {
	return s.repo.ListActive(ctx, guildID)
}

// ApplyExpiration draws the winners, persists them, renders the terminal
// message and announces.
func (s *GiveawayService) ApplyExpiration(ctx context.Context, id int64, actorID string) error {
	giveaway, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load giveaway %d: %w", id, err)
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	winners := drawWinners(entries, giveaway.WinnersRequested)
	if err := s.repo.SetWinners(ctx, id, winners); err != nil {
		return fmt.Errorf("set winners: %w", err)
	}
	giveaway.WinnerUserIDs = winners

	s.syncMessage(ctx, giveaway)
	s.announce(ctx, giveaway)
	s.writeAudit(ctx, giveaway, domain.AuditGiveawayEnded, actorID, "")
	return nil
}

func (s *GiveawayService) announce(ctx context.Context, giveaway *entities.Giveaway) {
	if err := s.presenter.AnnounceWinners(ctx, giveaway); err != nil {
		slog.Warn("annonce des gagnants échouée", "giveaway", giveaway.ID, "error", err)
	}
	for _, userID := range giveaway.WinnerUserIDs {
		s.presenter.NotifyDirect(ctx, userID, s.translator.T("", "dm.giveaway.won", map[string]any{
			"Prize": giveaway.Prize,
		}))
	}
}

func (s *GiveawayService) syncMessage(ctx context.Context, giveaway *entities.Giveaway) {
	count, err := s.repo.CountEntries(ctx, giveaway.ID)
	if err != nil {
		slog.Error("entry count failed", "giveaway", giveaway.ID, "error", err)
		return
	}
	ref, err := s.presenter.SyncGiveaway(ctx, giveaway, count)
	if err != nil {
		slog.Warn("mise à jour du message de giveaway échouée", "giveaway", giveaway.ID, "error", err)
		return
	}
	if giveaway.MessageID == "" && !ref.IsZero() {
		if err := s.repo.SetMessageRef(ctx, giveaway.ID, ref); err != nil {
			slog.Error("store message ref failed", "giveaway", giveaway.ID, "error", err)
			return
		}
		giveaway.ChannelID = ref.ChannelID
		giveaway.MessageID = ref.MessageID
	}
}

// drawWinners selects min(n, len(pool)) distinct entrants uniformly,
// without replacement.
func drawWinners(pool []string, n int) []string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func (s *GiveawayService) writeAudit(ctx context.Context, giveaway *entities.Giveaway, action, actorID, details string) {
	err := s.audit.Create(ctx, &entities.AuditEntry{
		GuildID:  giveaway.GuildID,
		Kind:     string(domain.KindGiveaway),
		EntityID: giveaway.ID,
		Action:   action,
		ActorID:  actorID,
		Details:  details,
	})
	if err != nil {
		slog.Error("audit write failed", "action", action, "id", giveaway.ID, "error", err)
	}
}
