package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"modbot/internal/domain"
	"modbot/internal/ports/output"
)

const (
	defaultSweepInterval = 90 * time.Second
	defaultSweepPageSize = 200
	defaultRetention     = 30 * 24 * time.Hour
	purgeInterval        = 24 * time.Hour
	processTimeout       = 30 * time.Second
)

// ExpirationEffect is the kind-specific half of the lifecycle engine. The
// engine owns the concurrency-critical transition; the effect owns what
// happens after it.
type ExpirationEffect interface {
	Kind() domain.Kind
	Store() output.LifecycleStore

	// ApplyExpiration runs the terminal side effects for a row whose
	// conditional deactivation this process just won. actorID is empty for
	// natural expiration. It is never invoked twice for the same row.
	ApplyExpiration(ctx context.Context, id int64, actorID string) error
}

// EngineConfig tunes the sweep fallback and the retention purge.
type EngineConfig struct {
	SweepInterval time.Duration
	SweepPageSize int
	Retention     time.Duration
}

type timerKey struct {
	kind domain.Kind
	id   int64
}

// Engine drives the shared lifecycle of all time-bounded entities: one
// in-memory single-fire timer per active row, a startup recovery scan that
// rebuilds timers from the store, a periodic sweep closing the gaps timers
// can leave, and the idempotent expiration processor every path funnels
// through. Timers are an optimization over the sweep, never a source of
// truth.
type Engine struct {
	cfg     EngineConfig
	clock   clockwork.Clock
	effects map[domain.Kind]ExpirationEffect
	order   []domain.Kind

	mu     sync.Mutex
	timers map[timerKey]clockwork.Timer

	stopCh    chan struct{}
	stopOnce  sync.Once
	lastPurge time.Time
}

func NewEngine(clock clockwork.Clock, cfg EngineConfig) *Engine {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.SweepPageSize <= 0 {
		cfg.SweepPageSize = defaultSweepPageSize
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	return &Engine{
		cfg:     cfg,
		clock:   clock,
		effects: make(map[domain.Kind]ExpirationEffect),
		timers:  make(map[timerKey]clockwork.Timer),
		stopCh:  make(chan struct{}),
	}
}

// Register wires a kind-specific effect into the engine. Not safe to call
// after Run has started.
func (e *Engine) Register(effect ExpirationEffect) {
	e.effects[effect.Kind()] = effect
	e.order = append(e.order, effect.Kind())
}

// Arm schedules a single-fire expiration for (kind, id). A past deadline
// fires immediately. Re-arming an id replaces its pending timer.
func (e *Engine) Arm(kind domain.Kind, id int64, fireAt time.Time) {
	delay := fireAt.Sub(e.clock.Now())
	if delay < 0 {
		delay = 0
	}
	key := timerKey{kind: kind, id: id}

	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.timers[key]; ok {
		old.Stop()
	}
	e.timers[key] = e.clock.AfterFunc(delay, func() {
		e.mu.Lock()
		delete(e.timers, key)
		e.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if _, err := e.Process(ctx, kind, id, ""); err != nil {
			slog.Error("expiration par timer échouée", "kind", kind, "id", id, "error", err)
		}
	})
}

// Cancel stops a pending timer if present; no-op otherwise.
func (e *Engine) Cancel(kind domain.Kind, id int64) {
	key := timerKey{kind: kind, id: id}
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[key]; ok {
		t.Stop()
		delete(e.timers, key)
	}
}

func (e *Engine) armedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Recover re-arms timers for every active scheduled row of the guild. Run
// once per guild at startup and again when the bot joins a guild. A failing
// kind is logged and skipped, never aborting the others.
func (e *Engine) Recover(ctx context.Context, guildID string) {
	for _, kind := range e.order {
		effect := e.effects[kind]
		rows, err := effect.Store().FindActiveScheduled(ctx, guildID)
		if err != nil {
			slog.Error("recovery scan failed", "kind", kind, "guild", guildID, "error", err)
			continue
		}
		for _, row := range rows {
			e.Arm(kind, row.ID, row.ExpiresAt)
		}
		if len(rows) > 0 {
			slog.Info("timers réarmés", "kind", kind, "guild", guildID, "count", len(rows))
		}
	}
}

// Run drives the sweep fallback until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	ticker := e.clock.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			e.Sweep(ctx)
			e.maybePurge(ctx)
		case <-e.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop terminates the Run loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

// Sweep processes one bounded page of overdue active rows per kind. Safe to
// run concurrently with timers, manual terminations and other sweeps: the
// conditional deactivate in Process is the only guard it needs.
func (e *Engine) Sweep(ctx context.Context) {
	now := e.clock.Now()
	for _, kind := range e.order {
		effect := e.effects[kind]
		rows, err := effect.Store().FindDue(ctx, now, e.cfg.SweepPageSize)
		if err != nil {
			slog.Error("sweep query failed", "kind", kind, "error", err)
			continue
		}
		for _, row := range rows {
			if _, err := e.Process(ctx, kind, row.ID, ""); err != nil {
				slog.Error("sweep expiration failed", "kind", kind, "id", row.ID, "error", err)
			}
		}
	}
}

// Process transitions a row from active to expired exactly once. Every
// expiration path (timer fire, sweep match, manual termination) funnels
// through here; only the caller that wins the conditional store update
// applies the kind effect. It reports whether this call won.
func (e *Engine) Process(ctx context.Context, kind domain.Kind, id int64, actorID string) (bool, error) {
	effect, ok := e.effects[kind]
	if !ok {
		return false, fmt.Errorf("aucun effet enregistré pour le kind %q", kind)
	}

	won, err := effect.Store().Deactivate(ctx, id)
	if err != nil {
		// The row stays active with a past deadline; the next sweep
		// re-matches it.
		return false, fmt.Errorf("deactivate %s/%d: %w", kind, id, err)
	}
	if !won {
		e.Cancel(kind, id)
		return false, nil
	}

	// Effect failures never roll back the terminal transition.
	if err := effect.ApplyExpiration(ctx, id, actorID); err != nil {
		slog.Error("expiration effect failed", "kind", kind, "id", id, "error", err)
	}

	e.Cancel(kind, id)
	return true, nil
}

func (e *Engine) maybePurge(ctx context.Context) {
	now := e.clock.Now()
	if !e.lastPurge.IsZero() && now.Sub(e.lastPurge) < purgeInterval {
		return
	}
	e.lastPurge = now

	cutoff := now.Add(-e.cfg.Retention)
	for _, kind := range e.order {
		deleted, err := e.effects[kind].Store().PurgeInactiveBefore(ctx, cutoff)
		if err != nil {
			slog.Error("retention purge failed", "kind", kind, "error", err)
			continue
		}
		if deleted > 0 {
			slog.Info("anciennes lignes purgées", "kind", kind, "count", deleted)
		}
	}
}
