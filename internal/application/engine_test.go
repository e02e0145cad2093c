package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modbot/internal/domain"
)

func newTestEngine(t *testing.T) (*Engine, *clockwork.FakeClock, *mockEffect) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	engine := NewEngine(clock, EngineConfig{})
	effect := &mockEffect{kind: domain.KindPoll, store: newMemStore()}
	engine.Register(effect)
	return engine, clock, effect
}

func TestEngineTimerFiresAtDeadline(t *testing.T) {
	engine, clock, effect := newTestEngine(t)

	id := effect.store.add("g1", clock.Now().Add(time.Hour), true)
	engine.Arm(domain.KindPoll, id, clock.Now().Add(time.Hour))
	require.Equal(t, 1, engine.armedCount())

	clock.Advance(59 * time.Minute)
	assert.Equal(t, 0, effect.applyCount())
	assert.True(t, effect.store.isActive(id))

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return effect.applyCount() == 1
	}, time.Second, time.Millisecond)
	assert.False(t, effect.store.isActive(id))
	assert.Equal(t, 0, engine.armedCount())
}

func TestEngineArmPastDeadlineFiresImmediately(t *testing.T) {
	engine, clock, effect := newTestEngine(t)

	id := effect.store.add("g1", clock.Now().Add(-time.Minute), true)
	engine.Arm(domain.KindPoll, id, clock.Now().Add(-time.Minute))

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		return effect.applyCount() == 1
	}, time.Second, time.Millisecond)
}

func TestEngineRearmReplacesTimer(t *testing.T) {
	engine, clock, effect := newTestEngine(t)

	id := effect.store.add("g1", clock.Now().Add(time.Hour), true)
	engine.Arm(domain.KindPoll, id, clock.Now().Add(time.Hour))
	engine.Arm(domain.KindPoll, id, clock.Now().Add(2*time.Hour))
	require.Equal(t, 1, engine.armedCount())

	clock.Advance(time.Hour)
	assert.Equal(t, 0, effect.applyCount())

	clock.Advance(time.Hour)
	require.Eventually(t, func() bool {
		return effect.applyCount() == 1
	}, time.Second, time.Millisecond)
}

func TestEngineProcessExactlyOnce(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	id := effect.store.add("g1", clock.Now().Add(time.Hour), true)

	won, err := engine.Process(ctx, domain.KindPoll, id, "mod")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = engine.Process(ctx, domain.KindPoll, id, "mod")
	require.NoError(t, err)
	assert.False(t, won)

	assert.Equal(t, 1, effect.applyCount())
}

func TestEngineProcessConcurrent(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	id := effect.store.add("g1", clock.Now().Add(time.Hour), true)

	const callers = 16
	var wg sync.WaitGroup
	wins := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := engine.Process(ctx, domain.KindPoll, id, "")
			require.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winCount := 0
	for won := range wins {
		if won {
			winCount++
		}
	}
	assert.Equal(t, 1, winCount)
	assert.Equal(t, 1, effect.applyCount())
}

func TestEngineProcessUnknownKind(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewEngine(clock, EngineConfig{})

	_, err := engine.Process(context.Background(), domain.KindPoll, 1, "")
	require.Error(t, err)
}

func TestEngineEffectFailureStaysTerminal(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	effect.applyFn = func(ctx context.Context, id int64, actorID string) error {
		return errors.New("discord indisponible")
	}

	id := effect.store.add("g1", clock.Now().Add(time.Hour), true)

	won, err := engine.Process(context.Background(), domain.KindPoll, id, "")
	require.NoError(t, err)
	assert.True(t, won)
	assert.False(t, effect.store.isActive(id), "the terminal transition must not roll back")
}

func TestEngineManualEndBeatsTimer(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	deadline := clock.Now().Add(time.Hour)
	id := effect.store.add("g1", deadline, true)
	engine.Arm(domain.KindPoll, id, deadline)

	won, err := engine.Process(ctx, domain.KindPoll, id, "mod")
	require.NoError(t, err)
	require.True(t, won)
	assert.Equal(t, 0, engine.armedCount(), "winning cancels the pending timer")

	clock.Advance(2 * time.Hour)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, effect.applyCount())
}

func TestEngineRecoverRearmsActiveScheduled(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	a := effect.store.add("g1", clock.Now().Add(time.Hour), true)
	b := effect.store.add("g1", clock.Now().Add(2*time.Hour), true)
	effect.store.add("g1", time.Time{}, true)                     // indefinite, never armed
	effect.store.add("g1", clock.Now().Add(time.Hour), false)     // already ended
	effect.store.add("autre", clock.Now().Add(time.Hour), true)   // other guild

	engine.Recover(ctx, "g1")
	require.Equal(t, 2, engine.armedCount())

	clock.Advance(2 * time.Hour)
	require.Eventually(t, func() bool {
		return effect.applyCount() == 2
	}, time.Second, time.Millisecond)
	assert.False(t, effect.store.isActive(a))
	assert.False(t, effect.store.isActive(b))
}

func TestEngineSweepProcessesOverdueRows(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	due := effect.store.add("g1", clock.Now().Add(-time.Minute), true)
	future := effect.store.add("g1", clock.Now().Add(time.Hour), true)

	engine.Sweep(ctx)

	assert.Equal(t, 1, effect.applyCount())
	assert.False(t, effect.store.isActive(due))
	assert.True(t, effect.store.isActive(future))
}

func TestEngineConcurrentSweeps(t *testing.T) {
	engine, clock, effect := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		effect.store.add("g1", clock.Now().Add(-time.Minute), true)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.Sweep(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, effect.applyCount(), "each row expires exactly once across overlapping sweeps")
}

func TestEngineRunDrivesSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewEngine(clock, EngineConfig{SweepInterval: time.Minute, Retention: time.Hour})
	effect := &mockEffect{kind: domain.KindGiveaway, store: newMemStore()}
	engine.Register(effect)

	id := effect.store.add("g1", clock.Now().Add(-time.Second), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)
	defer engine.Stop()

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		return effect.applyCount() == 1
	}, time.Second, time.Millisecond)
	assert.False(t, effect.store.isActive(id))
}
