package application

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
)

type quarantineFixture struct {
	svc       *QuarantineService
	repo      *memQuarantineRepo
	settings  *mockSettings
	audit     *mockAudit
	presenter *mockPresenter
	clock     *clockwork.FakeClock
}

func newQuarantineFixture(t *testing.T) *quarantineFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	repo := newMemQuarantineRepo()
	settings := newMockSettings()
	settings.byGuild["g1"] = entities.GuildSettings{GuildID: "g1", QuarantineRoleID: "quarantine-role"}
	audit := &mockAudit{}
	presenter := newMockPresenter()
	engine := NewEngine(clock, EngineConfig{})
	svc := NewQuarantineService(repo, settings, audit, presenter, mockTranslator{}, engine, clock)
	return &quarantineFixture{svc: svc, repo: repo, settings: settings, audit: audit, presenter: presenter, clock: clock}
}

func TestQuarantineRequiresConfiguredRole(t *testing.T) {
	f := newQuarantineFixture(t)

	_, err := f.svc.Quarantine(context.Background(), "non-configuré", "target", "mod", "", time.Hour)
	assert.ErrorIs(t, err, domain.ErrNoQuarantineRole)
}

func TestQuarantineSnapshotsAndSwapsRoles(t *testing.T) {
	f := newQuarantineFixture(t)
	ctx := context.Background()

	// Le membre porte le rôle everyone (id du serveur) et déjà le rôle
	// quarantaine; ni l'un ni l'autre ne doit entrer dans le snapshot.
	f.presenter.memberRolesFn = func(ctx context.Context, guildID, userID string) ([]string, error) {
		return []string{"g1", "role-a", "role-b", "quarantine-role"}, nil
	}

	entry, err := f.svc.Quarantine(ctx, "g1", "target", "mod", "spam", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []string{"role-a", "role-b"}, entry.PreviousRoles)
	assert.Equal(t, []string{"role-a", "role-b"}, f.presenter.revokedRoles("target"))
	assert.Equal(t, []string{"quarantine-role"}, f.presenter.grantedRoles("target"))
	assert.Contains(t, f.presenter.dms, "target")
	assert.Equal(t, []string{domain.AuditQuarantineCreated}, f.audit.actions(string(domain.KindQuarantine), entry.ID))
}

func TestQuarantineRejectsDuplicate(t *testing.T) {
	f := newQuarantineFixture(t)
	ctx := context.Background()

	_, err := f.svc.Quarantine(ctx, "g1", "target", "mod", "", time.Hour)
	require.NoError(t, err)

	_, err = f.svc.Quarantine(ctx, "g1", "target", "mod", "", time.Hour)
	assert.ErrorIs(t, err, domain.ErrAlreadyQuarantined)
}

func TestQuarantineIndefiniteHasNoTimer(t *testing.T) {
	f := newQuarantineFixture(t)

	entry, err := f.svc.Quarantine(context.Background(), "g1", "target", "mod", "", 0)
	require.NoError(t, err)
	assert.False(t, entry.Expires())
	assert.Equal(t, 0, f.svc.engine.armedCount())
}

func TestReleaseRequiresPrivilege(t *testing.T) {
	f := newQuarantineFixture(t)
	ctx := context.Background()
	_, err := f.svc.Quarantine(ctx, "g1", "target", "mod", "", time.Hour)
	require.NoError(t, err)

	err = f.svc.Release(ctx, "g1", "target", "membre", false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.svc.Release(ctx, "g1", "target", "mod", true))

	err = f.svc.Release(ctx, "g1", "target", "mod", true)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no active entry remains")
}

func TestExpirationRestoresExistingRolesOnly(t *testing.T) {
	f := newQuarantineFixture(t)
	ctx := context.Background()

	f.presenter.memberRolesFn = func(ctx context.Context, guildID, userID string) ([]string, error) {
		return []string{"role-a", "role-b"}, nil
	}
	// role-b a été supprimé du serveur pendant la quarantaine.
	f.presenter.guildRolesFn = func(ctx context.Context, guildID string) ([]string, error) {
		return []string{"role-a", "quarantine-role"}, nil
	}

	entry, err := f.svc.Quarantine(ctx, "g1", "target", "mod", "", time.Hour)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.Eventually(t, func() bool {
		stored, err := f.repo.FindByID(ctx, entry.ID)
		return err == nil && !stored.Active
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		return len(f.audit.actions(string(domain.KindQuarantine), entry.ID)) == 2
	}, time.Second, time.Millisecond)

	granted := f.presenter.grantedRoles("target")
	assert.Contains(t, granted, "role-a")
	assert.NotContains(t, granted, "role-b", "deleted roles are not restored")
	revoked := f.presenter.revokedRoles("target")
	assert.Contains(t, revoked, "quarantine-role")
}

func TestListActiveQuarantines(t *testing.T) {
	f := newQuarantineFixture(t)
	ctx := context.Background()

	_, err := f.svc.Quarantine(ctx, "g1", "t1", "mod", "", time.Hour)
	require.NoError(t, err)
	_, err = f.svc.Quarantine(ctx, "g1", "t2", "mod", "", 0)
	require.NoError(t, err)
	require.NoError(t, f.svc.Release(ctx, "g1", "t1", "mod", true))

	active, err := f.svc.ListActive(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "t2", active[0].TargetID)
}
