package application

import (
	"context"
	"sync"
	"time"

	"modbot/internal/domain"
	"modbot/internal/domain/entities"
	"modbot/internal/ports/output"
)

// --- In-memory lifecycle store ---

// memRow is the shared mutable state behind every fake repository. The
// Deactivate compare-and-set mirrors the conditional UPDATE in Postgres.
type memRow struct {
	id        int64
	guildID   string
	expiresAt time.Time
	active    bool
	updatedAt time.Time
}

type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*memRow
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]*memRow)}
}

func (s *memStore) add(guildID string, expiresAt time.Time, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.rows[s.nextID] = &memRow{
		id:        s.nextID,
		guildID:   guildID,
		expiresAt: expiresAt,
		active:    active,
		updatedAt: time.Now(),
	}
	return s.nextID
}

func (s *memStore) isActive(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	return ok && row.active
}

func (s *memStore) FindActiveScheduled(ctx context.Context, guildID string) ([]entities.ExpirableRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.ExpirableRow
	for _, row := range s.rows {
		if row.active && row.guildID == guildID && !row.expiresAt.IsZero() {
			out = append(out, entities.ExpirableRow{ID: row.id, GuildID: row.guildID, ExpiresAt: row.expiresAt})
		}
	}
	return out, nil
}

func (s *memStore) FindDue(ctx context.Context, now time.Time, limit int) ([]entities.ExpirableRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.ExpirableRow
	for _, row := range s.rows {
		if len(out) == limit {
			break
		}
		if row.active && !row.expiresAt.IsZero() && !row.expiresAt.After(now) {
			out = append(out, entities.ExpirableRow{ID: row.id, GuildID: row.guildID, ExpiresAt: row.expiresAt})
		}
	}
	return out, nil
}

func (s *memStore) Deactivate(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || !row.active {
		return false, nil
	}
	row.active = false
	row.updatedAt = time.Now()
	return true, nil
}

func (s *memStore) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, row := range s.rows {
		if !row.active && row.updatedAt.Before(cutoff) {
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- Kind repositories over the shared store ---

// memPollRepo layers poll state over memStore so the engine's conditional
// deactivate and the repository reads see the same rows.
type memPollRepo struct {
	*memStore
	pollMu       sync.Mutex
	polls        map[int64]*entities.Poll
	votes        map[int64]map[string]map[int64]bool // pollID -> userID -> optionIDs
	nextOptionID int64
}

func newMemPollRepo() *memPollRepo {
	return &memPollRepo{
		memStore: newMemStore(),
		polls:    make(map[int64]*entities.Poll),
		votes:    make(map[int64]map[string]map[int64]bool),
	}
}

func (r *memPollRepo) Create(ctx context.Context, poll *entities.Poll) error {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	poll.ID = r.add(poll.GuildID, poll.ExpiresAt, poll.Active)
	for i := range poll.Options {
		r.nextOptionID++
		poll.Options[i].ID = r.nextOptionID
		poll.Options[i].PollID = poll.ID
	}
	stored := *poll
	stored.Options = append([]entities.PollOption(nil), poll.Options...)
	r.polls[poll.ID] = &stored
	r.votes[poll.ID] = make(map[string]map[int64]bool)
	return nil
}

func (r *memPollRepo) FindByID(ctx context.Context, id int64) (*entities.Poll, error) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	stored, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *stored
	out.Active = r.isActive(id)
	out.Options = append([]entities.PollOption(nil), stored.Options...)
	return &out, nil
}

func (r *memPollRepo) SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	if stored, ok := r.polls[id]; ok {
		stored.ChannelID = ref.ChannelID
		stored.MessageID = ref.MessageID
	}
	return nil
}

func (r *memPollRepo) ReplaceVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	userVotes := r.votes[pollID][userID]
	replaced := len(userVotes) > 0
	r.votes[pollID][userID] = map[int64]bool{optionID: true}
	return replaced, nil
}

func (r *memPollRepo) ToggleVote(ctx context.Context, pollID, optionID int64, userID string) (bool, error) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	userVotes := r.votes[pollID][userID]
	if userVotes == nil {
		userVotes = make(map[int64]bool)
		r.votes[pollID][userID] = userVotes
	}
	if userVotes[optionID] {
		delete(userVotes, optionID)
		return false, nil
	}
	userVotes[optionID] = true
	return true, nil
}

func (r *memPollRepo) Tallies(ctx context.Context, pollID int64) ([]entities.OptionTally, error) {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()
	stored, ok := r.polls[pollID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]entities.OptionTally, len(stored.Options))
	for i, opt := range stored.Options {
		count := 0
		for _, userVotes := range r.votes[pollID] {
			if userVotes[opt.ID] {
				count++
			}
		}
		out[i] = entities.OptionTally{OptionID: opt.ID, Text: opt.Text, Emoji: opt.Emoji, Count: count}
	}
	return out, nil
}

type memGiveawayRepo struct {
	*memStore
	gMu       sync.Mutex
	giveaways map[int64]*entities.Giveaway
	entries   map[int64][]string
}

func newMemGiveawayRepo() *memGiveawayRepo {
	return &memGiveawayRepo{
		memStore:  newMemStore(),
		giveaways: make(map[int64]*entities.Giveaway),
		entries:   make(map[int64][]string),
	}
}

func (r *memGiveawayRepo) Create(ctx context.Context, giveaway *entities.Giveaway) error {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	giveaway.ID = r.add(giveaway.GuildID, giveaway.ExpiresAt, giveaway.Active)
	stored := *giveaway
	r.giveaways[giveaway.ID] = &stored
	return nil
}

func (r *memGiveawayRepo) FindByID(ctx context.Context, id int64) (*entities.Giveaway, error) {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	stored, ok := r.giveaways[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *stored
	out.Active = r.isActive(id)
	out.WinnerUserIDs = append([]string(nil), stored.WinnerUserIDs...)
	return &out, nil
}

func (r *memGiveawayRepo) ListActive(ctx context.Context, guildID string) ([]entities.Giveaway, error) {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	var out []entities.Giveaway
	for id, g := range r.giveaways {
		if g.GuildID == guildID && r.isActive(id) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memGiveawayRepo) SetMessageRef(ctx context.Context, id int64, ref entities.MessageRef) error {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	if stored, ok := r.giveaways[id]; ok {
		stored.ChannelID = ref.ChannelID
		stored.MessageID = ref.MessageID
	}
	return nil
}

func (r *memGiveawayRepo) AddEntry(ctx context.Context, giveawayID int64, userID string) error {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	for _, existing := range r.entries[giveawayID] {
		if existing == userID {
			return domain.ErrAlreadyEntered
		}
	}
	r.entries[giveawayID] = append(r.entries[giveawayID], userID)
	return nil
}

func (r *memGiveawayRepo) CountEntries(ctx context.Context, giveawayID int64) (int, error) {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	return len(r.entries[giveawayID]), nil
}

func (r *memGiveawayRepo) ListEntries(ctx context.Context, giveawayID int64) ([]string, error) {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	return append([]string(nil), r.entries[giveawayID]...), nil
}

func (r *memGiveawayRepo) SetWinners(ctx context.Context, giveawayID int64, winnerUserIDs []string) error {
	r.gMu.Lock()
	defer r.gMu.Unlock()
	if stored, ok := r.giveaways[giveawayID]; ok {
		stored.WinnerUserIDs = append([]string(nil), winnerUserIDs...)
	}
	return nil
}

type memQuarantineRepo struct {
	*memStore
	qMu  sync.Mutex
	byID map[int64]*entities.QuarantineEntry
}

func newMemQuarantineRepo() *memQuarantineRepo {
	return &memQuarantineRepo{
		memStore: newMemStore(),
		byID:     make(map[int64]*entities.QuarantineEntry),
	}
}

func (r *memQuarantineRepo) Create(ctx context.Context, entry *entities.QuarantineEntry) error {
	r.qMu.Lock()
	defer r.qMu.Unlock()
	entry.ID = r.add(entry.GuildID, entry.ExpiresAt, entry.Active)
	stored := *entry
	r.byID[entry.ID] = &stored
	return nil
}

func (r *memQuarantineRepo) FindByID(ctx context.Context, id int64) (*entities.QuarantineEntry, error) {
	r.qMu.Lock()
	defer r.qMu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *stored
	out.Active = r.isActive(id)
	out.PreviousRoles = append([]string(nil), stored.PreviousRoles...)
	return &out, nil
}

func (r *memQuarantineRepo) FindActiveByTarget(ctx context.Context, guildID, targetID string) (*entities.QuarantineEntry, error) {
	r.qMu.Lock()
	defer r.qMu.Unlock()
	for id, e := range r.byID {
		if e.GuildID == guildID && e.TargetID == targetID && r.isActive(id) {
			out := *e
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memQuarantineRepo) ListActive(ctx context.Context, guildID string) ([]entities.QuarantineEntry, error) {
	r.qMu.Lock()
	defer r.qMu.Unlock()
	var out []entities.QuarantineEntry
	for id, e := range r.byID {
		if e.GuildID == guildID && r.isActive(id) {
			out = append(out, *e)
		}
	}
	return out, nil
}

// --- Engine effect mock ---

type mockEffect struct {
	kind  domain.Kind
	store *memStore

	mu      sync.Mutex
	applied []int64
	applyFn func(ctx context.Context, id int64, actorID string) error
}

func (m *mockEffect) Kind() domain.Kind            { return m.kind }
func (m *mockEffect) Store() output.LifecycleStore { return m.store }

func (m *mockEffect) ApplyExpiration(ctx context.Context, id int64, actorID string) error {
	m.mu.Lock()
	m.applied = append(m.applied, id)
	m.mu.Unlock()
	if m.applyFn != nil {
		return m.applyFn(ctx, id, actorID)
	}
	return nil
}

func (m *mockEffect) applyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applied)
}

// --- Presenter mock ---

type mockPresenter struct {
	mu sync.Mutex

	syncPollFn     func(ctx context.Context, poll *entities.Poll, tallies []entities.OptionTally) (entities.MessageRef, error)
	syncGiveawayFn func(ctx context.Context, giveaway *entities.Giveaway, entryCount int) (entities.MessageRef, error)
	memberRolesFn  func(ctx context.Context, guildID, userID string) ([]string, error)
	guildRolesFn   func(ctx context.Context, guildID string) ([]string, error)

	granted   map[string][]string // userID -> roleIDs
	revoked   map[string][]string
	announced []int64
	dms       []string // userIDs notified
}

func newMockPresenter() *mockPresenter {
	return &mockPresenter{
		granted: make(map[string][]string),
		revoked: make(map[string][]string),
	}
}

func (m *mockPresenter) SyncPoll(ctx context.Context, poll *entities.Poll, tallies []entities.OptionTally) (entities.MessageRef, error) {
	if m.syncPollFn != nil {
		return m.syncPollFn(ctx, poll, tallies)
	}
	return entities.MessageRef{ChannelID: poll.ChannelID, MessageID: "msg-poll"}, nil
}

func (m *mockPresenter) SyncGiveaway(ctx context.Context, giveaway *entities.Giveaway, entryCount int) (entities.MessageRef, error) {
	if m.syncGiveawayFn != nil {
		return m.syncGiveawayFn(ctx, giveaway, entryCount)
	}
	return entities.MessageRef{ChannelID: giveaway.ChannelID, MessageID: "msg-giveaway"}, nil
}

func (m *mockPresenter) AnnounceWinners(ctx context.Context, giveaway *entities.Giveaway) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announced = append(m.announced, giveaway.ID)
	return nil
}

func (m *mockPresenter) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted[userID] = append(m.granted[userID], roleIDs...)
	return nil
}

func (m *mockPresenter) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[userID] = append(m.revoked[userID], roleIDs...)
	return nil
}

func (m *mockPresenter) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if m.memberRolesFn != nil {
		return m.memberRolesFn(ctx, guildID, userID)
	}
	return nil, nil
}

func (m *mockPresenter) GuildRoles(ctx context.Context, guildID string) ([]string, error) {
	if m.guildRolesFn != nil {
		return m.guildRolesFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockPresenter) NotifyDirect(ctx context.Context, userID, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dms = append(m.dms, userID)
	return true
}

func (m *mockPresenter) grantedRoles(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.granted[userID]
}

func (m *mockPresenter) revokedRoles(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[userID]
}

// --- Misc mocks ---

// mockTranslator returns the key itself, which keeps assertions readable.
type mockTranslator struct{}

func (mockTranslator) T(locale, key string, data map[string]any) string { return key }

type mockAudit struct {
	mu      sync.Mutex
	entries []entities.AuditEntry
}

func (m *mockAudit) Create(ctx context.Context, entry *entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAudit) FindByEntity(ctx context.Context, kind string, entityID int64) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AuditEntry
	for _, e := range m.entries {
		if e.Kind == kind && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAudit) actions(kind string, entityID int64) []string {
	entries, _ := m.FindByEntity(context.Background(), kind, entityID)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}

type mockSettings struct {
	mu      sync.Mutex
	byGuild map[string]entities.GuildSettings
}

func newMockSettings() *mockSettings {
	return &mockSettings{byGuild: make(map[string]entities.GuildSettings)}
}

func (m *mockSettings) Get(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byGuild[guildID]
	s.GuildID = guildID
	return &s, nil
}

func (m *mockSettings) Upsert(ctx context.Context, settings *entities.GuildSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byGuild[settings.GuildID] = *settings
	return nil
}

type mockLevels struct {
	levels map[string]int // userID -> level
}

func (m *mockLevels) Level(ctx context.Context, guildID, userID string) (int, error) {
	return m.levels[userID], nil
}
