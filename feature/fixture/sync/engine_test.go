package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"

	"matchday/feature/fixture/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory Store used to exercise the engine without a
// database. All methods are safe for concurrent use.
type memStore struct {
	mu stdsync.Mutex

	leagues map[int64]uint
	seasons map[int64]uint
	teams   map[int64]uint

	fixtures map[int64]*models.Fixture
	audits   []*models.AuditEntry

	nextID     uint
	queryCount map[string]int

	lookupErr   error
	prefetchErr error
}

func newMemStore() *memStore {
	return &memStore{
		leagues:    map[int64]uint{},
		seasons:    map[int64]uint{},
		teams:      map[int64]uint{},
		fixtures:   map[int64]*models.Fixture{},
		queryCount: map[string]int{},
	}
}

func (s *memStore) lookup(name string, source map[int64]uint, ids []int64) (map[int64]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount[name]++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	out := make(map[int64]uint)
	for _, id := range ids {
		if internal, ok := source[id]; ok {
			out[id] = internal
		}
	}
	return out, nil
}

func (s *memStore) LeagueIDsByExternal(ctx context.Context, ids []int64) (map[int64]uint, error) {
	return s.lookup("leagues", s.leagues, ids)
}

func (s *memStore) SeasonIDsByExternal(ctx context.Context, ids []int64) (map[int64]uint, error) {
	return s.lookup("seasons", s.seasons, ids)
}

func (s *memStore) TeamIDsByExternal(ctx context.Context, ids []int64) (map[int64]uint, error) {
	return s.lookup("teams", s.teams, ids)
}

func (s *memStore) FixturesByExternal(ctx context.Context, ids []int64) (map[int64]*models.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCount["fixtures"]++
	if s.prefetchErr != nil {
		return nil, s.prefetchErr
	}
	out := make(map[int64]*models.Fixture)
	for _, id := range ids {
		if f, ok := s.fixtures[id]; ok {
			clone := *f
			out[id] = &clone
		}
	}
	return out, nil
}

func (s *memStore) CreateFixture(ctx context.Context, f *models.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fixtures[f.ExternalID]; exists {
		return fmt.Errorf("duplicate external id %d", f.ExternalID)
	}
	s.nextID++
	f.ID = s.nextID
	clone := *f
	s.fixtures[f.ExternalID] = &clone
	return nil
}

func (s *memStore) UpdateFixture(ctx context.Context, f *models.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fixtures[f.ExternalID]; !exists {
		return fmt.Errorf("fixture %d not found", f.ExternalID)
	}
	clone := *f
	s.fixtures[f.ExternalID] = &clone
	return nil
}

func (s *memStore) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, entry)
	return nil
}

// recordedOutcome captures one tracker call.
type recordedOutcome struct {
	batchID  string
	itemKey  string
	outcome  string
	errMsg   string
	metadata map[string]any
}

type fakeRecorder struct {
	mu       stdsync.Mutex
	outcomes []recordedOutcome
}

func (r *fakeRecorder) RecordOutcome(ctx context.Context, batchID, itemKey, outcome, errMsg string, metadata map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, recordedOutcome{batchID, itemKey, outcome, errMsg, metadata})
	return nil
}

func (r *fakeRecorder) byKey(key string) []recordedOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedOutcome
	for _, o := range r.outcomes {
		if o.itemKey == key {
			out = append(out, o)
		}
	}
	return out
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// testDTO builds a minimal valid DTO for team externals 10 (home) and 20 (away).
func testDTO(externalID int64) models.FixtureDTO {
	return models.FixtureDTO{
		ExternalID:         externalID,
		Name:               fmt.Sprintf("Fixture %d", externalID),
		HomeTeamExternalID: 10,
		AwayTeamExternalID: 20,
		Kickoff:            "2026-08-29T15:00:00Z",
		KickoffUnix:        1787972400,
		State:              string(models.StateNotStarted),
	}
}

func newTestEngine(store Store, tracker OutcomeRecorder) *Engine {
	return NewEngine(store, tracker, zap.NewNop(), Config{})
}

func seedTeams(store *memStore) {
	store.teams[10] = 1
	store.teams[20] = 2
}

func changeSetOf(t *testing.T, entry *models.AuditEntry) ChangeSet {
	t.Helper()
	var changes ChangeSet
	require.NoError(t, json.Unmarshal(entry.Changes, &changes))
	return changes
}

func TestSync_InsertsNewFixtures(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	dto := testDTO(100)
	dto.State = string(models.StateFirstHalf)
	dto.Minute = intPtr(12)
	dto.HomeScore90 = intPtr(2)
	dto.AwayScore90 = intPtr(0)

	res, err := engine.Sync(context.Background(), []models.FixtureDTO{dto, testDTO(101)}, Options{RunID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, Total: 2}, res)

	f := store.fixtures[100]
	require.NotNil(t, f)
	assert.Equal(t, models.StateFirstHalf, f.State)
	require.NotNil(t, f.HomeTeamID)
	assert.Equal(t, uint(1), *f.HomeTeamID)
	assert.Nil(t, f.LeagueID)
	assert.Nil(t, f.Result) // not decided yet

	require.Len(t, store.audits, 2)
}

// Inserting a fixture with a nil result but a known score produces an audit
// entry containing the score and omitting the result entirely.
func TestSync_InsertAuditCompleteness(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	dto := testDTO(100)
	dto.State = string(models.StateFirstHalf)
	dto.HomeScore90 = intPtr(2)

	res, err := engine.Sync(context.Background(), []models.FixtureDTO{dto}, Options{RunID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	require.Len(t, store.audits, 1)
	changes := changeSetOf(t, store.audits[0])
	assert.Contains(t, changes, "home_score_90")
	assert.Equal(t, FieldChange{Old: "null", New: "2"}, changes["home_score_90"])
	assert.NotContains(t, changes, "result")
	assert.NotContains(t, changes, "minute")
	assert.Equal(t, "run-1", store.audits[0].RunID)
}

func TestSync_Idempotence(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	input := []models.FixtureDTO{testDTO(100), testDTO(101), testDTO(102)}

	first, err := engine.Sync(context.Background(), input, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	auditsAfterFirst := len(store.audits)

	second, err := engine.Sync(context.Background(), input, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 3, second.Total)
	assert.Len(t, store.audits, auditsAfterFirst, "second pass must not produce audit entries")
}

func TestSync_DuplicateCollapsing(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	tracker := &fakeRecorder{}
	engine := newTestEngine(store, tracker)

	dup := testDTO(100)
	dup.Name = "Duplicate of 100"

	res, err := engine.Sync(context.Background(),
		[]models.FixtureDTO{testDTO(100), dup, testDTO(101)},
		Options{BatchID: "batch-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total, "total equals the unique-id count")
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, res.Total, res.Inserted+res.Updated+res.Skipped+res.Failed)

	// First occurrence wins.
	assert.Equal(t, "Fixture 100", store.fixtures[100].Name)

	// The duplicate was reported to the tracker without being processed.
	records := tracker.byKey("100")
	require.Len(t, records, 2)
	assert.Equal(t, OutcomeSkipped, records[0].outcome)
	assert.Equal(t, SkipDuplicate, records[0].metadata["reason"])
	assert.Equal(t, OutcomeSuccess, records[1].outcome)
}

func TestSync_PartialFailureIsolation(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	tracker := &fakeRecorder{}
	engine := newTestEngine(store, tracker)

	bad := testDTO(101)
	bad.AwayTeamExternalID = 999 // never seeded

	res, err := engine.Sync(context.Background(),
		[]models.FixtureDTO{testDTO(100), bad, testDTO(102)},
		Options{BatchID: "batch-1"})
	require.NoError(t, err, "per-item failures must not surface as run errors")

	assert.Equal(t, Result{Inserted: 2, Failed: 1, Total: 3}, res)
	assert.NotNil(t, store.fixtures[100])
	assert.Nil(t, store.fixtures[101])
	assert.NotNil(t, store.fixtures[102])

	records := tracker.byKey("101")
	require.Len(t, records, 1)
	assert.Equal(t, OutcomeFailed, records[0].outcome)
	assert.Contains(t, records[0].errMsg, "away team 999 not found")
}

func TestSync_MissingRequiredFieldFailsItem(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	noName := testDTO(100)
	noName.Name = "  "
	noKickoff := testDTO(101)
	noKickoff.Kickoff = ""
	noKickoff.KickoffUnix = 0

	res, err := engine.Sync(context.Background(), []models.FixtureDTO{noName, noKickoff}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 2, Total: 2}, res)
}

func TestSync_StateMachineSafety(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	finished := testDTO(100)
	finished.State = string(models.StateFinished)
	finished.HomeScore90 = intPtr(1)
	finished.AwayScore90 = intPtr(1)
	_, err := engine.Sync(context.Background(), []models.FixtureDTO{finished}, Options{})
	require.NoError(t, err)
	require.Equal(t, models.StateFinished, store.fixtures[100].State)
	auditCount := len(store.audits)

	// The provider glitches and replays the fixture as not started.
	replay := testDTO(100)
	res, err := engine.Sync(context.Background(), []models.FixtureDTO{replay}, Options{})
	require.NoError(t, err)

	assert.Equal(t, Result{Skipped: 1, Total: 1}, res)
	assert.Equal(t, models.StateFinished, store.fixtures[100].State, "row must be left untouched")
	assert.Len(t, store.audits, auditCount)
}

func TestSync_BypassStateValidation(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	finished := testDTO(100)
	finished.State = string(models.StateFinished)
	_, err := engine.Sync(context.Background(), []models.FixtureDTO{finished}, Options{})
	require.NoError(t, err)

	replay := testDTO(100)
	res, err := engine.Sync(context.Background(), []models.FixtureDTO{replay}, Options{
		BypassStateValidation: true,
		Source:                "manual",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, models.StateNotStarted, store.fixtures[100].State)

	last := store.audits[len(store.audits)-1]
	assert.True(t, last.BypassedValidation, "bypass must be recorded in the audit trail")
	assert.Equal(t, "manual", last.Source)
}

func TestSync_AuditMinimality(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	live := testDTO(100)
	live.State = string(models.StateFirstHalf)
	live.Minute = intPtr(10)
	_, err := engine.Sync(context.Background(), []models.FixtureDTO{live}, Options{})
	require.NoError(t, err)

	live.Minute = intPtr(23)
	res, err := engine.Sync(context.Background(), []models.FixtureDTO{live}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	last := store.audits[len(store.audits)-1]
	changes := changeSetOf(t, last)
	require.Len(t, changes, 1, "only the changed field may appear")
	assert.Equal(t, FieldChange{Old: "10", New: "23"}, changes["minute"])
}

func TestSync_DryRunPurity(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	tracker := &fakeRecorder{}
	engine := newTestEngine(store, tracker)

	_, err := engine.Sync(context.Background(), []models.FixtureDTO{testDTO(100)}, Options{})
	require.NoError(t, err)

	fixturesBefore := len(store.fixtures)
	auditsBefore := len(store.audits)

	update := testDTO(100)
	update.State = string(models.StateFirstHalf)
	update.Minute = intPtr(1)

	res, err := engine.Sync(context.Background(),
		[]models.FixtureDTO{update, testDTO(101)},
		Options{DryRun: true, BatchID: "batch-1"})
	require.NoError(t, err)

	// Accurate classification...
	assert.Equal(t, Result{Inserted: 1, Updated: 1, Total: 2}, res)

	// ...with zero side effects.
	assert.Len(t, store.fixtures, fixturesBefore)
	assert.Len(t, store.audits, auditsBefore)
	assert.Equal(t, models.StateNotStarted, store.fixtures[100].State)
	assert.Empty(t, tracker.outcomes, "dry runs must not report outcomes")
}

// A league/season re-link without any descriptive change still writes the row
// but produces no audit entry.
func TestSync_RelationalRelinkWritesWithoutAudit(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	dto := testDTO(100)
	dto.LeagueExternalID = int64Ptr(7) // not seeded yet
	_, err := engine.Sync(context.Background(), []models.FixtureDTO{dto}, Options{})
	require.NoError(t, err)
	require.Nil(t, store.fixtures[100].LeagueID)
	auditCount := len(store.audits)

	// The league gets seeded; the next feed pass re-links it.
	store.leagues[7] = 42
	res, err := engine.Sync(context.Background(), []models.FixtureDTO{dto}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	require.NotNil(t, store.fixtures[100].LeagueID)
	assert.Equal(t, uint(42), *store.fixtures[100].LeagueID)
	assert.Len(t, store.audits, auditCount, "relational drift is not audited")
}

func TestSync_ResolutionFailureAbortsRun(t *testing.T) {
	store := newMemStore()
	store.lookupErr = errors.New("connection reset")
	engine := newTestEngine(store, nil)

	_, err := engine.Sync(context.Background(), []models.FixtureDTO{testDTO(100)}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk reference resolution failed")
}

func TestSync_PrefetchFailureFailsChunkOnly(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	store.prefetchErr = errors.New("deadlock found")
	engine := newTestEngine(store, nil)

	res, err := engine.Sync(context.Background(), []models.FixtureDTO{testDTO(100), testDTO(101)}, Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Failed: 2, Total: 2}, res)
}

func TestSync_CancelledContext(t *testing.T) {
	store := newMemStore()
	seedTeams(store)
	engine := newTestEngine(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Sync(ctx, []models.FixtureDTO{testDTO(100)}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSync_EmptyInput(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store, nil)

	res, err := engine.Sync(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
