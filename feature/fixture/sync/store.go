package sync

import (
	"context"
	"fmt"

	"matchday/feature/fixture/models"

	"gorm.io/gorm"
)

// Store is the persistence contract the engine runs against. The GORM
// implementation is used in production; tests inject an in-memory fake.
//
// The engine exclusively owns writes to fixtures and audit entries. The
// reference lookups are read-only: leagues, seasons, and teams are seeded
// elsewhere.
type Store interface {
	// LeagueIDsByExternal maps league external ids to internal ids in one
	// query. Ids without a row are absent from the result.
	LeagueIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error)
	// SeasonIDsByExternal maps season external ids to internal ids in one query.
	SeasonIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error)
	// TeamIDsByExternal maps team external ids to internal ids in one query.
	TeamIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error)
	// FixturesByExternal prefetches existing fixture rows for a chunk in one query.
	FixturesByExternal(ctx context.Context, externalIDs []int64) (map[int64]*models.Fixture, error)
	// CreateFixture inserts a new fixture row.
	CreateFixture(ctx context.Context, f *models.Fixture) error
	// UpdateFixture persists all fields of an existing fixture row.
	UpdateFixture(ctx context.Context, f *models.Fixture) error
	// AppendAudit writes one immutable audit entry.
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
}

// externalRef is the result shape for external-id lookup queries.
type externalRef struct {
	ID         uint
	ExternalID int64
}

// gormStore implements Store on a GORM connection.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates the production Store backed by the given connection.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) LeagueIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error) {
	return s.idsByExternal(ctx, "leagues", externalIDs)
}

func (s *gormStore) SeasonIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error) {
	return s.idsByExternal(ctx, "seasons", externalIDs)
}

func (s *gormStore) TeamIDsByExternal(ctx context.Context, externalIDs []int64) (map[int64]uint, error) {
	return s.idsByExternal(ctx, "teams", externalIDs)
}

// idsByExternal performs a single bulk lookup on the given table. Cost grows
// with the number of distinct external ids, not the number of fixtures.
func (s *gormStore) idsByExternal(ctx context.Context, table string, externalIDs []int64) (map[int64]uint, error) {
	lookup := make(map[int64]uint, len(externalIDs))
	if len(externalIDs) == 0 {
		return lookup, nil
	}

	var refs []externalRef
	err := s.db.WithContext(ctx).
		Table(table).
		Select("id, external_id").
		Where("external_id IN ?", externalIDs).
		Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", table, err)
	}

	for _, ref := range refs {
		lookup[ref.ExternalID] = ref.ID
	}
	return lookup, nil
}

func (s *gormStore) FixturesByExternal(ctx context.Context, externalIDs []int64) (map[int64]*models.Fixture, error) {
	existing := make(map[int64]*models.Fixture, len(externalIDs))
	if len(externalIDs) == 0 {
		return existing, nil
	}

	var rows []models.Fixture
	err := s.db.WithContext(ctx).
		Where("external_id IN ?", externalIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to prefetch fixtures: %w", err)
	}

	for i := range rows {
		existing[rows[i].ExternalID] = &rows[i]
	}
	return existing, nil
}

func (s *gormStore) CreateFixture(ctx context.Context, f *models.Fixture) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to insert fixture %d: %w", f.ExternalID, err)
	}
	return nil
}

func (s *gormStore) UpdateFixture(ctx context.Context, f *models.Fixture) error {
	if err := s.db.WithContext(ctx).Save(f).Error; err != nil {
		return fmt.Errorf("failed to update fixture %d: %w", f.ExternalID, err)
	}
	return nil
}

func (s *gormStore) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry for fixture %d: %w", entry.FixtureID, err)
	}
	return nil
}
