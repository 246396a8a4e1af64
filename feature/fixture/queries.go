package fixture

import (
	"context"
	"fmt"

	"matchday/feature/fixture/models"
)

// ListFilter narrows the fixture listing.
type ListFilter struct {
	// State restricts to one lifecycle state when non-empty.
	State string
	// Limit caps the page size; values outside 1..500 fall back to 100.
	Limit int
	// Offset skips rows for paging.
	Offset int
}

// ListFixtures returns fixtures ordered by kickoff time.
func (s *Service) ListFixtures(ctx context.Context, filter ListFilter) ([]models.Fixture, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.WithContext(ctx).
		Order("kickoff_unix ASC").
		Limit(limit).
		Offset(filter.Offset)

	if filter.State != "" {
		state, ok := models.ParseState(filter.State)
		if !ok {
			return nil, fmt.Errorf("unknown state %q", filter.State)
		}
		query = query.Where("state = ?", state)
	}

	var fixtures []models.Fixture
	if err := query.Find(&fixtures).Error; err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	return fixtures, nil
}

// AuditTrail is the change history of one fixture, newest first.
type AuditTrail struct {
	Fixture models.Fixture      `json:"fixture"`
	Entries []models.AuditEntry `json:"entries"`
}

// AuditForFixture loads a fixture by its external id together with its audit
// entries. Returns gorm.ErrRecordNotFound for unknown fixtures.
func (s *Service) AuditForFixture(ctx context.Context, externalID int64) (*AuditTrail, error) {
	var trail AuditTrail
	err := s.db.WithContext(ctx).
		First(&trail.Fixture, "external_id = ?", externalID).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Where("fixture_id = ?", trail.Fixture.ID).
		Order("id DESC").
		Find(&trail.Entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail for fixture %d: %w", externalID, err)
	}
	return &trail, nil
}
