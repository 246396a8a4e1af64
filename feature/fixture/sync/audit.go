package sync

import (
	"encoding/json"
	"fmt"

	"matchday/feature/fixture/models"

	"gorm.io/datatypes"
)

// newAuditEntry builds the immutable audit record for one write. Callers must
// never pass an empty change set; zero-field entries are forbidden.
func newAuditEntry(fixtureID uint, opts Options, changes ChangeSet) (*models.AuditEntry, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("refusing to create empty audit entry for fixture %d", fixtureID)
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change set: %w", err)
	}

	return &models.AuditEntry{
		FixtureID:          fixtureID,
		RunID:              opts.RunID,
		Source:             opts.Source,
		BypassedValidation: opts.BypassStateValidation,
		Changes:            datatypes.JSON(payload),
	}, nil
}
