package models

import (
	"time"

	"gorm.io/datatypes"
)

// League is a reference entity seeded outside the sync engine.
// The engine only resolves external ids against it.
type League struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID int64     `gorm:"uniqueIndex" json:"external_id"`
	Name       string    `json:"name"`
	Country    *string   `json:"country,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Season is a reference entity seeded outside the sync engine.
type Season struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID int64     `gorm:"uniqueIndex" json:"external_id"`
	Name       string    `json:"name"`
	LeagueID   *uint     `gorm:"index" json:"league_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Team is a reference entity seeded outside the sync engine.
type Team struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID int64     `gorm:"uniqueIndex" json:"external_id"`
	Name       string    `json:"name"`
	ShortName  *string   `json:"short_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Fixture is the system-of-record row for one match.
//
// The internal id is owned by the store; the external id is the provider's
// identifier and the natural join key against incoming feed data. Relational
// references stay null until the referenced entity has been seeded.
type Fixture struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	ExternalID int64 `gorm:"uniqueIndex" json:"external_id"`

	Name        string  `json:"name"`
	KickoffText string  `json:"kickoff_text"`
	KickoffUnix int64   `gorm:"index" json:"kickoff_unix"`
	Stage       *string `json:"stage,omitempty"`
	Round       *string `json:"round,omitempty"`
	Leg         *string `json:"leg,omitempty"`
	AggregateID *int64  `json:"aggregate_id,omitempty"`

	LeagueID   *uint `gorm:"index" json:"league_id,omitempty"`
	SeasonID   *uint `gorm:"index" json:"season_id,omitempty"`
	HomeTeamID *uint `json:"home_team_id,omitempty"`
	AwayTeamID *uint `json:"away_team_id,omitempty"`

	State        FixtureState `gorm:"size:32;default:NOT_STARTED" json:"state"`
	Minute       *int         `json:"minute,omitempty"`
	HomeScore90  *int         `json:"home_score_90,omitempty"`
	AwayScore90  *int         `json:"away_score_90,omitempty"`
	HomeScoreET  *int         `json:"home_score_et,omitempty"`
	AwayScoreET  *int         `json:"away_score_et,omitempty"`
	HomeScorePen *int         `json:"home_score_pen,omitempty"`
	AwayScorePen *int         `json:"away_score_pen,omitempty"`
	Result       *string      `gorm:"size:32" json:"result,omitempty"`

	// UpdatedAt is maintained by the engine on every write.
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditEntry is the immutable record of one fixture write.
//
// Changes holds a map of field name to {old, new} string pairs. An entry is
// created only when at least one field actually changed; zero-field entries
// are never written.
type AuditEntry struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FixtureID uint   `gorm:"index" json:"fixture_id"`
	RunID     string `gorm:"index;size:36" json:"run_id"`

	// Source distinguishes automated job writes from manual operator writes.
	Source string `gorm:"size:16;default:job" json:"source"`

	// BypassedValidation marks entries written with state validation bypassed.
	BypassedValidation bool `json:"bypassed_validation"`

	Changes   datatypes.JSON `json:"changes"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName keeps the audit table grouped with the fixtures table.
func (AuditEntry) TableName() string {
	return "fixture_audits"
}
