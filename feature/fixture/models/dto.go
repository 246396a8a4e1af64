package models

// FixtureDTO is the provider's representation of one match. All references
// are external ids; the sync engine resolves them to internal ids before
// anything is written.
type FixtureDTO struct {
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`

	LeagueExternalID   *int64 `json:"league_external_id,omitempty"`
	SeasonExternalID   *int64 `json:"season_external_id,omitempty"`
	HomeTeamExternalID int64  `json:"home_team_external_id"`
	AwayTeamExternalID int64  `json:"away_team_external_id"`

	Kickoff     string `json:"kickoff"`
	KickoffUnix int64  `json:"kickoff_unix"`

	State  string `json:"state"`
	Minute *int   `json:"minute,omitempty"`

	HomeScore90  *int `json:"home_score_90,omitempty"`
	AwayScore90  *int `json:"away_score_90,omitempty"`
	HomeScoreET  *int `json:"home_score_et,omitempty"`
	AwayScoreET  *int `json:"away_score_et,omitempty"`
	HomeScorePen *int `json:"home_score_pen,omitempty"`
	AwayScorePen *int `json:"away_score_pen,omitempty"`

	Stage       *string `json:"stage,omitempty"`
	Round       *string `json:"round,omitempty"`
	Leg         *string `json:"leg,omitempty"`
	AggregateID *int64  `json:"aggregate_id,omitempty"`
}
