package sync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"matchday/feature/fixture/models"
)

// Per-item failures. These never cross the item boundary: the orchestrator
// catches them and classifies the item as failed.
var (
	ErrMissingName    = errors.New("missing required field: name")
	ErrMissingKickoff = errors.New("missing required field: kickoff")
)

// transformDTO validates a provider DTO and maps it to a fixture row with
// resolved internal references. Pure except for the UpdatedAt stamp.
//
// A home or away team that cannot be resolved is fatal for the item; a
// missing league or season leaves the reference null, since those are
// optional enrichments.
func transformDTO(dto models.FixtureDTO, refs *refLookups) (*models.Fixture, error) {
	if strings.TrimSpace(dto.Name) == "" {
		return nil, ErrMissingName
	}
	if dto.Kickoff == "" || dto.KickoffUnix == 0 {
		return nil, ErrMissingKickoff
	}

	state, ok := models.ParseState(dto.State)
	if !ok {
		return nil, fmt.Errorf("unknown state %q", dto.State)
	}

	homeID, ok := refs.teams[dto.HomeTeamExternalID]
	if !ok {
		return nil, fmt.Errorf("home team %d not found", dto.HomeTeamExternalID)
	}
	awayID, ok := refs.teams[dto.AwayTeamExternalID]
	if !ok {
		return nil, fmt.Errorf("away team %d not found", dto.AwayTeamExternalID)
	}

	f := &models.Fixture{
		ExternalID:  dto.ExternalID,
		Name:        dto.Name,
		KickoffText: dto.Kickoff,
		KickoffUnix: dto.KickoffUnix,
		Stage:       dto.Stage,
		Round:       dto.Round,
		Leg:         dto.Leg,
		AggregateID: dto.AggregateID,

		LeagueID:   optionalRef(refs.leagues, dto.LeagueExternalID),
		SeasonID:   optionalRef(refs.seasons, dto.SeasonExternalID),
		HomeTeamID: &homeID,
		AwayTeamID: &awayID,

		State:        state,
		Minute:       dto.Minute,
		HomeScore90:  dto.HomeScore90,
		AwayScore90:  dto.AwayScore90,
		HomeScoreET:  dto.HomeScoreET,
		AwayScoreET:  dto.AwayScoreET,
		HomeScorePen: dto.HomeScorePen,
		AwayScorePen: dto.AwayScorePen,

		UpdatedAt: time.Now(),
	}
	f.Result = deriveResult(f)

	return f, nil
}

// optionalRef resolves an optional external reference, returning nil when the
// reference is absent from the feed or not yet seeded.
func optionalRef(lookup map[int64]uint, externalID *int64) *uint {
	if externalID == nil {
		return nil
	}
	id, ok := lookup[*externalID]
	if !ok {
		return nil
	}
	return &id
}

// deriveResult computes the textual result for a decided match. Penalty
// scores settle the tie when present, then extra time, then the 90-minute
// score. Undecided matches have no result.
func deriveResult(f *models.Fixture) *string {
	if !f.State.IsTerminal() || f.State == models.StateCancelled {
		return nil
	}

	var home, away *int
	switch {
	case f.HomeScorePen != nil && f.AwayScorePen != nil:
		home, away = f.HomeScorePen, f.AwayScorePen
	case f.HomeScoreET != nil && f.AwayScoreET != nil:
		home, away = f.HomeScoreET, f.AwayScoreET
	case f.HomeScore90 != nil && f.AwayScore90 != nil:
		home, away = f.HomeScore90, f.AwayScore90
	default:
		return nil
	}

	var result string
	switch {
	case *home > *away:
		result = "HOME_WIN"
	case *home < *away:
		result = "AWAY_WIN"
	default:
		result = "DRAW"
	}
	return &result
}

// applyCandidate copies every synchronized field from the resolved candidate
// onto the persisted row, preserving store-owned identity.
func applyCandidate(dst, src *models.Fixture) {
	dst.Name = src.Name
	dst.KickoffText = src.KickoffText
	dst.KickoffUnix = src.KickoffUnix
	dst.Stage = src.Stage
	dst.Round = src.Round
	dst.Leg = src.Leg
	dst.AggregateID = src.AggregateID

	dst.LeagueID = src.LeagueID
	dst.SeasonID = src.SeasonID
	dst.HomeTeamID = src.HomeTeamID
	dst.AwayTeamID = src.AwayTeamID

	dst.State = src.State
	dst.Minute = src.Minute
	dst.HomeScore90 = src.HomeScore90
	dst.AwayScore90 = src.AwayScore90
	dst.HomeScoreET = src.HomeScoreET
	dst.AwayScoreET = src.AwayScoreET
	dst.HomeScorePen = src.HomeScorePen
	dst.AwayScorePen = src.AwayScorePen
	dst.Result = src.Result

	dst.UpdatedAt = src.UpdatedAt
}
