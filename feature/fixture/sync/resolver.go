package sync

import (
	"context"

	"matchday/feature/fixture/models"

	"golang.org/x/sync/errgroup"
)

// refLookups maps provider external ids to internal record ids for each
// reference entity type. Built once per run, read-only afterwards.
type refLookups struct {
	leagues map[int64]uint
	seasons map[int64]uint
	teams   map[int64]uint
}

// buildLookups bulk-resolves every reference the batch mentions in at most
// three store round-trips, one per entity type, run concurrently. A store
// failure here aborts the run: no per-item work can proceed without
// resolved references.
func buildLookups(ctx context.Context, store Store, dtos []models.FixtureDTO) (*refLookups, error) {
	var leagueIDs, seasonIDs, teamIDs []int64

	leagueSeen := make(map[int64]struct{})
	seasonSeen := make(map[int64]struct{})
	teamSeen := make(map[int64]struct{})

	for _, dto := range dtos {
		if dto.LeagueExternalID != nil {
			if _, ok := leagueSeen[*dto.LeagueExternalID]; !ok {
				leagueSeen[*dto.LeagueExternalID] = struct{}{}
				leagueIDs = append(leagueIDs, *dto.LeagueExternalID)
			}
		}
		if dto.SeasonExternalID != nil {
			if _, ok := seasonSeen[*dto.SeasonExternalID]; !ok {
				seasonSeen[*dto.SeasonExternalID] = struct{}{}
				seasonIDs = append(seasonIDs, *dto.SeasonExternalID)
			}
		}
		for _, teamID := range []int64{dto.HomeTeamExternalID, dto.AwayTeamExternalID} {
			if _, ok := teamSeen[teamID]; !ok {
				teamSeen[teamID] = struct{}{}
				teamIDs = append(teamIDs, teamID)
			}
		}
	}

	lookups := &refLookups{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lookups.leagues, err = store.LeagueIDsByExternal(gctx, leagueIDs)
		return err
	})
	g.Go(func() error {
		var err error
		lookups.seasons, err = store.SeasonIDsByExternal(gctx, seasonIDs)
		return err
	})
	g.Go(func() error {
		var err error
		lookups.teams, err = store.TeamIDsByExternal(gctx, teamIDs)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lookups, nil
}
