package sync

import (
	"testing"

	"matchday/feature/fixture/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookups() *refLookups {
	return &refLookups{
		leagues: map[int64]uint{7: 70},
		seasons: map[int64]uint{8: 80},
		teams:   map[int64]uint{10: 1, 20: 2},
	}
}

func TestTransformDTO_ResolvesReferences(t *testing.T) {
	dto := testDTO(100)
	dto.LeagueExternalID = int64Ptr(7)
	dto.SeasonExternalID = int64Ptr(8)

	f, err := transformDTO(dto, testLookups())
	require.NoError(t, err)

	require.NotNil(t, f.LeagueID)
	assert.Equal(t, uint(70), *f.LeagueID)
	require.NotNil(t, f.SeasonID)
	assert.Equal(t, uint(80), *f.SeasonID)
	assert.Equal(t, uint(1), *f.HomeTeamID)
	assert.Equal(t, uint(2), *f.AwayTeamID)
	assert.Equal(t, models.StateNotStarted, f.State)
}

func TestTransformDTO_UnknownLeagueLeftNull(t *testing.T) {
	dto := testDTO(100)
	dto.LeagueExternalID = int64Ptr(999)

	f, err := transformDTO(dto, testLookups())
	require.NoError(t, err)
	assert.Nil(t, f.LeagueID)
}

func TestTransformDTO_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.FixtureDTO)
		wantErr string
	}{
		{"blank name", func(d *models.FixtureDTO) { d.Name = " " }, "missing required field: name"},
		{"no kickoff", func(d *models.FixtureDTO) { d.Kickoff = ""; d.KickoffUnix = 0 }, "missing required field: kickoff"},
		{"unknown state", func(d *models.FixtureDTO) { d.State = "WARMUP" }, `unknown state "WARMUP"`},
		{"unresolved home team", func(d *models.FixtureDTO) { d.HomeTeamExternalID = 999 }, "home team 999 not found"},
		{"unresolved away team", func(d *models.FixtureDTO) { d.AwayTeamExternalID = 999 }, "away team 999 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := testDTO(100)
			tt.mutate(&dto)

			_, err := transformDTO(dto, testLookups())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeriveResult(t *testing.T) {
	tests := []struct {
		name    string
		state   models.FixtureState
		score90 [2]*int
		scoreET [2]*int
		scorePN [2]*int
		want    *string
	}{
		{
			name:    "live match has no result",
			state:   models.StateFirstHalf,
			score90: [2]*int{intPtr(3), intPtr(0)},
		},
		{
			name:    "cancelled match has no result",
			state:   models.StateCancelled,
			score90: [2]*int{intPtr(1), intPtr(0)},
		},
		{
			name:  "finished without scores has no result",
			state: models.StateFinished,
		},
		{
			name:    "home win at 90",
			state:   models.StateFinished,
			score90: [2]*int{intPtr(2), intPtr(1)},
			want:    strRef("HOME_WIN"),
		},
		{
			name:    "draw at 90",
			state:   models.StateFinished,
			score90: [2]*int{intPtr(0), intPtr(0)},
			want:    strRef("DRAW"),
		},
		{
			name:    "extra time overrides 90",
			state:   models.StateFinishedAET,
			score90: [2]*int{intPtr(1), intPtr(1)},
			scoreET: [2]*int{intPtr(1), intPtr(2)},
			want:    strRef("AWAY_WIN"),
		},
		{
			name:    "penalties override extra time",
			state:   models.StateFinishedPen,
			score90: [2]*int{intPtr(1), intPtr(1)},
			scoreET: [2]*int{intPtr(2), intPtr(2)},
			scorePN: [2]*int{intPtr(5), intPtr(4)},
			want:    strRef("HOME_WIN"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &models.Fixture{
				State:        tt.state,
				HomeScore90:  tt.score90[0],
				AwayScore90:  tt.score90[1],
				HomeScoreET:  tt.scoreET[0],
				AwayScoreET:  tt.scoreET[1],
				HomeScorePen: tt.scorePN[0],
				AwayScorePen: tt.scorePN[1],
			}

			got := deriveResult(f)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func strRef(s string) *string { return &s }
