package fixture_test

import (
	"context"
	"errors"
	"testing"

	"matchday/core/database"
	"matchday/core/storage/mocks"
	"matchday/feature/fixture"
	"matchday/feature/fixture/models"
	fixturesync "matchday/feature/fixture/sync"
	"matchday/feature/run"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeProvider serves a canned feed.
type fakeProvider struct {
	dtos []models.FixtureDTO
	raw  []byte
	err  error
}

func (p *fakeProvider) FetchFixtures(ctx context.Context) ([]models.FixtureDTO, []byte, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.dtos, p.raw, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.League{},
		&models.Season{},
		&models.Team{},
		&models.Fixture{},
		&models.AuditEntry{},
		&run.BatchRun{},
		&run.BatchItem{},
	))

	require.NoError(t, db.Create(&models.Team{ExternalID: 10, Name: "Home FC"}).Error)
	require.NoError(t, db.Create(&models.Team{ExternalID: 20, Name: "Away FC"}).Error)
	return db
}

func feedDTO(externalID int64) models.FixtureDTO {
	return models.FixtureDTO{
		ExternalID:         externalID,
		Name:               "Home FC vs Away FC",
		HomeTeamExternalID: 10,
		AwayTeamExternalID: 20,
		Kickoff:            "2026-08-29T15:00:00Z",
		KickoffUnix:        1787972400,
		State:              string(models.StateNotStarted),
	}
}

func TestSyncFromFeed_FullRun(t *testing.T) {
	db := testDB(t)
	logger := zap.NewNop()
	recorder := run.NewRecorder(db, logger)

	feed := &fakeProvider{
		dtos: []models.FixtureDTO{feedDTO(100), feedDTO(101)},
		raw:  []byte(`{"fixtures":[]}`),
	}

	mockArchive := new(mocks.Client)
	mockArchive.On("PutObject", mock.Anything, "feeds", mock.MatchedBy(func(name string) bool {
		return len(name) > len("feeds/.json")
	}), mock.Anything, int64(len(feed.raw)), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	svc := fixture.NewService(db, feed, recorder, mockArchive, "feeds", logger, fixturesync.Config{})

	report, err := svc.SyncFromFeed(context.Background(), fixture.SyncOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Result.Inserted)
	assert.Equal(t, 2, report.Result.Total)

	// Run record closed with the engine counters.
	runReport, err := recorder.GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	require.NotNil(t, runReport.FinishedAt)
	assert.Equal(t, 2, runReport.Inserted)
	assert.Len(t, runReport.Items, 2)

	mockArchive.AssertExpectations(t)
}

func TestSyncFromFeed_ProviderFailure(t *testing.T) {
	db := testDB(t)
	svc := fixture.NewService(db, &fakeProvider{err: errors.New("feed down")}, nil, nil, "", zap.NewNop(), fixturesync.Config{})

	_, err := svc.SyncFromFeed(context.Background(), fixture.SyncOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed down")
}

func TestSyncFromFeed_DryRunWritesNothing(t *testing.T) {
	db := testDB(t)
	logger := zap.NewNop()
	recorder := run.NewRecorder(db, logger)
	feed := &fakeProvider{dtos: []models.FixtureDTO{feedDTO(100)}, raw: []byte(`{}`)}

	// No archive expectations registered: any PutObject call fails the test.
	mockArchive := new(mocks.Client)

	svc := fixture.NewService(db, feed, recorder, mockArchive, "feeds", logger, fixturesync.Config{})

	report, err := svc.SyncFromFeed(context.Background(), fixture.SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Result.Inserted)

	var fixtures int64
	require.NoError(t, db.Model(&models.Fixture{}).Count(&fixtures).Error)
	assert.Zero(t, fixtures)

	var runs int64
	require.NoError(t, db.Model(&run.BatchRun{}).Count(&runs).Error)
	assert.Zero(t, runs)

	mockArchive.AssertExpectations(t)
}

func TestSyncFixtures_ManualSource(t *testing.T) {
	db := testDB(t)
	logger := zap.NewNop()

	svc := fixture.NewService(db, nil, run.NewRecorder(db, logger), nil, "", logger, fixturesync.Config{})

	report, err := svc.SyncFixtures(context.Background(), []models.FixtureDTO{feedDTO(100)}, fixture.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Result.Inserted)

	var entry models.AuditEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "manual", entry.Source)
	assert.Equal(t, report.RunID, entry.RunID)
}

func TestListFixtures(t *testing.T) {
	db := testDB(t)
	svc := fixture.NewService(db, nil, nil, nil, "", zap.NewNop(), fixturesync.Config{})
	ctx := context.Background()

	live := feedDTO(100)
	live.State = string(models.StateFirstHalf)
	_, err := svc.SyncFixtures(ctx, []models.FixtureDTO{live, feedDTO(101)}, fixture.SyncOptions{})
	require.NoError(t, err)

	all, err := svc.ListFixtures(ctx, fixture.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	liveOnly, err := svc.ListFixtures(ctx, fixture.ListFilter{State: "FIRST_HALF"})
	require.NoError(t, err)
	require.Len(t, liveOnly, 1)
	assert.Equal(t, int64(100), liveOnly[0].ExternalID)

	_, err = svc.ListFixtures(ctx, fixture.ListFilter{State: "WARMUP"})
	require.Error(t, err)
}

func TestAuditForFixture(t *testing.T) {
	db := testDB(t)
	svc := fixture.NewService(db, nil, nil, nil, "", zap.NewNop(), fixturesync.Config{})
	ctx := context.Background()

	_, err := svc.SyncFixtures(ctx, []models.FixtureDTO{feedDTO(100)}, fixture.SyncOptions{})
	require.NoError(t, err)

	live := feedDTO(100)
	live.State = string(models.StateFirstHalf)
	live.Minute = new(int)
	*live.Minute = 5
	_, err = svc.SyncFixtures(ctx, []models.FixtureDTO{live}, fixture.SyncOptions{})
	require.NoError(t, err)

	trail, err := svc.AuditForFixture(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), trail.Fixture.ExternalID)
	require.Len(t, trail.Entries, 2)
	// Newest first.
	assert.True(t, trail.Entries[0].ID > trail.Entries[1].ID)

	_, err = svc.AuditForFixture(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
