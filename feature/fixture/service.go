package fixture

import (
	"bytes"
	"context"
	"fmt"

	"matchday/core/server"
	"matchday/core/storage"
	"matchday/feature/fixture/models"
	fixturesync "matchday/feature/fixture/sync"
	"matchday/feature/provider"
	"matchday/feature/run"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// feedKey is the singleflight key for the shared feed download.
const feedKey = "fixture-feed"

// Service orchestrates fixture syncs: fetch, archive, run tracking, engine.
type Service struct {
	db       *gorm.DB
	engine   *fixturesync.Engine
	provider provider.Client
	recorder *run.Recorder
	archive  storage.Client
	bucket   string
	logger   *zap.Logger
	sf       singleflight.Group
}

// NewService wires the sync orchestration. The archive client may be nil to
// disable feed snapshots; the recorder may be nil to disable run tracking.
func NewService(db *gorm.DB, providerClient provider.Client, recorder *run.Recorder, archive storage.Client, bucket string, logger *zap.Logger, syncCfg fixturesync.Config) *Service {
	var tracker fixturesync.OutcomeRecorder
	if recorder != nil {
		tracker = recorder
	}

	return &Service{
		db:       db,
		engine:   fixturesync.NewEngine(fixturesync.NewStore(db), tracker, logger, syncCfg),
		provider: providerClient,
		recorder: recorder,
		archive:  archive,
		bucket:   bucket,
		logger:   logger,
	}
}

// SyncOptions controls one service-level sync.
type SyncOptions struct {
	// DryRun computes the result without writing anything, including run
	// records and feed snapshots.
	DryRun bool
	// BypassStateValidation forwards the state machine bypass to the engine.
	BypassStateValidation bool
	// Source marks the trigger origin; defaults to job.
	Source string
}

// SyncReport is the service-level outcome of one sync.
type SyncReport struct {
	RunID  string             `json:"run_id"`
	DryRun bool               `json:"dry_run"`
	Result fixturesync.Result `json:"result"`
}

// feedPayload carries one shared download through singleflight.
type feedPayload struct {
	dtos []models.FixtureDTO
	raw  []byte
}

// SyncFromFeed downloads the provider feed and reconciles it. Concurrent
// callers share a single download; each still gets its own run.
func (s *Service) SyncFromFeed(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no provider client configured")
	}

	result, err, shared := s.sf.Do(feedKey, func() (any, error) {
		dtos, raw, err := s.provider.FetchFixtures(ctx)
		if err != nil {
			return nil, err
		}
		return &feedPayload{dtos: dtos, raw: raw}, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Info("feed download shared with concurrent sync")
	}

	payload := result.(*feedPayload)
	return s.syncBatch(ctx, payload.dtos, payload.raw, opts)
}

// SyncFixtures reconciles an explicitly supplied batch, bypassing the feed.
// Used by the manual admin path.
func (s *Service) SyncFixtures(ctx context.Context, dtos []models.FixtureDTO, opts SyncOptions) (*SyncReport, error) {
	if opts.Source == "" {
		opts.Source = server.SourceManual
	}
	return s.syncBatch(ctx, dtos, nil, opts)
}

func (s *Service) syncBatch(ctx context.Context, dtos []models.FixtureDTO, raw []byte, opts SyncOptions) (*SyncReport, error) {
	runID := uuid.NewString()
	l := s.logger.With(zap.String("run_id", runID))

	if !opts.DryRun {
		if s.recorder != nil {
			if err := s.recorder.StartRun(ctx, runID); err != nil {
				return nil, err
			}
		}
		s.archiveFeed(ctx, l, runID, raw)
	}

	res, err := s.engine.Sync(ctx, dtos, fixturesync.Options{
		DryRun:                opts.DryRun,
		BypassStateValidation: opts.BypassStateValidation,
		BatchID:               runID,
		RunID:                 runID,
		Source:                opts.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("sync run %s failed: %w", runID, err)
	}

	if !opts.DryRun && s.recorder != nil {
		if err := s.recorder.FinishRun(ctx, runID, res); err != nil {
			// The sync itself succeeded; a dangling open run is worth a log,
			// not a failure.
			l.Warn("failed to finish run record", zap.Error(err))
		}
	}

	return &SyncReport{RunID: runID, DryRun: opts.DryRun, Result: res}, nil
}

// archiveFeed stores the raw feed payload under the run id. Best effort: an
// archive failure never blocks the sync.
func (s *Service) archiveFeed(ctx context.Context, l *zap.Logger, runID string, raw []byte) {
	if s.archive == nil || len(raw) == 0 {
		return
	}

	objectName := fmt.Sprintf("feeds/%s.json", runID)
	_, err := s.archive.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		l.Warn("failed to archive feed snapshot", zap.String("object", objectName), zap.Error(err))
		return
	}

	l.Info("feed snapshot archived", zap.String("object", objectName), zap.Int("bytes", len(raw)))
}
