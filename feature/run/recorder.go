package run

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	fixturesync "matchday/feature/fixture/sync"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder owns the run lifecycle: it opens and closes batch_runs rows and
// streams per-item outcomes into batch_items. It satisfies the engine's
// OutcomeRecorder contract.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecorder creates a run recorder on the given connection.
func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// StartRun opens the lifecycle record for a new run id.
func (r *Recorder) StartRun(ctx context.Context, id string) error {
	now := time.Now()
	batch := BatchRun{ID: id, StartedAt: &now}

	if err := r.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return fmt.Errorf("failed to start run %s: %w", id, err)
	}
	return nil
}

// FinishRun closes the run with its aggregate counters.
func (r *Recorder) FinishRun(ctx context.Context, id string, res fixturesync.Result) error {
	now := time.Now()

	err := r.db.WithContext(ctx).Model(&BatchRun{}).Where("id = ?", id).Updates(map[string]any{
		"finished_at": &now,
		"inserted":    res.Inserted,
		"updated":     res.Updated,
		"skipped":     res.Skipped,
		"failed":      res.Failed,
		"total":       res.Total,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	return nil
}

// RecordOutcome appends one per-item outcome row. Metadata is stored as JSON;
// a nil map stores NULL.
func (r *Recorder) RecordOutcome(ctx context.Context, batchID, itemKey, outcome, errMsg string, metadata map[string]any) error {
	item := BatchItem{
		BatchID: batchID,
		ItemKey: itemKey,
		Outcome: outcome,
	}
	if errMsg != "" {
		item.Error = &errMsg
	}
	if len(metadata) > 0 {
		payload, err := json.Marshal(metadata)
		if err != nil {
			r.logger.Warn("failed to marshal outcome metadata",
				zap.String("batch_id", batchID),
				zap.String("item_key", itemKey),
				zap.Error(err))
		} else {
			item.Metadata = datatypes.JSON(payload)
		}
	}

	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return fmt.Errorf("failed to record outcome for item %s: %w", itemKey, err)
	}
	return nil
}

// RunReport is a run with its per-item outcomes.
type RunReport struct {
	BatchRun
	Items []BatchItem `json:"items"`
}

// GetRun loads a run and its items. Returns gorm.ErrRecordNotFound when the
// run id is unknown.
func (r *Recorder) GetRun(ctx context.Context, id string) (*RunReport, error) {
	var report RunReport
	if err := r.db.WithContext(ctx).First(&report.BatchRun, "id = ?", id).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).
		Where("batch_id = ?", id).
		Order("id ASC").
		Find(&report.Items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load items for run %s: %w", id, err)
	}
	return &report, nil
}
