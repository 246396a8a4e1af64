package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"matchday/core/server"
	"matchday/feature/fixture/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcomes reported to the run tracker.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Skip reasons.
const (
	SkipDuplicate         = "duplicate"
	SkipNoChange          = "no-change"
	SkipInvalidTransition = "invalid state transition"
)

// OutcomeRecorder is the narrow contract toward the run tracker. The engine
// reports per-item outcomes under a batch id; the tracker owns everything
// else about run lifecycle.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, batchID, itemKey, outcome, errMsg string, metadata map[string]any) error
}

// Options controls one sync invocation.
type Options struct {
	// DryRun computes every decision but performs no writes, audit entries,
	// or tracker reports.
	DryRun bool
	// BypassStateValidation suppresses the state transition check. The
	// bypass is recorded on every audit entry the run produces.
	BypassStateValidation bool
	// BatchID correlates per-item outcomes in the run tracker. Empty
	// disables outcome reporting.
	BatchID string
	// RunID tags audit entries with the run that produced them.
	RunID string
	// Source marks audit entries as job or manual writes.
	Source string
}

// Result aggregates per-item classifications for one run.
// Total is always the sum of the four buckets and equals the number of
// unique fixtures in the input.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// Engine merges provider fixture batches into the system of record.
type Engine struct {
	store   Store
	tracker OutcomeRecorder
	logger  *zap.Logger
	cfg     Config
}

// NewEngine creates a sync engine. The tracker may be nil when no outcome
// reporting is wanted.
func NewEngine(store Store, tracker OutcomeRecorder, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{
		store:   store,
		tracker: tracker,
		logger:  logger,
		cfg:     cfg,
	}
}

// Sync reconciles a batch of provider fixtures against the store.
//
// The input is de-duplicated by external id (first occurrence wins), all
// referenced entities are bulk-resolved up front, and the unique items are
// processed in fixed-size chunks. Items within a chunk run concurrently and
// independently: one item's failure never loses progress on its siblings.
// Cancellation is cooperative and checked at chunk boundaries, so an
// in-flight chunk always runs to completion.
//
// A store failure during bulk resolution aborts the run; every later error
// stays confined to its item or chunk.
func (e *Engine) Sync(ctx context.Context, dtos []models.FixtureDTO, opts Options) (Result, error) {
	if opts.Source == "" {
		opts.Source = server.SourceJob
	}

	var res Result

	// 1. De-duplicate, preserving the first occurrence. Duplicates are
	// reported to the tracker and dropped; the counters cover unique
	// fixtures only.
	unique := make([]models.FixtureDTO, 0, len(dtos))
	seen := make(map[int64]struct{}, len(dtos))
	for _, dto := range dtos {
		if _, dup := seen[dto.ExternalID]; dup {
			e.logger.Warn("duplicate fixture in batch",
				zap.Int64("external_id", dto.ExternalID),
				zap.String("name", dto.Name))
			e.report(ctx, opts, dto.ExternalID, OutcomeSkipped, "", map[string]any{
				"name":   dto.Name,
				"reason": SkipDuplicate,
			})
			continue
		}
		seen[dto.ExternalID] = struct{}{}
		unique = append(unique, dto)
	}

	res.Total = len(unique)
	if len(unique) == 0 {
		return res, nil
	}

	// 2. Bulk-resolve references: at most three round-trips regardless of
	// batch size.
	lookups, err := buildLookups(ctx, e.store, unique)
	if err != nil {
		return Result{}, fmt.Errorf("bulk reference resolution failed: %w", err)
	}

	// 3. Chunked fan-out.
	chunkSize := e.cfg.chunkSize()
	for start := 0; start < len(unique); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		end := start + chunkSize
		if end > len(unique) {
			end = len(unique)
		}
		e.processChunk(ctx, unique[start:end], lookups, opts, &res)
	}

	e.logger.Info("fixture sync completed",
		zap.String("run_id", opts.RunID),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Int("total", res.Total))

	return res, nil
}

// itemClass is the internal per-item classification.
type itemClass int

const (
	classInserted itemClass = iota
	classUpdated
	classSkipped
	classFailed
)

// itemOutcome carries one item's classification plus tracker metadata.
type itemOutcome struct {
	class   itemClass
	reason  string
	err     error
	name    string
	changes ChangeSet
}

// processChunk prefetches existing rows for the chunk in one query, then
// processes every item concurrently, collecting all outcomes.
func (e *Engine) processChunk(ctx context.Context, chunk []models.FixtureDTO, lookups *refLookups, opts Options, res *Result) {
	ids := make([]int64, len(chunk))
	for i, dto := range chunk {
		ids[i] = dto.ExternalID
	}

	existing, err := e.store.FixturesByExternal(ctx, ids)
	if err != nil {
		// The chunk cannot proceed without its prefetch; fail its items
		// and keep going with the remaining chunks.
		e.logger.Error("chunk prefetch failed", zap.Error(err), zap.Int("chunk_size", len(chunk)))
		for _, dto := range chunk {
			res.Failed++
			e.report(ctx, opts, dto.ExternalID, OutcomeFailed,
				fmt.Sprintf("prefetch failed: %v", err),
				map[string]any{"name": dto.Name})
		}
		return
	}

	outcomes := make([]itemOutcome, len(chunk))

	// Fan out, collecting every outcome. processItem never returns an
	// error, so one item cannot cancel its siblings.
	var g errgroup.Group
	for i, dto := range chunk {
		g.Go(func() error {
			outcomes[i] = e.processItem(ctx, dto, existing[dto.ExternalID], lookups, opts)
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range outcomes {
		externalID := chunk[i].ExternalID

		switch out.class {
		case classInserted:
			res.Inserted++
			e.report(ctx, opts, externalID, OutcomeSuccess, "", successMetadata(out))
		case classUpdated:
			res.Updated++
			e.report(ctx, opts, externalID, OutcomeSuccess, "", successMetadata(out))
		case classSkipped:
			res.Skipped++
			e.report(ctx, opts, externalID, OutcomeSkipped, "", map[string]any{
				"name":   out.name,
				"reason": out.reason,
			})
		case classFailed:
			res.Failed++
			e.logger.Warn("fixture sync item failed",
				zap.Int64("external_id", externalID),
				zap.Error(out.err))
			e.report(ctx, opts, externalID, OutcomeFailed, out.err.Error(), map[string]any{
				"name": out.name,
			})
		}
	}
}

// processItem runs the per-item pipeline: transform and resolve, check the
// state transition, diff or insert, write, audit, classify.
func (e *Engine) processItem(ctx context.Context, dto models.FixtureDTO, current *models.Fixture, lookups *refLookups, opts Options) itemOutcome {
	out := itemOutcome{name: dto.Name}

	candidate, err := transformDTO(dto, lookups)
	if err != nil {
		out.class = classFailed
		out.err = err
		return out
	}

	// Insert path: no persisted row, any proposed state is acceptable.
	if current == nil {
		changes := insertChanges(candidate)
		if !opts.DryRun {
			if err := e.store.CreateFixture(ctx, candidate); err != nil {
				out.class = classFailed
				out.err = err
				return out
			}
			if err := e.appendAudit(ctx, candidate.ID, opts, changes); err != nil {
				out.class = classFailed
				out.err = err
				return out
			}
		}
		out.class = classInserted
		out.changes = changes
		return out
	}

	// Update path: the state machine guards in-flight match state.
	if !opts.BypassStateValidation && !models.ValidTransition(current.State, candidate.State) {
		e.logger.Warn("rejected state transition",
			zap.Int64("external_id", dto.ExternalID),
			zap.String("current", string(current.State)),
			zap.String("proposed", string(candidate.State)))
		out.class = classSkipped
		out.reason = SkipInvalidTransition
		return out
	}

	changes := Diff(current, candidate)
	if len(changes) == 0 && relationsEqual(current, candidate) {
		out.class = classSkipped
		out.reason = SkipNoChange
		return out
	}

	if !opts.DryRun {
		applyCandidate(current, candidate)
		current.UpdatedAt = time.Now()
		if err := e.store.UpdateFixture(ctx, current); err != nil {
			out.class = classFailed
			out.err = err
			return out
		}
		// A pure relational re-link writes the row but produces no audit
		// entry: relational drift is not operator-actionable.
		if err := e.appendAudit(ctx, current.ID, opts, changes); err != nil {
			out.class = classFailed
			out.err = err
			return out
		}
	}

	out.class = classUpdated
	out.changes = changes
	return out
}

// appendAudit writes the audit entry for a change set, skipping empty sets.
func (e *Engine) appendAudit(ctx context.Context, fixtureID uint, opts Options, changes ChangeSet) error {
	if len(changes) == 0 {
		return nil
	}

	entry, err := newAuditEntry(fixtureID, opts, changes)
	if err != nil {
		return err
	}
	return e.store.AppendAudit(ctx, entry)
}

// report streams one item outcome to the run tracker. Reporting is best
// effort and disabled for dry runs or when no batch id was supplied.
func (e *Engine) report(ctx context.Context, opts Options, externalID int64, outcome, errMsg string, metadata map[string]any) {
	if e.tracker == nil || opts.BatchID == "" || opts.DryRun {
		return
	}

	itemKey := strconv.FormatInt(externalID, 10)
	errMsg = truncate(errMsg, e.cfg.errorMessageLimit())

	if err := e.tracker.RecordOutcome(ctx, opts.BatchID, itemKey, outcome, errMsg, metadata); err != nil {
		e.logger.Warn("failed to record item outcome",
			zap.String("batch_id", opts.BatchID),
			zap.String("item_key", itemKey),
			zap.Error(err))
	}
}

func successMetadata(out itemOutcome) map[string]any {
	metadata := map[string]any{"name": out.name}
	if len(out.changes) > 0 {
		metadata["changes"] = out.changes
	}
	return metadata
}

// truncate caps tracker error messages so a pathological store error cannot
// blow up the batch_items table.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
