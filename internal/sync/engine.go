// ABOUTME: Sync engine driving pagination, dedup filtering, and persistence.
// ABOUTME: Single sequential worker; item failures are counted, never retried.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harperreed/pelosync/internal/models"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Upstream is the paginated, authenticated Peloton API surface the engine
// drives. Implemented by peloton.Client; faked in tests.
type Upstream interface {
	Authenticate(ctx context.Context) error
	ListWorkouts(ctx context.Context, page, pageSize int) ([]models.WorkoutSummary, bool, error)
	FetchDetail(ctx context.Context, id string) (*models.WorkoutDetail, error)
}

// Store is the persistence surface the engine writes to. Implemented by
// storage.DB.
type Store interface {
	WorkoutExists(id string) (bool, error)
	MaxScheduledStart() (int64, bool, error)
	SaveDetail(detail *models.WorkoutDetail) error
	RecordRun(run *models.SyncSummary) error
}

// Options tunes one engine instance.
type Options struct {
	PageSize  int
	BackupDir string
}

// Engine orchestrates one incremental sync run: page through summaries,
// skip what the store already holds, fetch and persist the rest, and
// checkpoint after every page.
type Engine struct {
	upstream Upstream
	store    Store
	tracker  *Tracker
	opts     Options
	log      zerolog.Logger
}

// NewEngine wires an engine from its collaborators.
func NewEngine(upstream Upstream, store Store, tracker *Tracker, opts Options, log zerolog.Logger) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	return &Engine{
		upstream: upstream,
		store:    store,
		tracker:  tracker,
		opts:     opts,
		log:      log.With().Str("component", "sync").Logger(),
	}
}

// Run executes one sync run to completion and returns its summary.
// Authentication failure is fatal; every per-item failure is counted and
// skipped. A returned error means the run itself did not complete.
func (e *Engine) Run(ctx context.Context) (*models.SyncSummary, error) {
	summary := models.NewSyncSummary()

	if err := e.upstream.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := e.tracker.Load(); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	maxTS, hasData, err := e.store.MaxScheduledStart()
	if err != nil {
		return nil, fmt.Errorf("read store watermark: %w", err)
	}
	since := e.tracker.ComputeSince(maxTS, hasData)
	e.log.Info().Int64("since", since).Bool("store_has_data", hasData).Msg("starting sync")

	for page := 0; ; page++ {
		summaries, hasMore, err := e.upstream.ListWorkouts(ctx, page, e.opts.PageSize)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			// A listing failure ends the run early but keeps what was
			// already committed; the checkpoint state makes the next
			// invocation resume correctly.
			e.log.Warn().Err(err).Int("page", page).Msg("listing failed, stopping")
			break
		}
		if len(summaries) == 0 {
			e.log.Info().Int("page", page).Msg("no more workouts available")
			break
		}
		summary.Pages++

		fresh, pageNewest := e.filterPage(summaries, summary)
		if len(fresh) == 0 {
			// A full page with zero unseen items means we are caught up,
			// regardless of what hasMore claims.
			e.log.Info().Int("page", page).Int("existing", len(summaries)).Msg("page fully ingested already, stopping")
			break
		}

		processed := e.processItems(ctx, fresh, summary)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if len(processed) > 0 {
			if err := e.checkpoint(summary.RunID.String(), page, processed); err != nil {
				return nil, fmt.Errorf("checkpoint page %d: %w", page, err)
			}
		}

		if !hasMore {
			e.log.Info().Int("page", page).Msg("short page, end of upstream data")
			break
		}
		if pageNewest < since {
			// Everything from here on predates the watermark; no reason to
			// keep paying for pages.
			e.log.Info().Int("page", page).Int64("newest", pageNewest).Msg("page older than watermark, stopping")
			break
		}
	}

	summary.FinishedAt = time.Now()
	if err := e.store.RecordRun(summary); err != nil {
		e.log.Warn().Err(err).Msg("failed to record run summary")
	}

	e.log.Info().
		Int("pages", summary.Pages).
		Int("new", summary.New).
		Int("existing", summary.Existing).
		Int("failed", summary.Failed).
		Msg("sync complete")
	return summary, nil
}

// filterPage splits a page into genuinely new summaries, counting existing
// and malformed entries. The checkpoint ID set is consulted first as a
// cheap pre-check; the store existence check is authoritative.
func (e *Engine) filterPage(summaries []models.WorkoutSummary, summary *models.SyncSummary) ([]models.WorkoutSummary, int64) {
	var fresh []models.WorkoutSummary
	var newest int64

	for _, s := range summaries {
		if s.ScheduledStart > newest {
			newest = s.ScheduledStart
		}
		if s.ID == "" {
			summary.Failed++
			e.log.Warn().Str("title", s.Title).Msg("summary missing id, skipping")
			continue
		}
		if e.tracker.Seen(s.ID) {
			summary.Existing++
			continue
		}
		exists, err := e.store.WorkoutExists(s.ID)
		if err != nil {
			summary.Failed++
			e.log.Warn().Err(err).Str("id", s.ID).Msg("existence check failed, skipping")
			continue
		}
		if exists {
			summary.Existing++
			continue
		}
		fresh = append(fresh, s)
	}
	return fresh, newest
}

// processItems detail-fetches and persists each new summary in page order.
// Failures increment the failed counter and move on; only context
// cancellation stops the loop.
func (e *Engine) processItems(ctx context.Context, fresh []models.WorkoutSummary, summary *models.SyncSummary) []models.WorkoutSummary {
	var processed []models.WorkoutSummary

	for _, s := range fresh {
		if ctx.Err() != nil {
			return processed
		}

		detail, err := e.upstream.FetchDetail(ctx, s.ID)
		if err != nil || detail == nil || detail.ID == "" {
			summary.Failed++
			e.log.Warn().Err(err).Str("id", s.ID).Msg("detail fetch failed, skipping")
			continue
		}

		if err := e.store.SaveDetail(detail); err != nil {
			summary.Failed++
			e.log.Warn().Err(err).Str("id", s.ID).Msg("persist failed, skipping")
			continue
		}

		summary.New++
		processed = append(processed, s)
		e.log.Debug().Str("id", s.ID).Str("title", detail.Title).Msg("workout saved")
	}
	return processed
}

// checkpoint snapshots the processed batch to the backup directory and
// merges its IDs into the durable checkpoint file.
func (e *Engine) checkpoint(runID string, page int, processed []models.WorkoutSummary) error {
	ids := make([]string, 0, len(processed))
	var maxTS int64
	for _, s := range processed {
		ids = append(ids, s.ID)
		if s.ScheduledStart > maxTS {
			maxTS = s.ScheduledStart
		}
	}

	if err := e.writeSnapshot(runID, page, processed); err != nil {
		// Snapshots are an audit trail, not correctness state.
		e.log.Warn().Err(err).Msg("failed to write batch snapshot")
	}

	return e.tracker.MarkProcessed(ids, maxTS)
}

// batchSnapshot is the JSON shape of one per-page backup snapshot.
type batchSnapshot struct {
	RunID     string                  `json:"run_id"`
	Page      int                     `json:"page"`
	WrittenAt time.Time               `json:"written_at"`
	Workouts  []models.WorkoutSummary `json:"workouts"`
}

func (e *Engine) writeSnapshot(runID string, page int, processed []models.WorkoutSummary) error {
	if e.opts.BackupDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.opts.BackupDir, 0750); err != nil {
		return err
	}

	snap := batchSnapshot{
		RunID:     runID,
		Page:      page,
		WrittenAt: time.Now(),
		Workouts:  processed,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("batch_%s.json", ulid.Make().String())
	return os.WriteFile(filepath.Join(e.opts.BackupDir, name), data, 0600)
}
