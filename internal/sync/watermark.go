// ABOUTME: Watermark computation and processed-ID checkpoint persistence.
// ABOUTME: Progress state lives in a whole-file JSON document, rewritten atomically.
package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// overlapDefault is subtracted from the newest persisted timestamp to
	// tolerate upstream clock skew and late-arriving records.
	overlapDefault = 24 * time.Hour
	// lookbackDefault bounds the first run against an empty store.
	lookbackDefault = 7 * 24 * time.Hour
)

// progressFile is the on-disk checkpoint shape.
type progressFile struct {
	ProcessedIDs      []string `json:"processed_ids"`
	LastSeenTimestamp int64    `json:"last_seen_timestamp"`
}

// Tracker owns the durable watermark/checkpoint state. The file is read
// fully at load and rewritten fully at each checkpoint; concurrent runs
// would race on it, which is an accepted limitation of the tool.
type Tracker struct {
	path     string
	overlap  time.Duration
	lookback time.Duration
	now      func() time.Time

	processed map[string]struct{}
	lastSeen  int64
}

// NewTracker creates a tracker persisting at path. Zero overlap/lookback
// select the defaults.
func NewTracker(path string, overlap, lookback time.Duration) *Tracker {
	if overlap <= 0 {
		overlap = overlapDefault
	}
	if lookback <= 0 {
		lookback = lookbackDefault
	}
	return &Tracker{
		path:      path,
		overlap:   overlap,
		lookback:  lookback,
		now:       time.Now,
		processed: make(map[string]struct{}),
	}
}

// Load reads the checkpoint file. A missing file is an empty state, not an
// error.
func (t *Tracker) Load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read progress file: %w", err)
	}

	var f progressFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse progress file: %w", err)
	}

	t.processed = make(map[string]struct{}, len(f.ProcessedIDs))
	for _, id := range f.ProcessedIDs {
		t.processed[id] = struct{}{}
	}
	t.lastSeen = f.LastSeenTimestamp
	return nil
}

// ComputeSince returns the inclusive lower bound for the next fetch. With
// persisted data the bound is the max timestamp minus the overlap window;
// otherwise it is the lookback window from now. The bound is advisory: it
// limits query volume, while the store existence check remains the
// authoritative dedup gate.
func (t *Tracker) ComputeSince(persistedMax int64, ok bool) int64 {
	if ok {
		return persistedMax - int64(t.overlap.Seconds())
	}
	return t.now().Unix() - int64(t.lookback.Seconds())
}

// Seen reports whether an ID is in the processed set.
func (t *Tracker) Seen(id string) bool {
	_, ok := t.processed[id]
	return ok
}

// MarkProcessed merges ids into the processed set, advances the last-seen
// timestamp, and rewrites the checkpoint file. Already-present IDs are a
// no-op for the set.
func (t *Tracker) MarkProcessed(ids []string, maxTimestamp int64) error {
	for _, id := range ids {
		t.processed[id] = struct{}{}
	}
	if maxTimestamp > t.lastSeen {
		t.lastSeen = maxTimestamp
	}
	return t.save()
}

// save rewrites the progress file via temp file + rename so a crash never
// leaves a truncated checkpoint behind.
func (t *Tracker) save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0750); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}

	f := progressFile{
		ProcessedIDs:      make([]string, 0, len(t.processed)),
		LastSeenTimestamp: t.lastSeen,
	}
	for id := range t.processed {
		f.ProcessedIDs = append(f.ProcessedIDs, id)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
