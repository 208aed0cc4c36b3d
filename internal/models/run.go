// ABOUTME: SyncSummary model recording the outcome of one sync run.
// ABOUTME: One row per run is persisted for inspection and resumption audits.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncSummary reports what a single sync run did.
type SyncSummary struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pages      int       `json:"pages"`
	New        int       `json:"new"`
	Existing   int       `json:"existing"`
	Failed     int       `json:"failed"`
}

// NewSyncSummary starts a summary for a fresh run.
func NewSyncSummary() *SyncSummary {
	return &SyncSummary{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
}

// Seen is the total number of summaries inspected this run.
func (s *SyncSummary) Seen() int {
	return s.New + s.Existing + s.Failed
}
