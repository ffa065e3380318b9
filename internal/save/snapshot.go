// Package save persists game sessions as versioned JSON documents.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clickforge/clicker-core/internal/worker"
)

const SchemaVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported save version")

// Snapshot is everything needed to resume a session.
type Snapshot struct {
	Version              int            `json:"version"`
	SavedAt              time.Time      `json:"saved_at"`
	Score                int64          `json:"score"`
	Purchased            map[string]int `json:"purchased"`
	Workers              []worker.State `json:"workers"`
	CapacityLimitEnabled bool           `json:"capacity_limit_enabled"`

	// Skipped counts entries dropped while decoding.
	Skipped int `json:"-"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Purchased != nil {
		out.Purchased = make(map[string]int, len(s.Purchased))
		for k, v := range s.Purchased {
			out.Purchased[k] = v
		}
	}
	out.Workers = append([]worker.State(nil), s.Workers...)
	return out
}

// Encode renders s as indented JSON stamped with the current schema version.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = SchemaVersion
	if s.Purchased == nil {
		s.Purchased = map[string]int{}
	}
	if s.Workers == nil {
		s.Workers = []worker.State{}
	}
	return json.MarshalIndent(s, "", "  ")
}

// wire mirrors Snapshot but defers per-entry decoding so one bad entry does
// not cost the whole save.
type wire struct {
	Version              int                        `json:"version"`
	SavedAt              time.Time                  `json:"saved_at"`
	Score                int64                      `json:"score"`
	Purchased            map[string]json.RawMessage `json:"purchased"`
	Workers              []json.RawMessage          `json:"workers"`
	CapacityLimitEnabled *bool                      `json:"capacity_limit_enabled"`
}

type wireWorker struct {
	ID          string `json:"id"`
	TotalBudget *int64 `json:"total_budget"`
	PaidSoFar   *int64 `json:"paid_so_far"`
	LifetimeMs  *int64 `json:"lifetime_ms"`
	RemainingMs *int64 `json:"remaining_ms"`
}

// Decode parses a save document. Purchase counts that are not integers and
// worker records with missing or mistyped fields are skipped and counted in
// Snapshot.Skipped. Range checks are left to the ledger and pool.
func Decode(b []byte) (Snapshot, error) {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return Snapshot{}, fmt.Errorf("decode save: %w", err)
	}
	if w.Version != SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, w.Version)
	}

	s := Snapshot{
		Version:              w.Version,
		SavedAt:              w.SavedAt,
		Score:                w.Score,
		Purchased:            make(map[string]int, len(w.Purchased)),
		CapacityLimitEnabled: true,
	}
	if w.CapacityLimitEnabled != nil {
		s.CapacityLimitEnabled = *w.CapacityLimitEnabled
	}

	for id, raw := range w.Purchased {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			s.Skipped++
			continue
		}
		s.Purchased[id] = n
	}

	for _, raw := range w.Workers {
		var ww wireWorker
		if err := json.Unmarshal(raw, &ww); err != nil {
			s.Skipped++
			continue
		}
		if ww.TotalBudget == nil || ww.PaidSoFar == nil || ww.LifetimeMs == nil || ww.RemainingMs == nil {
			s.Skipped++
			continue
		}
		s.Workers = append(s.Workers, worker.State{
			ID:          ww.ID,
			TotalBudget: *ww.TotalBudget,
			PaidSoFar:   *ww.PaidSoFar,
			LifetimeMs:  *ww.LifetimeMs,
			RemainingMs: *ww.RemainingMs,
		})
	}
	return s, nil
}
