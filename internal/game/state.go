package game

import (
	"time"

	"github.com/clickforge/clicker-core/internal/save"
	"github.com/clickforge/clicker-core/internal/upgrade"
)

// UnlimitedRoom is View.WorkerRoom when the worker cap is disabled.
const UnlimitedRoom = -1

// View is a read-only copy of the session for hosts and transports.
type View struct {
	Score                int64         `json:"score"`
	ClickMultiplier      float64       `json:"click_multiplier"`
	AutoClickRate        int           `json:"auto_click_rate"`
	CapacityLimitEnabled bool          `json:"capacity_limit_enabled"`
	WorkerRoom           int           `json:"worker_room"` // -1 when the cap is off
	Upgrades             []UpgradeView `json:"upgrades"`
	Workers              []WorkerView  `json:"workers"`
}

type UpgradeView struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Kind           upgrade.Kind `json:"kind"`
	Owned          int          `json:"owned"`
	Cost           int64        `json:"cost"`
	SingleInstance bool         `json:"single_instance"`
}

type WorkerView struct {
	ID          string `json:"id"`
	TotalBudget int64  `json:"total_budget"`
	PaidSoFar   int64  `json:"paid_so_far"`
	RemainingMs int64  `json:"remaining_ms"`
}

// PurchaseView is the transport shape of a purchase attempt.
type PurchaseView struct {
	Units  int            `json:"units"`
	Cost   int64          `json:"cost"`
	Reason upgrade.Reason `json:"reason"`
	Score  int64          `json:"score"`
}

func NewPurchaseView(res upgrade.PurchaseResult) PurchaseView {
	return PurchaseView{Units: res.Units, Cost: res.Cost, Reason: res.Reason, Score: res.Funds}
}

// State returns a consistent copy of the session.
func (s *Session) State() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	v := View{
		Score:                s.score,
		ClickMultiplier:      s.ledger.ClickMultiplier(),
		AutoClickRate:        s.ledger.AutoClickRate(),
		CapacityLimitEnabled: s.pool.LimitEnabled(),
		WorkerRoom:           s.pool.Room(),
	}
	if !v.CapacityLimitEnabled {
		v.WorkerRoom = UnlimitedRoom
	}
	for _, d := range s.ledger.Catalog().Definitions() {
		owned, _ := s.ledger.Owned(d.ID)
		cost, _ := s.ledger.Cost(d.ID)
		v.Upgrades = append(v.Upgrades, UpgradeView{
			ID:             d.ID,
			Name:           d.Name,
			Kind:           d.Kind,
			Owned:          owned,
			Cost:           cost,
			SingleInstance: d.SingleInstance,
		})
	}
	for _, w := range s.pool.Workers() {
		v.Workers = append(v.Workers, WorkerView{
			ID:          w.ID.String(),
			TotalBudget: w.TotalBudget,
			PaidSoFar:   w.PaidSoFar,
			RemainingMs: w.Remaining(now).Milliseconds(),
		})
	}
	return v
}

// Snapshot captures the session for persistence. The result shares no
// memory with the session, so it may be encoded on another goroutine.
func (s *Session) Snapshot() save.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	return save.Snapshot{
		Version:              save.SchemaVersion,
		SavedAt:              now,
		Score:                s.score,
		Purchased:            s.ledger.Save(),
		Workers:              s.pool.Save(now),
		CapacityLimitEnabled: s.pool.LimitEnabled(),
	}
}

// RestoreReport describes what Restore dropped or granted.
type RestoreReport struct {
	SkippedUpgrades []string `json:"skipped_upgrades,omitempty"`
	SkippedWorkers  int      `json:"skipped_workers"`
	SkippedUnparsed int      `json:"skipped_unparsed"` // dropped by save.Decode
	OfflinePoints   int64    `json:"offline_points"`
}

// Restore replaces the session with snap. Corrupt entries are skipped, not
// fatal. Workers resume with the lifetime they had left. When offline
// earnings are owned, the time since snap.SavedAt pays a share of the
// auto-click rate.
func (s *Session) Restore(snap save.Snapshot) RestoreReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	var rep RestoreReport

	rep.SkippedUpgrades = s.ledger.Load(snap.Purchased)
	rep.SkippedWorkers = s.pool.Load(now, snap.Workers)
	rep.SkippedUnparsed = snap.Skipped
	s.pool.SetLimitEnabled(snap.CapacityLimitEnabled)

	s.score = max(snap.Score, 0)
	s.lastAutoClick = now
	s.lastMiniEvent = now

	if s.owns(upgrade.OfflineEarnings) && !snap.SavedAt.IsZero() {
		rep.OfflinePoints = s.offlineEarnings(now.Sub(snap.SavedAt))
		s.score += rep.OfflinePoints
	}

	if len(rep.SkippedUpgrades) > 0 || rep.SkippedWorkers > 0 || rep.SkippedUnparsed > 0 {
		s.log.Warn("restore skipped corrupt entries",
			"upgrades", rep.SkippedUpgrades, "workers", rep.SkippedWorkers, "unparsed", rep.SkippedUnparsed)
	}
	s.log.Info("session restored", "score", s.score, "workers", s.pool.Count(), "offline_points", rep.OfflinePoints)
	return rep
}

func (s *Session) offlineEarnings(away time.Duration) int64 {
	off := s.bal.Offline
	interval := s.bal.AutoClickInterval
	if away <= 0 || interval <= 0 {
		return 0
	}
	away = min(away, off.MaxOffline)
	ticks := int64(away / interval)
	return ticks * int64(s.ledger.AutoClickRate()) * int64(off.RatePercent) / 100
}
