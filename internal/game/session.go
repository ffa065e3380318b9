// Package game hosts one player's economy: it owns the score and drives the
// upgrade ledger and worker pool from a clock.
package game

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clickforge/clicker-core/internal/achievement"
	"github.com/clickforge/clicker-core/internal/clock"
	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/upgrade"
	"github.com/clickforge/clicker-core/internal/worker"
)

// Session is safe for concurrent use. Ledger and pool are only touched with
// mu held.
type Session struct {
	mu     sync.Mutex
	bal    config.Balance
	clk    clock.Clock
	log    *slog.Logger
	ledger *upgrade.Ledger
	pool   *worker.Pool

	score         int64
	lastAutoClick time.Time
	lastMiniEvent time.Time
}

type options struct {
	rng  worker.RandomSource
	sink achievement.Sink
	log  *slog.Logger
}

type Option func(*options)

func WithRNG(rng worker.RandomSource) Option {
	return func(o *options) { o.rng = rng }
}

func WithSink(s achievement.Sink) Option {
	return func(o *options) { o.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// NewSession starts an empty session. It fails when the balance does not
// pass config.Validate.
func NewSession(bal config.Balance, clk clock.Clock, opts ...Option) (*Session, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}

	if err := config.Validate(bal); err != nil {
		return nil, err
	}
	cat, err := bal.Catalog()
	if err != nil {
		return nil, err
	}
	pool := worker.NewPool(bal.Workers, o.rng, worker.WithLogger(o.log))
	now := clk.Now()

	return &Session{
		bal:           bal,
		clk:           clk,
		log:           o.log,
		ledger:        upgrade.NewLedger(cat, upgrade.WithCapacity(pool), upgrade.WithSink(o.sink)),
		pool:          pool,
		lastAutoClick: now,
		lastMiniEvent: now,
	}, nil
}

func (s *Session) Balance() config.Balance { return s.bal }

func (s *Session) Score() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// ClickResult reports a manual click.
type ClickResult struct {
	Points int64 `json:"points"`
	Score  int64 `json:"score"`
}

// Click earns the base click value times the current multiplier, rounded
// down.
func (s *Session) Click() ClickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := decimal.NewFromInt(s.bal.ClickPoints).
		Mul(s.ledger.ClickMultiplierDecimal()).
		Floor().
		IntPart()
	s.score += points
	return ClickResult{Points: points, Score: s.score}
}

// Purchase buys qty units of id with the current score. A negative qty buys
// as many as the score allows. Successful worker hires are spawned before
// returning.
func (s *Session) Purchase(id string, qty int) (upgrade.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 0 {
		n, err := s.ledger.MaxAffordable(id, s.score)
		if err != nil {
			return upgrade.PurchaseResult{Funds: s.score}, err
		}
		// nothing affordable: still attempt one so the result says why
		qty = max(n, 1)
	}

	now := s.clk.Now()
	hadAutoClick := s.ledger.AutoClickEnabled()
	hadMiniEvent := s.owns(upgrade.MiniEvent)

	res, err := s.ledger.TryPurchase(id, qty, s.score)
	if err != nil {
		return res, err
	}
	if res.Units == 0 {
		s.log.Debug("purchase declined", "id", id, "qty", qty, "reason", res.Reason)
		return res, nil
	}

	s.score = res.Funds
	if res.SpawnWorker {
		s.pool.Spawn(now, res.Units)
	}
	// timers start at purchase, never pay a backlog
	if !hadAutoClick && s.ledger.AutoClickEnabled() {
		s.lastAutoClick = now
	}
	if !hadMiniEvent && s.owns(upgrade.MiniEvent) {
		s.lastMiniEvent = now
	}
	s.log.Debug("purchase", "id", id, "units", res.Units, "cost", res.Cost, "score", s.score)
	return res, nil
}

// owns reports whether id is in the catalog and at least one unit is owned.
// Catalogs without a feature id simply never enable it.
func (s *Session) owns(id string) bool {
	n, err := s.ledger.Owned(id)
	return err == nil && n > 0
}

// TickReport breaks down the points earned by one Tick.
type TickReport struct {
	AutoClick    int64 `json:"auto_click"`
	Workers      int64 `json:"workers"`
	Hired        int   `json:"hired"`
	EventWorkers int   `json:"event_workers"`
	Score        int64 `json:"score"`
}

// Tick settles everything that accrues with time up to the clock's now.
// Skipped ticks are harmless: auto-click and worker payouts are measured
// against absolute checkpoints.
func (s *Session) Tick() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	var rep TickReport

	rep.AutoClick = s.settleAutoClick(now)
	rep.Workers = s.pool.Update(now)
	s.score += rep.AutoClick + rep.Workers

	if s.owns(upgrade.MiniEvent) && now.Sub(s.lastMiniEvent) >= s.bal.MiniEvent.Interval {
		ev := s.bal.MiniEvent
		rep.EventWorkers = len(s.pool.SpawnCustom(now, 1, ev.BudgetMin, ev.BudgetMax, ev.Lifetime))
		s.lastMiniEvent = now
	}

	if s.owns(upgrade.AutoHire) && s.pool.Room() > 0 {
		res, err := s.ledger.TryPurchase(upgrade.Worker, 1, s.score)
		if err == nil && res.Units > 0 {
			s.score = res.Funds
			rep.Hired = len(s.pool.Spawn(now, res.Units))
		}
	}

	rep.Score = s.score
	return rep
}

func (s *Session) settleAutoClick(now time.Time) int64 {
	rate := s.ledger.AutoClickRate()
	interval := s.bal.AutoClickInterval
	if rate == 0 || interval <= 0 {
		s.lastAutoClick = now
		return 0
	}
	n := now.Sub(s.lastAutoClick) / interval
	if n <= 0 {
		return 0
	}
	s.lastAutoClick = s.lastAutoClick.Add(n * interval)
	return int64(n) * int64(rate)
}

// SetCapacityLimit toggles the worker hiring cap.
func (s *Session) SetCapacityLimit(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.SetLimitEnabled(on)
}

// Reset wipes all progress: score, purchases and live workers.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	s.score = 0
	s.ledger.Reset()
	s.pool.Clear()
	s.lastAutoClick = now
	s.lastMiniEvent = now
	s.log.Info("session reset")
}
