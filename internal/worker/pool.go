package worker

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxCapacity = 10

// Policy controls how workers are hired.
type Policy struct {
	BudgetMin    int64         // smallest total budget, inclusive
	BudgetMax    int64         // largest total budget, inclusive
	Lifetime     time.Duration // lifespan of a hired worker
	MaxCapacity  int           // live worker cap when LimitEnabled
	LimitEnabled bool
}

func DefaultPolicy() Policy {
	return Policy{
		BudgetMin:    100,
		BudgetMax:    1000,
		Lifetime:     30 * time.Second,
		MaxCapacity:  DefaultMaxCapacity,
		LimitEnabled: true,
	}
}

// Pool owns the live workers and reports their payouts in aggregate.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	policy  Policy
	rng     RandomSource
	workers []SimState
	log     *slog.Logger
}

type Option func(*Pool)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPool creates an empty pool. A nil rng falls back to DefaultRNG.
func NewPool(policy Policy, rng RandomSource, opts ...Option) *Pool {
	if rng == nil {
		rng = DefaultRNG()
	}
	if policy.MaxCapacity <= 0 {
		policy.MaxCapacity = DefaultMaxCapacity
	}
	p := &Pool{
		policy: policy,
		rng:    rng,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Policy() Policy { return p.policy }

// Count returns the number of live workers.
func (p *Pool) Count() int { return len(p.workers) }

// Room returns how many more workers fit. Without a limit it is unbounded.
func (p *Pool) Room() int {
	if !p.policy.LimitEnabled {
		return math.MaxInt
	}
	return max(0, p.policy.MaxCapacity-len(p.workers))
}

func (p *Pool) LimitEnabled() bool { return p.policy.LimitEnabled }

func (p *Pool) SetLimitEnabled(on bool) { p.policy.LimitEnabled = on }

// Spawn hires up to n workers under the pool policy and returns their ids.
func (p *Pool) Spawn(now time.Time, n int) []uuid.UUID {
	return p.SpawnCustom(now, n, p.policy.BudgetMin, p.policy.BudgetMax, p.policy.Lifetime)
}

// SpawnCustom hires up to n workers with budgets drawn uniformly from
// [lo, hi] and the given lifetime. The count is clamped to Room.
func (p *Pool) SpawnCustom(now time.Time, n int, lo, hi int64, lifetime time.Duration) []uuid.UUID {
	n = min(n, p.Room())
	if n <= 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, n)
	for range n {
		w := SimState{
			ID:          uuid.New(),
			TotalBudget: UniformInt(p.rng, lo, hi),
			CreatedAt:   now,
			Lifetime:    lifetime,
		}
		p.workers = append(p.workers, w)
		ids = append(ids, w.ID)
	}
	return ids
}

// Update advances every worker to now, drops the ones that expired after
// paying their remainder, and returns the points earned in total.
func (p *Pool) Update(now time.Time) int64 {
	var total int64
	kept := p.workers[:0]
	for i := range p.workers {
		w := p.workers[i]
		earned, expired := w.advance(now)
		total += earned
		if expired {
			p.log.Debug("worker expired", "id", w.ID, "budget", w.TotalBudget)
			continue
		}
		kept = append(kept, w)
	}
	clear(p.workers[len(kept):])
	p.workers = kept
	return total
}

// Workers returns a copy of the live workers in hire order.
func (p *Pool) Workers() []SimState {
	return append([]SimState(nil), p.workers...)
}

// Clear dismisses every worker without paying them.
func (p *Pool) Clear() {
	p.workers = nil
}

// State is the persisted form of a worker. Lifetime is stored as what was
// left at save time so a reload never grants a fresh lifespan.
type State struct {
	ID          string `json:"id"`
	TotalBudget int64  `json:"total_budget"`
	PaidSoFar   int64  `json:"paid_so_far"`
	LifetimeMs  int64  `json:"lifetime_ms"`
	RemainingMs int64  `json:"remaining_ms"`
}

// Save exports every live worker as seen at now.
func (p *Pool) Save(now time.Time) []State {
	out := make([]State, 0, len(p.workers))
	for _, w := range p.workers {
		out = append(out, State{
			ID:          w.ID.String(),
			TotalBudget: w.TotalBudget,
			PaidSoFar:   w.PaidSoFar,
			LifetimeMs:  w.Lifetime.Milliseconds(),
			RemainingMs: w.Remaining(now).Milliseconds(),
		})
	}
	return out
}

// Load replaces the live workers with states, resuming each with its
// remaining lifetime counted from now. Malformed records are skipped and
// counted; an empty id is replaced by a fresh one.
func (p *Pool) Load(now time.Time, states []State) (skipped int) {
	p.workers = make([]SimState, 0, len(states))
	for _, s := range states {
		w, ok := fromState(now, s)
		if !ok {
			skipped++
			continue
		}
		p.workers = append(p.workers, w)
	}
	if skipped > 0 {
		p.log.Warn("skipped malformed workers", "count", skipped)
	}
	return skipped
}

func fromState(now time.Time, s State) (SimState, bool) {
	if s.TotalBudget <= 0 || s.PaidSoFar < 0 || s.PaidSoFar > s.TotalBudget {
		return SimState{}, false
	}
	if s.LifetimeMs <= 0 || s.RemainingMs < 0 || s.RemainingMs > s.LifetimeMs {
		return SimState{}, false
	}
	id := uuid.New()
	if s.ID != "" {
		parsed, err := uuid.Parse(s.ID)
		if err != nil {
			return SimState{}, false
		}
		id = parsed
	}
	lifetime := time.Duration(s.LifetimeMs) * time.Millisecond
	elapsed := time.Duration(s.LifetimeMs-s.RemainingMs) * time.Millisecond
	return SimState{
		ID:          id,
		TotalBudget: s.TotalBudget,
		PaidSoFar:   s.PaidSoFar,
		CreatedAt:   now.Add(-elapsed),
		Lifetime:    lifetime,
	}, true
}
