// Package sim plays scripted sessions against a balance to estimate how an
// economy paces out.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clickforge/clicker-core/internal/clock"
	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/game"
	"github.com/clickforge/clicker-core/internal/upgrade"
	"github.com/clickforge/clicker-core/internal/worker"
)

// DefaultPriority is the purchase order of the default scripted player.
var DefaultPriority = []string{
	upgrade.AutoHire,
	upgrade.Worker,
	upgrade.AutoClick,
	upgrade.Double,
	upgrade.SuperClick,
	upgrade.MiniEvent,
}

// Strategy scripts the simulated player. Every step it clicks, ticks, then
// walks Priority buying as many of each upgrade as it can afford.
type Strategy struct {
	ClicksPerSecond float64
	Priority        []string
	Step            time.Duration // default 1s
}

// Params describes one Monte Carlo run.
type Params struct {
	Balance  config.Balance
	Strategy Strategy
	Duration time.Duration
	Trials   int
	Seed     uint64 // trial i is seeded with Seed+i
}

// Result holds the per-trial metrics.
type Result struct {
	Trials int   `json:"trials"`
	Score  Stats `json:"score"` // final score
	Hired  Stats `json:"hired"` // workers hired, by purchase or auto-hire
	Earned Stats `json:"earned"`
}

var errNoDuration = errors.New("sim: duration must be > 0")

var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type trial struct {
	score, hired, earned int64
}

func playOne(p Params, seed uint64) (trial, error) {
	clk := clock.NewFakeClock(epoch)
	s, err := game.NewSession(p.Balance, clk, game.WithRNG(worker.NewSeededRNG(seed)))
	if err != nil {
		return trial{}, err
	}

	step := p.Strategy.Step
	if step <= 0 {
		step = time.Second
	}
	clicks := int(p.Strategy.ClicksPerSecond * step.Seconds())

	var out trial
	for elapsed := time.Duration(0); elapsed < p.Duration; elapsed += step {
		clk.Advance(step)
		for range clicks {
			out.earned += s.Click().Points
		}
		rep := s.Tick()
		out.earned += rep.AutoClick + rep.Workers
		out.hired += int64(rep.Hired)

		for _, id := range p.Strategy.Priority {
			res, err := s.Purchase(id, -1)
			if err != nil {
				return trial{}, fmt.Errorf("buy %s: %w", id, err)
			}
			if res.SpawnWorker {
				out.hired += int64(res.Units)
			}
		}
	}
	out.score = s.Score()
	return out, nil
}

// Run plays p.Trials sessions and summarizes them. Runs are deterministic
// for a given Params.
func Run(ctx context.Context, p Params) (Result, error) {
	if p.Trials <= 0 {
		return Result{}, nil
	}
	if p.Duration <= 0 {
		return Result{}, errNoDuration
	}
	if p.Strategy.Priority == nil {
		cat, err := p.Balance.Catalog()
		if err != nil {
			return Result{}, err
		}
		// custom catalogs may lack some of the defaults
		for _, id := range DefaultPriority {
			if cat.Has(id) {
				p.Strategy.Priority = append(p.Strategy.Priority, id)
			}
		}
	}

	score := make([]int64, p.Trials)
	hired := make([]int64, p.Trials)
	earned := make([]int64, p.Trials)
	for i := range p.Trials {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		t, err := playOne(p, p.Seed+uint64(i))
		if err != nil {
			return Result{}, err
		}
		score[i], hired[i], earned[i] = t.score, t.hired, t.earned
	}
	return Result{
		Trials: p.Trials,
		Score:  calcStats(score),
		Hired:  calcStats(hired),
		Earned: calcStats(earned),
	}, nil
}
