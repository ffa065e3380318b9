// Package config loads game balance from YAML and normalizes it.
package config

import (
	"time"

	"github.com/clickforge/clicker-core/internal/upgrade"
	"github.com/clickforge/clicker-core/internal/worker"
)

// Default returns the built-in balance.
func Default() Balance {
	return Balance{
		Version:           "builtin",
		ClickPoints:       1,
		AutoClickInterval: time.Second,
		Workers:           worker.DefaultPolicy(),
		MiniEvent: MiniEvent{
			Interval:  2 * time.Minute,
			BudgetMin: 1000,
			BudgetMax: 3000,
			Lifetime:  time.Minute,
		},
		Offline: Offline{
			RatePercent: 50,
			MaxOffline:  8 * time.Hour,
		},
		Autosave: Autosave{
			Interval: 30 * time.Second,
			Path:     "save.json",
		},
		Upgrades: upgrade.DefaultDefinitions(),
	}
}

// Catalog builds the upgrade catalog described by b.
func (b Balance) Catalog() (*upgrade.Catalog, error) {
	return upgrade.NewCatalog(b.Upgrades)
}

// Normalize lays raw over Default. Unset fields keep their default.
func Normalize(raw RawConfig) Balance {
	b := Default()
	if raw.Version != "" {
		b.Version = raw.Version
	}
	if raw.Click.BasePoints != nil {
		b.ClickPoints = *raw.Click.BasePoints
	}
	if raw.AutoClick.IntervalMs != nil {
		b.AutoClickInterval = millis(*raw.AutoClick.IntervalMs)
	}

	w := raw.Workers
	if w.BudgetMin != nil {
		b.Workers.BudgetMin = *w.BudgetMin
	}
	if w.BudgetMax != nil {
		b.Workers.BudgetMax = *w.BudgetMax
	}
	if w.LifetimeMs != nil {
		b.Workers.Lifetime = millis(*w.LifetimeMs)
	}
	if w.MaxCapacity != nil {
		b.Workers.MaxCapacity = *w.MaxCapacity
	}
	if w.LimitEnabled != nil {
		b.Workers.LimitEnabled = *w.LimitEnabled
	}

	if m := raw.MiniEvent; m != nil {
		if m.IntervalMs != nil {
			b.MiniEvent.Interval = millis(*m.IntervalMs)
		}
		if m.BudgetMin != nil {
			b.MiniEvent.BudgetMin = *m.BudgetMin
		}
		if m.BudgetMax != nil {
			b.MiniEvent.BudgetMax = *m.BudgetMax
		}
		if m.LifetimeMs != nil {
			b.MiniEvent.Lifetime = millis(*m.LifetimeMs)
		}
	}
	if o := raw.Offline; o != nil {
		if o.RatePct != nil {
			b.Offline.RatePercent = *o.RatePct
		}
		if o.MaxHours != nil {
			b.Offline.MaxOffline = time.Duration(*o.MaxHours) * time.Hour
		}
	}
	if a := raw.Autosave; a != nil {
		if a.IntervalMs != nil {
			b.Autosave.Interval = millis(*a.IntervalMs)
		}
		if a.Path != "" {
			b.Autosave.Path = a.Path
		}
	}

	if len(raw.Upgrades) > 0 {
		b.Upgrades = make([]upgrade.Definition, 0, len(raw.Upgrades))
		for _, u := range raw.Upgrades {
			b.Upgrades = append(b.Upgrades, upgrade.Definition{
				ID:             u.ID,
				Name:           u.Name,
				Kind:           upgrade.Kind(u.Kind),
				BaseCost:       u.BaseCost,
				PriceIncrease:  u.PriceIncrease,
				FlatBonus:      u.FlatBonus,
				BonusIncrement: u.BonusIncrement,
				SingleInstance: u.SingleInstance,
			})
		}
	}
	return b
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
