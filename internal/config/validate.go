package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.Click.BasePoints != nil && *cfg.Click.BasePoints <= 0 {
		errs = append(errs, "click.base_points must be >= 1")
	}
	if cfg.AutoClick.IntervalMs != nil && *cfg.AutoClick.IntervalMs <= 0 {
		errs = append(errs, "auto_click.interval_ms must be > 0")
	}

	// workers
	w := cfg.Workers
	if w.BudgetMin != nil && *w.BudgetMin <= 0 {
		errs = append(errs, "workers.budget_min must be > 0")
	}
	if w.BudgetMin != nil && w.BudgetMax != nil && *w.BudgetMax < *w.BudgetMin {
		errs = append(errs, "workers.budget_max must be >= budget_min")
	}
	if w.LifetimeMs != nil && *w.LifetimeMs <= 0 {
		errs = append(errs, "workers.lifetime_ms must be > 0")
	}
	if w.MaxCapacity != nil && *w.MaxCapacity <= 0 {
		errs = append(errs, "workers.max_capacity must be >= 1")
	}

	// mini event
	if m := cfg.MiniEvent; m != nil {
		if m.IntervalMs != nil && *m.IntervalMs <= 0 {
			errs = append(errs, "mini_event.interval_ms must be > 0")
		}
		if m.BudgetMin != nil && *m.BudgetMin <= 0 {
			errs = append(errs, "mini_event.budget_min must be > 0")
		}
		if m.BudgetMin != nil && m.BudgetMax != nil && *m.BudgetMax < *m.BudgetMin {
			errs = append(errs, "mini_event.budget_max must be >= budget_min")
		}
		if m.LifetimeMs != nil && *m.LifetimeMs <= 0 {
			errs = append(errs, "mini_event.lifetime_ms must be > 0")
		}
	}

	// offline
	if o := cfg.Offline; o != nil {
		if o.RatePct != nil && (*o.RatePct < 0 || *o.RatePct > 100) {
			errs = append(errs, "offline.rate_pct must be in [0,100]")
		}
		if o.MaxHours != nil && *o.MaxHours < 0 {
			errs = append(errs, "offline.max_hours must be >= 0")
		}
	}

	if a := cfg.Autosave; a != nil && a.IntervalMs != nil && *a.IntervalMs <= 0 {
		errs = append(errs, "autosave.interval_ms must be > 0")
	}

	// upgrades: structural checks live in upgrade.NewCatalog
	for i, u := range cfg.Upgrades {
		if u.Name == "" {
			errs = append(errs, fmt.Sprintf("upgrades[%d].name must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a normalized Balance, including constraints that only
// hold once default and profile values are combined.
func Validate(b Balance) error {
	var errs []string
	if b.ClickPoints < 1 {
		errs = append(errs, "click.base_points must be >= 1")
	}
	if b.AutoClickInterval < time.Millisecond {
		errs = append(errs, "auto_click.interval_ms must be > 0")
	}

	w := b.Workers
	if w.BudgetMin <= 0 {
		errs = append(errs, "workers.budget_min must be > 0")
	}
	if w.BudgetMax < w.BudgetMin {
		errs = append(errs, "workers.budget_max must be >= budget_min")
	}
	if w.Lifetime < time.Millisecond {
		errs = append(errs, "workers.lifetime_ms must be > 0")
	}
	if w.MaxCapacity < 1 {
		errs = append(errs, "workers.max_capacity must be >= 1")
	}

	m := b.MiniEvent
	if m.Interval < time.Millisecond {
		errs = append(errs, "mini_event.interval_ms must be > 0")
	}
	if m.BudgetMin <= 0 {
		errs = append(errs, "mini_event.budget_min must be > 0")
	}
	if m.BudgetMax < m.BudgetMin {
		errs = append(errs, "mini_event.budget_max must be >= budget_min")
	}
	if m.Lifetime < time.Millisecond {
		errs = append(errs, "mini_event.lifetime_ms must be > 0")
	}

	if b.Offline.RatePercent < 0 || b.Offline.RatePercent > 100 {
		errs = append(errs, "offline.rate_pct must be in [0,100]")
	}
	if b.Offline.MaxOffline < 0 {
		errs = append(errs, "offline.max_hours must be >= 0")
	}
	if b.Autosave.Interval < time.Millisecond {
		errs = append(errs, "autosave.interval_ms must be > 0")
	}
	if _, err := b.Catalog(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
