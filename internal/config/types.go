package config

import (
	"time"

	"github.com/clickforge/clicker-core/internal/upgrade"
	"github.com/clickforge/clicker-core/internal/worker"
)

// Raw config loaded from YAML. Pointer fields distinguish "unset" from zero
// so a profile only overrides what it names.
type RawConfig struct {
	Version   string         `yaml:"version"`
	Click     ClickCfg       `yaml:"click"`
	AutoClick AutoClickCfg   `yaml:"auto_click"`
	Workers   WorkersCfg     `yaml:"workers"`
	MiniEvent *MiniEventCfg  `yaml:"mini_event,omitempty"`
	Offline   *OfflineCfg    `yaml:"offline,omitempty"`
	Autosave  *AutosaveCfg   `yaml:"autosave,omitempty"`
	Upgrades  []UpgradeCfg   `yaml:"upgrades,omitempty"` // replaces the whole catalog when present
	Notes     string         `yaml:"notes,omitempty"`
}

type ClickCfg struct {
	BasePoints *int64 `yaml:"base_points"`
}

type AutoClickCfg struct {
	IntervalMs *int64 `yaml:"interval_ms"`
}

type WorkersCfg struct {
	BudgetMin    *int64 `yaml:"budget_min"`
	BudgetMax    *int64 `yaml:"budget_max"`
	LifetimeMs   *int64 `yaml:"lifetime_ms"`
	MaxCapacity  *int   `yaml:"max_capacity"`
	LimitEnabled *bool  `yaml:"limit_enabled"`
}

type MiniEventCfg struct {
	IntervalMs *int64 `yaml:"interval_ms"`
	BudgetMin  *int64 `yaml:"budget_min"`
	BudgetMax  *int64 `yaml:"budget_max"`
	LifetimeMs *int64 `yaml:"lifetime_ms"`
}

type OfflineCfg struct {
	RatePct  *int `yaml:"rate_pct"`
	MaxHours *int `yaml:"max_hours"`
}

type AutosaveCfg struct {
	IntervalMs *int64 `yaml:"interval_ms"`
	Path       string `yaml:"path"`
}

type UpgradeCfg struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Kind           string  `yaml:"kind"`
	BaseCost       int64   `yaml:"base_cost"`
	PriceIncrease  int64   `yaml:"price_increase"`
	FlatBonus      float64 `yaml:"flat_bonus"`
	BonusIncrement float64 `yaml:"bonus_increment"`
	SingleInstance bool    `yaml:"single_instance"`
}

// Balance is the normalized configuration consumed by the game session.
type Balance struct {
	Version           string
	ClickPoints       int64
	AutoClickInterval time.Duration
	Workers           worker.Policy
	MiniEvent         MiniEvent
	Offline           Offline
	Autosave          Autosave
	Upgrades          []upgrade.Definition
}

// MiniEvent spawns a bonus worker on a fixed interval while the mini_event
// upgrade is owned.
type MiniEvent struct {
	Interval  time.Duration
	BudgetMin int64
	BudgetMax int64
	Lifetime  time.Duration
}

// Offline pays a share of the auto-click rate for time spent away.
type Offline struct {
	RatePercent int
	MaxOffline  time.Duration
}

type Autosave struct {
	Interval time.Duration
	Path     string
}
