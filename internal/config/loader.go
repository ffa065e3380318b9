package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigDir = "CLICKER_CONFIG_DIR"
	EnvProfile   = "CLICKER_PROFILE"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/clicker/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig without normalization.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %q: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and normalizes the balance for profile.
func (l *Loader) Load(profile string) (Balance, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Balance{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Balance{}, err
	}
	b := Normalize(raw)
	if err := Validate(b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// Invalidate clears the loader's cache so the next load rereads disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// FromEnv loads the balance named by CLICKER_CONFIG_DIR and
// CLICKER_PROFILE. Without a directory the built-in balance is returned.
func FromEnv() (Balance, error) {
	dir := os.Getenv(EnvConfigDir)
	if dir == "" {
		return Default(), nil
	}
	return NewLoader(dir).Load(os.Getenv(EnvProfile))
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-nil.
// The upgrade list is replaced wholesale when 'b' provides one.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	override(&out.Click.BasePoints, b.Click.BasePoints)
	override(&out.AutoClick.IntervalMs, b.AutoClick.IntervalMs)

	// workers
	override(&out.Workers.BudgetMin, b.Workers.BudgetMin)
	override(&out.Workers.BudgetMax, b.Workers.BudgetMax)
	override(&out.Workers.LifetimeMs, b.Workers.LifetimeMs)
	override(&out.Workers.MaxCapacity, b.Workers.MaxCapacity)
	override(&out.Workers.LimitEnabled, b.Workers.LimitEnabled)

	// mini event
	switch {
	case out.MiniEvent == nil && b.MiniEvent != nil:
		c := *b.MiniEvent
		out.MiniEvent = &c
	case out.MiniEvent != nil && b.MiniEvent != nil:
		c := *out.MiniEvent
		override(&c.IntervalMs, b.MiniEvent.IntervalMs)
		override(&c.BudgetMin, b.MiniEvent.BudgetMin)
		override(&c.BudgetMax, b.MiniEvent.BudgetMax)
		override(&c.LifetimeMs, b.MiniEvent.LifetimeMs)
		out.MiniEvent = &c
	}

	// offline
	switch {
	case out.Offline == nil && b.Offline != nil:
		c := *b.Offline
		out.Offline = &c
	case out.Offline != nil && b.Offline != nil:
		c := *out.Offline
		override(&c.RatePct, b.Offline.RatePct)
		override(&c.MaxHours, b.Offline.MaxHours)
		out.Offline = &c
	}

	// autosave
	switch {
	case out.Autosave == nil && b.Autosave != nil:
		c := *b.Autosave
		out.Autosave = &c
	case out.Autosave != nil && b.Autosave != nil:
		c := *out.Autosave
		override(&c.IntervalMs, b.Autosave.IntervalMs)
		if b.Autosave.Path != "" {
			c.Path = b.Autosave.Path
		}
		out.Autosave = &c
	}

	if len(b.Upgrades) > 0 {
		out.Upgrades = append([]UpgradeCfg(nil), b.Upgrades...)
	}

	return out
}

func override[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
