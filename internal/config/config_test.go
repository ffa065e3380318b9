package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickforge/clicker-core/internal/upgrade"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaultBalanceIsValid(t *testing.T) {
	b := Default()
	require.NoError(t, Validate(b))
	assert.Equal(t, int64(1), b.ClickPoints)
	assert.Equal(t, time.Second, b.AutoClickInterval)
	assert.Equal(t, 30*time.Second, b.Workers.Lifetime)
	assert.True(t, b.Workers.LimitEnabled)

	cat, err := b.Catalog()
	require.NoError(t, err)
	assert.True(t, cat.Has(upgrade.Worker))
}

func TestShippedConfigsLoad(t *testing.T) {
	l := NewLoader(filepath.Join("..", "..", "configs"))

	def, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "1", def.Version)
	assert.Equal(t, Default().Upgrades, def.Upgrades)
	assert.Equal(t, Default().Workers, def.Workers)

	casual, err := l.Load("casual")
	require.NoError(t, err)
	assert.Equal(t, "1-casual", casual.Version)
	assert.Equal(t, time.Minute, casual.Workers.Lifetime)
	assert.False(t, casual.Workers.LimitEnabled)
	assert.Equal(t, 100, casual.Offline.RatePercent)
	assert.Equal(t, int64(1000), casual.Workers.BudgetMax, "inherited from default")

	hard, err := l.Load("hard")
	require.NoError(t, err)
	assert.Equal(t, 5, hard.Workers.MaxCapacity)
	assert.Equal(t, 5*time.Minute, hard.MiniEvent.Interval)
	assert.Equal(t, int64(1000), hard.MiniEvent.BudgetMin)
	assert.Equal(t, 2*time.Hour, hard.Offline.MaxOffline)
}

func TestMissingFilesFallBackToDefaults(t *testing.T) {
	l := NewLoader(t.TempDir())
	b, err := l.Load("nothing-here")
	require.NoError(t, err)
	assert.Equal(t, Default(), b)
}

func TestProfileReplacesUpgradeList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), "workers:\n  budget_max: 2000\n")
	writeFile(t, filepath.Join(dir, "profiles", "tiny.yaml"), `
upgrades:
  - {id: hire, name: Hire, kind: worker, base_cost: 10}
  - {id: boost, name: Boost, kind: click_bonus, base_cost: 5, price_increase: 1, flat_bonus: 0.5}
`)
	b, err := NewLoader(dir).Load("tiny")
	require.NoError(t, err)
	require.Len(t, b.Upgrades, 2)
	assert.Equal(t, upgrade.KindWorker, b.Upgrades[0].Kind)
	assert.Equal(t, 0.5, b.Upgrades[1].FlatBonus)
	assert.Equal(t, int64(2000), b.Workers.BudgetMax)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), `
click: {base_points: 0}
workers: {budget_min: 500, budget_max: 100, lifetime_ms: -1, max_capacity: 0}
offline: {rate_pct: 101}
`)
	_, err := NewLoader(dir).Load("")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "click.base_points must be >= 1")
	assert.Contains(t, msg, "workers.budget_max must be >= budget_min")
	assert.Contains(t, msg, "workers.lifetime_ms must be > 0")
	assert.Contains(t, msg, "workers.max_capacity must be >= 1")
	assert.Contains(t, msg, "offline.rate_pct must be in [0,100]")
}

func TestLoadRejectsCombinedBudgetRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), "workers: {budget_max: 150}\n")
	writeFile(t, filepath.Join(dir, "profiles", "p.yaml"), "workers: {budget_min: 200}\n")
	_, err := NewLoader(dir).Load("p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers.budget_max must be >= budget_min")
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), `
upgrades:
  - {id: hire, name: Hire, kind: worker, base_cost: 10, price_increase: 5}
`)
	_, err := NewLoader(dir).Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hire.price_increase must be 0 for kind=worker")
}

func TestLoadReportsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), "workers: [unclosed\n")
	_, err := NewLoader(dir).Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read default")
}

func TestLoaderCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	writeFile(t, path, "click: {base_points: 2}\n")

	l := NewLoader(dir)
	b, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ClickPoints)

	writeFile(t, path, "click: {base_points: 3}\n")
	b, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ClickPoints, "served from cache")

	l.Invalidate()
	b, err = l.Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.ClickPoints)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	b, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), b)

	t.Setenv(EnvConfigDir, filepath.Join("..", "..", "configs"))
	t.Setenv(EnvProfile, "hard")
	b, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "1-hard", b.Version)
}

func TestMergeRawOverridesOnlySetFields(t *testing.T) {
	ten, twenty := int64(10), int64(20)
	a := RawConfig{Version: "a", MiniEvent: &MiniEventCfg{IntervalMs: &ten, BudgetMin: &ten}}
	b := RawConfig{MiniEvent: &MiniEventCfg{IntervalMs: &twenty}}

	out := mergeRaw(a, b)
	assert.Equal(t, "a", out.Version)
	assert.Equal(t, int64(20), *out.MiniEvent.IntervalMs)
	assert.Equal(t, int64(10), *out.MiniEvent.BudgetMin)
	assert.Equal(t, int64(10), *a.MiniEvent.IntervalMs, "input left untouched")
}

func TestValidateHandBuiltBalance(t *testing.T) {
	b := Default()
	b.Workers.BudgetMin = 0
	b.MiniEvent.Lifetime = 0
	b.Autosave.Interval = 0
	b.AutoClickInterval = 0

	err := Validate(b)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "workers.budget_min must be > 0")
	assert.Contains(t, msg, "mini_event.lifetime_ms must be > 0")
	assert.Contains(t, msg, "autosave.interval_ms must be > 0")
	assert.Contains(t, msg, "auto_click.interval_ms must be > 0")

	assert.Error(t, Validate(Balance{}))
}
