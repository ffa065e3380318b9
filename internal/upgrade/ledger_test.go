package upgrade

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickforge/clicker-core/internal/achievement"
)

type fixedRoom int

func (r fixedRoom) Room() int { return int(r) }

func newDefaultLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	cat, err := NewCatalog(DefaultDefinitions())
	require.NoError(t, err)
	return NewLedger(cat, opts...)
}

func TestDoubleClickScenario(t *testing.T) {
	cat := MustCatalog([]Definition{
		{ID: Double, Name: "Double", Kind: KindClickBonus, BaseCost: 2000, PriceIncrease: 100, FlatBonus: 0.2, BonusIncrement: 0.2},
	})
	l := NewLedger(cat)

	res, err := l.TryPurchase(Double, 1, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Funds)
	assert.Equal(t, 1, res.Units)
	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, 1.2, l.ClickMultiplier())

	res, err = l.TryPurchase(Double, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Funds)
	assert.Equal(t, 0, res.Units)
	assert.Equal(t, ReasonInsufficientFunds, res.Reason)

	cost, err := l.Cost(Double)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), cost)
}

func TestCostGrowsLinearlyWithPurchases(t *testing.T) {
	l := newDefaultLedger(t)
	for n := 1; n <= 20; n++ {
		_, err := l.TryPurchase(SuperClick, 1, math.MaxInt64/2)
		require.NoError(t, err)
		cost, err := l.Cost(SuperClick)
		require.NoError(t, err)
		assert.Equal(t, int64(8000+750*n), cost, "after %d purchases", n)
	}
}

func TestAffordabilityGateLeavesFundsUntouched(t *testing.T) {
	l := newDefaultLedger(t)
	for _, id := range []string{Double, SuperClick, Worker, AutoClick} {
		cost, err := l.BatchCost(id, 1)
		require.NoError(t, err)
		for _, funds := range []int64{0, 1, cost / 2, cost - 1} {
			res, err := l.TryPurchase(id, 1, funds)
			require.NoError(t, err)
			assert.Equal(t, 0, res.Units, "%s with %d", id, funds)
			assert.Equal(t, funds, res.Funds)
			assert.False(t, res.SpawnWorker)
		}
	}

	res, err := l.TryPurchase(Double, 1, -50)
	require.NoError(t, err)
	assert.Equal(t, int64(-50), res.Funds)
	assert.Equal(t, 0, res.Units)
}

func TestSingleInstanceCannotBeBoughtTwice(t *testing.T) {
	l := newDefaultLedger(t)

	res, err := l.TryPurchase(AutoClick, 3, 100_000)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Units, "quantity is clamped to one")
	assert.Equal(t, int64(99_500), res.Funds)

	res, err = l.TryPurchase(AutoClick, 1, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Units)
	assert.Equal(t, ReasonAlreadyOwned, res.Reason)
	assert.Equal(t, int64(math.MaxInt64), res.Funds)
}

func TestMultiplierIsAdditiveForFlatBonus(t *testing.T) {
	l := newDefaultLedger(t)
	before := l.ClickMultiplierDecimal()

	res, err := l.TryPurchase(SuperClick, 3, 1_000_000)
	require.NoError(t, err)
	require.Equal(t, 3, res.Units)

	gain := l.ClickMultiplierDecimal().Sub(before)
	assert.True(t, gain.Equal(decimal.NewFromInt(3)), "gain %s", gain)
}

func TestMultiplierFractionalFlatBonusIsExact(t *testing.T) {
	cat := MustCatalog([]Definition{
		{ID: "tenth", Name: "Tenth", Kind: KindClickBonus, BaseCost: 1, FlatBonus: 0.1},
	})
	l := NewLedger(cat)
	_, err := l.TryPurchase("tenth", 7, 100)
	require.NoError(t, err)
	assert.True(t, l.ClickMultiplierDecimal().Equal(decimal.RequireFromString("1.7")))
	assert.Equal(t, 1.7, l.ClickMultiplier())
}

func TestMultiplierWithBonusIncrement(t *testing.T) {
	l := newDefaultLedger(t)
	_, err := l.TryPurchase(Double, 3, 1_000_000)
	require.NoError(t, err)
	// 0.2 + 0.2*(3-1)
	assert.True(t, l.ClickMultiplierDecimal().Equal(decimal.RequireFromString("1.6")))
}

func TestNonBonusKindsDoNotAffectMultiplier(t *testing.T) {
	l := newDefaultLedger(t)
	for _, id := range []string{AutoClick, HoldClick, Worker, MiniEvent, AutoHire, OfflineEarnings} {
		_, err := l.TryPurchase(id, 1, 1_000_000)
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, l.ClickMultiplier())
	assert.True(t, l.AutoClickEnabled())
	assert.Equal(t, 1, l.AutoClickRate())
}

func TestBatchCostIsArithmeticSeries(t *testing.T) {
	l := newDefaultLedger(t)

	cost, err := l.BatchCost(Double, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2000+2100+2200), cost)

	res, err := l.TryPurchase(Double, 3, 6300)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Units)
	assert.Equal(t, int64(0), res.Funds)
	assert.Equal(t, int64(6300), res.Cost)

	cost, err = l.BatchCost(AutoClick, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(500), cost)

	cost, err = l.BatchCost(Double, 0)
	require.NoError(t, err)
	assert.Zero(t, cost)
}

func TestInvalidQuantity(t *testing.T) {
	l := newDefaultLedger(t)
	for _, qty := range []int{0, -1} {
		res, err := l.TryPurchase(Double, qty, 10_000)
		require.NoError(t, err)
		assert.Equal(t, ReasonInvalidQuantity, res.Reason)
		assert.Equal(t, int64(10_000), res.Funds)
	}
}

func TestWorkerHireClampedByCapacity(t *testing.T) {
	l := newDefaultLedger(t, WithCapacity(fixedRoom(2)))

	res, err := l.TryPurchase(Worker, 5, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Units)
	assert.Equal(t, int64(8000), res.Funds)
	assert.True(t, res.SpawnWorker)

	owned, err := l.Owned(Worker)
	require.NoError(t, err)
	assert.Equal(t, 2, owned)

	cost, err := l.Cost(Worker)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cost, "worker price never rises")
}

func TestWorkerHireAtCapacity(t *testing.T) {
	l := newDefaultLedger(t, WithCapacity(fixedRoom(0)))

	res, err := l.TryPurchase(Worker, 1, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Units)
	assert.Equal(t, ReasonAtCapacity, res.Reason)
	assert.Equal(t, int64(10_000), res.Funds)
	assert.False(t, res.SpawnWorker)
}

func TestWorkerHireUnboundedWithoutCapacity(t *testing.T) {
	l := newDefaultLedger(t)
	res, err := l.TryPurchase(Worker, 25, 25_000)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Units)
}

func TestMilestonesNotifySink(t *testing.T) {
	rec := achievement.NewRecorder()
	l := newDefaultLedger(t, WithSink(rec))

	_, err := l.TryPurchase(Worker, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, []achievement.ID{achievement.FirstWorker}, rec.Unlocked())

	_, err = l.TryPurchase(Worker, 4, 4000)
	require.NoError(t, err)
	assert.True(t, rec.Has(achievement.FiveWorkers))
	assert.False(t, rec.Has(achievement.AllUpgrades))

	for _, d := range l.Catalog().Definitions() {
		_, err := l.TryPurchase(d.ID, 1, math.MaxInt64/2)
		require.NoError(t, err)
	}
	assert.True(t, rec.Has(achievement.AllUpgrades))
}

func TestNilSinkIsTolerated(t *testing.T) {
	l := newDefaultLedger(t, WithSink(nil))
	assert.NotPanics(t, func() {
		_, _ = l.TryPurchase(Worker, 5, 5000)
	})
}

func TestResetRestoresBaseState(t *testing.T) {
	l := newDefaultLedger(t)
	for _, d := range l.Catalog().Definitions() {
		_, err := l.TryPurchase(d.ID, 3, math.MaxInt64/2)
		require.NoError(t, err)
	}
	require.Greater(t, l.ClickMultiplier(), 1.0)

	l.Reset()

	assert.Equal(t, 1.0, l.ClickMultiplier())
	assert.False(t, l.AutoClickEnabled())
	for _, d := range l.Catalog().Definitions() {
		cost, err := l.Cost(d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.BaseCost, cost, d.ID)
	}
	assert.Empty(t, l.Save())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	l := newDefaultLedger(t)
	_, err := l.TryPurchase(Double, 4, 1_000_000)
	require.NoError(t, err)
	_, err = l.TryPurchase(AutoClick, 1, 1_000_000)
	require.NoError(t, err)
	_, err = l.TryPurchase(Worker, 3, 1_000_000)
	require.NoError(t, err)

	other := newDefaultLedger(t)
	skipped := other.Load(l.Save())
	assert.Empty(t, skipped)

	assert.Equal(t, l.Save(), other.Save())
	assert.Equal(t, l.ClickMultiplier(), other.ClickMultiplier())
	for _, d := range l.Catalog().Definitions() {
		a, _ := l.Cost(d.ID)
		b, _ := other.Cost(d.ID)
		assert.Equal(t, a, b, d.ID)
	}
}

func TestLoadSkipsCorruptEntries(t *testing.T) {
	l := newDefaultLedger(t)
	skipped := l.Load(map[string]int{
		Double:     2,
		"bogus":    3,
		AutoClick:  4,
		SuperClick: -1,
	})
	assert.ElementsMatch(t, []string{"bogus", SuperClick}, skipped)

	cost, err := l.Cost(Double)
	require.NoError(t, err)
	assert.Equal(t, int64(2200), cost)

	owned, err := l.Owned(AutoClick)
	require.NoError(t, err)
	assert.Equal(t, 1, owned)

	owned, err = l.Owned(SuperClick)
	require.NoError(t, err)
	assert.Zero(t, owned)
}

func TestUnknownUpgradeIsAnError(t *testing.T) {
	l := newDefaultLedger(t)

	res, err := l.TryPurchase("nope", 1, 100)
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
	assert.Equal(t, int64(100), res.Funds)

	_, err = l.Cost("nope")
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
	_, err = l.BatchCost("nope", 2)
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
	_, err = l.Owned("nope")
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
	_, err = l.MaxAffordable("nope", 100)
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
}

func TestMaxAffordable(t *testing.T) {
	l := newDefaultLedger(t)

	tests := []struct {
		id    string
		funds int64
		want  int
	}{
		{Double, 1999, 0},
		{Double, 2000, 1},
		{Double, 6299, 2},
		{Double, 6300, 3},
		{Worker, 3500, 3},
		{AutoClick, 499, 0},
		{AutoClick, 1_000_000, 1},
		{SuperClick, 8000 + 8750 + 9500, 3},
	}
	for _, tt := range tests {
		got, err := l.MaxAffordable(tt.id, tt.funds)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s with %d", tt.id, tt.funds)

		if got > 0 {
			cost, _ := l.BatchCost(tt.id, got)
			assert.LessOrEqual(t, cost, tt.funds)
		}
	}

	_, err := l.TryPurchase(AutoClick, 1, 500)
	require.NoError(t, err)
	got, err := l.MaxAffordable(AutoClick, 1_000_000)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestHugeQuantityIsNeverAffordable(t *testing.T) {
	l := newDefaultLedger(t)

	res, err := l.TryPurchase(Double, 743155035244, 1000)
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientFunds, res.Reason)
	assert.Zero(t, res.Units)
	assert.Equal(t, int64(1000), res.Funds)

	res, err = l.TryPurchase(Double, math.MaxInt, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientFunds, res.Reason)
	assert.Equal(t, int64(math.MaxInt64), res.Funds)

	_, err = l.BatchCost(Double, math.MaxInt)
	assert.ErrorIs(t, err, ErrCostOverflow)

	owned, err := l.Owned(Double)
	require.NoError(t, err)
	assert.Zero(t, owned)
}

func TestMaxAffordableNearInt64Limit(t *testing.T) {
	l := newDefaultLedger(t)

	for _, id := range []string{Double, SuperClick, Worker} {
		got, err := l.MaxAffordable(id, math.MaxInt64)
		require.NoError(t, err)
		require.Positive(t, got, id)

		cost, err := l.BatchCost(id, got)
		require.NoError(t, err)
		assert.Positive(t, cost, id)

		def, err := l.catalog.Lookup(id)
		require.NoError(t, err)
		_, fits := def.batchCost(0, got+1)
		assert.False(t, fits, "%s: %d units should not fit in int64", id, got+1)
	}

	// flat price: funds/cost exactly
	got, err := l.MaxAffordable(Worker, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int(math.MaxInt64/1000), got)
}
