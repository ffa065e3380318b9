package upgrade

import (
	"math"

	"github.com/shopspring/decimal"
)

var maxCost = decimal.NewFromInt(math.MaxInt64)

// unitCost is the price of the next unit when owned units are already
// bought. It saturates at math.MaxInt64.
func (d Definition) unitCost(owned int) int64 {
	c, ok := toCost(decimal.NewFromInt(d.BaseCost).Add(
		decimal.NewFromInt(d.PriceIncrease).Mul(decimal.NewFromInt(int64(owned)))))
	if !ok {
		return math.MaxInt64
	}
	return c
}

// batchCost returns the price of qty more units starting from owned.
// The per-unit price rises by PriceIncrease, so the total is an arithmetic
// series. Single-instance upgrades always cost one unit. ok is false when
// the total does not fit in an int64; such a batch is never affordable.
func (d Definition) batchCost(owned, qty int) (cost int64, ok bool) {
	if qty <= 0 {
		return 0, true
	}
	if d.SingleInstance {
		qty = 1
	}
	q := decimal.NewFromInt(int64(qty))
	unit := decimal.NewFromInt(d.BaseCost).Add(
		decimal.NewFromInt(d.PriceIncrease).Mul(decimal.NewFromInt(int64(owned))))
	series := decimal.NewFromInt(d.PriceIncrease).
		Mul(q).
		Mul(q.Sub(decimal.NewFromInt(1))).
		Div(decimal.NewFromInt(2))
	return toCost(q.Mul(unit).Add(series))
}

func toCost(v decimal.Decimal) (int64, bool) {
	if v.GreaterThan(maxCost) {
		return 0, false
	}
	return v.IntPart(), true
}

// contribution is the click multiplier share of n owned units.
func (d Definition) contribution(n int) decimal.Decimal {
	if n < 1 || d.Kind != KindClickBonus {
		return decimal.Zero
	}
	flat := decimal.NewFromFloat(d.FlatBonus)
	if d.BonusIncrement == 0 {
		return flat.Mul(decimal.NewFromInt(int64(n)))
	}
	inc := decimal.NewFromFloat(d.BonusIncrement)
	return flat.Add(inc.Mul(decimal.NewFromInt(int64(n - 1))))
}
