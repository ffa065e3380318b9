package upgrade

// MaxAffordable returns the largest quantity of id whose batch cost fits in
// funds. Capacity is not considered; TryPurchase clamps worker hires itself.
func (l *Ledger) MaxAffordable(id string, funds int64) (int, error) {
	def, err := l.catalog.Lookup(id)
	if err != nil {
		return 0, err
	}
	owned := l.purchased[id]
	c := def.unitCost(owned)
	if funds < c {
		return 0, nil
	}
	if def.SingleInstance {
		if owned >= 1 {
			return 0, nil
		}
		return 1, nil
	}

	// every unit costs at least c, so funds/c bounds the answer; binary
	// search the exact series below it
	lo, hi := 1, int(funds/c)
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if cost, ok := def.batchCost(owned, mid); ok && cost <= funds {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}
