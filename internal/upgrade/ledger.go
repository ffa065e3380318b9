package upgrade

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clickforge/clicker-core/internal/achievement"
)

// Capacity reports how many more workers may be hired right now.
// Unlimited pools return math.MaxInt.
type Capacity interface {
	Room() int
}

// Reason explains a purchase outcome.
type Reason string

const (
	ReasonOK                Reason = "ok"
	ReasonInvalidQuantity   Reason = "invalid_quantity"
	ReasonAlreadyOwned      Reason = "already_owned"
	ReasonAtCapacity        Reason = "at_capacity"
	ReasonInsufficientFunds Reason = "insufficient_funds"
)

// PurchaseResult is the single outcome type of every purchase attempt.
// A failed attempt has Units == 0 and Funds equal to the funds passed in.
type PurchaseResult struct {
	Funds       int64  // funds after the purchase
	Units       int    // units granted; may be fewer than requested when clamped by capacity
	Cost        int64  // amount deducted
	SpawnWorker bool   // host must spawn Units workers
	Reason      Reason // why the attempt ended the way it did
}

// Ledger tracks the player's purchases against a catalog. Prices are
// always derived from purchase counts.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	catalog   *Catalog
	purchased map[string]int
	capacity  Capacity
	sink      achievement.Sink
}

type Option func(*Ledger)

// WithCapacity gates worker hires on c. Without it hiring is unbounded.
func WithCapacity(c Capacity) Option {
	return func(l *Ledger) { l.capacity = c }
}

// WithSink routes milestone notifications to s.
func WithSink(s achievement.Sink) Option {
	return func(l *Ledger) { l.sink = achievement.OrNop(s) }
}

func NewLedger(cat *Catalog, opts ...Option) *Ledger {
	l := &Ledger{
		catalog:   cat,
		purchased: make(map[string]int),
		sink:      achievement.Nop{},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Ledger) Catalog() *Catalog { return l.catalog }

// Owned returns the number of units bought for id.
func (l *Ledger) Owned(id string) (int, error) {
	if _, err := l.catalog.Lookup(id); err != nil {
		return 0, err
	}
	return l.purchased[id], nil
}

// Cost returns the current price of the next unit of id.
func (l *Ledger) Cost(id string) (int64, error) {
	def, err := l.catalog.Lookup(id)
	if err != nil {
		return 0, err
	}
	return def.unitCost(l.purchased[id]), nil
}

// BatchCost returns the total price of qty more units of id.
func (l *Ledger) BatchCost(id string, qty int) (int64, error) {
	def, err := l.catalog.Lookup(id)
	if err != nil {
		return 0, err
	}
	cost, ok := def.batchCost(l.purchased[id], qty)
	if !ok {
		return 0, fmt.Errorf("%w: %d x %q", ErrCostOverflow, qty, id)
	}
	return cost, nil
}

// TryPurchase attempts to buy qty units of id with funds. Running short of
// funds, owning a single-instance upgrade or a full worker pool are not
// errors: they yield a zero-unit result. Worker hires are clamped to the
// room left in the pool. Only an unknown id returns an error.
func (l *Ledger) TryPurchase(id string, qty int, funds int64) (PurchaseResult, error) {
	res := PurchaseResult{Funds: funds}

	def, err := l.catalog.Lookup(id)
	if err != nil {
		return res, err
	}
	if qty <= 0 {
		res.Reason = ReasonInvalidQuantity
		return res, nil
	}

	owned := l.purchased[id]
	if def.SingleInstance {
		if owned >= 1 {
			res.Reason = ReasonAlreadyOwned
			return res, nil
		}
		qty = 1
	}

	if def.Kind == KindWorker && l.capacity != nil {
		room := l.capacity.Room()
		if room <= 0 {
			res.Reason = ReasonAtCapacity
			return res, nil
		}
		if qty > room {
			qty = room
		}
	}

	cost, ok := def.batchCost(owned, qty)
	if !ok || funds < cost {
		res.Reason = ReasonInsufficientFunds
		return res, nil
	}

	l.purchased[id] = owned + qty
	l.notifyMilestones(def, owned, owned+qty)

	return PurchaseResult{
		Funds:       funds - cost,
		Units:       qty,
		Cost:        cost,
		SpawnWorker: def.Kind == KindWorker,
		Reason:      ReasonOK,
	}, nil
}

func (l *Ledger) notifyMilestones(def Definition, before, after int) {
	if def.Kind == KindWorker {
		if before < 1 && after >= 1 {
			l.sink.Notify(achievement.FirstWorker)
		}
		if before < 5 && after >= 5 {
			l.sink.Notify(achievement.FiveWorkers)
		}
	}
	// owning everything can only start when some id goes from 0 to owned
	if before == 0 && l.allOwned() {
		l.sink.Notify(achievement.AllUpgrades)
	}
}

func (l *Ledger) allOwned() bool {
	for _, d := range l.catalog.defs {
		if l.purchased[d.ID] < 1 {
			return false
		}
	}
	return true
}

// ClickMultiplierDecimal is ClickMultiplier without float rounding.
func (l *Ledger) ClickMultiplierDecimal() decimal.Decimal {
	m := decimal.NewFromInt(1)
	for _, d := range l.catalog.defs {
		m = m.Add(d.contribution(l.purchased[d.ID]))
	}
	return m
}

// ClickMultiplier returns the factor applied to a manual click. It is
// recomputed from purchase counts on every call.
func (l *Ledger) ClickMultiplier() float64 {
	return l.ClickMultiplierDecimal().InexactFloat64()
}

// AutoClickRate is the number of points granted per auto-click interval.
func (l *Ledger) AutoClickRate() int {
	rate := 0
	for _, d := range l.catalog.defs {
		if d.Kind == KindAutoClick {
			rate += l.purchased[d.ID]
		}
	}
	return rate
}

func (l *Ledger) AutoClickEnabled() bool {
	return l.AutoClickRate() >= 1
}

// Reset forgets every purchase. Prices fall back to base cost since they
// are derived from counts.
func (l *Ledger) Reset() {
	l.purchased = make(map[string]int)
}

// Save exports the purchase counts. Zero counts are omitted.
func (l *Ledger) Save() map[string]int {
	out := make(map[string]int, len(l.purchased))
	for id, n := range l.purchased {
		if n > 0 {
			out[id] = n
		}
	}
	return out
}

// Load replaces the purchase counts with snapshot. Ids missing from the
// catalog and negative counts are skipped and returned; single-instance
// counts are clamped to 1.
func (l *Ledger) Load(snapshot map[string]int) (skipped []string) {
	l.purchased = make(map[string]int, len(snapshot))
	for id, n := range snapshot {
		def, err := l.catalog.Lookup(id)
		if err != nil || n < 0 {
			skipped = append(skipped, id)
			continue
		}
		if def.SingleInstance && n > 1 {
			n = 1
		}
		if n > 0 {
			l.purchased[id] = n
		}
	}
	return skipped
}
