package upgrade

import (
	"fmt"
	"strings"
)

// Kind selects how an upgrade's purchase count feeds into the economy.
type Kind string

const (
	KindClickBonus Kind = "click_bonus" // adds to the click multiplier
	KindAutoClick  Kind = "auto_click"  // +1 point per auto-click interval per unit
	KindWorker     Kind = "worker"      // each unit hires one worker
	KindFeature    Kind = "feature"     // unlocks a host feature, no numeric effect
)

// Ids of the default catalog. Hosts key feature checks on these.
const (
	AutoClick       = "auto_click"
	HoldClick       = "segurar_click"
	Double          = "double"
	SuperClick      = "super_click"
	Worker          = "trabalhador"
	MiniEvent       = "mini_event"
	AutoHire        = "auto_compra_trabalhador"
	OfflineEarnings = "ganhos_offline"
)

// Definition models a purchasable upgrade in the shop.
type Definition struct {
	ID             string  // stable key, e.g., "double"
	Name           string  // display name, e.g., "Double Click"
	Kind           Kind    // effect of owning units
	BaseCost       int64   // price of the first unit
	PriceIncrease  int64   // added to the price per unit owned; 0 keeps the price flat
	FlatBonus      float64 // multiplier contribution (click_bonus only)
	BonusIncrement float64 // if non-zero, bonus for n units is FlatBonus + BonusIncrement*(n-1)
	SingleInstance bool    // purchasable at most once
}

// Catalog is the ordered, immutable set of upgrades offered in a session.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

// NewCatalog validates defs and builds a catalog. Definition order is kept
// for listing.
func NewCatalog(defs []Definition) (*Catalog, error) {
	var errs []string
	index := make(map[string]int, len(defs))

	for i, d := range defs {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("upgrades[%d].id must not be empty", i))
			continue
		}
		if _, dup := index[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("upgrades[%d].id %q is duplicated", i, d.ID))
			continue
		}
		index[d.ID] = i

		if d.BaseCost <= 0 {
			errs = append(errs, fmt.Sprintf("%s.base_cost must be > 0", d.ID))
		}
		if d.PriceIncrease < 0 {
			errs = append(errs, fmt.Sprintf("%s.price_increase must be >= 0", d.ID))
		}
		switch d.Kind {
		case KindClickBonus, KindAutoClick, KindFeature:
		case KindWorker:
			// worker cost is never bumped per hire
			if d.PriceIncrease != 0 {
				errs = append(errs, fmt.Sprintf("%s.price_increase must be 0 for kind=worker", d.ID))
			}
		default:
			errs = append(errs, fmt.Sprintf("%s.kind must be one of: click_bonus, auto_click, worker, feature", d.ID))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return &Catalog{defs: append([]Definition(nil), defs...), index: index}, nil
}

// MustCatalog is NewCatalog for static definitions; it panics on error.
func MustCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition for id or an ErrUnknownUpgrade error.
func (c *Catalog) Lookup(id string) (Definition, error) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownUpgrade, id)
	}
	return c.defs[i], nil
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Definitions returns a copy of the catalog entries in listing order.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

func (c *Catalog) Len() int { return len(c.defs) }

// DefaultDefinitions is the shop shipped with the game.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: AutoClick, Name: "Auto Click", Kind: KindAutoClick, BaseCost: 500, SingleInstance: true},
		{ID: HoldClick, Name: "Hold to Click", Kind: KindFeature, BaseCost: 750, SingleInstance: true},
		{ID: Double, Name: "Double Click", Kind: KindClickBonus, BaseCost: 2000, PriceIncrease: 100, FlatBonus: 0.2, BonusIncrement: 0.2},
		{ID: SuperClick, Name: "Super Click", Kind: KindClickBonus, BaseCost: 8000, PriceIncrease: 750, FlatBonus: 1},
		{ID: Worker, Name: "Hire Worker", Kind: KindWorker, BaseCost: 1000},
		{ID: MiniEvent, Name: "Mini Event Worker", Kind: KindFeature, BaseCost: 3000, SingleInstance: true},
		{ID: AutoHire, Name: "Auto Hire Workers", Kind: KindFeature, BaseCost: 5000, SingleInstance: true},
		{ID: OfflineEarnings, Name: "Offline Earnings", Kind: KindFeature, BaseCost: 4000, SingleInstance: true},
	}
}
