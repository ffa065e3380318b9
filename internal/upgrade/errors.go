package upgrade

import "errors"

// ErrUnknownUpgrade means a caller passed an id the catalog does not define.
// It indicates a wiring bug, never a player condition.
var ErrUnknownUpgrade = errors.New("unknown upgrade id")

// ErrCostOverflow means a batch price does not fit in an int64.
var ErrCostOverflow = errors.New("batch cost overflows")
