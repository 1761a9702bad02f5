// Package custody answers balance queries against the native currency ledger.
package custody

import (
	"context"
)

// Balances reports how much of denom an address holds.
type Balances interface {
	Balance(ctx context.Context, address string, denom string) (uint64, error)
}
