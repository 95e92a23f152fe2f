package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceStore is the durable-storage boundary the ledger writes through.
// Load is called once at startup; Save after every accepted mutation, before
// the new balance becomes visible; Flush before shutdown and on demand.
// An error from any of these is a storage fault, never a silent no-op.
type BalanceStore interface {
	Load(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
	Save(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	Flush(ctx context.Context) error
}
