package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/interfaces"
)

// MemoryBalanceStore is an in-memory implementation of interfaces.BalanceStore.
// It is the standalone default and the restart fixture for tests: Load
// returns a snapshot copy, so a second ledger constructed over the same
// store observes everything the first one persisted.
type MemoryBalanceStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
}

// NewMemoryBalanceStore creates an empty store.
func NewMemoryBalanceStore() *MemoryBalanceStore {
	return &MemoryBalanceStore{
		balances: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (m *MemoryBalanceStore) Load(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make(map[uuid.UUID]decimal.Decimal, len(m.balances))
	for id, balance := range m.balances {
		copied[id] = balance
	}
	return copied, nil
}

func (m *MemoryBalanceStore) Save(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[accountID] = balance
	return nil
}

// Flush is a no-op: every Save is already final in memory.
func (m *MemoryBalanceStore) Flush(ctx context.Context) error {
	return nil
}

// Compile-time check: ensure MemoryBalanceStore implements BalanceStore.
var _ interfaces.BalanceStore = (*MemoryBalanceStore)(nil)
