package ranking

import (
	"bytes"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models"
)

// Index maintains an ordered view over all account balances: descending by
// balance, ties broken ascending by account identifier. It is updated
// incrementally on every committed mutation and never rebuilt by scanning
// the account store.
type Index struct {
	mu       sync.RWMutex
	entries  []models.Account // kept ordered by before
	balances map[uuid.UUID]decimal.Decimal
}

func NewIndex() *Index {
	return &Index{
		balances: make(map[uuid.UUID]decimal.Decimal),
	}
}

// before reports whether a sorts ahead of b.
func before(a, b models.Account) bool {
	if cmp := a.Balance.Cmp(b.Balance); cmp != 0 {
		return cmp > 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Update records the committed balance for an account, inserting it on first
// sight and repositioning it otherwise.
func (x *Index) Update(account uuid.UUID, balance decimal.Decimal) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.balances[account]; ok {
		prev := models.Account{ID: account, Balance: old}
		i := sort.Search(len(x.entries), func(i int) bool {
			return !before(x.entries[i], prev)
		})
		x.entries = append(x.entries[:i], x.entries[i+1:]...)
	}

	x.balances[account] = balance
	next := models.Account{ID: account, Balance: balance}
	j := sort.Search(len(x.entries), func(i int) bool {
		return before(next, x.entries[i])
	})
	x.entries = append(x.entries, models.Account{})
	copy(x.entries[j+1:], x.entries[j:])
	x.entries[j] = next
}

// Top returns the first n entries. Asking for more entries than accounts
// returns every account; n <= 0 returns an empty slice.
func (x *Index) Top(n int) []models.Account {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(x.entries) {
		n = len(x.entries)
	}
	out := make([]models.Account, n)
	copy(out, x.entries[:n])
	return out
}

// Len returns the number of accounts tracked.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}
