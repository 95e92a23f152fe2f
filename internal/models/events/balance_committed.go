package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopicBalanceCommitted is the topic committed balance changes are published on.
const TopicBalanceCommitted = "balance_committed"

// BalanceCommitted is emitted after a mutation has been persisted and made
// visible in memory. It is advisory: consumers must treat the durable store
// as the source of truth.
type BalanceCommitted struct {
	AccountID       string          `json:"account_id"`
	Operation       string          `json:"operation"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	OccurredAt      time.Time       `json:"occurred_at"`
}
