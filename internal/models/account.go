package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a single balance record, keyed by the stable identifier the
// host supplies. The ledger never derives or rewrites the identifier.
type Account struct {
	ID      uuid.UUID       `json:"account_id"`
	Balance decimal.Decimal `json:"balance"`
}
