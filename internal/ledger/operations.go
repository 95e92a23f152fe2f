package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models"
)

// Kind identifies an operation for ordering, events and metrics.
type Kind string

const (
	KindRead     Kind = "read"
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindSet      Kind = "set"
)

// Reason explains a rejected mutation. Rejections are expected caller
// conditions, not faults: they resolve with OK=false and a nil error.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNonPositiveAmount Reason = "amount_not_positive"
	ReasonNegativeAmount    Reason = "amount_negative"
	ReasonInsufficientFunds Reason = "insufficient_funds"
)

// Outcome is the resolution of a single ledger operation. Balance always
// carries the balance the operation observed: the committed balance on
// success, the unchanged balance on rejection.
type Outcome struct {
	OK      bool
	Reason  Reason
	Balance decimal.Decimal
}

// ErrClosed is resolved on operations submitted after Close began.
var ErrClosed = errors.New("ledger: closed")

type operation struct {
	kind   Kind
	amount decimal.Decimal
	res    *Result[Outcome]
}

// Balance reports the current balance of an account; unseen accounts read
// as zero. The read is sequenced with any in-flight mutations on the same
// account so it observes strict submission order.
func (l *Ledger) Balance(account uuid.UUID) *Result[Outcome] {
	op := &operation{kind: KindRead, res: newResult[Outcome]()}
	l.submit(account, op)
	return op.res
}

// Deposit increases the balance by amount. The amount must be strictly
// positive; zero and negative amounts are rejected without touching state.
func (l *Ledger) Deposit(account uuid.UUID, amount decimal.Decimal) *Result[Outcome] {
	op := &operation{kind: KindDeposit, amount: amount, res: newResult[Outcome]()}
	l.submit(account, op)
	return op.res
}

// Withdraw decreases the balance by amount. It is rejected when the amount
// is not strictly positive or the balance does not cover it; validation and
// the state change happen as one sequenced step, so two concurrent
// withdrawals can never both drain the same funds.
func (l *Ledger) Withdraw(account uuid.UUID, amount decimal.Decimal) *Result[Outcome] {
	op := &operation{kind: KindWithdraw, amount: amount, res: newResult[Outcome]()}
	l.submit(account, op)
	return op.res
}

// SetBalance replaces the balance with amount, which must be non-negative.
func (l *Ledger) SetBalance(account uuid.UUID, amount decimal.Decimal) *Result[Outcome] {
	op := &operation{kind: KindSet, amount: amount, res: newResult[Outcome]()}
	l.submit(account, op)
	return op.res
}

// TopBalances returns up to n accounts ordered descending by balance, ties
// ascending by account identifier. n larger than the account population
// returns every account; n = 0 resolves to an empty slice; n < 0 is a
// caller error.
func (l *Ledger) TopBalances(n int) *Result[[]models.Account] {
	if n < 0 {
		return resolved[[]models.Account](nil, fmt.Errorf("ledger: negative count %d", n))
	}
	return resolved(l.index.Top(n), nil)
}
