package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/interfaces"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/metrics"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models/events"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/ranking"
)

// Ledger holds one balance per account and serves asynchronous operations
// on them. Every operation on a given account is executed by that account's
// queue worker in submission order, so validation and mutation happen as a
// single step and lost updates are impossible; operations on different
// accounts run fully in parallel.
//
// Construct with New and pass the handle to consumers explicitly. There is
// no global instance.
type Ledger struct {
	store interfaces.BalanceStore
	pub   interfaces.EventPublisher
	log   zerolog.Logger
	stats *metrics.Registry

	mu     sync.Mutex // guards queues and closed
	queues map[uuid.UUID]*accountQueue
	closed bool
	wg     sync.WaitGroup

	balancesMu sync.RWMutex
	balances   map[uuid.UUID]decimal.Decimal

	index *ranking.Index

	saveTimeout time.Duration
	events      chan events.BalanceCommitted
	pubDone     chan struct{}
}

// accountQueue is the private inbound queue of one active account. It exists
// only while operations are pending; the drain worker removes it from the
// map when it runs dry.
type accountQueue struct {
	ops []*operation
}

// Options configures optional ledger collaborators.
type Options struct {
	// Publisher receives a BalanceCommitted event per committed mutation.
	// Publishing is advisory: failures are counted and logged, never rolled
	// back into the ledger.
	Publisher interfaces.EventPublisher
	Logger    zerolog.Logger
	Metrics   *metrics.Registry
	// SaveTimeout bounds each write-through to the store. Zero means 10s.
	SaveTimeout time.Duration
	// EventBuffer sizes the publish queue. Zero means 256.
	EventBuffer int
}

// New loads all balances from store and returns a ready ledger.
func New(ctx context.Context, store interfaces.BalanceStore, opts Options) (*Ledger, error) {
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}

	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}

	l := &Ledger{
		store:       store,
		pub:         opts.Publisher,
		log:         opts.Logger,
		stats:       opts.Metrics,
		queues:      make(map[uuid.UUID]*accountQueue),
		balances:    make(map[uuid.UUID]decimal.Decimal, len(loaded)),
		index:       ranking.NewIndex(),
		saveTimeout: opts.SaveTimeout,
	}
	for id, balance := range loaded {
		l.balances[id] = balance
		l.index.Update(id, balance)
	}

	if l.pub != nil {
		l.events = make(chan events.BalanceCommitted, opts.EventBuffer)
		l.pubDone = make(chan struct{})
		go l.publishLoop()
	}

	l.log.Info().Int("accounts", len(loaded)).Msg("ledger loaded")
	return l, nil
}

// submit enqueues op on the account's queue, spawning a drain worker when
// the account has no active queue.
func (l *Ledger) submit(account uuid.UUID, op *operation) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		op.res.resolve(Outcome{}, ErrClosed)
		return
	}
	q, ok := l.queues[account]
	if !ok {
		q = &accountQueue{}
		l.queues[account] = q
		l.wg.Add(1)
	}
	q.ops = append(q.ops, op)
	l.mu.Unlock()

	if !ok {
		l.stats.QueueStarted()
		go l.drain(account, q)
	}
}

// drain executes the account's queue in FIFO order and retires the queue
// once empty. Emptiness check and removal happen under the same lock as
// enqueue, so an operation is never stranded.
func (l *Ledger) drain(account uuid.UUID, q *accountQueue) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		if len(q.ops) == 0 {
			delete(l.queues, account)
			l.mu.Unlock()
			l.stats.QueueStopped()
			return
		}
		op := q.ops[0]
		q.ops = q.ops[1:]
		l.mu.Unlock()

		l.apply(account, op)
	}
}

// apply executes one operation against the account. Mutations are written
// through to the store first; only a durable write is committed to memory,
// so a storage fault leaves the observable balance untouched.
func (l *Ledger) apply(account uuid.UUID, op *operation) {
	start := time.Now()

	l.balancesMu.RLock()
	old := l.balances[account]
	l.balancesMu.RUnlock()

	if op.kind == KindRead {
		op.res.resolve(Outcome{OK: true, Balance: old}, nil)
		l.stats.ObserveOperation(string(op.kind), "ok", time.Since(start))
		return
	}

	next, reason := nextBalance(op.kind, old, op.amount)
	if reason != ReasonNone {
		op.res.resolve(Outcome{OK: false, Reason: reason, Balance: old}, nil)
		l.stats.ObserveOperation(string(op.kind), "rejected", time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.saveTimeout)
	err := l.store.Save(ctx, account, next)
	cancel()
	if err != nil {
		l.log.Error().Err(err).
			Stringer("account", account).
			Str("kind", string(op.kind)).
			Msg("write-through failed, mutation dropped")
		op.res.resolve(Outcome{Balance: old}, fmt.Errorf("persist balance for %s: %w", account, err))
		l.stats.ObserveOperation(string(op.kind), "error", time.Since(start))
		return
	}

	l.balancesMu.Lock()
	l.balances[account] = next
	l.balancesMu.Unlock()

	l.index.Update(account, next)
	l.emit(account, op.kind, old, next)

	op.res.resolve(Outcome{OK: true, Balance: next}, nil)
	l.stats.ObserveOperation(string(op.kind), "ok", time.Since(start))
}

// nextBalance validates the mutation against the observed balance and
// returns either the new balance or the rejection reason.
func nextBalance(kind Kind, old, amount decimal.Decimal) (decimal.Decimal, Reason) {
	switch kind {
	case KindDeposit:
		if !amount.IsPositive() {
			return old, ReasonNonPositiveAmount
		}
		return old.Add(amount), ReasonNone
	case KindWithdraw:
		if !amount.IsPositive() {
			return old, ReasonNonPositiveAmount
		}
		if old.LessThan(amount) {
			return old, ReasonInsufficientFunds
		}
		return old.Sub(amount), ReasonNone
	case KindSet:
		if amount.IsNegative() {
			return old, ReasonNegativeAmount
		}
		return amount, ReasonNone
	default:
		return old, ReasonNone
	}
}

func (l *Ledger) emit(account uuid.UUID, kind Kind, old, next decimal.Decimal) {
	if l.events == nil {
		return
	}
	ev := events.BalanceCommitted{
		AccountID:       account.String(),
		Operation:       string(kind),
		PreviousBalance: old,
		NewBalance:      next,
		OccurredAt:      time.Now().UTC(),
	}
	select {
	case l.events <- ev:
	default:
		// Queue full: drop rather than stall the account worker.
		l.stats.PublishFailed()
		l.log.Warn().Str("account", ev.AccountID).Msg("event queue full, commit event dropped")
	}
}

func (l *Ledger) publishLoop() {
	defer close(l.pubDone)
	for ev := range l.events {
		if err := l.pub.Publish(events.TopicBalanceCommitted, ev); err != nil {
			l.stats.PublishFailed()
			l.log.Error().Err(err).Str("account", ev.AccountID).Msg("publish commit event")
		}
	}
}

// Close stops accepting operations, waits for every queue to drain, stops
// the publish loop and flushes the store. Operations submitted after Close
// resolve with ErrClosed; operations already queued complete normally.
func (l *Ledger) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		return fmt.Errorf("drain queues: %w", ctx.Err())
	}

	if l.events != nil {
		close(l.events)
		select {
		case <-l.pubDone:
		case <-ctx.Done():
			return fmt.Errorf("stop publisher: %w", ctx.Err())
		}
	}

	if err := l.store.Flush(ctx); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	l.log.Info().Msg("ledger closed")
	return nil
}

// Accounts returns the number of accounts the ledger tracks.
func (l *Ledger) Accounts() int {
	return l.index.Len()
}
