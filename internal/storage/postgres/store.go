package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/interfaces"
)

const schema = `
CREATE TABLE IF NOT EXISTS balances (
	account_id UUID PRIMARY KEY,
	balance    NUMERIC(30, 10) NOT NULL CHECK (balance >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Config holds connection settings for the balances database.
type Config struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns reasonable pool defaults.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    5 * time.Second,
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// PostgresBalanceStore is a durable implementation of interfaces.BalanceStore
// backed by a single upsert table. All calls run through a circuit breaker
// so a dead database surfaces as a fast storage fault instead of parking
// account workers on dial timeouts.
type PostgresBalanceStore struct {
	db      *sqlx.DB
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewPostgresBalanceStore creates the store over an open connection pool.
func NewPostgresBalanceStore(db *sqlx.DB, timeout time.Duration) *PostgresBalanceStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	settings := gobreaker.Settings{
		Name:    "postgres-balances",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &PostgresBalanceStore{
		db:      db,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: timeout,
	}
}

// EnsureSchema creates the balances table when missing.
func (p *PostgresBalanceStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure balances schema: %w", err)
	}
	return nil
}

func (p *PostgresBalanceStore) Load(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	out, err := p.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		rows, err := p.db.QueryxContext(ctx, `SELECT account_id, balance FROM balances`)
		if err != nil {
			return nil, fmt.Errorf("select balances: %w", err)
		}
		defer rows.Close()

		balances := make(map[uuid.UUID]decimal.Decimal)
		for rows.Next() {
			var (
				id      uuid.UUID
				balance decimal.Decimal
			)
			if err := rows.Scan(&id, &balance); err != nil {
				return nil, fmt.Errorf("scan balance row: %w", err)
			}
			balances[id] = balance
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate balance rows: %w", err)
		}
		return balances, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(map[uuid.UUID]decimal.Decimal), nil
}

func (p *PostgresBalanceStore) Save(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		const query = `
			INSERT INTO balances (account_id, balance, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (account_id)
			DO UPDATE SET balance = EXCLUDED.balance, updated_at = now()`
		if _, err := p.db.ExecContext(ctx, query, accountID, balance); err != nil {
			return nil, fmt.Errorf("upsert balance: %w", err)
		}
		return nil, nil
	})
	return err
}

// Flush verifies the connection is still live. Saves are write-through, so
// there is nothing buffered to push.
func (p *PostgresBalanceStore) Flush(ctx context.Context) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, p.db.PingContext(ctx)
	})
	return err
}

// Compile-time check: ensure PostgresBalanceStore implements BalanceStore.
var _ interfaces.BalanceStore = (*PostgresBalanceStore)(nil)
