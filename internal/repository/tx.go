package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partline/marketplace/internal/port"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs standalone or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the pool and hands transaction-scoped repositories to
// lifecycle operations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Repositories returns pool-backed repositories for reads outside a
// lifecycle transaction.
func (s *Store) Repositories() port.Repositories {
	return newRepositories(s.pool)
}

func (s *Store) WithinTx(ctx context.Context, fn func(r port.Repositories) error) (txErr error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	// Ensure proper rollback handling
	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

func newRepositories(db DB) port.Repositories {
	return port.Repositories{
		OrderRequests: NewOrderRequest(db),
		Offers:        NewOffer(db),
		Notifications: NewNotification(db),
		Stock:         NewStock(db),
		Users:         NewUser(db),
	}
}
