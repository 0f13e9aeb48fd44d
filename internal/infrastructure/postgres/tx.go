package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner opens transactions; *pgxpool.Pool satisfies it.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// conn returns the transaction bound to ctx, or the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return pool
}

// withinTx joins the transaction already bound to ctx or opens a new one.
// The transaction is rolled back when fn returns an error or panics.
func withinTx(ctx context.Context, db beginner, logger *logrus.Logger, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(context.Background()); rbErr != nil && logger != nil {
				logger.WithError(rbErr).Error("rollback after panic failed")
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		// ctx may already be cancelled; the rollback must still reach the server
		if rbErr := tx.Rollback(context.Background()); rbErr != nil {
			if logger != nil {
				logger.WithError(rbErr).WithField("cause", err.Error()).Error("rollback failed")
			}
			return fmt.Errorf("rollback: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", MapError(err))
	}
	return nil
}

// TxManager runs application use cases inside a single pgx transaction.
type TxManager struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *logrus.Logger) *TxManager {
	return &TxManager{pool: pool, logger: logger}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, m.pool, m.logger, fn)
}

var _ repository.Transactor = (*TxManager)(nil)
