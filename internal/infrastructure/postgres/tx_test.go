package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records how the transaction ended. Unused pgx.Tx methods panic
// through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) { return b.tx, nil }

func TestWithinTxRollsBackAfterCancel(t *testing.T) {
	t.Parallel()

	db := &fakeBeginner{tx: &fakeTx{}}
	ctx, cancel := context.WithCancel(context.Background())
	failure := errors.New("client went away")

	err := withinTx(ctx, db, nil, func(ctx context.Context) error {
		cancel()
		return failure
	})

	require.ErrorIs(t, err, failure)
	assert.NotContains(t, err.Error(), "rollback")
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestWithinTxCommitsAndJoins(t *testing.T) {
	t.Parallel()

	db := &fakeBeginner{tx: &fakeTx{}}
	var calls int
	err := withinTx(context.Background(), db, nil, func(ctx context.Context) error {
		_, ok := txFrom(ctx)
		assert.True(t, ok)
		return withinTx(ctx, nil, nil, func(context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}
