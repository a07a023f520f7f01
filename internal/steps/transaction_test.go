package steps

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
)

// writeRefusingDriver fails every write transaction and records the others.
type writeRefusingDriver struct {
	concept.Driver

	mu     sync.Mutex
	opened []concept.Transaction
}

func (d *writeRefusingDriver) Transaction(ctx context.Context, database string, typ concept.TransactionType, opts concept.Options) (concept.Transaction, error) {
	if typ == concept.Write {
		return nil, concept.NewDriverError(concept.ErrCodeInvalidArgument, "writes refused")
	}
	tx, err := d.Driver.Transaction(ctx, database, typ, opts)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.opened = append(d.opened, tx)
	d.mu.Unlock()
	return tx, nil
}

func TestTransaction_OpenMakesFirstCurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	require.NoError(t, TransactionIsOpen(c, "false"))
	require.NoError(t, OpenTransaction(ctx, c, "read", "typedb"))
	require.NoError(t, OpenTransactions(ctx, c, "typedb", table("write", "schema")))

	assert.Len(t, c.Transactions, 3)
	require.NoError(t, TransactionIsOpen(c, "true"))
	require.NoError(t, TransactionHasType(c, "read"))
	assert.ErrorIs(t, TransactionHasType(c, "write"), ErrExpectation)
	require.NoError(t, TransactionsAreOpen(c, "true"))
}

func TestTransaction_OpenUnknownDatabase(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	err := OpenTransaction(ctx, c, "read", "missing")
	assert.True(t, concept.IsCode(err, concept.ErrCodeDatabaseNotFound))
	assert.Empty(t, c.Transactions)
}

func TestTransaction_OpenBadType(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	assert.ErrorIs(t, OpenTransaction(ctx, c, "admin", "typedb"), ErrInvalidArgument)
}

func TestTransaction_CommitRemovesCurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)
	require.NoError(t, OpenTransactions(ctx, c, "typedb", table("write", "read")))
	committed := c.CurrentTransaction()

	require.NoError(t, CommitTransaction(ctx, c))

	assert.False(t, committed.IsOpen())
	require.Len(t, c.Transactions, 1)
	require.NoError(t, TransactionHasType(c, "read"))
}

func TestTransaction_CommitThrows(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	require.NoError(t, OpenTransaction(ctx, c, "read", "typedb"))
	require.NoError(t, CommitTransactionThrows(ctx, c))

	require.NoError(t, OpenTransaction(ctx, c, "write", "typedb"))
	assert.ErrorIs(t, CommitTransactionThrows(ctx, c), ErrExpectation)

	assert.ErrorIs(t, CommitTransactionThrows(ctx, c), behaviour.ErrNoTransaction)
}

func TestTransaction_CloseKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)
	require.NoError(t, OpenTransaction(ctx, c, "write", "typedb"))

	require.NoError(t, CloseTransaction(c))

	require.Len(t, c.Transactions, 1)
	require.NoError(t, TransactionIsOpen(c, "false"))
	require.NoError(t, TransactionsAreOpen(c, "false"))
	assert.Error(t, CommitTransaction(ctx, c), "closed transaction cannot commit")
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	require.NoError(t, OpenTransaction(ctx, c, "schema", "typedb"))
	require.NoError(t, PutThingType(ctx, c, "entity", "person"))
	require.NoError(t, RollbackTransaction(ctx, c))
	require.NoError(t, ThingTypeExists(ctx, c, "entity", "person", "false"))
	require.NoError(t, TransactionIsOpen(c, "true"))
}

func TestTransaction_WithoutCurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	assert.ErrorIs(t, CloseTransaction(c), behaviour.ErrNoTransaction)
	assert.ErrorIs(t, RollbackTransaction(ctx, c), behaviour.ErrNoTransaction)
	assert.ErrorIs(t, TransactionHasType(c, "read"), behaviour.ErrNoTransaction)
	assert.ErrorIs(t, TransactionsAreOpen(c, "true"), behaviour.ErrNoTransaction)
}

func TestTransaction_InParallel(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)
	c.ThreadPoolSize = 2

	require.NoError(t, OpenTransactionsInParallel(ctx, c, "typedb", table("read", "write", "schema", "read", "write")))

	require.Len(t, c.TransactionsParallel, 5)
	require.NoError(t, TransactionsInParallelAreOpen(c, "true"))
	assert.Equal(t, concept.Write, c.TransactionsParallel[1].Type(), "table order is kept")
	assert.Equal(t, concept.Schema, c.TransactionsParallel[2].Type())
	assert.Nil(t, c.CurrentTransaction(), "parallel transactions are not current")
}

func TestTransaction_InParallelFailureLeavesSequenceUnchanged(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)
	d := &writeRefusingDriver{Driver: c.Driver}
	c.Driver = d

	err := OpenTransactionsInParallel(ctx, c, "typedb", table("read", "read", "write", "read"))

	require.Error(t, err)
	assert.True(t, concept.IsCode(err, concept.ErrCodeInvalidArgument))
	assert.Empty(t, c.TransactionsParallel)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, tx := range d.opened {
		assert.False(t, tx.IsOpen(), "transactions opened before the failure must be closed")
	}
}

func TestTransaction_OptionsApplyToLaterTransactions(t *testing.T) {
	ctx := context.Background()
	c, _ := connected(t)

	require.NoError(t, SetTransactionOption(c, "infer", "true"))
	require.NoError(t, SetTransactionOption(c, "transaction-timeout-millis", "1500"))
	require.NoError(t, OpenTransaction(ctx, c, "read", "typedb"))

	opts := c.CurrentTransaction().Options()
	assert.True(t, opts.Infer)
	assert.Equal(t, 1500*time.Millisecond, opts.TransactionTimeout)

	assert.ErrorIs(t, SetTransactionOption(c, "nonsense", "1"), behaviour.ErrUnknownOption)
}

func TestTransaction_TimeoutClosesTransaction(t *testing.T) {
	ctx := context.Background()
	c, clock := connected(t)
	require.NoError(t, SetTransactionOption(c, "transaction-timeout-millis", "1000"))
	require.NoError(t, OpenTransaction(ctx, c, "write", "typedb"))

	clock.Advance(999 * time.Millisecond)
	require.NoError(t, TransactionIsOpen(c, "true"))

	clock.Advance(time.Millisecond)
	require.NoError(t, TransactionIsOpen(c, "false"))
	err := CommitTransaction(ctx, c)
	assert.True(t, concept.IsCode(err, concept.ErrCodeTransactionClosed))
}
