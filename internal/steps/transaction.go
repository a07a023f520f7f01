package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
)

// OpenTransaction opens a transaction with the Context's transaction options
// and appends it to Transactions.
func OpenTransaction(ctx context.Context, c *behaviour.Context, txType, database string) error {
	typ, err := parseTransactionType(txType)
	if err != nil {
		return err
	}
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	tx, err := d.Transaction(ctx, database, typ, c.TransactionOptions)
	if err != nil {
		return err
	}
	c.PushTransaction(tx)
	c.Logger.Debug("transaction opened", zap.String("database", database), zap.Stringer("type", typ))
	return nil
}

// OpenTransactions opens one transaction per type listed in the table, in order.
func OpenTransactions(ctx context.Context, c *behaviour.Context, database string, table *godog.Table) error {
	for _, txType := range cells(table) {
		if err := OpenTransaction(ctx, c, txType, database); err != nil {
			return err
		}
	}
	return nil
}

// OpenTransactionsInParallel opens one transaction per type listed in the
// table concurrently and appends them to TransactionsParallel in table
// order. If any open fails, the ones that succeeded are closed and
// TransactionsParallel is left unchanged.
func OpenTransactionsInParallel(ctx context.Context, c *behaviour.Context, database string, table *godog.Table) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}

	names := cells(table)
	types := make([]concept.TransactionType, len(names))
	for i, name := range names {
		if types[i], err = parseTransactionType(name); err != nil {
			return err
		}
	}

	opened := make([]concept.Transaction, len(types))
	indexes := make([]int, len(types))
	for i := range indexes {
		indexes[i] = i
	}
	opts := c.TransactionOptions
	err = inParallel(ctx, c.ThreadPoolSize, indexes, func(ctx context.Context, i int) error {
		tx, err := d.Transaction(ctx, database, types[i], opts)
		if err != nil {
			return err
		}
		opened[i] = tx
		return nil
	})
	if err != nil {
		return errors.Join(err, closeTransactions(opened))
	}

	c.TransactionsParallel = append(c.TransactionsParallel, opened...)
	return nil
}

// TransactionIsOpen checks the open state of the current transaction. With
// no current transaction the state is closed.
func TransactionIsOpen(c *behaviour.Context, expected string) error {
	want, err := parseBool(expected)
	if err != nil {
		return err
	}
	tx := c.CurrentTransaction()
	got := tx != nil && tx.IsOpen()
	if got != want {
		return fmt.Errorf("%w: transaction is open: %t, expected %t", ErrExpectation, got, want)
	}
	return nil
}

// TransactionsAreOpen checks the open state of every transaction in Transactions.
func TransactionsAreOpen(c *behaviour.Context, expected string) error {
	return expectAllOpen(c.Transactions, expected)
}

// TransactionsInParallelAreOpen checks the open state of every parallel transaction.
func TransactionsInParallelAreOpen(c *behaviour.Context, expected string) error {
	return expectAllOpen(c.TransactionsParallel, expected)
}

// TransactionHasType checks the type of the current transaction.
func TransactionHasType(c *behaviour.Context, txType string) error {
	want, err := parseTransactionType(txType)
	if err != nil {
		return err
	}
	tx := c.CurrentTransaction()
	if tx == nil {
		return behaviour.ErrNoTransaction
	}
	if tx.Type() != want {
		return fmt.Errorf("%w: transaction has type %s, expected %s", ErrExpectation, tx.Type(), want)
	}
	return nil
}

// CommitTransaction removes the current transaction from Transactions and commits it.
func CommitTransaction(ctx context.Context, c *behaviour.Context) error {
	tx, err := c.TakeTransaction()
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CommitTransactionThrows expects committing the current transaction to fail.
func CommitTransactionThrows(ctx context.Context, c *behaviour.Context) error {
	tx, err := c.TakeTransaction()
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err == nil {
		return fmt.Errorf("%w: commit succeeded", ErrExpectation)
	}
	return nil
}

// CloseTransaction closes the current transaction. It stays at the head of
// Transactions so later steps can observe that it is closed.
func CloseTransaction(c *behaviour.Context) error {
	tx := c.CurrentTransaction()
	if tx == nil {
		return behaviour.ErrNoTransaction
	}
	return tx.Close()
}

// RollbackTransaction discards the current transaction's writes.
func RollbackTransaction(ctx context.Context, c *behaviour.Context) error {
	tx := c.CurrentTransaction()
	if tx == nil {
		return behaviour.ErrNoTransaction
	}
	return tx.Rollback(ctx)
}

// SetTransactionOption applies a named option to transactions opened afterwards.
func SetTransactionOption(c *behaviour.Context, name, value string) error {
	return c.SetOption(name, value)
}

func expectAllOpen(txs []concept.Transaction, expected string) error {
	want, err := parseBool(expected)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return behaviour.ErrNoTransaction
	}
	for i, tx := range txs {
		if tx.IsOpen() != want {
			return fmt.Errorf("%w: transaction %d is open: %t, expected %t", ErrExpectation, i, !want, want)
		}
	}
	return nil
}

func closeTransactions(txs []concept.Transaction) error {
	var errs []error
	for _, tx := range txs {
		if tx != nil {
			errs = append(errs, tx.Close())
		}
	}
	return errors.Join(errs...)
}
