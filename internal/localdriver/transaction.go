package localdriver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/concept"
)

// transaction buffers writes until Commit. All fields after mu are guarded by it.
type transaction struct {
	driver   *Driver
	database string
	typ      concept.TransactionType
	opts     concept.Options
	opened   time.Time

	mu            sync.Mutex
	closed        bool
	pendingTypes  []*thingType
	pendingThings []*thing
}

var _ concept.Transaction = (*transaction)(nil)

func (tx *transaction) Type() concept.TransactionType {
	return tx.typ
}

func (tx *transaction) Options() concept.Options {
	return tx.opts
}

func (tx *transaction) IsOpen() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.usableLocked() == nil
}

func (tx *transaction) Concepts() concept.ConceptManager {
	return &conceptManager{tx: tx}
}

// Commit implements concept.Transaction. The transaction is closed afterwards
// whether or not the commit succeeded.
func (tx *transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.usableLocked(); err != nil {
		return err
	}
	if !tx.typ.IsWrite() {
		return concept.NewDriverError(concept.ErrCodeTransactionReadOnly, "cannot commit a read transaction")
	}

	types, things := tx.pendingTypes, tx.pendingThings
	tx.closeLocked()

	if err := tx.driver.store.apply(ctx, tx.database, types, things); err != nil {
		return err
	}
	tx.driver.log.Debug("transaction committed",
		zap.String("database", tx.database),
		zap.Int("types", len(types)),
		zap.Int("things", len(things)),
	)
	return nil
}

// Rollback implements concept.Transaction.
func (tx *transaction) Rollback(context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.usableLocked(); err != nil {
		return err
	}
	if !tx.typ.IsWrite() {
		return concept.NewDriverError(concept.ErrCodeTransactionReadOnly, "cannot rollback a read transaction")
	}
	tx.pendingTypes = nil
	tx.pendingThings = nil
	return nil
}

// Close implements concept.Transaction. Closing twice is a no-op.
func (tx *transaction) Close() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if !tx.closed {
		tx.closeLocked()
		tx.driver.log.Debug("transaction closed", zap.String("database", tx.database))
	}
	return nil
}

func (tx *transaction) closeLocked() {
	tx.closed = true
	tx.pendingTypes = nil
	tx.pendingThings = nil
}

// usableLocked returns the error any operation on tx should fail with, or nil.
// An expired transaction is closed as a side effect.
func (tx *transaction) usableLocked() error {
	if tx.closed {
		return concept.NewDriverError(concept.ErrCodeTransactionClosed, "transaction is closed")
	}
	if err := tx.driver.checkOpen(); err != nil {
		return err
	}
	if timeout := tx.opts.TransactionTimeout; timeout > 0 && tx.driver.clock.Since(tx.opened) >= timeout {
		tx.closeLocked()
		return concept.NewDriverError(concept.ErrCodeTransactionTimeout, "transaction exceeded timeout of %s", timeout)
	}
	return nil
}
