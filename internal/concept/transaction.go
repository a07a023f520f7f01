package concept

import (
	"fmt"
	"time"
)

// TransactionType selects what a transaction may do.
type TransactionType int

const (
	Read TransactionType = iota + 1
	Write
	Schema
)

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	switch t {
	case Read:
		return "read"
	case Write:
		return "write"
	case Schema:
		return "schema"
	default:
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
}

// IsWrite reports whether the transaction may write data or schema.
func (t TransactionType) IsWrite() bool {
	return t == Write || t == Schema
}

// ParseTransactionType converts "read", "write" or "schema" into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "schema":
		return Schema, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q: must be one of read, write, schema", s)
}

// Options configures a transaction. Zero values mean driver defaults.
type Options struct {
	// Infer enables rule inference on reads.
	Infer bool

	// Explain keeps explanations for inferred answers.
	Explain bool

	// Parallel allows the server to evaluate a query in parallel.
	Parallel bool

	// PrefetchSize is the number of answers streamed per batch.
	PrefetchSize int

	// TransactionTimeout closes the transaction once it has been open this long.
	TransactionTimeout time.Duration

	// SchemaLockAcquireTimeout bounds the wait for the schema lock.
	SchemaLockAcquireTimeout time.Duration
}
