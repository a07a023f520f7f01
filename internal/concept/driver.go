package concept

import "context"

// Driver is an open connection to a database server.
type Driver interface {
	// IsOpen reports whether Close has not been called yet.
	IsOpen() bool

	// Databases returns the database manager of this connection.
	Databases() DatabaseManager

	// Transaction opens a transaction on the named database.
	Transaction(ctx context.Context, database string, typ TransactionType, opts Options) (Transaction, error)

	// Close releases the connection. Open transactions become unusable.
	Close() error
}

// DatabaseManager creates, lists and removes databases.
type DatabaseManager interface {
	Create(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (Database, error)
	Contains(ctx context.Context, name string) (bool, error)
	All(ctx context.Context) ([]Database, error)
}

// Database is a handle to one named database.
type Database interface {
	Name() string
	Delete(ctx context.Context) error
}

// Transaction is a unit of work against one database.
type Transaction interface {
	Type() TransactionType
	Options() Options
	IsOpen() bool

	// Concepts exposes the type system and instances visible in this transaction.
	Concepts() ConceptManager

	// Commit makes buffered writes durable and closes the transaction.
	Commit(ctx context.Context) error

	// Rollback discards buffered writes; the transaction stays open.
	Rollback(ctx context.Context) error

	// Close discards buffered writes and closes the transaction.
	Close() error
}

// ConceptManager resolves and creates schema types and their instances.
type ConceptManager interface {
	// GetThingType returns the type with the given label under the root
	// kind, or (nil, nil) when there is none.
	GetThingType(ctx context.Context, kind Kind, label string) (ThingType, error)

	// PutThingType defines a type under the root kind, or returns the
	// existing one when it is already defined with the same kind.
	PutThingType(ctx context.Context, kind Kind, label string) (ThingType, error)

	// CreateThing creates a new instance of the given type.
	CreateThing(ctx context.Context, typ ThingType) (Thing, error)

	// Instances returns every instance of the given type.
	Instances(ctx context.Context, typ ThingType) ([]Thing, error)

	// InstanceCount returns the number of instances of the given type.
	InstanceCount(ctx context.Context, typ ThingType) (int64, error)
}

// ThingType is a handle to a schema type.
type ThingType interface {
	Label() string
	Kind() Kind
	IsRoot() bool
}

// Thing is an instance of a ThingType.
type Thing interface {
	IID() string
	Type() ThingType
}

// ConceptRow is one answer of a match: variable name to bound thing.
type ConceptRow map[string]Thing
