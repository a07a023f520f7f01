package steps

import (
	"context"

	"github.com/cucumber/godog"

	"github.com/roach88/driverbdd/internal/behaviour"
)

// Definition is one step pattern and the function it runs.
type Definition struct {
	// Pattern is the godog regular expression matched against step text.
	Pattern string

	// Description is shown by "driverbdd steps".
	Description string

	// bind returns the godog step function for the scenario's Context.
	bind func(c *behaviour.Context) any
}

var definitions = []Definition{
	// Utility
	{
		Pattern:     `^set time-zone: (.+)$`,
		Description: "set the process time zone (restored after the scenario)",
		bind: func(c *behaviour.Context) any {
			return func(name string) error { return SetTimeZone(c, name) }
		},
	},
	{
		Pattern:     `^wait (\S+) seconds$`,
		Description: "block for a decimal number of seconds",
		bind: func(c *behaviour.Context) any {
			return func(seconds string) error { return Wait(c, seconds) }
		},
	},

	// Connection
	{
		Pattern:     `^connection opens with default authentication$`,
		Description: "open a driver connection",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context) error { return OpenConnection(ctx, c) }
		},
	},
	{
		Pattern:     `^connection closes$`,
		Description: "close all transactions and the connection",
		bind: func(c *behaviour.Context) any {
			return func() error { return CloseConnection(c) }
		},
	},
	{
		Pattern:     `^connection is open: (true|false)$`,
		Description: "check whether the connection is open",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return ConnectionIsOpen(c, expected) }
		},
	},

	// Databases
	{
		Pattern:     `^connection create database: (\S+)$`,
		Description: "create a database",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, name string) error { return CreateDatabase(ctx, c, name) }
		},
	},
	{
		Pattern:     `^connection create databases:$`,
		Description: "create the databases listed in the table",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error { return CreateDatabases(ctx, c, table) }
		},
	},
	{
		Pattern:     `^connection create databases in parallel:$`,
		Description: "create the databases listed in the table concurrently",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error {
				return CreateDatabasesInParallel(ctx, c, table)
			}
		},
	},
	{
		Pattern:     `^connection delete database: (\S+)$`,
		Description: "delete a database",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, name string) error { return DeleteDatabase(ctx, c, name) }
		},
	},
	{
		Pattern:     `^connection delete databases:$`,
		Description: "delete the databases listed in the table",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error { return DeleteDatabases(ctx, c, table) }
		},
	},
	{
		Pattern:     `^connection delete databases in parallel:$`,
		Description: "delete the databases listed in the table concurrently",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error {
				return DeleteDatabasesInParallel(ctx, c, table)
			}
		},
	},
	{
		Pattern:     `^connection delete database; throws exception: (\S+)$`,
		Description: "expect deleting a database to fail",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, name string) error { return DeleteDatabaseThrows(ctx, c, name) }
		},
	},
	{
		Pattern:     `^connection has database: (\S+)$`,
		Description: "check that a database exists",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, name string) error { return HasDatabase(ctx, c, name) }
		},
	},
	{
		Pattern:     `^connection has databases:$`,
		Description: "check that exactly the databases in the table exist",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error { return HasDatabases(ctx, c, table) }
		},
	},
	{
		Pattern:     `^connection does not have database: (\S+)$`,
		Description: "check that a database does not exist",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, name string) error { return DoesNotHaveDatabase(ctx, c, name) }
		},
	},
	{
		Pattern:     `^connection does not have databases:$`,
		Description: "check that none of the databases in the table exist",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, table *godog.Table) error {
				return DoesNotHaveDatabases(ctx, c, table)
			}
		},
	},
	{
		Pattern:     `^connection does not have any database$`,
		Description: "check that the connection has no databases",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context) error { return DoesNotHaveAnyDatabase(ctx, c) }
		},
	},

	// Transactions
	{
		Pattern:     `^connection open (read|write|schema) transaction for database: (\S+)$`,
		Description: "open a transaction and make it current if none is",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, txType, database string) error {
				return OpenTransaction(ctx, c, txType, database)
			}
		},
	},
	{
		Pattern:     `^connection open transactions for database: (\S+), of type:$`,
		Description: "open one transaction per type in the table",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, database string, table *godog.Table) error {
				return OpenTransactions(ctx, c, database, table)
			}
		},
	},
	{
		Pattern:     `^connection open transactions in parallel for database: (\S+), of type:$`,
		Description: "open one parallel transaction per type in the table concurrently",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, database string, table *godog.Table) error {
				return OpenTransactionsInParallel(ctx, c, database, table)
			}
		},
	},
	{
		Pattern:     `^transaction is open: (true|false)$`,
		Description: "check whether the current transaction is open",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return TransactionIsOpen(c, expected) }
		},
	},
	{
		Pattern:     `^transactions are open: (true|false)$`,
		Description: "check whether every transaction is open",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return TransactionsAreOpen(c, expected) }
		},
	},
	{
		Pattern:     `^transactions in parallel are open: (true|false)$`,
		Description: "check whether every parallel transaction is open",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return TransactionsInParallelAreOpen(c, expected) }
		},
	},
	{
		Pattern:     `^transaction has type: (read|write|schema)$`,
		Description: "check the type of the current transaction",
		bind: func(c *behaviour.Context) any {
			return func(txType string) error { return TransactionHasType(c, txType) }
		},
	},
	{
		Pattern:     `^transaction commits$`,
		Description: "commit the current transaction and drop it",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context) error { return CommitTransaction(ctx, c) }
		},
	},
	{
		Pattern:     `^transaction commits; throws exception$`,
		Description: "expect committing the current transaction to fail",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context) error { return CommitTransactionThrows(ctx, c) }
		},
	},
	{
		Pattern:     `^transaction closes$`,
		Description: "close the current transaction",
		bind: func(c *behaviour.Context) any {
			return func() error { return CloseTransaction(c) }
		},
	},
	{
		Pattern:     `^transaction rollbacks$`,
		Description: "discard the current transaction's writes",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context) error { return RollbackTransaction(ctx, c) }
		},
	},
	{
		Pattern:     `^set transaction option (\S+) to: (\S+)$`,
		Description: "set an option for transactions opened afterwards",
		bind: func(c *behaviour.Context) any {
			return func(name, value string) error { return SetTransactionOption(c, name, value) }
		},
	},

	// Concepts
	{
		Pattern:     `^put (entity|relation|attribute) type: (\S+)$`,
		Description: "define a type in the current transaction",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, kind, label string) error { return PutThingType(ctx, c, kind, label) }
		},
	},
	{
		Pattern:     `^(entity|relation|attribute)\((\S+)\) exists: (true|false)$`,
		Description: "check whether a type is visible in the current transaction",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, kind, label, expected string) error {
				return ThingTypeExists(ctx, c, kind, label, expected)
			}
		},
	},
	{
		Pattern:     `^(entity|relation|attribute)\((\S+)\) create new instance; assign: \$(\S+)$`,
		Description: "create an instance and bind it to a variable",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, kind, label, variable string) error {
				return CreateInstance(ctx, c, kind, label, variable)
			}
		},
	},
	{
		Pattern:     `^\$(\S+) exists: (true|false)$`,
		Description: "check whether a variable is bound",
		bind: func(c *behaviour.Context) any {
			return func(variable, expected string) error { return ThingExists(c, variable, expected) }
		},
	},
	{
		Pattern:     `^\$(\S+) has type: (\S+)$`,
		Description: "check the type label of a bound thing",
		bind: func(c *behaviour.Context) any {
			return func(variable, label string) error { return ThingHasType(c, variable, label) }
		},
	},
	{
		Pattern:     `^get instances of (entity|relation|attribute)\((\S+)\)$`,
		Description: "capture every instance of a type as answers",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, kind, label string) error { return GetInstances(ctx, c, kind, label) }
		},
	},
	{
		Pattern:     `^get instance count of (entity|relation|attribute)\((\S+)\)$`,
		Description: "capture the number of instances of a type as the value answer",
		bind: func(c *behaviour.Context) any {
			return func(ctx context.Context, kind, label string) error {
				return GetInstanceCount(ctx, c, kind, label)
			}
		},
	},
	{
		Pattern:     `^answer size is: (\d+)$`,
		Description: "check the number of captured answers",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return AnswerSizeIs(c, expected) }
		},
	},
	{
		Pattern:     `^value answer is: (.+)$`,
		Description: "check the captured value answer",
		bind: func(c *behaviour.Context) any {
			return func(expected string) error { return ValueAnswerIs(c, expected) }
		},
	},
	{
		Pattern:     `^answers are cleared$`,
		Description: "forget captured answers",
		bind: func(c *behaviour.Context) any {
			return func() error { return ClearAnswers(c) }
		},
	},
	{
		Pattern:     `^answers are absent$`,
		Description: "check that no answers are captured",
		bind: func(c *behaviour.Context) any {
			return func() error { return AnswersAreAbsent(c) }
		},
	},
}

// Definitions returns every step definition in registration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Register binds every step definition to c on the scenario context.
func Register(sc *godog.ScenarioContext, c *behaviour.Context) {
	for _, d := range definitions {
		sc.Step(d.Pattern, d.bind(c))
	}
}
