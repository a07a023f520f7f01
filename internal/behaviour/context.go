package behaviour

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/concept"
)

// DefaultThreadPoolSize bounds the goroutines used by the parallel steps.
const DefaultThreadPoolSize = 32

// DriverFactory opens a new driver connection.
type DriverFactory func(ctx context.Context) (concept.Driver, error)

// Config is a free-form bag for scenario-to-step communication not covered
// by the typed fields of Context.
type Config struct {
	UserData map[string]any
}

// Params configures New. Zero values select defaults.
type Params struct {
	ThreadPoolSize int
	NewDriver      DriverFactory
	Clock          clockwork.Clock
	Logger         *zap.Logger

	// ReattemptLimit defaults to 1, which disables reattempts.
	ReattemptLimit int

	// ReattemptSleep defaults to DefaultReattemptSleep.
	ReattemptSleep time.Duration

	SettleDelay time.Duration
}

// Context is the state of one scenario.
type Context struct {
	// Table is the data table attached to the step being executed, if any.
	Table *godog.Table

	// ThreadPoolSize limits the parallel steps.
	ThreadPoolSize int

	// Driver is nil until a connection step opens one.
	Driver concept.Driver

	// NewDriver is used by the connection steps to open Driver.
	NewDriver DriverFactory

	// Transactions are the open transactions; the head is the current one.
	Transactions []concept.Transaction

	// TransactionsParallel are opened by the parallel steps and managed
	// independently of Transactions.
	TransactionsParallel []concept.Transaction

	// TransactionOptions apply to transactions opened by later steps.
	TransactionOptions concept.Options

	// OptionSetters maps option names to their setters.
	OptionSetters map[string]OptionSetter

	// Answers and ValueAnswer hold the results of the most recent query;
	// nil means no result was captured.
	Answers     []concept.ConceptRow
	ValueAnswer *concept.Value

	Config Config

	// Clock is used by steps that wait.
	Clock clockwork.Clock

	// ReattemptLimit and ReattemptSleep bound Reattempt.
	ReattemptLimit int
	ReattemptSleep time.Duration

	// SettleDelay is slept before Cleanup releases anything, giving a
	// remote server time to finish work started by the last step.
	SettleDelay time.Duration

	Logger *zap.Logger

	things map[string]concept.Thing
	tz     *timeZoneState
}

// New creates the Context for one scenario.
func New(p Params) *Context {
	if p.ThreadPoolSize <= 0 {
		p.ThreadPoolSize = DefaultThreadPoolSize
	}
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.ReattemptLimit <= 0 {
		p.ReattemptLimit = 1
	}
	if p.ReattemptSleep <= 0 {
		p.ReattemptSleep = DefaultReattemptSleep
	}
	return &Context{
		ThreadPoolSize: p.ThreadPoolSize,
		NewDriver:      p.NewDriver,
		OptionSetters:  DefaultOptionSetters(),
		Config:         Config{UserData: make(map[string]any)},
		Clock:          p.Clock,
		Logger:         p.Logger,
		ReattemptLimit: p.ReattemptLimit,
		ReattemptSleep: p.ReattemptSleep,
		SettleDelay:    p.SettleDelay,
		things:         make(map[string]concept.Thing),
	}
}

// CurrentTransaction returns the head of Transactions, or nil if none is open.
func (c *Context) CurrentTransaction() concept.Transaction {
	if len(c.Transactions) == 0 {
		return nil
	}
	return c.Transactions[0]
}

// PushTransaction appends tx to Transactions.
func (c *Context) PushTransaction(tx concept.Transaction) {
	c.Transactions = append(c.Transactions, tx)
}

// TakeTransaction removes and returns the current transaction.
func (c *Context) TakeTransaction() (concept.Transaction, error) {
	if len(c.Transactions) == 0 {
		return nil, ErrNoTransaction
	}
	tx := c.Transactions[0]
	c.Transactions[0] = nil
	c.Transactions = c.Transactions[1:]
	return tx, nil
}

// SetTransactions closes the current transactions and replaces them.
func (c *Context) SetTransactions(txs []concept.Transaction) error {
	err := closeAll(c.Transactions)
	c.Transactions = txs
	return err
}

// RequireDriver returns Driver or ErrNoDriver.
func (c *Context) RequireDriver() (concept.Driver, error) {
	if c.Driver == nil {
		return nil, ErrNoDriver
	}
	return c.Driver, nil
}

// SetDriver replaces the driver and clears captured answers. A different
// previous driver that is still open is closed; its close error is returned.
func (c *Context) SetDriver(d concept.Driver) error {
	prev := c.Driver
	c.Driver = d
	c.ClearAnswers()
	if prev == nil || prev == d || !prev.IsOpen() {
		return nil
	}
	if err := prev.Close(); err != nil {
		return fmt.Errorf("close previous driver: %w", err)
	}
	return nil
}

// Put binds thing to the variable name, replacing any previous binding.
func (c *Context) Put(name string, thing concept.Thing) {
	c.things[name] = thing
}

// Get returns the thing bound to name.
func (c *Context) Get(name string) (concept.Thing, error) {
	thing, ok := c.things[name]
	if !ok {
		return nil, fmt.Errorf("$%s: %w", name, ErrThingNotFound)
	}
	return thing, nil
}

// GetThingType resolves a type through the current transaction. Driver
// errors are returned unchanged.
func (c *Context) GetThingType(ctx context.Context, kind concept.Kind, label string) (concept.ThingType, error) {
	tx := c.CurrentTransaction()
	if tx == nil {
		return nil, fmt.Errorf("%s(%s): %w", kind, label, ErrNoTransaction)
	}
	typ, err := tx.Concepts().GetThingType(ctx, kind, label)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, fmt.Errorf("%s(%s): %w", kind, label, ErrTypeNotFound)
	}
	return typ, nil
}

// ClearAnswers forgets the captured query results.
func (c *Context) ClearAnswers() {
	c.Answers = nil
	c.ValueAnswer = nil
}

// Cleanup releases everything the scenario acquired: transactions in both
// sequences are closed, every database is deleted, the driver is closed,
// captured state is cleared and the process time zone is restored. All
// errors are returned joined.
//
// Cleanup first sleeps SettleDelay on Clock. If the scenario closed its
// connection, a new one is opened with NewDriver to delete the databases,
// since they outlive the connection.
func (c *Context) Cleanup(ctx context.Context) error {
	if c.SettleDelay > 0 {
		c.Clock.Sleep(c.SettleDelay)
	}

	var errs []error

	errs = append(errs, closeAll(c.Transactions), closeAll(c.TransactionsParallel))
	c.Transactions = nil
	c.TransactionsParallel = nil

	if d := c.Driver; d != nil {
		if !d.IsOpen() && c.NewDriver != nil {
			reopened, err := c.NewDriver(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("reconnect for cleanup: %w", err))
			} else {
				d = reopened
			}
		}
		if d.IsOpen() {
			errs = append(errs, deleteAllDatabases(ctx, d))
			if err := d.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close driver: %w", err))
			}
		}
	}
	errs = append(errs, c.SetDriver(nil))

	c.TransactionOptions = concept.Options{}
	c.things = make(map[string]concept.Thing)
	c.Config.UserData = make(map[string]any)
	c.Table = nil

	if err := c.RestoreTimeZone(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func closeAll(txs []concept.Transaction) error {
	var errs []error
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if err := tx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close transaction: %w", err))
		}
	}
	return errors.Join(errs...)
}

func deleteAllDatabases(ctx context.Context, d concept.Driver) error {
	dbs, err := d.Databases().All(ctx)
	if err != nil {
		return fmt.Errorf("list databases: %w", err)
	}
	var errs []error
	for _, db := range dbs {
		if err := db.Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delete database %q: %w", db.Name(), err))
		}
	}
	return errors.Join(errs...)
}
