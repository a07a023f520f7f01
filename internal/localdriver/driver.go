package localdriver

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/concept"
)

// DefaultAddress keeps all data in memory for the lifetime of the driver.
const DefaultAddress = ":memory:"

// IIDGenerator produces identifiers for new things.
type IIDGenerator interface {
	NewIID() string
}

// UUIDGenerator produces time-ordered IIDs from UUIDv7 values.
type UUIDGenerator struct{}

// NewIID returns "0x" followed by the 32 hex digits of a fresh UUIDv7.
func (UUIDGenerator) NewIID() string {
	return "0x" + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// Config configures Open. Zero values select defaults.
type Config struct {
	// Address is the SQLite path. Defaults to DefaultAddress.
	Address string

	// Clock measures transaction timeouts. Defaults to the real clock.
	Clock clockwork.Clock

	// IIDs generates thing identifiers. Defaults to UUIDGenerator.
	IIDs IIDGenerator

	// Logger receives lifecycle events at debug level. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Driver is a concept.Driver backed by a local SQLite database.
type Driver struct {
	store  *store
	clock  clockwork.Clock
	iids   IIDGenerator
	log    *zap.Logger
	closed atomic.Bool
}

var _ concept.Driver = (*Driver)(nil)

// Open creates the store at cfg.Address and returns an open driver.
func Open(cfg Config) (*Driver, error) {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.IIDs == nil {
		cfg.IIDs = UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	st, err := openStore(cfg.Address)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		store: st,
		clock: cfg.Clock,
		iids:  cfg.IIDs,
		log:   cfg.Logger.Named("localdriver"),
	}
	d.log.Debug("driver opened", zap.String("address", cfg.Address))
	return d, nil
}

// IsOpen implements concept.Driver.
func (d *Driver) IsOpen() bool {
	return !d.closed.Load()
}

// Close implements concept.Driver. Closing twice is a no-op.
func (d *Driver) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.log.Debug("driver closed")
	return d.store.close()
}

// Databases implements concept.Driver.
func (d *Driver) Databases() concept.DatabaseManager {
	return &databaseManager{driver: d}
}

// Transaction implements concept.Driver.
func (d *Driver) Transaction(ctx context.Context, database string, typ concept.TransactionType, opts concept.Options) (concept.Transaction, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if typ != concept.Read && typ != concept.Write && typ != concept.Schema {
		return nil, concept.NewDriverError(concept.ErrCodeInvalidArgument, "invalid transaction type %s", typ)
	}

	name := normalizeName(database)
	ok, err := d.store.databaseExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, concept.NewDriverError(concept.ErrCodeDatabaseNotFound, "database %q does not exist", name)
	}

	tx := &transaction{
		driver:   d,
		database: name,
		typ:      typ,
		opts:     opts,
		opened:   d.clock.Now(),
	}
	d.log.Debug("transaction opened",
		zap.String("database", name),
		zap.Stringer("type", typ),
	)
	return tx, nil
}

func (d *Driver) checkOpen() error {
	if d.closed.Load() {
		return concept.NewDriverError(concept.ErrCodeDriverClosed, "driver is closed")
	}
	return nil
}
