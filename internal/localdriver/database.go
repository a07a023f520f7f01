package localdriver

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/concept"
)

type databaseManager struct {
	driver *Driver
}

func (m *databaseManager) Create(ctx context.Context, name string) error {
	if err := m.driver.checkOpen(); err != nil {
		return err
	}
	name = normalizeName(name)
	if err := validateName("database name", name); err != nil {
		return err
	}
	if err := m.driver.store.createDatabase(ctx, name); err != nil {
		return err
	}
	m.driver.log.Debug("database created", zap.String("database", name))
	return nil
}

func (m *databaseManager) Get(ctx context.Context, name string) (concept.Database, error) {
	if err := m.driver.checkOpen(); err != nil {
		return nil, err
	}
	name = normalizeName(name)
	ok, err := m.driver.store.databaseExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, concept.NewDriverError(concept.ErrCodeDatabaseNotFound, "database %q does not exist", name)
	}
	return &database{driver: m.driver, name: name}, nil
}

func (m *databaseManager) Contains(ctx context.Context, name string) (bool, error) {
	if err := m.driver.checkOpen(); err != nil {
		return false, err
	}
	return m.driver.store.databaseExists(ctx, normalizeName(name))
}

// All returns every database sorted by name.
func (m *databaseManager) All(ctx context.Context) ([]concept.Database, error) {
	if err := m.driver.checkOpen(); err != nil {
		return nil, err
	}
	names, err := m.driver.store.listDatabases(ctx)
	if err != nil {
		return nil, err
	}
	dbs := make([]concept.Database, 0, len(names))
	for _, name := range names {
		dbs = append(dbs, &database{driver: m.driver, name: name})
	}
	return dbs, nil
}

type database struct {
	driver *Driver
	name   string
}

func (db *database) Name() string {
	return db.name
}

// Delete removes the database with all of its types and things.
func (db *database) Delete(ctx context.Context) error {
	if err := db.driver.checkOpen(); err != nil {
		return err
	}
	if err := db.driver.store.deleteDatabase(ctx, db.name); err != nil {
		return err
	}
	db.driver.log.Debug("database deleted", zap.String("database", db.name))
	return nil
}
