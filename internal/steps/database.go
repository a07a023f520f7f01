package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
)

// CreateDatabase creates one database.
func CreateDatabase(ctx context.Context, c *behaviour.Context, name string) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	return d.Databases().Create(ctx, name)
}

// CreateDatabases creates every database named in the table, in order.
func CreateDatabases(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	for _, name := range cells(table) {
		if err := CreateDatabase(ctx, c, name); err != nil {
			return err
		}
	}
	return nil
}

// CreateDatabasesInParallel creates the databases named in the table
// concurrently, at most ThreadPoolSize at a time. The first failure is
// returned once all creations have finished.
func CreateDatabasesInParallel(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	return inParallel(ctx, c.ThreadPoolSize, cells(table), func(ctx context.Context, name string) error {
		return d.Databases().Create(ctx, name)
	})
}

// DeleteDatabase deletes one database.
func DeleteDatabase(ctx context.Context, c *behaviour.Context, name string) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	db, err := d.Databases().Get(ctx, name)
	if err != nil {
		return err
	}
	return db.Delete(ctx)
}

// DeleteDatabases deletes every database named in the table, in order.
func DeleteDatabases(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	for _, name := range cells(table) {
		if err := DeleteDatabase(ctx, c, name); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDatabasesInParallel deletes the databases named in the table concurrently.
func DeleteDatabasesInParallel(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	if _, err := c.RequireDriver(); err != nil {
		return err
	}
	return inParallel(ctx, c.ThreadPoolSize, cells(table), func(ctx context.Context, name string) error {
		return DeleteDatabase(ctx, c, name)
	})
}

// DeleteDatabaseThrows expects deleting the database to fail with a driver error.
func DeleteDatabaseThrows(ctx context.Context, c *behaviour.Context, name string) error {
	err := DeleteDatabase(ctx, c, name)
	if err == nil {
		return fmt.Errorf("%w: deleting database %q succeeded", ErrExpectation, name)
	}
	if !concept.IsDriverError(err) {
		return fmt.Errorf("deleting database %q failed outside the driver: %w", name, err)
	}
	return nil
}

// HasDatabase checks that the database exists.
func HasDatabase(ctx context.Context, c *behaviour.Context, name string) error {
	return expectDatabase(ctx, c, name, true)
}

// HasDatabases checks that every database named in the table exists and that
// no others do.
func HasDatabases(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	names := cells(table)
	for _, name := range names {
		if err := HasDatabase(ctx, c, name); err != nil {
			return err
		}
	}
	return c.Reattempt(ctx, func() error {
		all, err := d.Databases().All(ctx)
		if err != nil {
			return err
		}
		if len(all) != len(names) {
			return fmt.Errorf("%w: connection has %d databases, expected %d", ErrExpectation, len(all), len(names))
		}
		return nil
	})
}

// DoesNotHaveDatabase checks that the database does not exist.
func DoesNotHaveDatabase(ctx context.Context, c *behaviour.Context, name string) error {
	return expectDatabase(ctx, c, name, false)
}

// DoesNotHaveDatabases checks that none of the databases in the table exist.
func DoesNotHaveDatabases(ctx context.Context, c *behaviour.Context, table *godog.Table) error {
	for _, name := range cells(table) {
		if err := DoesNotHaveDatabase(ctx, c, name); err != nil {
			return err
		}
	}
	return nil
}

// DoesNotHaveAnyDatabase checks that the connection is open and has no databases.
func DoesNotHaveAnyDatabase(ctx context.Context, c *behaviour.Context) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	if !d.IsOpen() {
		return fmt.Errorf("%w: connection is closed", ErrExpectation)
	}
	return c.Reattempt(ctx, func() error {
		all, err := d.Databases().All(ctx)
		if err != nil {
			return err
		}
		if len(all) != 0 {
			return fmt.Errorf("%w: connection has %d databases, expected none", ErrExpectation, len(all))
		}
		return nil
	})
}

// expectDatabase reattempts the check so a server that applies database
// changes asynchronously is given time to catch up.
func expectDatabase(ctx context.Context, c *behaviour.Context, name string, want bool) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	return c.Reattempt(ctx, func() error {
		got, err := d.Databases().Contains(ctx, name)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: database %q exists: %t, expected %t", ErrExpectation, name, got, want)
		}
		return nil
	})
}

// inParallel runs fn for every item with at most limit goroutines and
// returns the first error after all of them have finished.
func inParallel[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
