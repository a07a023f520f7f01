package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/driverbdd/internal/behaviour"
)

// OpenConnection opens a driver with the Context's factory. A driver left
// open by an earlier step is closed.
func OpenConnection(ctx context.Context, c *behaviour.Context) error {
	if c.NewDriver == nil {
		return errors.New("open connection: no driver factory configured")
	}
	d, err := c.NewDriver(ctx)
	if err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	if err := c.SetDriver(d); err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	return nil
}

// CloseConnection closes every transaction and the driver.
func CloseConnection(c *behaviour.Context) error {
	d, err := c.RequireDriver()
	if err != nil {
		return err
	}
	txErr := c.SetTransactions(nil)
	parallel := c.TransactionsParallel
	c.TransactionsParallel = nil
	return errors.Join(txErr, closeTransactions(parallel), d.Close())
}

// ConnectionIsOpen checks the open state of the driver.
func ConnectionIsOpen(c *behaviour.Context, expected string) error {
	want, err := parseBool(expected)
	if err != nil {
		return err
	}
	got := c.Driver != nil && c.Driver.IsOpen()
	if got != want {
		return fmt.Errorf("%w: connection is open: %t, expected %t", ErrExpectation, got, want)
	}
	return nil
}
