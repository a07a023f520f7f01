package steps

import (
	"context"
	"testing"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
	"github.com/roach88/driverbdd/internal/localdriver"
	"github.com/roach88/driverbdd/internal/testutil"
)

// newContext returns a scenario Context whose connection steps open an
// in-memory local driver sharing the returned fake clock.
func newContext(t *testing.T) (*behaviour.Context, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	logger := zaptest.NewLogger(t)
	c := behaviour.New(behaviour.Params{
		Clock:  clock,
		Logger: logger,
		NewDriver: func(context.Context) (concept.Driver, error) {
			return localdriver.Open(localdriver.Config{
				Clock:  clock,
				IIDs:   testutil.NewSequentialIIDs(""),
				Logger: logger,
			})
		},
	})
	t.Cleanup(func() { require.NoError(t, c.Cleanup(context.Background())) })
	return c, clock
}

// connected returns a Context with an open connection and a database named typedb.
func connected(t *testing.T) (*behaviour.Context, clockwork.FakeClock) {
	t.Helper()
	c, clock := newContext(t)
	ctx := context.Background()
	require.NoError(t, OpenConnection(ctx, c))
	require.NoError(t, CreateDatabase(ctx, c, "typedb"))
	return c, clock
}

// table builds a single-column data table.
func table(values ...string) *godog.Table {
	rows := make([]*messages.PickleTableRow, 0, len(values))
	for _, v := range values {
		rows = append(rows, &messages.PickleTableRow{
			Cells: []*messages.PickleTableCell{{Value: v}},
		})
	}
	return &godog.Table{Rows: rows}
}
