package behaviour

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/driverbdd/internal/concept"
	"github.com/roach88/driverbdd/internal/localdriver"
	"github.com/roach88/driverbdd/internal/testutil"
)

type stubThing struct {
	iid string
}

func (s *stubThing) IID() string             { return s.iid }
func (s *stubThing) Type() concept.ThingType { return nil }

// newConnectedContext returns a Context with an open local driver and one
// database named "typedb".
func newConnectedContext(t *testing.T) *Context {
	t.Helper()
	d, err := localdriver.Open(localdriver.Config{
		IIDs:   testutil.NewSequentialIIDs(""),
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Databases().Create(context.Background(), "typedb"))

	c := New(Params{Logger: zaptest.NewLogger(t)})
	require.NoError(t, c.SetDriver(d))
	return c
}

func openTransaction(t *testing.T, c *Context, typ concept.TransactionType) concept.Transaction {
	t.Helper()
	tx, err := c.Driver.Transaction(context.Background(), "typedb", typ, concept.Options{})
	require.NoError(t, err)
	return tx
}

func TestNew_Defaults(t *testing.T) {
	c := New(Params{})

	assert.Equal(t, DefaultThreadPoolSize, c.ThreadPoolSize)
	assert.Nil(t, c.Driver)
	assert.Empty(t, c.Transactions)
	assert.Empty(t, c.TransactionsParallel)
	assert.Nil(t, c.Answers)
	assert.Nil(t, c.ValueAnswer)
	assert.NotNil(t, c.Config.UserData)
	assert.NotNil(t, c.Clock)
	assert.NotNil(t, c.Logger)
	assert.Contains(t, c.OptionSetters, "transaction-timeout-millis")
}

func TestContext_PutThenGetReturnsSameThing(t *testing.T) {
	c := New(Params{})
	thing1 := &stubThing{iid: "0x01"}

	c.Put("x", thing1)

	got, err := c.Get("x")
	require.NoError(t, err)
	assert.Same(t, thing1, got)
}

func TestContext_GetUnboundFails(t *testing.T) {
	c := New(Params{})
	c.Put("x", &stubThing{iid: "0x01"})

	_, err := c.Get("y")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThingNotFound)
	assert.Contains(t, err.Error(), "$y")
}

func TestContext_PutLastWriteWins(t *testing.T) {
	c := New(Params{})
	a := &stubThing{iid: "0x01"}
	b := &stubThing{iid: "0x02"}

	c.Put("x", a)
	c.Put("x", b)

	got, err := c.Get("x")
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestContext_CurrentTransaction(t *testing.T) {
	c := newConnectedContext(t)
	assert.Nil(t, c.CurrentTransaction(), "fresh context has no transaction")

	first := openTransaction(t, c, concept.Read)
	c.PushTransaction(first)
	assert.Same(t, first, c.CurrentTransaction())

	second := openTransaction(t, c, concept.Write)
	c.PushTransaction(second)
	assert.Same(t, first, c.CurrentTransaction(), "head stays current")
	assert.Len(t, c.Transactions, 2, "CurrentTransaction must not mutate")

	taken, err := c.TakeTransaction()
	require.NoError(t, err)
	assert.Same(t, first, taken)
	assert.Same(t, second, c.CurrentTransaction())
}

func TestContext_CurrentTransactionIgnoresParallel(t *testing.T) {
	c := newConnectedContext(t)
	c.TransactionsParallel = append(c.TransactionsParallel, openTransaction(t, c, concept.Read))

	assert.Nil(t, c.CurrentTransaction())
}

func TestContext_TakeTransactionEmpty(t *testing.T) {
	c := New(Params{})
	_, err := c.TakeTransaction()
	assert.ErrorIs(t, err, ErrNoTransaction)
}

func TestContext_SetTransactionsClosesPrevious(t *testing.T) {
	c := newConnectedContext(t)
	old := openTransaction(t, c, concept.Read)
	c.PushTransaction(old)

	replacement := openTransaction(t, c, concept.Read)
	require.NoError(t, c.SetTransactions([]concept.Transaction{replacement}))

	assert.False(t, old.IsOpen())
	assert.Same(t, replacement, c.CurrentTransaction())
}

func TestContext_ClearAnswersIsIdempotent(t *testing.T) {
	c := New(Params{})
	v := concept.NewLong(3)
	c.Answers = []concept.ConceptRow{{"x": &stubThing{iid: "0x01"}}}
	c.ValueAnswer = &v

	c.ClearAnswers()
	c.ClearAnswers()

	assert.Nil(t, c.Answers)
	assert.Nil(t, c.ValueAnswer)
}

func TestContext_SetDriverClearsAnswers(t *testing.T) {
	c := New(Params{})
	v := concept.NewLong(1)
	c.ValueAnswer = &v

	require.NoError(t, c.SetDriver(nil))
	assert.Nil(t, c.ValueAnswer)
}

func TestContext_SetDriverClosesPrevious(t *testing.T) {
	first, err := localdriver.Open(localdriver.Config{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	second, err := localdriver.Open(localdriver.Config{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer second.Close()

	c := New(Params{})
	require.NoError(t, c.SetDriver(first))
	require.NoError(t, c.SetDriver(first))
	assert.True(t, first.IsOpen(), "setting the same driver again must not close it")

	require.NoError(t, c.SetDriver(second))
	assert.False(t, first.IsOpen())
	assert.True(t, second.IsOpen())
}

func TestContext_RequireDriver(t *testing.T) {
	c := New(Params{})
	_, err := c.RequireDriver()
	assert.ErrorIs(t, err, ErrNoDriver)
}

func TestContext_GetThingType(t *testing.T) {
	ctx := context.Background()
	c := newConnectedContext(t)

	_, err := c.GetThingType(ctx, concept.KindEntity, "person")
	assert.ErrorIs(t, err, ErrNoTransaction)

	schema := openTransaction(t, c, concept.Schema)
	_, err = schema.Concepts().PutThingType(ctx, concept.KindEntity, "person")
	require.NoError(t, err)
	c.PushTransaction(schema)

	person, err := c.GetThingType(ctx, concept.KindEntity, "person")
	require.NoError(t, err)
	assert.Equal(t, "person", person.Label())

	_, err = c.GetThingType(ctx, concept.KindRelation, "person")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeNotFound)
	assert.Contains(t, err.Error(), "relation(person)")
}

func TestContext_GetThingTypePassesDriverErrorsThrough(t *testing.T) {
	ctx := context.Background()
	c := newConnectedContext(t)
	tx := openTransaction(t, c, concept.Read)
	require.NoError(t, tx.Close())
	c.PushTransaction(tx)

	_, err := c.GetThingType(ctx, concept.KindEntity, "entity")
	require.Error(t, err)
	assert.True(t, concept.IsCode(err, concept.ErrCodeTransactionClosed))
	assert.NotErrorIs(t, err, ErrTypeNotFound)
}

func TestContext_CleanupReleasesEverything(t *testing.T) {
	ctx := context.Background()
	c := newConnectedContext(t)
	d := c.Driver

	tx := openTransaction(t, c, concept.Write)
	parallel := openTransaction(t, c, concept.Read)
	c.PushTransaction(tx)
	c.TransactionsParallel = []concept.Transaction{parallel}
	c.Put("x", &stubThing{iid: "0x01"})
	c.Config.UserData["k"] = "v"
	require.NoError(t, c.SetOption("infer", "true"))
	v := concept.NewLong(1)
	c.ValueAnswer = &v

	require.NoError(t, c.Cleanup(ctx))

	assert.False(t, tx.IsOpen())
	assert.False(t, parallel.IsOpen())
	assert.Empty(t, c.Transactions)
	assert.Empty(t, c.TransactionsParallel)
	assert.False(t, d.IsOpen(), "driver is closed")
	assert.Nil(t, c.Driver)
	assert.Nil(t, c.ValueAnswer)
	assert.Empty(t, c.Config.UserData)
	assert.Equal(t, concept.Options{}, c.TransactionOptions)

	_, err := c.Get("x")
	assert.ErrorIs(t, err, ErrThingNotFound)
}

func TestContext_CleanupDeletesDatabases(t *testing.T) {
	ctx := context.Background()
	d, err := localdriver.Open(localdriver.Config{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	defer d.Close()

	c := New(Params{})
	require.NoError(t, c.SetDriver(keepOpen{d}))
	require.NoError(t, d.Databases().Create(ctx, "a"))
	require.NoError(t, d.Databases().Create(ctx, "b"))

	require.NoError(t, c.Cleanup(ctx))

	all, err := d.Databases().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestContext_CleanupReconnectsToDeleteDatabases(t *testing.T) {
	ctx := context.Background()
	address := filepath.Join(t.TempDir(), "store.db")
	open := func(context.Context) (concept.Driver, error) {
		return localdriver.Open(localdriver.Config{Address: address, Logger: zaptest.NewLogger(t)})
	}

	c := New(Params{NewDriver: open})
	d, err := open(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetDriver(d))
	require.NoError(t, d.Databases().Create(ctx, "kept"))
	require.NoError(t, d.Close())

	require.NoError(t, c.Cleanup(ctx))

	check, err := open(ctx)
	require.NoError(t, err)
	defer check.Close()
	all, err := check.Databases().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestContext_CleanupWaitsForSettleDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(Params{Clock: clock, SettleDelay: time.Second})

	done := make(chan error, 1)
	go func() { done <- c.Cleanup(context.Background()) }()

	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("cleanup finished before the settle delay elapsed")
	default:
	}
	clock.Advance(time.Second)
	assert.NoError(t, <-done)
}

func TestContext_CleanupWithoutDriver(t *testing.T) {
	c := New(Params{})
	assert.NoError(t, c.Cleanup(context.Background()))
}

// keepOpen ignores Close so a test can inspect the driver afterwards.
type keepOpen struct {
	*localdriver.Driver
}

func (keepOpen) Close() error { return nil }
