package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
	"github.com/roach88/driverbdd/internal/localdriver"
	"github.com/roach88/driverbdd/internal/steps"
)

// IgnoreTags excludes scenarios that must not run against this driver.
const IgnoreTags = "~@ignore && ~@ignore-driver-go"

// Options configures Run. Zero values select defaults.
type Options struct {
	// Paths are feature files or directories. Defaults to "features".
	Paths []string

	// Tags is a godog tag expression. It is combined with IgnoreTags.
	Tags string

	// Format is the godog formatter. Defaults to "progress".
	Format string

	// Output receives formatter output. Defaults to io.Discard.
	Output io.Writer

	// ThreadPoolSize bounds the parallel steps.
	ThreadPoolSize int

	// NewDriver opens the driver for the connection steps. Defaults to a
	// local driver at Address.
	NewDriver behaviour.DriverFactory

	// Address is the local driver store used when NewDriver is nil. Every
	// connection of the run opens the same store, so databases outlive the
	// connection that created them. An empty or in-memory address selects a
	// temporary file removed when Run returns.
	Address string

	// ReattemptLimit and ReattemptSleep bound the expectation steps that
	// reattempt. A limit of zero checks once.
	ReattemptLimit int
	ReattemptSleep time.Duration

	// SettleDelay is waited after each scenario before cleanup.
	SettleDelay time.Duration

	// Clock is shared by every scenario Context.
	Clock clockwork.Clock

	Logger *zap.Logger

	// Strict fails the suite on undefined or pending steps.
	Strict bool

	// StopOnFailure stops at the first failed scenario.
	StopOnFailure bool
}

// LocalDriver returns a factory opening a local driver at address.
func LocalDriver(address string, logger *zap.Logger) behaviour.DriverFactory {
	return func(context.Context) (concept.Driver, error) {
		return localdriver.Open(localdriver.Config{Address: address, Logger: logger})
	}
}

// runStore resolves the store address for a run. The returned release
// removes any temporary store it created.
func runStore(address string) (string, func(), error) {
	if address != "" && address != localdriver.DefaultAddress {
		return address, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "driverbdd-")
	if err != nil {
		return "", nil, fmt.Errorf("create local driver store: %w", err)
	}
	return filepath.Join(dir, "store.db"), func() { os.RemoveAll(dir) }, nil
}

// Run executes the feature files and returns the collected result.
//
// Scenarios run one at a time: the time-zone step mutates process state.
// An error is returned only when the suite could not be set up; failing
// scenarios are reported through the result.
func Run(opts Options) (*Result, error) {
	if len(opts.Paths) == 0 {
		opts.Paths = []string{"features"}
	}
	if opts.Format == "" {
		opts.Format = "progress"
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewDriver == nil {
		address, release, err := runStore(opts.Address)
		if err != nil {
			return nil, err
		}
		defer release()
		opts.Logger.Debug("local driver store", zap.String("address", address))
		opts.NewDriver = LocalDriver(address, opts.Logger)
	}

	result := NewResult()
	suite := godog.TestSuite{
		Name: "driverbdd",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			initializeScenario(sc, opts, result)
		},
		Options: &godog.Options{
			Format:        opts.Format,
			Paths:         opts.Paths,
			Tags:          tagExpression(opts.Tags),
			Concurrency:   1,
			Output:        opts.Output,
			Strict:        opts.Strict,
			StopOnFailure: opts.StopOnFailure,
		},
	}

	result.Status = suite.Run()
	result.Pass = result.Status == StatusPassed
	if result.Status == StatusInvalidSetup {
		return result, fmt.Errorf("failed to run features %s: invalid suite setup", strings.Join(opts.Paths, ", "))
	}
	return result, nil
}

// initializeScenario wires a fresh Context into one scenario.
func initializeScenario(sc *godog.ScenarioContext, opts Options, result *Result) {
	c := behaviour.New(behaviour.Params{
		ThreadPoolSize: opts.ThreadPoolSize,
		NewDriver:      opts.NewDriver,
		Clock:          opts.Clock,
		Logger:         opts.Logger,
		ReattemptLimit: opts.ReattemptLimit,
		ReattemptSleep: opts.ReattemptSleep,
		SettleDelay:    opts.SettleDelay,
	})
	steps.Register(sc, c)

	var current *ScenarioResult

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		current = &ScenarioResult{Name: s.Name, URI: s.Uri, Pass: true, Steps: []StepResult{}}
		opts.Logger.Debug("scenario started", zap.String("name", s.Name), zap.String("uri", s.Uri))
		return ctx, nil
	})

	sc.StepContext().Before(func(ctx context.Context, st *godog.Step) (context.Context, error) {
		c.Table = nil
		if st.Argument != nil {
			c.Table = st.Argument.DataTable
		}
		return ctx, nil
	})

	sc.StepContext().After(func(ctx context.Context, st *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
		if current == nil {
			return ctx, nil
		}
		step := StepResult{Text: st.Text, Status: status.String()}
		if err != nil {
			step.Error = err.Error()
		}
		current.Steps = append(current.Steps, step)
		return ctx, nil
	})

	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if err != nil {
			current.AddError(err.Error())
		}
		cleanupErr := c.Cleanup(ctx)
		if cleanupErr != nil {
			current.AddError(fmt.Sprintf("cleanup: %v", cleanupErr))
		}
		result.addScenario(current)

		opts.Logger.Debug("scenario finished",
			zap.String("name", s.Name),
			zap.Bool("pass", current.Pass),
		)
		return ctx, cleanupErr
	})
}

func tagExpression(tags string) string {
	tags = strings.TrimSpace(tags)
	if tags == "" {
		return IgnoreTags
	}
	return tags + " && " + IgnoreTags
}
