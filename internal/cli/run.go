package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/config"
	"github.com/roach88/driverbdd/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath     string
	Tags           string
	Formatter      string
	ThreadPoolSize int
	Address        string
	Strict         bool
	StopOnFailure  bool
	ReattemptLimit int
	ReattemptSleep time.Duration
	SettleDelay    time.Duration

	// Logger overrides the logger built from the verbose flag (for testing).
	Logger *zap.Logger
}

// RunSummary is the result of a run as printed by the CLI.
type RunSummary struct {
	Scenarios []ScenarioSummary `json:"scenarios"`
	Counts
}

// ScenarioSummary is one scenario of a RunSummary.
type ScenarioSummary struct {
	Name   string   `json:"name"`
	URI    string   `json:"uri"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// String renders the summary for text output.
func (s RunSummary) String() string {
	var b strings.Builder
	for _, sc := range s.Scenarios {
		if sc.Pass {
			continue
		}
		fmt.Fprintf(&b, "✗ %s (%s)\n", sc.Name, sc.URI)
		for _, e := range sc.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "%d scenarios (%d passed, %d failed)", s.Total, s.Passed, s.Failed)
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [features...]",
		Short: "Run behaviour scenarios",
		Long: `Run Gherkin feature files against the local driver.

Settings are taken from the defaults, then the config file, then flags.
Feature paths given as arguments replace the configured ones. Scenarios
tagged @ignore or @ignore-driver-go never run.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid config, missing features, etc.)

Examples:
  driverbdd run ./features
  driverbdd run --config driverbdd.yaml --tags @smoke
  driverbdd run ./features/connection --formatter pretty --format json
  driverbdd run ./features --reattempt-limit 20 --settle-delay 250ms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(opts, args, cmd)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.Tags, "tags", defaults.Tags, "godog tag expression, e.g. \"@smoke && ~@slow\"")
	cmd.Flags().StringVar(&opts.Formatter, "formatter", defaults.Format, "godog formatter (pretty|progress|cucumber|junit|events)")
	cmd.Flags().IntVar(&opts.ThreadPoolSize, "thread-pool-size", defaults.ThreadPoolSize, "goroutine limit for parallel steps")
	cmd.Flags().StringVar(&opts.Address, "address", defaults.Driver.Address, "local driver SQLite path")
	cmd.Flags().BoolVar(&opts.Strict, "strict", defaults.Strict, "fail on undefined or pending steps")
	cmd.Flags().BoolVar(&opts.StopOnFailure, "stop-on-failure", defaults.StopOnFailure, "stop at the first failed scenario")
	cmd.Flags().IntVar(&opts.ReattemptLimit, "reattempt-limit", 1, "attempts made by database expectation steps")
	cmd.Flags().DurationVar(&opts.ReattemptSleep, "reattempt-sleep", behaviour.DefaultReattemptSleep, "pause between reattempts")
	cmd.Flags().DurationVar(&opts.SettleDelay, "settle-delay", 0, "pause after each scenario before cleanup")

	return cmd
}

func runFeatures(opts *RunOptions, args []string, cmd *cobra.Command) error {
	out := newPrinter(opts.RootOptions, cmd)

	cfg, err := resolveConfig(opts, args, cmd)
	if err != nil {
		return report(out, exitErrorf(ExitCommandError, KindConfig, "invalid configuration: %w", err))
	}
	if opts.ReattemptLimit < 1 || opts.ReattemptSleep < 0 || opts.SettleDelay < 0 {
		return report(out, exitErrorf(ExitCommandError, KindConfig,
			"invalid reattempt settings: limit %d, sleep %s, settle delay %s",
			opts.ReattemptLimit, opts.ReattemptSleep, opts.SettleDelay))
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = opts.newLogger()
		if err != nil {
			return report(out, exitErrorf(ExitCommandError, KindGeneric, "failed to create logger: %w", err))
		}
		defer func() { _ = logger.Sync() }()
	}

	// Keep stdout clean for the JSON envelope.
	suiteOut := out.Out
	if out.JSON {
		suiteOut = out.Diag
	}

	logger.Info("running features",
		zap.Strings("paths", cfg.Features),
		zap.String("tags", cfg.Tags),
		zap.String("address", cfg.Driver.Address),
		zap.Int("reattempt_limit", opts.ReattemptLimit),
	)
	result, err := harness.Run(harness.Options{
		Paths:          cfg.Features,
		Tags:           cfg.Tags,
		Format:         cfg.Format,
		Output:         suiteOut,
		ThreadPoolSize: cfg.ThreadPoolSize,
		Address:        cfg.Driver.Address,
		Logger:         logger,
		Strict:         cfg.Strict,
		StopOnFailure:  cfg.StopOnFailure,
		ReattemptLimit: opts.ReattemptLimit,
		ReattemptSleep: opts.ReattemptSleep,
		SettleDelay:    opts.SettleDelay,
	})
	if err != nil {
		return report(out, exitErrorf(ExitCommandError, KindSetup, "failed to run features: %w", err))
	}

	summary := summarize(result)
	if err := out.Summary(summary); err != nil {
		return err
	}
	if !result.Pass {
		return exitErrorf(ExitFailure, KindFailed, "%d of %d scenarios failed", summary.Failed, summary.Total)
	}
	return nil
}

// report prints e and returns it.
func report(out *Printer, e *ExitError) error {
	if err := out.Problem(e); err != nil {
		return errors.Join(e, err)
	}
	return e
}

// resolveConfig layers the config file and changed flags over the defaults.
func resolveConfig(opts *RunOptions, args []string, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("tags") {
		cfg.Tags = opts.Tags
	}
	if flags.Changed("formatter") {
		cfg.Format = opts.Formatter
	}
	if flags.Changed("thread-pool-size") {
		cfg.ThreadPoolSize = opts.ThreadPoolSize
	}
	if flags.Changed("address") {
		cfg.Driver.Address = opts.Address
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.Strict
	}
	if flags.Changed("stop-on-failure") {
		cfg.StopOnFailure = opts.StopOnFailure
	}
	if len(args) > 0 {
		cfg.Features = args
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func summarize(result *harness.Result) RunSummary {
	summary := RunSummary{
		Scenarios: make([]ScenarioSummary, 0, len(result.Scenarios)),
		Counts:    Counts{Total: len(result.Scenarios)},
	}
	for _, s := range result.Scenarios {
		summary.Scenarios = append(summary.Scenarios, ScenarioSummary{
			Name:   s.Name,
			URI:    s.URI,
			Pass:   s.Pass,
			Errors: s.Errors,
		})
		if s.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}
