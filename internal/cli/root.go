package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the driverbdd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "driverbdd",
		Short: "driverbdd - behaviour tests for database drivers",
		Long:  "Run Gherkin behaviour scenarios for connections, databases, transactions and concepts against a driver.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStepsCommand(opts))

	return cmd
}

// newLogger returns a development logger at debug level when verbose is
// set and a production logger otherwise. Both write to stderr.
func (o *RootOptions) newLogger() (*zap.Logger, error) {
	if o.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
