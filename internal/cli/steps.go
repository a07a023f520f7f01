package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/driverbdd/internal/steps"
)

// StepInfo describes one step definition in CLI output.
type StepInfo struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

// StepList renders as one definition per line in text output.
type StepList []StepInfo

func (l StepList) String() string {
	var b strings.Builder
	for i, s := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\n    %s", s.Pattern, s.Description)
	}
	return b.String()
}

// NewStepsCommand creates the steps command.
func NewStepsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List step definitions",
		Long: `List every step pattern that feature files can use, in registration order.

Examples:
  driverbdd steps
  driverbdd steps --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := steps.Definitions()
			list := make(StepList, 0, len(defs))
			for _, d := range defs {
				list = append(list, StepInfo{Pattern: d.Pattern, Description: d.Description})
			}
			return newPrinter(rootOpts, cmd).Result(list)
		},
	}
}
