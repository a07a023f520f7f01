package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/roach88/driverbdd/internal/concept"
)

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: boolean %q: %w", ErrInvalidArgument, s, err)
	}
	return b, nil
}

func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q: %w", ErrInvalidArgument, s, err)
	}
	return n, nil
}

func parseKind(s string) (concept.Kind, error) {
	k, err := concept.ParseKind(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return k, nil
}

func parseTransactionType(s string) (concept.TransactionType, error) {
	t, err := concept.ParseTransactionType(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return t, nil
}

// cells flattens a data table row by row into its cell values.
func cells(table *godog.Table) []string {
	if table == nil {
		return nil
	}
	var values []string
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			values = append(values, cell.Value)
		}
	}
	return values
}
