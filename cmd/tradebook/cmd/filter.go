package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

// Filter flags shared by metrics and list. Only one command runs per
// invocation, so the backing vars can be shared too.
var (
	filterAccount  string
	filterStrategy string
	filterOutcome  string
	filterFrom     string
	filterTo       string
	filterSymbol   string
)

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringVar(&filterAccount, "account", "", "account name (default all)")
	c.Flags().StringVar(&filterStrategy, "strategy", "", "strategy name (default all)")
	c.Flags().StringVar(&filterOutcome, "outcome", "all", "win, loss, open, or all")
	c.Flags().StringVar(&filterFrom, "from", "", "earliest entry date (YYYY-MM-DD)")
	c.Flags().StringVar(&filterTo, "to", "", "latest entry date (YYYY-MM-DD)")
	c.Flags().StringVar(&filterSymbol, "symbol", "", "symbol substring")
}

// buildFilter resolves the name-based flags to ids. Unknown names are hard
// errors so a typo doesn't silently report metrics over everything.
func buildFilter(store *journal.Store) (journal.Filter, error) {
	f := journal.Filter{
		Outcome:  filterOutcome,
		DateFrom: filterFrom,
		DateTo:   filterTo,
		Symbol:   filterSymbol,
	}
	if filterAccount != "" {
		acc, ok := store.FindAccountByName(filterAccount)
		if !ok {
			return f, fmt.Errorf("unknown account %q", filterAccount)
		}
		f.AccountID = acc.ID
	}
	if filterStrategy != "" {
		strat, ok := store.FindStrategyByName(filterStrategy)
		if !ok {
			return f, fmt.Errorf("unknown strategy %q", filterStrategy)
		}
		f.StrategyID = strat.ID
	}
	for _, w := range f.Warnings() {
		log.Warn().Msg(w)
	}
	return f, nil
}
