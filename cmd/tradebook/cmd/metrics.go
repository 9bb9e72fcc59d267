package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var metricsCapital float64

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute performance metrics over the ledger",
	Long: `Compute win rate, P&L aggregates, expectancy, Sharpe-like ratio,
drawdown, streaks, and breakdowns by month and strategy. Filter flags narrow
the trade set before computing.

Examples:
  tradebook metrics
  tradebook metrics --strategy Breakout --from 2024-01-01
  tradebook metrics --outcome loss`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	addFilterFlags(metricsCmd)
	metricsCmd.Flags().Float64Var(&metricsCapital, "capital", -1, "starting capital for the equity curve (overrides config)")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	store, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := buildFilter(store)
	if err != nil {
		return err
	}

	capital := cfg.Metrics.InitialCapital
	if metricsCapital >= 0 {
		capital = metricsCapital
	}

	sum := journal.Compute(f.Apply(store.Trades()), capital)

	names := map[string]string{}
	for _, st := range store.Strategies() {
		names[st.ID] = st.Name
	}
	journal.WriteSummary(os.Stdout, sum, names)
	return nil
}
