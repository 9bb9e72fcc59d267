package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades in the ledger",
	Long: `List trades, optionally narrowed by the filter flags.

Examples:
  tradebook list
  tradebook list --outcome open
  tradebook list --symbol RELIANCE --from 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	addFilterFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := buildFilter(store)
	if err != nil {
		return err
	}
	trades := f.Apply(store.Trades())

	strategies := map[string]string{}
	for _, st := range store.Strategies() {
		strategies[st.ID] = st.Name
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tSIDE\tQTY\tENTRY\tEXIT\tP&L\tSTATUS\tSTRATEGY")
	for _, t := range trades {
		exit := "-"
		pnl := "-"
		if t.Closed() {
			exit = fmt.Sprintf("%s @ %.2f", t.ExitDate, t.ExitPrice)
			pnl = fmt.Sprintf("%.2f", t.PnL)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s @ %.2f\t%s\t%s\t%s\t%s\n",
			t.Symbol, t.Side, t.Quantity,
			t.EntryDate, t.EntryPrice,
			exit, pnl, t.Status, strategies[t.StrategyID])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d trade(s)\n", len(trades))
	return nil
}
