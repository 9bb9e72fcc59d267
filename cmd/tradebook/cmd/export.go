package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the ledger to CSV or JSON",
	Long: `Export the full ledger. The format follows the file extension:
.json writes a complete snapshot (accounts, strategies, trades), anything
else writes spreadsheet-friendly CSV with every field quoted.

Examples:
  tradebook export trades.csv
  tradebook export backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	store, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(args[0]), ".json") {
		err = store.ExportJSON(f)
	} else {
		err = store.ExportCSV(f)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("exported %d trades to %s\n", len(store.Trades()), args[0])
	return nil
}
