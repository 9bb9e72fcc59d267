package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import trades from a CSV or JSON file",
	Long: `Import trades into the ledger.

CSV headers are matched loosely (Symbol/Stock/Scrip/Ticker all work), prices
may carry commas and currency symbols, and common date formats are
normalized. Rows that fail validation are reported and skipped; the rest
import in one batch.

JSON input is a full snapshot export; accounts and strategies are matched to
existing ones by name.

Examples:
  tradebook import trades.csv
  tradebook import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	store, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	imp := journal.NewImporter(store, cfg.Import.FallbackYear, cfg.Import.DefaultBalance)

	var rep journal.Report
	if strings.HasSuffix(strings.ToLower(args[0]), ".json") {
		rep, err = imp.ImportJSON(data)
	} else {
		rep, err = imp.ImportCSV(string(data))
	}
	if err != nil {
		return err
	}

	if err := db.Save(store.Serialize()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Printf("%d imported, %d failed\n", rep.Imported, rep.Failed)
	for _, re := range rep.Rejected {
		fmt.Printf("  line %d: %s\n", re.Line, re.Reason)
	}
	for _, w := range rep.Warnings {
		log.Warn().Msg(w)
	}
	return nil
}
