package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/journal"
)

var (
	cfgFile string
	dbPath  string
	verbose bool

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "A trade journal with analytics, import, and export",
	Long: `Tradebook keeps a ledger of stock trades and computes performance
analytics over it.

It provides tools for:
  - Importing trades from messy broker CSV exports or JSON backups
  - Computing win rate, expectancy, Sharpe-like ratio, drawdown, and streaks
  - Filtering trades by account, strategy, outcome, date range, or symbol
  - Exporting the ledger as spreadsheet-friendly CSV or a full JSON snapshot
  - Persisting snapshots in a local SQLite database`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite snapshot DB (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if cfgFile != "" {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return nil
}

// openStore hydrates a fresh in-memory ledger from the snapshot database.
// The caller owns the returned database handle.
func openStore() (*journal.Store, *journal.SQLiteStore, error) {
	db, err := journal.OpenSQLite(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	snap, err := db.Load()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}

	store := journal.NewStore(log)
	if err := store.Hydrate(snap); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("hydrate ledger: %w", err)
	}
	return store, db, nil
}
