// Command listctl previews, imports and exports CSV files against the
// listabob database without running the server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
	"github.com/JonMunkholm/listabob/internal/logging"
	"github.com/JonMunkholm/listabob/internal/store"
)

var (
	// cfg is loaded by PersistentPreRunE.
	cfg *config.Config

	// db and service are opened lazily by commands that need storage.
	db      *store.Store
	service *core.Service
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "listctl",
	Short: "Import and export listabob lists as CSV",
	Long: `listctl works directly on the listabob database configured by the
environment (DB_DRIVER, SQLITE_PATH, DATABASE_URL). A .env file in the
working directory is loaded first.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	if cfg, err = config.Load(); err != nil {
		return err
	}
	// stdout carries command output; logs go to stderr.
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	return nil
}

// newService builds a Service with the configured limits, opening the
// database only when withStore is set.
func newService(cmd *cobra.Command, withStore bool) error {
	var st core.Store
	if withStore {
		var err error
		if db, err = store.Open(cmd.Context(), cfg.Database); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		st = db
	}

	service = core.NewService(st, core.Options{
		Preview: core.PreviewOptions{
			SampleRows:   cfg.Import.PreviewRows,
			SampleValues: cfg.Import.SampleValues,
			Infer:        core.InferOptions{CurrencySymbols: cfg.Inference.CurrencySymbols},
		},
		ImportTimeout: cfg.Import.Timeout,
		Limiter:       core.NewImportLimiter(1, cfg.Import.MaxWaitTime),
	})
	return nil
}

// readCSV reads a .csv file within the configured size limit.
func readCSV(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return core.ReadUpload(f, cfg.Import.MaxFileSize)
}
