package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Job ingestion engine for Greenhouse, Lever and Personio boards",
	Long: `Detects which hosted job board a company uses, fetches its open positions,
normalizes them and stores them in SQLite or PostgreSQL.`,
	SilenceUsage: true,
}

var (
	flagConfigPath string
	flagDataDir    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config.yml (default <data-dir>/config.yml, created on first run)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default $JOBMATCHER_DATA_DIR or ./data)")
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
