package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the storage schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if s, ok := st.(*store.SQLite); ok {
			v, err := s.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "sqlite %s at schema version %d\n", cfg.SQLitePath(), v)
			return nil
		}
		fmt.Fprintf(out, "%s schema up to date\n", cfg.Storage.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
