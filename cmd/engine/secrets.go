package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the PostgreSQL password in the OS keychain",
}

var setDBPasswordCmd = &cobra.Command{
	Use:   "set-db-password",
	Short: "Store the PostgreSQL password read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		account, err := keyringAccount(cfg)
		if err != nil {
			return err
		}

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password on stdin")
		}
		if err := secrets.SetDatabasePassword(account, strings.TrimRight(line, "\r\n")); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s\n", account)
		return nil
	},
}

var deleteDBPasswordCmd = &cobra.Command{
	Use:   "delete-db-password",
	Short: "Remove the stored PostgreSQL password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		account, err := keyringAccount(cfg)
		if err != nil {
			return err
		}
		if err := secrets.DeleteDatabasePassword(account); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted password for %s\n", account)
		return nil
	},
}

var secretsAccount string

func init() {
	secretsCmd.PersistentFlags().StringVar(&secretsAccount, "account", "", "Keychain account (default storage.keyring_account or derived from database_url)")
	secretsCmd.AddCommand(setDBPasswordCmd, deleteDBPasswordCmd)
	rootCmd.AddCommand(secretsCmd)
}

// keyringAccount picks the flag, then the config, then user@host from the DSN.
func keyringAccount(cfg config.Config) (string, error) {
	if secretsAccount != "" {
		return secretsAccount, nil
	}
	if cfg.Storage.KeyringAccount != "" {
		return cfg.Storage.KeyringAccount, nil
	}
	if cfg.Storage.DatabaseURL == "" {
		return "", errors.New("no keyring account: pass --account or set storage.database_url")
	}
	pc, err := pgx.ParseConfig(cfg.Storage.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	return secrets.DatabaseAccount(pc.User, pc.Host), nil
}
