// Package app wires the koggi CLI commands together.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/store"
)

// Version is set via ldflags during release builds:
//
//	go build -ldflags "-X github.com/koggi-dev/koggi/internal/app.Version=1.2.3"
var Version = "dev"

var (
	dbPath string

	// RootCmd is the root command for koggi.
	RootCmd = &cobra.Command{
		Use:   "koggi",
		Short: "PostgreSQL backup & restore CLI",
		Long: `koggi backs up and restores PostgreSQL databases using pg_dump,
psql and pg_restore, driven by named connection profiles from the
environment or a .env file.

Profiles are declared with KOGGI_<NAME>_* variables:

  KOGGI_DEV1_DB_NAME=app_dev
  KOGGI_DEV1_DB_HOST=localhost
  KOGGI_DEV1_DB_PASSWORD=secret

Examples:
  # List detected profiles
  koggi profiles

  # Back up the DEV1 database
  koggi backup -p DEV1

  # Restore interactively from the profile's backup directory
  koggi restore -p DEV1

  # Restore the newest backup without prompting
  koggi restore -p DEV1 --latest

  # Check where the client binaries come from
  koggi binaries`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("koggi: PostgreSQL backup & restore CLI")
			fmt.Println()
			fmt.Println("Run 'koggi profiles' to see detected connection profiles.")
			fmt.Println("Run 'koggi --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.Version = Version
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default: ~/.koggi/koggi.db)")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(backupCmd)
	RootCmd.AddCommand(restoreCmd)
	RootCmd.AddCommand(profilesCmd)
	RootCmd.AddCommand(pingCmd)
	RootCmd.AddCommand(binariesCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the history database path, using the flag value or
// the default under the user's home directory.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	koggiDir := filepath.Join(home, ".koggi")
	if err := os.MkdirAll(koggiDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create koggi directory: %w", err)
	}

	return filepath.Join(koggiDir, "koggi.db"), nil
}

// openStore opens the history database.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}
