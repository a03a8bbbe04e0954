package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/database"
)

var pingCmd = &cobra.Command{
	Use:   "ping [profile]",
	Short: "Test the database connection for a profile",
	Long: `Open a connection for the profile and report the server version.
Defaults to the DEFAULT profile.`,
	Example: `  koggi ping
  koggi ping PROD`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	name := "DEFAULT"
	if len(args) > 0 {
		name = args[0]
	}

	profile, err := loadProfile(name)
	if err != nil {
		return err
	}

	version, err := database.Ping(cmd.Context(), profile)
	if err != nil {
		return fmt.Errorf("connection failed for %s: %w", profile.Name, err)
	}

	fmt.Printf("Connection OK: %s\n", version)
	return nil
}
