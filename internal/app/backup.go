package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/binaries"
	"github.com/koggi-dev/koggi/internal/database"
	"github.com/koggi-dev/koggi/internal/output"
	"github.com/koggi-dev/koggi/internal/store"
)

var (
	backupProfile  string
	backupOutput   string
	backupFormat   string
	backupCompress bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a database backup using pg_dump",
	Long: `Create a backup of the profile's database with pg_dump.

Plain format produces a .sql file replayable with psql; custom format
produces a .backup archive for pg_restore. The output lands in the
profile's backup directory unless --output names a path.`,
	Example: `  # Plain SQL backup of the default profile
  koggi backup

  # Compressed custom-format backup of PROD
  koggi backup -p PROD --format custom --compress

  # Explicit output path
  koggi backup -p DEV1 -o /tmp/before-migration.sql`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupProfile, "profile", "p", "DEFAULT", "connection profile name")
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "output file path (default: derived from profile)")
	backupCmd.Flags().StringVar(&backupFormat, "format", "plain", "backup format: plain or custom")
	backupCmd.Flags().BoolVarP(&backupCompress, "compress", "c", false, "compress output (custom format only)")
}

func runBackup(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile(backupProfile)
	if err != nil {
		return err
	}

	result, err := database.Backup(binaries.NewResolver(), profile, database.Options{
		Output:   backupOutput,
		Format:   backupFormat,
		Compress: backupCompress,
	})
	recordOperation(profile.Name, store.KindBackup, result, err)
	if err != nil {
		return err
	}

	fmt.Printf("Backup completed: %s (%s in %s)\n",
		result.File, output.FormatSize(result.Size), result.Duration.Round(time.Millisecond))
	return nil
}
