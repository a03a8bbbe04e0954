package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/backup"
	"github.com/koggi-dev/koggi/internal/binaries"
	"github.com/koggi-dev/koggi/internal/database"
	"github.com/koggi-dev/koggi/internal/output"
	"github.com/koggi-dev/koggi/internal/store"
)

var (
	restoreProfile string
	restoreLatest  bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-file]",
	Short: "Restore a database from a backup file",
	Long: `Restore the profile's database from a backup file.

Custom-format archives (.backup, .dump) are restored with pg_restore;
plain SQL dumps (.sql) are replayed with psql.

Without a file argument, koggi offers an interactive chooser over the
profile's backup directory. With --latest (or when stdin is not a
terminal) the newest backup is used without prompting.`,
	Example: `  # Pick a backup interactively
  koggi restore -p DEV1

  # Restore the newest backup
  koggi restore -p DEV1 --latest

  # Restore a specific file
  koggi restore -p DEV1 backups/dev1/app_dev_20240101_120000.sql`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreProfile, "profile", "p", "DEFAULT", "connection profile name")
	restoreCmd.Flags().BoolVar(&restoreLatest, "latest", false, "restore the newest backup without prompting")
}

func runRestore(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile(restoreProfile)
	if err != nil {
		return err
	}

	file, err := pickBackupFile(args, profile.BackupDir)
	if errors.Is(err, backup.ErrCancelled) {
		// User backed out; not a failure.
		return nil
	}
	if err != nil {
		return err
	}

	result, err := database.Restore(binaries.NewResolver(), profile, file)
	recordOperation(profile.Name, store.KindRestore, result, err)
	if err != nil {
		return err
	}

	fmt.Printf("Restore completed from: %s (%s in %s)\n",
		result.File, output.FormatSize(result.Size), result.Duration.Round(time.Millisecond))
	return nil
}

// pickBackupFile decides which backup to restore: the explicit
// argument, the newest file when prompting is off the table, or the
// interactive selector.
func pickBackupFile(args []string, backupDir string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	if restoreLatest || !isatty.IsTerminal(os.Stdin.Fd()) {
		file := backup.Latest(backupDir)
		if file == "" {
			return "", fmt.Errorf("%w in %s", backup.ErrNoBackups, backupDir)
		}
		return file, nil
	}

	return backup.NewSelector().Select(backupDir)
}
