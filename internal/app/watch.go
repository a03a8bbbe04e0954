package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/watcher"
)

var watchProfile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record backups that appear in the profile's backup directory",
	Long: `Watch the profile's backup directory and record new backup files
into the operation history, including ones created outside koggi
(cron jobs, synced dumps, manual pg_dump runs).

Runs in the foreground until interrupted.`,
	Example: `  koggi watch -p PROD`,
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProfile, "profile", "p", "DEFAULT", "connection profile name")
}

func runWatch(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile(watchProfile)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := watcher.New(s, profile.Name, profile.BackupDir)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	fmt.Printf("Watching %s for new backup files (Ctrl-C to stop)\n", profile.BackupDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping watcher")
	return w.Stop()
}
