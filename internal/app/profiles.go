package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/config"
	"github.com/koggi-dev/koggi/internal/output"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List detected connection profiles",
	Long: `List the connection profiles declared in the environment or the
.env file in the working directory.`,
	Example: `  koggi profiles`,
	RunE:    runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) error {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles detected; set KOGGI_<NAME>_DB_NAME in the environment or a .env file")
	}

	rows := make([]output.ProfileRow, 0, len(profiles))
	for _, name := range config.Names(profiles) {
		p := profiles[name]
		rows = append(rows, output.ProfileRow{
			Name:      p.Name,
			DBName:    p.DBName,
			Host:      p.Host,
			Port:      p.Port,
			SSLMode:   p.SSLMode,
			BackupDir: p.BackupDir,
		})
	}

	fmt.Print(output.RenderProfileTable(rows))
	return nil
}
