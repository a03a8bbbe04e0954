package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/binaries"
	"github.com/koggi-dev/koggi/internal/output"
)

var downloadForce bool

var binariesCmd = &cobra.Command{
	Use:   "binaries",
	Short: "Show where the PostgreSQL client binaries come from",
	Long: `Show the resolved location of pg_dump, psql and pg_restore.

Each tool is searched in order: the per-tool environment override, the
_bin directory next to the koggi executable, the per-user cache
directory, and finally the system PATH.`,
	Example: `  koggi binaries
  koggi binaries download
  koggi binaries clean`,
	RunE: runBinaries,
}

var binariesDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download PostgreSQL client binaries into the user cache",
	RunE:  runBinariesDownload,
}

var binariesCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove downloaded PostgreSQL client binaries",
	RunE:  runBinariesClean,
}

func init() {
	binariesDownloadCmd.Flags().BoolVar(&downloadForce, "force", false, "re-download even when tools are already cached")

	binariesCmd.AddCommand(binariesDownloadCmd)
	binariesCmd.AddCommand(binariesCleanCmd)
}

func runBinaries(cmd *cobra.Command, args []string) error {
	resolver := binaries.NewResolver()

	rows := make([]output.BinaryRow, 0, len(binaries.RequiredTools))
	missing := 0
	for _, tool := range binaries.RequiredTools {
		path, err := resolver.Resolve(tool)
		row := output.BinaryRow{Tool: tool, Found: err == nil, Path: path}
		var nf *binaries.NotFoundError
		if errors.As(err, &nf) {
			missing++
		}
		rows = append(rows, row)
	}

	fmt.Print(output.RenderBinaryTable(rows))
	if missing > 0 {
		fmt.Println()
		fmt.Println("Run 'koggi binaries download' to fetch missing tools.")
	}
	return nil
}

func runBinariesDownload(cmd *cobra.Command, args []string) error {
	return binaries.NewDownloader(os.Stdout).Download(downloadForce)
}

func runBinariesClean(cmd *cobra.Command, args []string) error {
	return binaries.NewDownloader(os.Stdout).Clean()
}
