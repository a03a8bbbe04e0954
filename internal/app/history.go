package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koggi-dev/koggi/internal/output"
)

var (
	historyProfile string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded backup and restore operations",
	Long: `Show the operation history recorded by backup, restore and watch,
newest first.`,
	Example: `  koggi history
  koggi history -p PROD -n 50`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyProfile, "profile", "p", "", "only show operations for this profile")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of operations to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ops, err := s.RecentOperations(historyProfile, historyLimit)
	if err != nil {
		return err
	}

	rows := make([]output.HistoryRow, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, output.HistoryRow{
			Profile:   op.Profile,
			Kind:      op.Kind,
			File:      op.File,
			SizeBytes: op.SizeBytes,
			Status:    op.Status,
			CreatedAt: op.CreatedAt,
		})
	}

	fmt.Print(output.RenderHistoryTable(rows))
	return nil
}
