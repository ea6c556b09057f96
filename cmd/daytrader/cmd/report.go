package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render a stored run from the SQLite journal",
	Long: `Report loads a finished run and its trades from the SQLite journal and
prints the run summary.

Example:
  daytrader report 01HZXX... --db runs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var reportDBPath string

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./runs.db", "SQLite journal path")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runID := args[0]
	run, err := j.GetRun(runID)
	if err != nil {
		return err
	}
	trades, err := j.TradesByRun(runID)
	if err != nil {
		return err
	}

	out, err := journal.RenderReport(run, trades)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
