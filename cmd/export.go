package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/report"
	"github.com/akraiem/attendance-tracker/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records as CSV",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Int("days", 0, "Only the last N days (7, 14, 21 or 30)")
	exportCmd.Flags().String("date", "", "Only a specific date (YYYY-MM-DD)")
	exportCmd.Flags().String("name", "", "Only a specific student")
	exportCmd.Flags().String("out", "", "Output file (default attendance_<today>.csv, - for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	filter, err := recordFilter(cmd)
	if err != nil {
		return err
	}

	cfg := config.Load()
	st, _, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Attendance().List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}
	data, err := report.RenderCSV(records)
	if err != nil {
		return fmt.Errorf("rendering csv: %w", err)
	}

	out := mustGetString(cmd, "out")
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if out == "" {
		out = report.ExportFilename(time.Now().Format(store.DateLayout))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Exported %d records to %s\n", len(records), out)
	return nil
}
