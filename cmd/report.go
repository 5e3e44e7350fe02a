package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/report"
	"github.com/akraiem/attendance-tracker/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print attendance statistics",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int("days", 0, "Only the last N days (7, 14, 21 or 30)")
	reportCmd.Flags().String("date", "", "Only a specific date (YYYY-MM-DD)")
	reportCmd.Flags().String("name", "", "Only a specific student")
}

func recordFilter(cmd *cobra.Command) (store.Filter, error) {
	f := store.Filter{
		LastDays: mustGetInt(cmd, "days"),
		Date:     mustGetString(cmd, "date"),
		Name:     mustGetString(cmd, "name"),
	}
	switch f.LastDays {
	case 0, 7, 14, 21, 30:
	default:
		return f, fmt.Errorf("--days must be one of 7, 14, 21, 30")
	}
	return f, nil
}

func runReport(cmd *cobra.Command, args []string) error {
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

	s := report.Summarize(records)
	fmt.Printf("Records:           %d\n", s.TotalRecords)
	fmt.Printf("Distinct students: %d\n", s.DistinctStudents)
	fmt.Printf("Earliest arrival:  %s\n", s.EarliestTime)
	fmt.Printf("Latest arrival:    %s\n", s.LatestTime)
	fmt.Printf("Mean arrival:      %s\n", s.MeanTime)

	charts := report.BuildCharts(records, 5)
	if len(charts.PerDay) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tPRESENT\tABSENT")
		for _, d := range charts.PerDay {
			fmt.Fprintf(w, "%s\t%d\t%d\n", d.Date, d.Present, d.Absent)
		}
		w.Flush()
	}
	return nil
}
