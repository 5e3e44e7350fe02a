package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/report"
	"github.com/akraiem/attendance-tracker/internal/store"
)

var absentCmd = &cobra.Command{
	Use:   "absent",
	Short: "Mark absent every registered student without a record for the day",
	Long: `Write an Absent record for every registered student with no attendance
record on the given date. Typically run after the last recognition
session of the day. Safe to rerun, existing records are never touched.`,
	RunE: runAbsent,
}

func init() {
	rootCmd.AddCommand(absentCmd)

	absentCmd.Flags().String("date", "", "Date to process (YYYY-MM-DD, default today)")
}

func runAbsent(cmd *cobra.Command, args []string) error {
	date := mustGetString(cmd, "date")
	if date == "" {
		date = time.Now().Format(store.DateLayout)
	}
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		return fmt.Errorf("--date must be YYYY-MM-DD")
	}

	cfg := config.Load()
	st, _, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := report.PersistAbsentees(cmd.Context(), st.Students(), st.Attendance(), date)
	if err != nil {
		return err
	}
	fmt.Printf("Marked %d students absent on %s\n", n, date)
	return nil
}
