package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/config"
)

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered students",
	RunE:  runStudentList,
}

func init() {
	studentCmd.AddCommand(studentListCmd)
}

func runStudentList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, _, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	students, err := st.Students().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}
	if len(students) == 0 {
		fmt.Println("No students registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REG NO\tNAME\tIMAGES\tREGISTERED")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.RegNo, s.FullName, s.ImageCount, s.RegistrationDate)
	}
	return w.Flush()
}
