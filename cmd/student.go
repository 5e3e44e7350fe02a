package cmd

import (
	"github.com/spf13/cobra"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage the student registry",
}

func init() {
	rootCmd.AddCommand(studentCmd)
}
