package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <file.json>",
	Short: "Print a saved JSON run report as text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := report.ReadJSON(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatText(r))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
