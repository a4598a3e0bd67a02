package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Render the plain-text analysis report",
	Long: `Renders the full analysis report for a project: symbol totals, call
relationships, per-function risk and the most risky function with its
callers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		refresh, _ := cmd.Flags().GetBool("refresh")

		snapshot, err := loadSnapshot(cmd.Context(), root, cfg, refresh)
		if err != nil {
			return err
		}

		report := analysis.RenderReport(snapshot)

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := os.WriteFile(output, []byte(report), 0644); err != nil {
				return fmt.Errorf("writing report to %s: %w", output, err)
			}
			fmt.Printf("Report written to %s\n", output)
			return nil
		}

		fmt.Print(report)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	reportCmd.Flags().Bool("refresh", false, "Rescan instead of using a stored snapshot")
}
