package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank [most-risky|most-impactful]",
	Short: "Rank files by risk or impact",
	Long: `Lists the top files of an analyzed project by risk score or by
impact score. The result is always bounded; use --top to change the
number of entries.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(analysis.RankRisky), string(analysis.RankImpactful)},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := analysis.RankRisky
		if len(args) > 0 {
			kind = analysis.RankKind(args[0])
		}

		project, _ := cmd.Flags().GetString("project")
		root, err := resolveRoot([]string{project})
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

		top, _ := cmd.Flags().GetInt("top")
		ranked, err := analysis.Query(snapshot, kind, top)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(ranked, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(ranked) == 0 {
			fmt.Println("No files to rank")
			return nil
		}
		for _, r := range ranked {
			fmt.Printf("%2d. %-40s %.3f\n", r.Rank, r.Path, r.Score)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().StringP("project", "p", ".", "Project root to rank")
	rankCmd.Flags().IntP("top", "n", 0, "Number of entries (0 = configured default)")
	rankCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	rankCmd.Flags().Bool("refresh", false, "Rescan instead of using a stored snapshot")
}
