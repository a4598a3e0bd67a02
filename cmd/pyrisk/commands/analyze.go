package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/internal/log"
	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run the full analysis pipeline and store a snapshot",
	Long: `Scans the given directory, builds call and dependency graphs, scores
every file for risk and impact and stores the resulting snapshot for
later describe, rank and report queries.`,
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

		spinner := log.NewProgressSpinner(fmt.Sprintf("Analyzing %s...", root))
		spinner.Start()
		snapshot, err := buildSnapshot(cmd.Context(), root, cfg)
		spinner.Stop()
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printAnalysisSummary(snapshot)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolP("json", "j", false, "Output full snapshot as JSON")
}

func printAnalysisSummary(a *analysis.CodebaseAnalysis) {
	fmt.Printf("Analyzed %s\n", a.Root)
	fmt.Printf("  Files: %d\n", a.TotalFiles)
	fmt.Printf("  Lines: %d\n", a.TotalLines)
	fmt.Printf("  Call edges: %d\n", len(a.CallEdges))

	printRanking(a, "Most risky files", analysis.RankRisky)
	printRanking(a, "Most impactful files", analysis.RankImpactful)

	if top, ok := a.MostRiskyFunction(); ok {
		fmt.Printf("\nMost risky function: %s (%s, called by %d functions)\n",
			top.ID.Name, top.ID.File, top.CallerCount)
	}
}

func printRanking(a *analysis.CodebaseAnalysis, title string, kind analysis.RankKind) {
	ranked, err := analysis.Query(a, kind, 0)
	if err != nil || len(ranked) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, r := range ranked {
		fmt.Printf("  %2d. %-40s %.3f\n", r.Rank, r.Path, r.Score)
	}
}
