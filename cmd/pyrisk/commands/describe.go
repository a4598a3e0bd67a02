package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Show the analysis for a single file",
	Long: `Shows the extracted structure, dependencies, dependents and risk
scores for one file of an analyzed project. The file path is relative to
the project root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		desc, err := analysis.DescribeFile(snapshot, args[0])
		if err != nil {
			var notFound *analysis.NotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("file %q is not part of the analyzed project (paths are relative to %s)", args[0], root)
			}
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(desc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printFileDescription(desc)
		return nil
	},
}

func init() {
	describeCmd.Flags().StringP("project", "p", ".", "Project root the file belongs to")
	describeCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	describeCmd.Flags().Bool("refresh", false, "Rescan instead of using a stored snapshot")
}

func printFileDescription(desc *analysis.FileDescription) {
	fmt.Printf("=== %s ===\n", desc.Path)
	fmt.Printf("Status: %s", desc.Status.State)
	if desc.Status.Message != "" {
		fmt.Printf(" (%s)", desc.Status.Message)
	}
	fmt.Println()
	fmt.Printf("Lines: %d total, %d code\n", desc.TotalLines, desc.CodeLines)

	if len(desc.Dependencies) > 0 {
		fmt.Printf("\nDepends on:\n")
		for _, dep := range desc.Dependencies {
			fmt.Printf("  %s\n", dep)
		}
	}
	if len(desc.Dependents) > 0 {
		fmt.Printf("\nDepended on by:\n")
		for _, dep := range desc.Dependents {
			fmt.Printf("  %s\n", dep)
		}
	}

	fmt.Printf("\nComplexity: %.1f (functions %d, classes %d, max nesting %d)\n",
		desc.Metrics.Score, desc.Metrics.FunctionCount, desc.Metrics.ClassCount, desc.Metrics.MaxNestingDepth)
	fmt.Printf("Risk: %.3f (rank #%d)\n", desc.Risk.Overall, desc.RiskRank)
	if desc.Risk.Explanation != "" {
		fmt.Printf("  %s\n", desc.Risk.Explanation)
	}
	fmt.Printf("Impact rank: #%d\n", desc.ImpactRank)

	if len(desc.Classes) > 0 {
		fmt.Println("\nClasses:")
		for _, cls := range desc.Classes {
			fmt.Printf("  class %s", cls.Name)
			if len(cls.Bases) > 0 {
				fmt.Printf("(%s)", strings.Join(cls.Bases, ", "))
			}
			fmt.Printf("  [%d methods]\n", len(cls.Methods))
		}
	}
	if len(desc.Functions) > 0 {
		fmt.Println("\nFunctions:")
		for _, fn := range desc.Functions {
			fmt.Printf("  %s\n", formatFunction(&fn))
		}
	}
	fmt.Println()
}
