package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// ScanOutput represents the output structure for JSON
type ScanOutput struct {
	Root   string             `json:"root"`
	Files  []types.SourceFile `json:"files"`
	Errors []types.ScanError  `json:"errors,omitempty"`
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory and list extracted file structure",
	Long:  `Walks the given directory, parses every Python file and prints the extracted structure including functions, classes, imports and globals.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		result, err := scanProject(cmd.Context(), root, cfg)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			out := ScanOutput{Root: result.Root, Errors: result.Errors}
			for _, path := range result.Paths() {
				out.Files = append(out.Files, *result.Files[path])
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(result.Files) == 0 {
			fmt.Println("No Python files found")
			return nil
		}
		for _, path := range result.Paths() {
			printSourceFile(result.Files[path])
		}
		if len(result.Errors) > 0 {
			fmt.Printf("Errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s: %s\n", e.Path, e.Message)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func printSourceFile(file *types.SourceFile) {
	fmt.Printf("=== %s ===\n", file.Path)
	if !file.Status.OK() {
		fmt.Printf("  [%s] %s\n\n", file.Status.State, file.Status.Message)
		return
	}

	if len(file.Imports) > 0 {
		fmt.Println("\nImports:")
		for _, imp := range file.Imports {
			fmt.Printf("  %s\n", formatImport(imp))
		}
	}

	if len(file.Globals) > 0 {
		fmt.Println("\nGlobals:")
		for _, g := range file.Globals {
			if g.LiteralType != "" {
				fmt.Printf("  %s: %s\n", g.Name, g.LiteralType)
			} else {
				fmt.Printf("  %s\n", g.Name)
			}
		}
	}

	if len(file.Classes) > 0 {
		fmt.Println("\nClasses:")
		for _, cls := range file.Classes {
			fmt.Printf("  class %s", cls.Name)
			if len(cls.Bases) > 0 {
				fmt.Printf("(%s)", strings.Join(cls.Bases, ", "))
			}
			fmt.Println()
			if cls.Docstring != "" {
				fmt.Printf("    %s\n", cls.Docstring)
			}
			for _, method := range cls.Methods {
				fmt.Printf("    %s\n", formatFunction(&method))
			}
		}
	}

	if len(file.Functions) > 0 {
		fmt.Println("\nFunctions:")
		for _, fn := range file.Functions {
			fmt.Printf("  %s\n", formatFunction(&fn))
			if fn.Docstring != "" {
				fmt.Printf("    %s\n", fn.Docstring)
			}
		}
	}

	fmt.Println()
}

func formatFunction(fn *types.FunctionSymbol) string {
	var sb strings.Builder
	if fn.IsAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("def ")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if p.Annotation != "" {
			sb.WriteString(": " + p.Annotation)
		}
	}
	sb.WriteString(")")
	if fn.ReturnType != "" {
		sb.WriteString(" -> " + fn.ReturnType)
	}
	return sb.String()
}

func formatImport(imp types.ImportRef) string {
	dots := strings.Repeat(".", imp.RelativeDepth)
	switch imp.Kind {
	case types.ImportFromStar:
		return fmt.Sprintf("from %s%s import *", dots, imp.Module)
	case types.ImportFrom:
		return fmt.Sprintf("from %s%s import %s", dots, imp.Module, strings.Join(imp.Names, ", "))
	default:
		if imp.Alias != "" {
			return fmt.Sprintf("import %s as %s", imp.Module, imp.Alias)
		}
		return fmt.Sprintf("import %s", imp.Module)
	}
}
