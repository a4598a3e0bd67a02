package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pyrisk configuration interactively",
	Long: `Guides you through setting up pyrisk configuration step by step.
Creates a config file with scan limits and risk scoring weights.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Scan limits ===
	maxSize := strconv.FormatInt(cfg.MaxFileSizeBytes, 10)
	rankLimit := strconv.Itoa(cfg.RankLimit)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum file size in bytes").
				Description("Python files larger than this are skipped").
				Placeholder(maxSize).
				Value(&maxSize),
			huh.NewInput().
				Title("Default ranking size").
				Description("How many files rank queries return by default").
				Placeholder(rankLimit).
				Value(&rankLimit),
		),
	)
	err := form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if v, err := strconv.ParseInt(maxSize, 10, 64); err == nil && v > 0 {
		cfg.MaxFileSizeBytes = v
	}
	if v, err := strconv.Atoi(rankLimit); err == nil && v > 0 {
		cfg.RankLimit = v
	}

	// === SECTION 2: Scoring profile ===
	var profile string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Risk scoring profile").
				Description("Select how risk scores weigh the different factors").
				Options(
					huh.NewOption("Balanced (complexity 0.3, fan-in 0.25, fan-out 0.25, size 0.1)", "balanced"),
					huh.NewOption("Coupling-focused (fan-in 0.4, fan-out 0.4, complexity 0.15, size 0.05)", "coupling"),
					huh.NewOption("Complexity-focused (complexity 0.6, fan-in 0.15, fan-out 0.15, size 0.1)", "complexity"),
				).
				Value(&profile),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	switch profile {
	case "coupling":
		cfg.Weights.Complexity = 0.15
		cfg.Weights.FanIn = 0.4
		cfg.Weights.FanOut = 0.4
		cfg.Weights.Size = 0.05
	case "complexity":
		cfg.Weights.Complexity = 0.6
		cfg.Weights.FanIn = 0.15
		cfg.Weights.FanOut = 0.15
		cfg.Weights.Size = 0.1
	}

	var verbose bool
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Verbose logging").
				Description("Enable debug logging by default?").
				Affirmative("Yes").
				Negative("No").
				Value(&verbose),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Verbose = verbose

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.pyrisk/config.yaml)", "global"),
					huh.NewOption("Project (./.pyrisk/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	err = form.Run()
	if err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".pyrisk", "config.yaml")
	} else {
		configPath = ".pyrisk/config.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		err = form.Run()
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Max file size: %d bytes\n", cfg.MaxFileSizeBytes)
	fmt.Printf("Rank limit: %d\n", cfg.RankLimit)
	fmt.Printf("Weights: complexity %.2f, fan-in %.2f, fan-out %.2f, size %.2f\n",
		cfg.Weights.Complexity, cfg.Weights.FanIn, cfg.Weights.FanOut, cfg.Weights.Size)
	fmt.Printf("Verbose: %v\n", cfg.Verbose)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
