package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyrisk/pyrisk/internal/config"
	"github.com/pyrisk/pyrisk/internal/log"
	"github.com/pyrisk/pyrisk/internal/scanner"
	"github.com/pyrisk/pyrisk/pkg/analysis"
	"github.com/pyrisk/pyrisk/pkg/cache"
	"github.com/pyrisk/pyrisk/pkg/types"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pyrisk",
	Short: "pyrisk - Python codebase risk and impact analysis",
	Long: `pyrisk scans a Python codebase, extracts its structure and builds
call and dependency graphs to surface risky and high-impact files.

Commands:
  scan        Scan a directory and list extracted file structure
  analyze     Run the full analysis pipeline and store a snapshot
  describe    Show the analysis for a single file
  rank        Rank files by risk or impact
  report      Render the plain-text analysis report
  init        Initialize pyrisk configuration interactively

Use "pyrisk [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Path to config file (overrides discovery)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(describeCmd)
	RootCmd.AddCommand(rankCmd)
	RootCmd.AddCommand(reportCmd)
}

// loadConfig resolves configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose || cfg.Verbose {
		log.Default().SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

// scanProject runs the scanner with the configured options.
func scanProject(ctx context.Context, root string, cfg *config.Config) (*types.ScanResult, error) {
	opts := scanner.DefaultOptions()
	opts.ExcludePatterns = cfg.Exclude
	opts.MaxFileSize = cfg.MaxFileSizeBytes
	opts.Workers = cfg.Workers

	logger := log.Default()
	logger.Debug("scanning project", "root", root, "workers", opts.Workers)

	result, err := scanner.Scan(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("scanning directory: %w", err)
	}

	logger.Debug("scan complete", "files", len(result.Files), "errors", len(result.Errors))
	return result, nil
}

// buildSnapshot scans and analyzes a project, storing the snapshot for
// later queries.
func buildSnapshot(ctx context.Context, root string, cfg *config.Config) (*analysis.CodebaseAnalysis, error) {
	scan, err := scanProject(ctx, root, cfg)
	if err != nil {
		return nil, err
	}

	snapshot, err := analysis.Analyze(scan, cfg.AnalysisConfig())
	if err != nil {
		return nil, fmt.Errorf("analyzing project: %w", err)
	}

	store := openStore()
	if err := store.Put(root, snapshot); err == nil {
		if err := cache.PersistToFile(store, snapshotStorePath()); err != nil {
			log.Default().Warn("failed to persist snapshot store", "error", err)
		}
	}
	return snapshot, nil
}

// loadSnapshot returns the stored snapshot for root, building a fresh one
// when none exists or refresh is requested.
func loadSnapshot(ctx context.Context, root string, cfg *config.Config, refresh bool) (*analysis.CodebaseAnalysis, error) {
	if !refresh {
		store := openStore()
		if snapshot, err := store.Get(root); err == nil {
			log.Default().Debug("using stored snapshot", "root", root, "scanned_at", snapshot.GeneratedAt)
			return snapshot, nil
		}
	}
	return buildSnapshot(ctx, root, cfg)
}

// openStore loads the on-disk snapshot store, or an empty one.
func openStore() *cache.SnapshotStore {
	store := cache.New(cache.Options{MaxEntries: 16})
	if err := cache.LoadFromFile(store, snapshotStorePath()); err != nil {
		log.Default().Debug("snapshot store unavailable", "error", err)
	}
	return store
}

// snapshotStorePath returns the on-disk location of the snapshot store.
func snapshotStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pyrisk/snapshots.msgpack"
	}
	return filepath.Join(home, ".pyrisk", "snapshots.msgpack")
}

// resolveRoot turns an optional positional arg into a project root.
func resolveRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}
	return absPath, nil
}
