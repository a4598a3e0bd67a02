// Package scanner walks a project tree, filters candidate Python files and
// parses them into per-file syntax summaries. Traversal is deterministic
// (lexicographic path order) so repeated scans of an unchanged tree produce
// identical output, which downstream rankings depend on.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/pyrisk/pyrisk/pkg/extractor"
	"github.com/pyrisk/pyrisk/pkg/types"
)

// Options configures a scan.
type Options struct {
	// ExcludePatterns are doublestar globs matched against slash-normalized
	// paths relative to the scan root, and against bare file names.
	ExcludePatterns []string
	// MaxFileSize in bytes; larger files are recorded as skipped, not parsed.
	MaxFileSize int64
	// Workers bounds parallel parsing; 0 means one worker per CPU.
	Workers int
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 10 * 1024 * 1024,
		ExcludePatterns: []string{
			"**/__pycache__/**",
			"**/.git/**",
			"**/node_modules/**",
			"**/.venv/**",
			"**/venv/**",
			"**/env/**",
			"**/.pytest_cache/**",
			"**/.mypy_cache/**",
			"**/dist/**",
			"**/build/**",
			"**/.DS_Store",
		},
	}
}

// candidate is a file selected by the walk, before parsing.
type candidate struct {
	relPath  string
	fullPath string
	size     int64
}

// Scan walks root and parses every candidate file. Per-file failures are
// contained: unreadable files and directories are recorded in Errors,
// unparseable files keep a failed status in the file map. Only a bad root
// aborts before any scanning. Parsing runs on a bounded worker pool; results
// are merged back in path order, so the output is identical to a serial scan.
func Scan(ctx context.Context, root string, opts Options) (*types.ScanResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("root path not readable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	candidates, walkErrs, err := collect(absRoot, opts)
	if err != nil {
		return nil, err
	}

	result := &types.ScanResult{
		Root:      absRoot,
		Files:     make(map[string]*types.SourceFile, len(candidates)),
		Errors:    walkErrs,
		ScannedAt: time.Now(),
	}

	// Oversized files are recorded without parsing.
	var toParse []candidate
	for _, c := range candidates {
		if opts.MaxFileSize > 0 && c.size > opts.MaxFileSize {
			result.Files[c.relPath] = &types.SourceFile{
				Path: c.relPath,
				Status: types.ParseStatus{
					State:   types.ParseSkippedTooLarge,
					Message: fmt.Sprintf("file size %d exceeds limit %d", c.size, opts.MaxFileSize),
				},
				Functions: []types.FunctionSymbol{},
				Classes:   []types.ClassSymbol{},
				Imports:   []types.ImportRef{},
				Globals:   []types.GlobalVariable{},
			}
			continue
		}
		toParse = append(toParse, c)
	}

	parsed, readErrs, err := parseAll(ctx, toParse, opts.Workers)
	if err != nil {
		return nil, err
	}

	// Single-writer merge in path order.
	for i, c := range toParse {
		if readErrs[i] != "" {
			result.Errors = append(result.Errors, types.ScanError{Path: c.relPath, Message: readErrs[i]})
			continue
		}
		file := parsed[i]
		result.Files[c.relPath] = file
		if file.Status.State == types.ParseFailed {
			result.Errors = append(result.Errors, types.ScanError{Path: c.relPath, Message: file.Status.Message})
		}
	}

	return result, nil
}

// collect walks the tree and returns the candidate files sorted by path,
// plus a scan error for every entry the walk could not read.
func collect(absRoot string, opts Options) ([]candidate, []types.ScanError, error) {
	var candidates []candidate
	var walkErrs []types.ScanError

	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree; record it and keep scanning.
			walkErrs = append(walkErrs, types.ScanError{
				Path:    relOrSelf(absRoot, p),
				Message: err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil || rel == "." {
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if d.IsDir() {
			if excludedDir(relSlash, opts.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extractor.Supported(p) {
			return nil
		}
		if excluded(relSlash, d.Name(), opts.ExcludePatterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		candidates = append(candidates, candidate{
			relPath:  relSlash,
			fullPath: p,
			size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].relPath < candidates[j].relPath
	})
	return candidates, walkErrs, nil
}

// relOrSelf normalizes p relative to root for error reporting, falling back
// to p itself when it sits outside root.
func relOrSelf(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// parseAll parses the candidates on a bounded worker pool. Each worker owns
// its index slot exclusively; no shared state is written concurrently.
func parseAll(ctx context.Context, toParse []candidate, workers int) ([]*types.SourceFile, []string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parsed := make([]*types.SourceFile, len(toParse))
	readErrs := make([]string, len(toParse))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range toParse {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ext := extractor.New()
			file, err := ext.ParseFile(c.fullPath, c.relPath)
			if err != nil {
				readErrs[i] = err.Error()
				return nil
			}
			parsed[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return parsed, readErrs, nil
}

// excluded checks a file path and its base name against the patterns,
// mirroring how ignore globs are conventionally applied to both.
func excluded(relPath, name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// excludedDir prunes directories whose contents could never survive the
// file-level patterns, e.g. "**/__pycache__/**" prunes any __pycache__ dir.
func excludedDir(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		trimmed := strings.TrimSuffix(pattern, "/**")
		if trimmed == pattern {
			continue
		}
		if ok, _ := doublestar.Match(trimmed, relPath); ok {
			return true
		}
	}
	return false
}
