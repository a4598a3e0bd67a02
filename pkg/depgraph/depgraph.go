// Package depgraph aggregates per-file imports into a directed file-level
// dependency graph and its transpose. Only imports that resolve to a file
// inside the scanned project contribute edges; external libraries do not.
package depgraph

import (
	"path"
	"sort"
	"strings"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// Graph maps a file path to the sorted set of file paths it has edges to.
// Every scanned file has an entry, possibly empty.
type Graph map[string][]string

// Neighbors returns the adjacency list for a file, nil if absent.
func (g Graph) Neighbors(file string) []string {
	return g[file]
}

// HasEdge reports whether from has an edge to to.
func (g Graph) HasEdge(from, to string) bool {
	for _, n := range g[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Build resolves every import against the scanned file set and returns the
// forward dependency graph and its transpose. Self-imports are dropped, so
// the graphs never contain self-loops. Cycles are allowed; callers must not
// assume a topological order exists.
//
// Build sets the Resolved flag on each ImportRef that matched a project
// file. The analyzer hands Build its own copies of the file summaries, so
// the scanner's output is never written to and the assembled snapshot is
// immutable.
func Build(files map[string]*types.SourceFile) (forward, reverse Graph) {
	index := buildModuleIndex(files)

	forward = make(Graph, len(files))
	reverse = make(Graph, len(files))
	fwdSets := make(map[string]map[string]bool, len(files))
	for p := range files {
		fwdSets[p] = make(map[string]bool)
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, source := range paths {
		file := files[source]
		for i := range file.Imports {
			imp := &file.Imports[i]
			targets := resolveImport(imp, source, files, index)
			if len(targets) > 0 {
				imp.Resolved = true
			}
			for _, target := range targets {
				if target == source {
					continue // no self-loops
				}
				fwdSets[source][target] = true
			}
		}
	}

	for p, set := range fwdSets {
		deps := make([]string, 0, len(set))
		for d := range set {
			deps = append(deps, d)
		}
		sort.Strings(deps)
		forward[p] = deps
	}

	// Transpose; derived, never edited directly.
	revSets := make(map[string]map[string]bool, len(files))
	for p := range files {
		revSets[p] = make(map[string]bool)
	}
	for from, tos := range forward {
		for _, to := range tos {
			revSets[to][from] = true
		}
	}
	for p, set := range revSets {
		dependents := make([]string, 0, len(set))
		for d := range set {
			dependents = append(dependents, d)
		}
		sort.Strings(dependents)
		reverse[p] = dependents
	}

	return forward, reverse
}

// buildModuleIndex maps every dotted module suffix of each scanned file to
// its candidate paths. "sample/utils/helpers.py" is reachable as
// "helpers", "utils.helpers" and "sample.utils.helpers"; a package
// __init__.py answers for the package path itself.
func buildModuleIndex(files map[string]*types.SourceFile) map[string][]string {
	index := make(map[string][]string)
	for p := range files {
		for _, module := range moduleSuffixes(p) {
			index[module] = append(index[module], p)
		}
	}
	for module := range index {
		sort.Strings(index[module])
	}
	return index
}

// moduleSuffixes returns the dotted module names a file path can satisfy.
func moduleSuffixes(filePath string) []string {
	trimmed := strings.TrimSuffix(filePath, ".py")
	trimmed = strings.TrimSuffix(trimmed, ".pyw")
	trimmed = strings.TrimSuffix(trimmed, ".pyi")
	parts := strings.Split(trimmed, "/")
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
		if len(parts) == 0 {
			return nil
		}
	}
	var suffixes []string
	for i := len(parts) - 1; i >= 0; i-- {
		suffixes = append(suffixes, strings.Join(parts[i:], "."))
	}
	return suffixes
}

// resolveImport maps one import statement to the project files it targets.
// Absolute imports match against the module index; relative imports resolve
// against the importing file's directory, stripping one directory per extra
// leading dot.
func resolveImport(imp *types.ImportRef, source string, files map[string]*types.SourceFile, index map[string][]string) []string {
	if imp.RelativeDepth > 0 {
		return resolveRelative(imp, source, files)
	}
	if imp.Module == "" {
		return nil
	}
	candidates := index[imp.Module]
	if len(candidates) == 0 {
		return nil
	}
	// Several files can answer the same suffix; take the lexicographically
	// first so repeated scans resolve identically.
	return candidates[:1]
}

// resolveRelative handles "from . import x", "from .mod import y" and deeper
// "from ..pkg import z" forms.
func resolveRelative(imp *types.ImportRef, source string, files map[string]*types.SourceFile) []string {
	base := path.Dir(source)
	if base == "." {
		base = ""
	}
	for d := 1; d < imp.RelativeDepth; d++ {
		if base == "" {
			return nil // points above the scanned root
		}
		base = path.Dir(base)
		if base == "." {
			base = ""
		}
	}

	if imp.Module != "" {
		target := path.Join(base, strings.ReplaceAll(imp.Module, ".", "/"))
		return lookupModuleFile(target, files)
	}

	// "from . import a, b": each imported name is a sibling module.
	var targets []string
	for _, name := range imp.Names {
		targets = append(targets, lookupModuleFile(path.Join(base, name), files)...)
	}
	return targets
}

// lookupModuleFile checks the two file forms a module path can take.
func lookupModuleFile(modulePath string, files map[string]*types.SourceFile) []string {
	if _, ok := files[modulePath+".py"]; ok {
		return []string{modulePath + ".py"}
	}
	initPath := path.Join(modulePath, "__init__.py")
	if _, ok := files[initPath]; ok {
		return []string{initPath}
	}
	return nil
}
