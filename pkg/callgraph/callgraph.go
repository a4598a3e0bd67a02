// Package callgraph builds intra-file call edges from scanned source files.
// It resolves bare callee names against the definitions in the same file and
// collapses repeated calls into counted edges.
package callgraph

import (
	"sort"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// Build extracts call edges for every function in every scanned file.
//
// Resolution policy: a callee name resolves only when exactly one function
// with that bare name is defined in the same file. Zero matches means the
// callee is external or a builtin; more than one match means overload-like
// shadowing. Both cases produce an unresolved edge carrying the literal name,
// never a guessed target. Cross-file resolution is the dependency graph's
// concern, not ours.
//
// Output order is deterministic: files in lexicographic order, callers in
// declaration order, callees in first-call order within each caller.
func Build(files map[string]*types.SourceFile) []types.CallEdge {
	edges := []types.CallEdge{}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		file := files[path]
		if file == nil || !file.Status.OK() {
			continue
		}
		edges = append(edges, buildForFile(file)...)
	}
	return edges
}

// buildForFile produces the edges for a single file.
func buildForFile(file *types.SourceFile) []types.CallEdge {
	defs := indexDefinitions(file)
	var edges []types.CallEdge

	for _, fn := range file.AllFunctions() {
		caller := fn.ID()

		// Collapse repeated calls, keeping first-call order and line.
		type group struct {
			count int
			line  int
		}
		order := []string{}
		groups := map[string]*group{}
		for _, site := range fn.Calls {
			g, ok := groups[site.Name]
			if !ok {
				g = &group{line: site.Line}
				groups[site.Name] = g
				order = append(order, site.Name)
			}
			g.count++
		}

		for _, name := range order {
			g := groups[name]
			edge := types.CallEdge{
				Caller:     caller,
				CalleeName: name,
				Count:      g.count,
				Line:       g.line,
			}
			if targets := defs[name]; len(targets) == 1 {
				edge.Callee = targets[0]
				edge.Resolved = true
			}
			edges = append(edges, edge)
		}
	}
	return edges
}

// indexDefinitions maps each bare function name to every definition carrying
// it in the file, including methods and nested functions.
func indexDefinitions(file *types.SourceFile) map[string][]types.FunctionID {
	defs := make(map[string][]types.FunctionID)
	for _, fn := range file.AllFunctions() {
		defs[fn.Name] = append(defs[fn.Name], fn.ID())
	}
	return defs
}

// ResolvedCallers returns, for each resolved callee, the distinct callers in
// edge order. A function calling the same target several times appears once.
func ResolvedCallers(edges []types.CallEdge) map[types.FunctionID][]types.FunctionID {
	callers := make(map[types.FunctionID][]types.FunctionID)
	seen := make(map[types.FunctionID]map[types.FunctionID]bool)
	for _, edge := range edges {
		if !edge.Resolved {
			continue
		}
		if seen[edge.Callee] == nil {
			seen[edge.Callee] = make(map[types.FunctionID]bool)
		}
		if seen[edge.Callee][edge.Caller] {
			continue
		}
		seen[edge.Callee][edge.Caller] = true
		callers[edge.Callee] = append(callers[edge.Callee], edge.Caller)
	}
	return callers
}
