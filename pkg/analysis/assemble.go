package analysis

import (
	"fmt"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// verify checks the snapshot's internal invariants after assembly:
//
//   - forward/reverse graph symmetry: B ∈ forward[A] ⇔ A ∈ reverse[B]
//   - every dependency and dependent refers to a scanned file
//   - every call edge's caller is a scanned symbol, and resolved edges point
//     at a scanned symbol in the same file
//
// Violations should never happen with correct builders; the test suite proves
// verify stays silent for every pipeline it can produce.
func verify(a *CodebaseAnalysis) error {
	for from, tos := range a.Graph {
		if _, ok := a.Files[from]; !ok {
			return &ConsistencyError{
				Invariant: "graph-nodes",
				Detail:    fmt.Sprintf("forward graph node %q is not a scanned file", from),
			}
		}
		for _, to := range tos {
			if _, ok := a.Files[to]; !ok {
				return &ConsistencyError{
					Invariant: "graph-nodes",
					Detail:    fmt.Sprintf("dependency %q of %q is not a scanned file", to, from),
				}
			}
			if !a.Reverse.HasEdge(to, from) {
				return &ConsistencyError{
					Invariant: "graph-symmetry",
					Detail:    fmt.Sprintf("forward edge %s -> %s missing from reverse graph", from, to),
				}
			}
		}
	}
	for to, froms := range a.Reverse {
		if _, ok := a.Files[to]; !ok {
			return &ConsistencyError{
				Invariant: "graph-nodes",
				Detail:    fmt.Sprintf("reverse graph node %q is not a scanned file", to),
			}
		}
		for _, from := range froms {
			if !a.Graph.HasEdge(from, to) {
				return &ConsistencyError{
					Invariant: "graph-symmetry",
					Detail:    fmt.Sprintf("reverse edge %s <- %s missing from forward graph", to, from),
				}
			}
		}
	}

	symbols := indexSymbols(a.Sources)
	for _, edge := range a.CallEdges {
		if !symbols[edge.Caller] {
			return &ConsistencyError{
				Invariant: "call-edges",
				Detail:    fmt.Sprintf("edge caller %s:%s@%d is not a scanned symbol", edge.Caller.File, edge.Caller.Name, edge.Caller.Line),
			}
		}
		if edge.Resolved {
			if !symbols[edge.Callee] {
				return &ConsistencyError{
					Invariant: "call-edges",
					Detail:    fmt.Sprintf("resolved callee %s:%s@%d is not a scanned symbol", edge.Callee.File, edge.Callee.Name, edge.Callee.Line),
				}
			}
			if edge.Callee.File != edge.Caller.File {
				return &ConsistencyError{
					Invariant: "call-edges",
					Detail:    fmt.Sprintf("resolved edge %s -> %s crosses files", edge.Caller.Name, edge.Callee.Name),
				}
			}
		}
	}

	return nil
}

func indexSymbols(sources map[string]*types.SourceFile) map[types.FunctionID]bool {
	symbols := make(map[types.FunctionID]bool)
	for _, file := range sources {
		for _, fn := range file.AllFunctions() {
			symbols[fn.ID()] = true
		}
	}
	return symbols
}
