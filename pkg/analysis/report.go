package analysis

import (
	"fmt"
	"strings"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// RenderReport produces the plain-text analysis summary: symbol totals, who
// calls what, the per-function risk table and the most-risky-function
// breakdown. Output is deterministic for a given snapshot.
func RenderReport(a *CodebaseAnalysis) string {
	var b strings.Builder

	b.WriteString("Code Analysis Summary\n")
	b.WriteString(strings.Repeat("=", 30) + "\n")

	functions := allFunctionsInScanOrder(a)
	fmt.Fprintf(&b, "Total Functions: %d\n", len(functions))
	for _, fn := range functions {
		fmt.Fprintf(&b, "  - %s\n", fn.Name)
	}
	b.WriteString("\n")

	classes := allClassesInScanOrder(a)
	fmt.Fprintf(&b, "Total Classes: %d\n", len(classes))
	for _, cls := range classes {
		fmt.Fprintf(&b, "  - %s\n", cls.Name)
	}
	b.WriteString("\n")

	b.WriteString("Call Relationships (Who calls what):\n")
	callees := calleesByCaller(a)
	for _, fn := range functions {
		names := callees[fn.ID()]
		if len(names) > 0 {
			fmt.Fprintf(&b, "  %s calls: %s\n", fn.Name, strings.Join(names, ", "))
		} else {
			fmt.Fprintf(&b, "  %s calls nothing\n", fn.Name)
		}
	}
	b.WriteString("\n")

	b.WriteString("Risk Assessment (based on incoming dependencies):\n")
	for _, risk := range a.FunctionRisks {
		fmt.Fprintf(&b, "  %s: Risk %d (called by %d functions)\n",
			risk.ID.Name, risk.CallerCount, risk.CallerCount)
	}
	b.WriteString("\n")

	if top, ok := a.MostRiskyFunction(); ok {
		fmt.Fprintf(&b, "Most Risky Function: %s\n", top.ID.Name)
		fmt.Fprintf(&b, "Description: %s\n", docstringOf(a, top.ID))

		if len(top.Callers) > 0 {
			names := make([]string, len(top.Callers))
			for i, c := range top.Callers {
				names[i] = c.Name
			}
			fmt.Fprintf(&b, "Callers at risk if changed: %s\n", strings.Join(names, ", "))
			for _, caller := range top.Callers {
				b.WriteString("\n")
				fmt.Fprintf(&b, "*%s description: %s\n", caller.Name, docstringOf(a, caller))
			}
		} else {
			b.WriteString("Callers at risk if changed: None\n")
		}
	}

	return b.String()
}

// allFunctionsInScanOrder flattens every function across the scan, files in
// lexicographic order, declarations in source order.
func allFunctionsInScanOrder(a *CodebaseAnalysis) []types.FunctionSymbol {
	var out []types.FunctionSymbol
	for _, path := range pathsOf(a) {
		out = append(out, a.Sources[path].AllFunctions()...)
	}
	return out
}

func allClassesInScanOrder(a *CodebaseAnalysis) []types.ClassSymbol {
	var out []types.ClassSymbol
	for _, path := range pathsOf(a) {
		out = append(out, a.Sources[path].Classes...)
	}
	return out
}

func pathsOf(a *CodebaseAnalysis) []string {
	result := &types.ScanResult{Files: a.Sources}
	return result.Paths()
}

// calleesByCaller lists distinct callee names per caller in first-call
// order. Unresolved callees (builtins, external helpers) are edges too and
// stay in the list; only recursive self-calls are left out of the report,
// matching how the relationship summary reads. Risk attribution elsewhere
// still counts resolved edges only.
func calleesByCaller(a *CodebaseAnalysis) map[types.FunctionID][]string {
	callees := make(map[types.FunctionID][]string)
	for _, edge := range a.CallEdges {
		if edge.Resolved && edge.Callee == edge.Caller {
			continue
		}
		callees[edge.Caller] = append(callees[edge.Caller], edge.CalleeName)
	}
	return callees
}

// docstringOf finds the docstring for a function identity.
func docstringOf(a *CodebaseAnalysis, id types.FunctionID) string {
	src, ok := a.Sources[id.File]
	if !ok {
		return ""
	}
	for _, fn := range src.AllFunctions() {
		if fn.ID() == id {
			return fn.Docstring
		}
	}
	return ""
}
