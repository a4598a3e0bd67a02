package analysis

import "github.com/pyrisk/pyrisk/pkg/types"

// FileDescription is the read-only view of a single file's analysis handed
// to consumers (CLI renderers, agent tools).
type FileDescription struct {
	Path         string                 `json:"path"`
	Status       types.ParseStatus      `json:"status"`
	TotalLines   int                    `json:"total_lines"`
	CodeLines    int                    `json:"code_lines"`
	Functions    []types.FunctionSymbol `json:"functions"`
	Classes      []types.ClassSymbol    `json:"classes"`
	Imports      []types.ImportRef      `json:"imports"`
	Globals      []types.GlobalVariable `json:"globals"`
	Dependencies []string               `json:"dependencies"`
	Dependents   []string               `json:"dependents"`
	Metrics      ComplexityMetrics      `json:"metrics"`
	Risk         RiskScore              `json:"risk"`
	RiskRank     int                    `json:"risk_rank"`
	ImpactRank   int                    `json:"impact_rank"`
}

// DescribeFile assembles the description for one scanned file. It returns a
// NotFoundError when the path was not part of the snapshot's scan; the
// snapshot itself is never modified.
func DescribeFile(a *CodebaseAnalysis, path string) (*FileDescription, error) {
	src, ok := a.Sources[path]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	fa := a.Files[path]
	if fa == nil {
		// Sources and Files are built from the same scan; a mismatch here
		// is an assembly bug.
		return nil, &ConsistencyError{
			Invariant: "file-analysis",
			Detail:    "scanned file has no analysis entry: " + path,
		}
	}

	return &FileDescription{
		Path:         src.Path,
		Status:       src.Status,
		TotalLines:   src.TotalLines,
		CodeLines:    src.CodeLines,
		Functions:    src.Functions,
		Classes:      src.Classes,
		Imports:      src.Imports,
		Globals:      src.Globals,
		Dependencies: fa.Dependencies,
		Dependents:   fa.Dependents,
		Metrics:      fa.Metrics,
		Risk:         fa.Risk,
		RiskRank:     fa.RiskRank,
		ImpactRank:   fa.ImpactRank,
	}, nil
}
