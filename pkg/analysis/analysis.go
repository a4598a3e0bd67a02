// Package analysis turns a completed scan into an immutable CodebaseAnalysis
// snapshot: dependency graphs, call edges, per-file complexity metrics,
// weighted risk scores and the canonical rankings. Consumers treat the
// snapshot as read-only; a new scan produces a new snapshot.
package analysis

import (
	"sort"
	"time"

	"github.com/pyrisk/pyrisk/pkg/callgraph"
	"github.com/pyrisk/pyrisk/pkg/depgraph"
	"github.com/pyrisk/pyrisk/pkg/types"
)

// Weights configures the per-file risk score. Each factor is normalized to
// [0,1] before weighting, so weights express relative importance directly.
type Weights struct {
	Complexity float64 `yaml:"complexity" json:"complexity"`
	FanIn      float64 `yaml:"fan_in" json:"fan_in"`
	FanOut     float64 `yaml:"fan_out" json:"fan_out"`
	Size       float64 `yaml:"size" json:"size"`
}

// DefaultWeights returns the default scoring policy.
func DefaultWeights() Weights {
	return Weights{
		Complexity: 0.3,
		FanIn:      0.25,
		FanOut:     0.25,
		Size:       0.1,
	}
}

// Config controls an analysis run.
type Config struct {
	Weights Weights
	// DefaultRankLimit bounds ranking queries when the caller passes n <= 0.
	DefaultRankLimit int
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		Weights:          DefaultWeights(),
		DefaultRankLimit: 10,
	}
}

// ComplexityMetrics are the raw per-file inputs to scoring.
type ComplexityMetrics struct {
	TotalLines        int     `json:"total_lines"`
	CodeLines         int     `json:"code_lines"`
	FunctionCount     int     `json:"function_count"`
	ClassCount        int     `json:"class_count"`
	ImportCount       int     `json:"import_count"`
	MaxNestingDepth   int     `json:"max_nesting_depth"`
	AvgFunctionLength float64 `json:"avg_function_length"`
	MaxFunctionLength float64 `json:"max_function_length"`
	// Score is the combined complexity heuristic fed into risk scoring.
	Score float64 `json:"score"`
}

// RiskScore is a file's weighted risk with its contributing factors.
type RiskScore struct {
	Overall     float64            `json:"overall"`
	Factors     map[string]float64 `json:"factors"`
	Explanation string             `json:"explanation"`
}

// FileAnalysis is the per-file slice of the snapshot.
type FileAnalysis struct {
	Path         string            `json:"path"`
	Dependencies []string          `json:"dependencies"`
	Dependents   []string          `json:"dependents"`
	Metrics      ComplexityMetrics `json:"metrics"`
	Risk         RiskScore         `json:"risk"`
	ImpactScore  float64           `json:"impact_score"`
	RiskRank     int               `json:"risk_rank"`
	ImpactRank   int               `json:"impact_rank"`
}

// FunctionRisk ranks a function by its distinct resolved callers.
type FunctionRisk struct {
	ID          types.FunctionID   `json:"id"`
	CallerCount int                `json:"caller_count"`
	Callers     []types.FunctionID `json:"callers,omitempty"`
}

// CodebaseAnalysis is the immutable result of one analysis run.
type CodebaseAnalysis struct {
	Root        string    `json:"root"`
	GeneratedAt time.Time `json:"generated_at"`

	// Sources are the snapshot's own copies of the scanned file summaries.
	// Import resolution flags are set on these copies during assembly; the
	// scan that produced them is never written to.
	Sources map[string]*types.SourceFile `json:"sources"`

	Files     map[string]*FileAnalysis `json:"files"`
	Graph     depgraph.Graph           `json:"graph"`
	Reverse   depgraph.Graph           `json:"reverse"`
	CallEdges []types.CallEdge         `json:"call_edges"`

	// FunctionRisks is sorted by caller count descending, ties broken by
	// earliest (file, line) in scan order.
	FunctionRisks []FunctionRisk `json:"function_risks"`

	MostRiskyFiles     []string `json:"most_risky_files"`
	MostImpactfulFiles []string `json:"most_impactful_files"`

	TotalFiles int `json:"total_files"`
	TotalLines int `json:"total_lines"`

	// DefaultRankLimit is carried from the analysis config for Query.
	DefaultRankLimit int `json:"default_rank_limit"`
}

// Analyze builds a snapshot from a completed scan. The pipeline is strictly
// one-directional: call graph and dependency graph are derived from the scan,
// scores from the graphs, rankings from the scores. The assembled snapshot is
// verified before being returned; a verification failure means a bug in one
// of the builders, surfaced as a ConsistencyError.
func Analyze(scan *types.ScanResult, cfg Config) (*CodebaseAnalysis, error) {
	if cfg.DefaultRankLimit <= 0 {
		cfg.DefaultRankLimit = DefaultConfig().DefaultRankLimit
	}

	// The snapshot owns its source copies; graph construction marks import
	// resolution on them while the scan stays untouched.
	sources := cloneSources(scan.Files)
	edges := callgraph.Build(sources)
	forward, reverse := depgraph.Build(sources)

	a := &CodebaseAnalysis{
		Root:             scan.Root,
		GeneratedAt:      time.Now(),
		Sources:          sources,
		Files:            make(map[string]*FileAnalysis, len(sources)),
		Graph:            forward,
		Reverse:          reverse,
		CallEdges:        edges,
		TotalFiles:       len(sources),
		DefaultRankLimit: cfg.DefaultRankLimit,
	}

	for path, file := range sources {
		fa := &FileAnalysis{
			Path:         path,
			Dependencies: forward[path],
			Dependents:   reverse[path],
			Metrics:      computeMetrics(file),
		}
		fa.Risk = scoreFile(fa, cfg.Weights)
		fa.ImpactScore = impactScore(fa)
		a.Files[path] = fa
		a.TotalLines += file.TotalLines
	}

	a.MostRiskyFiles = rankPaths(a.Files, func(fa *FileAnalysis) float64 { return fa.Risk.Overall })
	a.MostImpactfulFiles = rankPaths(a.Files, func(fa *FileAnalysis) float64 { return fa.ImpactScore })
	for i, p := range a.MostRiskyFiles {
		a.Files[p].RiskRank = i + 1
	}
	for i, p := range a.MostImpactfulFiles {
		a.Files[p].ImpactRank = i + 1
	}

	a.FunctionRisks = rankFunctions(sources, edges)

	if err := verify(a); err != nil {
		return nil, err
	}
	return a, nil
}

// rankPaths sorts file paths descending by score; ties break by path
// ascending so repeated runs produce identical rankings.
func rankPaths(files map[string]*FileAnalysis, score func(*FileAnalysis) float64) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		si, sj := score(files[paths[i]]), score(files[paths[j]])
		if si != sj {
			return si > sj
		}
		return paths[i] < paths[j]
	})
	return paths
}

// rankFunctions orders every scanned function by distinct resolved caller
// count, ties broken by earliest (file, line) in scan order.
func rankFunctions(sources map[string]*types.SourceFile, edges []types.CallEdge) []FunctionRisk {
	callers := callgraph.ResolvedCallers(edges)

	// Scan-order index over all functions.
	order := make(map[types.FunctionID]int)
	var ids []types.FunctionID
	for _, path := range sortedPaths(sources) {
		for _, fn := range sources[path].AllFunctions() {
			id := fn.ID()
			if _, ok := order[id]; ok {
				continue
			}
			order[id] = len(ids)
			ids = append(ids, id)
		}
	}

	risks := make([]FunctionRisk, 0, len(ids))
	for _, id := range ids {
		risks = append(risks, FunctionRisk{
			ID:          id,
			CallerCount: len(callers[id]),
			Callers:     callers[id],
		})
	}
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].CallerCount != risks[j].CallerCount {
			return risks[i].CallerCount > risks[j].CallerCount
		}
		return order[risks[i].ID] < order[risks[j].ID]
	})
	return risks
}

// cloneSources copies each file summary along with its import list, so the
// Resolved flags set during graph construction land on the snapshot's copies
// only. Symbol and global slices are shared; nothing downstream writes them.
func cloneSources(files map[string]*types.SourceFile) map[string]*types.SourceFile {
	sources := make(map[string]*types.SourceFile, len(files))
	for path, file := range files {
		clone := *file
		clone.Imports = append([]types.ImportRef(nil), file.Imports...)
		sources[path] = &clone
	}
	return sources
}

func sortedPaths(sources map[string]*types.SourceFile) []string {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MostRiskyFunction returns the top-ranked function, or false when the scan
// contained no functions.
func (a *CodebaseAnalysis) MostRiskyFunction() (FunctionRisk, bool) {
	if len(a.FunctionRisks) == 0 {
		return FunctionRisk{}, false
	}
	return a.FunctionRisks[0], true
}
