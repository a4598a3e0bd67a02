package analysis

import "fmt"

// RankKind selects one of the two canonical rankings.
type RankKind string

const (
	// RankRisky orders files by weighted risk score.
	RankRisky RankKind = "most-risky"
	// RankImpactful orders files by impact score.
	RankImpactful RankKind = "most-impactful"
)

// RankedFile is one entry of a ranking query result.
type RankedFile struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Query returns the requested ranking, bounded to at most n entries. When
// n <= 0 the snapshot's configured default limit applies; results are never
// unbounded.
func Query(a *CodebaseAnalysis, kind RankKind, n int) ([]RankedFile, error) {
	var paths []string
	var score func(*FileAnalysis) float64

	switch kind {
	case RankRisky:
		paths = a.MostRiskyFiles
		score = func(fa *FileAnalysis) float64 { return fa.Risk.Overall }
	case RankImpactful:
		paths = a.MostImpactfulFiles
		score = func(fa *FileAnalysis) float64 { return fa.ImpactScore }
	default:
		return nil, fmt.Errorf("unknown ranking kind: %q", kind)
	}

	if n <= 0 {
		n = a.DefaultRankLimit
	}
	if n > len(paths) {
		n = len(paths)
	}

	out := make([]RankedFile, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RankedFile{
			Path:  paths[i],
			Score: score(a.Files[paths[i]]),
			Rank:  i + 1,
		})
	}
	return out, nil
}
