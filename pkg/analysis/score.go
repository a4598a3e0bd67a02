package analysis

import (
	"strings"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// Normalization ceilings for the risk factors. A file at or above the
// ceiling contributes a full 1.0 for that factor.
const (
	complexityCeil = 50.0
	fanOutCeil     = 20.0
	fanInCeil      = 10.0
	sizeCeil       = 2000.0
)

// computeMetrics derives the complexity inputs from a parsed file. Failed and
// skipped files keep their line counts and score zero on everything else.
func computeMetrics(file *types.SourceFile) ComplexityMetrics {
	m := ComplexityMetrics{
		TotalLines:      file.TotalLines,
		CodeLines:       file.CodeLines,
		FunctionCount:   len(file.AllFunctions()),
		ClassCount:      len(file.Classes),
		ImportCount:     len(file.Imports),
		MaxNestingDepth: file.MaxNestingDepth,
	}

	fns := file.AllFunctions()
	if len(fns) > 0 {
		var sum, max float64
		for _, fn := range fns {
			length := float64(fn.EndLine - fn.StartLine)
			sum += length
			if length > max {
				max = length
			}
		}
		m.AvgFunctionLength = sum / float64(len(fns))
		m.MaxFunctionLength = max
	}

	m.Score = float64(m.FunctionCount)*2 +
		float64(m.ClassCount)*3 +
		float64(m.ImportCount)*0.5 +
		float64(m.MaxNestingDepth)

	return m
}

// scoreFile combines the normalized factors into a weighted risk score.
func scoreFile(fa *FileAnalysis, w Weights) RiskScore {
	factors := map[string]float64{
		"complexity": clamp01(fa.Metrics.Score / complexityCeil),
		"fan_out":    clamp01(float64(len(fa.Dependencies)) / fanOutCeil),
		"fan_in":     clamp01(float64(len(fa.Dependents)) / fanInCeil),
		"size":       clamp01(float64(fa.Metrics.CodeLines) / sizeCeil),
	}

	overall := factors["complexity"]*w.Complexity +
		factors["fan_in"]*w.FanIn +
		factors["fan_out"]*w.FanOut +
		factors["size"]*w.Size

	return RiskScore{
		Overall:     overall,
		Factors:     factors,
		Explanation: explain(factors),
	}
}

// impactScore measures how much of a file's coupling points inward:
// dependents / (dependencies + dependents), at least one in the denominator.
func impactScore(fa *FileAnalysis) float64 {
	total := len(fa.Dependencies) + len(fa.Dependents)
	if total < 1 {
		total = 1
	}
	return float64(len(fa.Dependents)) / float64(total)
}

// explain summarizes which factors dominate, for user-facing output.
func explain(factors map[string]float64) string {
	var parts []string
	if factors["complexity"] > 0.7 {
		parts = append(parts, "high complexity")
	}
	if factors["fan_out"] > 0.7 {
		parts = append(parts, "many dependencies")
	}
	if factors["fan_in"] > 0.7 {
		parts = append(parts, "many files depend on this")
	}
	if factors["size"] > 0.7 {
		parts = append(parts, "large file")
	}
	if len(parts) == 0 {
		return "low to medium risk"
	}
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
