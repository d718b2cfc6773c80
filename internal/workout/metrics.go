package workout

import (
	"math"
)

// Trend summarizes the direction of recent performance.
type Trend string

// Trend constants.
const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// PerformanceMetrics is a rolling aggregate over session feedback. It is
// derived data, recomputed whenever new feedback arrives.
type PerformanceMetrics struct {
	AverageRPE        float64 `json:"average_rpe"`
	AverageCompletion float64 `json:"average_completion"`
	SampleCount       int     `json:"sample_count"`
	Trend             Trend   `json:"trend"`
	PlateauRisk       float64 `json:"plateau_risk"`
}

// Trend detection constants.
const (
	trendMinSamples    = 4
	trendRPEDelta      = 0.5
	plateauStableBand  = 0.4
	plateauRPEFloor    = 7.0
	completionImproved = 0.05
)

// ComputeMetrics derives rolling performance metrics from feedback ordered
// oldest first. Empty input yields zero-valued metrics with a stable trend.
func ComputeMetrics(feedback []PerformanceFeedback) PerformanceMetrics {
	m := PerformanceMetrics{Trend: TrendStable}
	if len(feedback) == 0 {
		return m
	}

	var rpeSum, completionSum float64
	for _, f := range feedback {
		rpeSum += f.effectiveRPE()
		completionSum += f.CompletionRate
	}
	m.SampleCount = len(feedback)
	m.AverageRPE = rpeSum / float64(m.SampleCount)
	m.AverageCompletion = completionSum / float64(m.SampleCount)
	m.Trend = computeTrend(feedback)
	m.PlateauRisk = computePlateauRisk(feedback, m)
	return m
}

// computeTrend compares the recent half against the older half. Performance
// is improving when completion rises or the same work feels easier (RPE
// drops).
func computeTrend(feedback []PerformanceFeedback) Trend {
	if len(feedback) < trendMinSamples {
		return TrendStable
	}

	mid := len(feedback) / 2
	olderRPE, olderCompletion := averages(feedback[:mid])
	recentRPE, recentCompletion := averages(feedback[mid:])

	switch {
	case recentCompletion > olderCompletion+completionImproved,
		recentRPE < olderRPE-trendRPEDelta:
		return TrendImproving
	case recentCompletion < olderCompletion-completionImproved,
		recentRPE > olderRPE+trendRPEDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// computePlateauRisk estimates stagnation risk in [0, 1]. Risk grows when RPE
// sits high with a flat trend across a meaningful sample.
func computePlateauRisk(feedback []PerformanceFeedback, m PerformanceMetrics) float64 {
	if m.SampleCount < trendMinSamples || m.Trend != TrendStable {
		return 0
	}

	var spread float64
	for _, f := range feedback {
		spread += math.Abs(f.effectiveRPE() - m.AverageRPE)
	}
	spread /= float64(m.SampleCount)

	risk := 0.0
	if spread < plateauStableBand {
		risk = 0.5
		if m.AverageRPE >= plateauRPEFloor {
			risk += 0.3
		}
		risk += math.Min(0.2, float64(m.SampleCount)/50)
	}
	return math.Min(1, risk)
}

func averages(feedback []PerformanceFeedback) (rpe, completion float64) {
	for _, f := range feedback {
		rpe += f.effectiveRPE()
		completion += f.CompletionRate
	}
	n := float64(len(feedback))
	return rpe / n, completion / n
}
