package workout

import (
	"math"
)

// Auto-regulation constants.
const (
	// Feedback signal thresholds.
	increaseRPEThreshold        = 6.0
	increaseCompletionThreshold = 0.9
	decreaseRPEThreshold        = 8.0
	decreaseCompletionThreshold = 0.7

	// targetBias places targetReps inside the adjusted rep range: two-thirds
	// up from the low bound by default, pushed toward the bounds by feedback.
	defaultTargetBias  = 2.0 / 3.0
	increaseTargetBias = 0.95
	decreaseTargetBias = 0.3

	// Feedback nudges on top of the recovery multiplier.
	increaseIntensityFactor = 1.05
	decreaseIntensityFactor = 0.95

	decreaseRestDeltaSeconds = 30
)

// sessionAdjustment is the auto-regulation output for one exercise: the
// adjusted rep range plus intensity and rest deltas.
type sessionAdjustment struct {
	reps                RepRange
	intensityMultiplier float64
	restDeltaSeconds    int
	targetBias          float64
}

// shouldIncreaseDifficulty signals cross-session progression: the last
// session felt easy and was nearly fully completed.
func shouldIncreaseDifficulty(f PerformanceFeedback) bool {
	return f.effectiveRPE() < increaseRPEThreshold && f.CompletionRate > increaseCompletionThreshold
}

// shouldDecreaseDifficulty signals a needed deload: the last session was near
// maximal effort or largely incomplete.
func shouldDecreaseDifficulty(f PerformanceFeedback) bool {
	return f.effectiveRPE() > decreaseRPEThreshold || f.CompletionRate < decreaseCompletionThreshold
}

// autoRegulate computes the session adjustment for one exercise from the
// muscle's recovery status and the most recent session feedback. The recovery
// adjustment applies first; feedback applies second and may override the
// recovery effect on the target but never the equipment or goal constraints
// decided upstream.
func autoRegulate(base RepRange, recovery RecoveryLevel, last *PerformanceFeedback) sessionAdjustment {
	rec := recovery.adjustment()

	adjusted := RepRange{
		Low:  base.Low + rec.repAdjustment,
		High: base.High + rec.repAdjustment,
	}
	if adjusted.Low < 1 {
		adjusted.Low = 1
	}
	if adjusted.High < adjusted.Low {
		adjusted.High = adjusted.Low
	}

	out := sessionAdjustment{
		reps:                adjusted,
		intensityMultiplier: rec.intensityMultiplier,
		targetBias:          defaultTargetBias,
	}

	if last == nil {
		return out
	}

	// Both signals are evaluated independently even though they are mutually
	// exclusive in practice.
	if shouldIncreaseDifficulty(*last) {
		out.targetBias = increaseTargetBias
		out.intensityMultiplier *= increaseIntensityFactor
	}
	if shouldDecreaseDifficulty(*last) {
		out.targetBias = decreaseTargetBias
		out.intensityMultiplier *= decreaseIntensityFactor
		out.restDeltaSeconds += decreaseRestDeltaSeconds
	}

	return out
}

// targetRepsFor places the single target rep count inside the range according
// to the bias, clamped to the range.
func targetRepsFor(reps RepRange, bias float64) int {
	span := float64(reps.High - reps.Low)
	target := reps.Low + int(math.Ceil(span*bias))
	if target < reps.Low {
		target = reps.Low
	}
	if target > reps.High {
		target = reps.High
	}
	return target
}
