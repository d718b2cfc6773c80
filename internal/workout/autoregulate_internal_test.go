package workout

import (
	"testing"
)

func TestAutoRegulateRecoveryAdjustments(t *testing.T) {
	base := RepRange{Low: 8, High: 15}

	tests := []struct {
		name          string
		recovery      RecoveryLevel
		wantReps      RepRange
		wantIntensity float64
	}{
		{
			name:          "fresh muscle lowers reps and keeps full intensity",
			recovery:      RecoveryFresh,
			wantReps:      RepRange{Low: 7, High: 14},
			wantIntensity: 1.0,
		},
		{
			name:          "moderate recovery keeps reps and trims intensity",
			recovery:      RecoveryModerate,
			wantReps:      RepRange{Low: 8, High: 15},
			wantIntensity: 0.9,
		},
		{
			name:          "fatigued muscle raises reps and drops intensity",
			recovery:      RecoveryFatigued,
			wantReps:      RepRange{Low: 10, High: 17},
			wantIntensity: 0.8,
		},
		{
			name:          "unknown level behaves as moderate",
			recovery:      RecoveryLevel("mysterious"),
			wantReps:      RepRange{Low: 8, High: 15},
			wantIntensity: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := autoRegulate(base, tt.recovery, nil)
			if adj.reps != tt.wantReps {
				t.Errorf("reps = %+v, want %+v", adj.reps, tt.wantReps)
			}
			if adj.intensityMultiplier != tt.wantIntensity {
				t.Errorf("intensity = %v, want %v", adj.intensityMultiplier, tt.wantIntensity)
			}
			if adj.restDeltaSeconds != 0 {
				t.Errorf("rest delta = %d without feedback, want 0", adj.restDeltaSeconds)
			}
		})
	}
}

func TestAutoRegulateRepRangeNeverInverts(t *testing.T) {
	adj := autoRegulate(RepRange{Low: 1, High: 1}, RecoveryFresh, nil)
	if adj.reps.Low < 1 {
		t.Errorf("rep low %d fell below 1", adj.reps.Low)
	}
	if adj.reps.High < adj.reps.Low {
		t.Errorf("inverted rep range %d-%d", adj.reps.Low, adj.reps.High)
	}
}

func TestFeedbackSignals(t *testing.T) {
	tests := []struct {
		name         string
		rpe          float64
		completion   float64
		wantIncrease bool
		wantDecrease bool
	}{
		{name: "easy and complete increases", rpe: 5.0, completion: 0.95, wantIncrease: true},
		{name: "very hard decreases", rpe: 8.6, completion: 1.0, wantDecrease: true},
		{name: "incomplete decreases", rpe: 5.0, completion: 0.6, wantIncrease: false, wantDecrease: true},
		{name: "moderate session holds steady", rpe: 7.0, completion: 0.85},
		{name: "boundary RPE does not trigger increase", rpe: 6.0, completion: 0.95},
		{name: "boundary completion does not trigger increase", rpe: 5.0, completion: 0.9},
		{name: "boundary RPE does not trigger decrease", rpe: 8.0, completion: 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := PerformanceFeedback{OverallRPE: tt.rpe, CompletionRate: tt.completion}
			if got := shouldIncreaseDifficulty(fb); got != tt.wantIncrease {
				t.Errorf("shouldIncreaseDifficulty = %v, want %v", got, tt.wantIncrease)
			}
			if got := shouldDecreaseDifficulty(fb); got != tt.wantDecrease {
				t.Errorf("shouldDecreaseDifficulty = %v, want %v", got, tt.wantDecrease)
			}
		})
	}
}

func TestFeedbackSignalsFallBackToDifficultyRating(t *testing.T) {
	// Without a reported RPE the difficulty rating's estimate drives the
	// signals: too_easy estimates RPE 3, too_hard 9.5.
	easy := PerformanceFeedback{Difficulty: DifficultyTooEasy, CompletionRate: 1.0}
	if !shouldIncreaseDifficulty(easy) {
		t.Error("too_easy with full completion should signal an increase")
	}
	hard := PerformanceFeedback{Difficulty: DifficultyTooHard, CompletionRate: 1.0}
	if !shouldDecreaseDifficulty(hard) {
		t.Error("too_hard should signal a decrease")
	}
}

func TestAutoRegulateAppliesFeedback(t *testing.T) {
	base := RepRange{Low: 8, High: 15}

	t.Run("increase pushes target toward the top", func(t *testing.T) {
		last := &PerformanceFeedback{OverallRPE: 5.0, CompletionRate: 0.95}
		adj := autoRegulate(base, RecoveryFresh, last)
		if adj.targetBias != increaseTargetBias {
			t.Errorf("target bias = %v, want %v", adj.targetBias, increaseTargetBias)
		}
		if adj.intensityMultiplier != 1.0*increaseIntensityFactor {
			t.Errorf("intensity = %v, want %v", adj.intensityMultiplier, increaseIntensityFactor)
		}
		if adj.restDeltaSeconds != 0 {
			t.Errorf("rest delta = %d, want 0", adj.restDeltaSeconds)
		}
	})

	t.Run("decrease pulls target down and shortens rest", func(t *testing.T) {
		last := &PerformanceFeedback{OverallRPE: 9.0, CompletionRate: 1.0}
		adj := autoRegulate(base, RecoveryModerate, last)
		if adj.targetBias != decreaseTargetBias {
			t.Errorf("target bias = %v, want %v", adj.targetBias, decreaseTargetBias)
		}
		want := 0.9 * decreaseIntensityFactor
		if adj.intensityMultiplier != want {
			t.Errorf("intensity = %v, want %v", adj.intensityMultiplier, want)
		}
		if adj.restDeltaSeconds != decreaseRestDeltaSeconds {
			t.Errorf("rest delta = %d, want %d", adj.restDeltaSeconds, decreaseRestDeltaSeconds)
		}
	})
}

func TestTargetRepsFor(t *testing.T) {
	reps := RepRange{Low: 8, High: 15}

	tests := []struct {
		name string
		bias float64
		want int
	}{
		{name: "default bias lands two thirds up", bias: defaultTargetBias, want: 13},
		{name: "increase bias lands at the top", bias: increaseTargetBias, want: 15},
		{name: "decrease bias lands near the bottom", bias: decreaseTargetBias, want: 11},
		{name: "zero bias is the low bound", bias: 0, want: 8},
		{name: "full bias is the high bound", bias: 1, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := targetRepsFor(reps, tt.bias)
			if got != tt.want {
				t.Errorf("targetRepsFor = %d, want %d", got, tt.want)
			}
			if got < reps.Low || got > reps.High {
				t.Errorf("target %d escaped range %d-%d", got, reps.Low, reps.High)
			}
		})
	}
}
