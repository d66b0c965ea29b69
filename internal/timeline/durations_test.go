package timeline

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEstimatePerUnknown_distributes_remaining_budget(t *testing.T) {
	// One clip reported 10s of a 40s event; two clips unknown.
	est := estimatePerUnknown([]float64{10, 0, 0}, 40)
	if !almostEqual(est, 15) {
		t.Errorf("estimate = %v, want 15", est)
	}
}

func TestEstimatePerUnknown_all_known_returns_fallback(t *testing.T) {
	est := estimatePerUnknown([]float64{10, 12, 18}, 40)
	if !almostEqual(est, fallbackEstimateSeconds) {
		t.Errorf("estimate = %v, want fallback %v", est, float64(fallbackEstimateSeconds))
	}
}

func TestEstimatePerUnknown_negative_remaining_clamps_to_zero(t *testing.T) {
	// Reported durations already exceed the event estimate.
	est := estimatePerUnknown([]float64{30, 20, 0}, 40)
	if !almostEqual(est, 0) {
		t.Errorf("estimate = %v, want 0", est)
	}
}

func TestEstimatePerUnknown_nonpositive_entries_are_unknown(t *testing.T) {
	est := estimatePerUnknown([]float64{10, -1, 0}, 40)
	if !almostEqual(est, 15) {
		t.Errorf("estimate = %v, want 15", est)
	}
}

func TestAggregateDuration_stays_anchored_to_event_estimate(t *testing.T) {
	if got := aggregateDuration([]float64{10, 0, 0}, 40); !almostEqual(got, 40) {
		t.Errorf("aggregate = %v, want 40", got)
	}
	// Second clip reports 12: remaining unknown clip absorbs (40-10-12)=18.
	if got := aggregateDuration([]float64{10, 12, 0}, 40); !almostEqual(got, 40) {
		t.Errorf("aggregate after report = %v, want 40", got)
	}
}

func TestElapsedBefore_mixes_known_and_estimated(t *testing.T) {
	// Clips [10, ?, ?] of a 40s event; estimate 15 per unknown clip.
	if got := elapsedBefore([]float64{10, 0, 0}, 40, 1); !almostEqual(got, 10) {
		t.Errorf("elapsedBefore index 1 = %v, want 10", got)
	}
	if got := elapsedBefore([]float64{10, 0, 0}, 40, 2); !almostEqual(got, 25) {
		t.Errorf("elapsedBefore index 2 = %v, want 25", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(-1, 0, 10); got != 0 {
		t.Errorf("clamp(-1) = %v, want 0", got)
	}
	if got := clamp(11, 0, 10); got != 10 {
		t.Errorf("clamp(11) = %v, want 10", got)
	}
	if got := clamp(5, 0, 10); got != 5 {
		t.Errorf("clamp(5) = %v, want 5", got)
	}
}
