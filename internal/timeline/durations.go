package timeline

// fallbackEstimateSeconds is returned by estimatePerUnknown when every clip
// has a reported duration. In that case the estimate is never used in any
// aggregate, so the value only has to be finite.
const fallbackEstimateSeconds = 60

// estimatePerUnknown distributes the remaining duration budget evenly across
// clips whose real duration has not been reported yet. durations holds one
// entry per clip; entries <= 0 mean "not yet known". total is the event-level
// duration estimate supplied by the scanner.
func estimatePerUnknown(durations []float64, total float64) float64 {
	known := 0.0
	unknown := 0
	for _, d := range durations {
		if d > 0 {
			known += d
		} else {
			unknown++
		}
	}
	if unknown == 0 {
		return fallbackEstimateSeconds
	}
	remaining := total - known
	if remaining < 0 {
		remaining = 0
	}
	return remaining / float64(unknown)
}

// elapsedBefore sums the durations of all clips strictly before index,
// substituting the per-unknown estimate for clips that have not reported.
func elapsedBefore(durations []float64, total float64, index int) float64 {
	est := estimatePerUnknown(durations, total)
	sum := 0.0
	for i := 0; i < index && i < len(durations); i++ {
		if durations[i] > 0 {
			sum += durations[i]
		} else {
			sum += est
		}
	}
	return sum
}

// aggregateDuration sums reported durations over all clips, substituting the
// per-unknown estimate where no report has arrived. The result stays anchored
// to the event-level estimate until every clip is known.
func aggregateDuration(durations []float64, total float64) float64 {
	est := estimatePerUnknown(durations, total)
	sum := 0.0
	for _, d := range durations {
		if d > 0 {
			sum += d
		} else {
			sum += est
		}
	}
	return sum
}

// clamp returns v limited to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
