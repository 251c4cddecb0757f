package metrics

import "time"

// Rate computes the per-second rate between two monotonically increasing
// counter values, adapted from the teacher's util.Rate. Store.Update calls
// this on every sample after the first to derive each exposed *Rate field.
func Rate(prev, curr uint64, dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return float64(Delta(prev, curr)) / dt.Seconds()
}

// Delta returns curr - prev, or 0 on counter wrap/reset.
func Delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}
