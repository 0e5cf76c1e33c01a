package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// pNN50Threshold is the successive-difference threshold in milliseconds.
const pNN50Threshold = 50.0

// RRIntervals derives a synthetic RR-interval series, in milliseconds, from
// instantaneous heart rate in beats per minute. A non-positive heart rate
// silently yields an infinite or NaN interval, it is not an error.
func RRIntervals(heartRate []float64) []float64 {
	rr := make([]float64, len(heartRate))
	for i, hr := range heartRate {
		rr[i] = 60000.0 / hr
	}
	return rr
}

// hrvColumns holds per-row HRV series aligned with the input readings.
// Entries before the window is full are NaN (pNN50 excepted, which is
// defined as 0 over an empty window).
type hrvColumns struct {
	rmssd []float64
	sdnn  []float64
	pnn50 []float64
}

// rollingHRV computes RMSSD, SDNN and pNN50 over a trailing count window of
// w samples of the synthetic RR series.
//
// The successive difference at index 0 does not exist; windows that would
// include it leave RMSSD undefined, and it counts as a non-exceedance for
// pNN50.
func rollingHRV(heartRate []float64, w int) *hrvColumns {
	n := len(heartRate)
	rr := RRIntervals(heartRate)

	// diff[i] = rr[i] - rr[i-1]; diff[0] is undefined
	diff := make([]float64, n)
	if n > 0 {
		diff[0] = math.NaN()
	}
	for i := 1; i < n; i++ {
		diff[i] = rr[i] - rr[i-1]
	}

	cols := &hrvColumns{
		rmssd: make([]float64, n),
		sdnn:  make([]float64, n),
		pnn50: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		lo := i - w + 1
		if lo < 0 || i < w-1 {
			cols.rmssd[i] = math.NaN()
			cols.sdnn[i] = math.NaN()
			cols.pnn50[i] = pnn50(diff, max(lo, 0), i)
			continue
		}

		cols.rmssd[i] = rmssd(diff[lo : i+1])
		cols.sdnn[i] = sampleStd(rr[lo : i+1])
		cols.pnn50[i] = pnn50(diff, lo, i)
	}
	return cols
}

// rmssd is the square root of the mean of squared successive differences.
// NaN if any difference in the window is undefined.
func rmssd(diffs []float64) float64 {
	if len(diffs) == 0 {
		return math.NaN()
	}
	sq := make([]float64, len(diffs))
	for i, d := range diffs {
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// pnn50 is the percentage of successive differences in diff[lo:hi+1] whose
// absolute value exceeds 50 ms. Undefined differences count as
// non-exceedances; an empty window yields exactly 0.
func pnn50(diff []float64, lo, hi int) float64 {
	total := hi - lo + 1
	if total <= 0 {
		return 0
	}

	count := 0
	for i := lo; i <= hi; i++ {
		if !math.IsNaN(diff[i]) && math.Abs(diff[i]) > pNN50Threshold {
			count++
		}
	}
	return 100 * float64(count) / float64(total)
}
