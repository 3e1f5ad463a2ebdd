package aggregation

import "math"

// Mean calculates the mean of values. Zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationVariance calculates the population variance: mean of squared
// deviations with divisor n, not n-1. This matches the bucket contract
// and must not be swapped for the sample variance.
func PopulationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values))
}

// StdDev is the square root of the population variance.
func StdDev(values []float64) float64 {
	return math.Sqrt(PopulationVariance(values))
}

// MeanStdDev computes mean and population standard deviation in one pass
// over the deviations.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// PercentileNearestRank returns the nearest-rank percentile of an
// ascending-sorted slice: the value at index ceil(p/100*n)-1, clamped to
// [0, n-1]. Nearest rank, not linear interpolation, is the compatibility
// contract for bucket percentiles.
func PercentileNearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
