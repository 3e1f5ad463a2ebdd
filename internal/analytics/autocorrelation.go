package analytics

// movingAverage smooths values with a centered window. At the edges the
// window shrinks instead of padding, so the output has the same length
// as the input.
func movingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	half := window / 2

	smoothed := make([]float64, len(values))
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		smoothed[i] = sum / float64(hi-lo+1)
	}
	return smoothed
}

// autocorrelation computes the normalized autocorrelation of values at
// the given lag: covariance at the lag over the total variance.
func autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	var numerator, denominator float64
	for i := 0; i < n; i++ {
		d := values[i] - mean
		denominator += d * d
		if i+lag < n {
			numerator += d * (values[i+lag] - mean)
		}
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// dominantPeriod finds the lag in 1..n/2 maximizing autocorrelation and
// returns the lag with its correlation. A lag of 0 means no usable
// period was found.
func dominantPeriod(values []float64) (int, float64) {
	maxLag := len(values) / 2
	bestLag := 0
	bestCorr := 0.0

	for lag := 1; lag <= maxLag; lag++ {
		corr := autocorrelation(values, lag)
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	return bestLag, bestCorr
}

// detrend subtracts a moving-average smoothing from values, leaving the
// residual component used for period estimation and seasonal indexing.
func detrend(values []float64, window int) []float64 {
	smoothed := movingAverage(values, window)
	residual := make([]float64, len(values))
	for i := range values {
		residual[i] = values[i] - smoothed[i]
	}
	return residual
}

// seasonalIndexes averages detrended values by index mod period.
func seasonalIndexes(detrended []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		sums[i%period] += v
		counts[i%period]++
	}
	indexes := make([]float64, period)
	for i := range indexes {
		if counts[i] > 0 {
			indexes[i] = sums[i] / float64(counts[i])
		}
	}
	return indexes
}
