package analytics

import (
	"math"

	"github.com/metricadb/metrica/internal/models"
)

// ForecastMinPoints is the minimum history length for the single-series
// forecaster.
const ForecastMinPoints = 2

// smoothingWindow is the centered moving average window used to split
// trend from seasonal component.
const smoothingWindow = 5

// forecastBandZ is the z-score for the 95% confidence band.
const forecastBandZ = 1.96

// Forecast extrapolates a value series steps ahead with a linear trend.
// When seasonal is set, the series is smoothed with a centered moving
// average, detrended by subtraction, the dominant period estimated by
// maximizing lag-autocorrelation, and the per-period seasonal index is
// added back onto the extrapolated trend. The confidence band is the
// prediction ±1.96 times the standard deviation of the historical
// values, not a residual-specific error.
func Forecast(values []float64, steps int, seasonal bool) (*models.ForecastResult, error) {
	if len(values) < ForecastMinPoints {
		return nil, &InsufficientDataError{Required: ForecastMinPoints, Got: len(values)}
	}
	if steps <= 0 {
		return &models.ForecastResult{
			Predictions: []float64{},
			Confidence:  models.ForecastConfidence{Lower: []float64{}, Upper: []float64{}},
		}, nil
	}

	n := len(values)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	fit := fitOLS(xs, values)

	var indexes []float64
	period := 0
	if seasonal {
		detrended := detrend(values, smoothingWindow)
		if lag, corr := dominantPeriod(detrended); lag > 0 && corr > 0 {
			period = lag
			indexes = seasonalIndexes(detrended, period)
		}
	}

	// Historical spread for the band
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(n))
	margin := forecastBandZ * stdDev

	predictions := make([]float64, steps)
	lower := make([]float64, steps)
	upper := make([]float64, steps)
	for i := 0; i < steps; i++ {
		idx := n + i
		p := fit.Slope*float64(idx) + fit.Intercept
		if period > 0 {
			p += indexes[idx%period]
		}
		predictions[i] = p
		lower[i] = p - margin
		upper[i] = p + margin
	}

	return &models.ForecastResult{
		Predictions: predictions,
		Confidence:  models.ForecastConfidence{Lower: lower, Upper: upper},
	}, nil
}
