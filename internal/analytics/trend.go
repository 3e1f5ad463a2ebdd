package analytics

import (
	"github.com/metricadb/metrica/internal/models"
)

// TrendMinPoints is the minimum series length for a trend regression.
const TrendMinPoints = 10

// Slope thresholds for labeling: flatter than ±0.01 is stable.
const slopeLabelThreshold = 0.01

// Extrapolation offsets from the last observed timestamp, in
// milliseconds.
const (
	millisPerDay = int64(24 * 60 * 60 * 1000)
	millis24h    = millisPerDay
	millis7d     = 7 * millisPerDay
	millis30d    = 30 * millisPerDay
)

// regression holds an ordinary least squares fit over (x, y) pairs.
type regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// fitOLS computes the least squares line over (x, y) pairs and its R².
// A degenerate x spread (all x equal) yields a zero slope with the mean
// as intercept.
func fitOLS(xs, ys []float64) regression {
	n := float64(len(xs))

	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	// The sums run over centered x. With raw epoch-millisecond x the
	// textbook n*sumX2 - sumX*sumX form cancels every significant
	// digit: Var(x)/mean(x)^2 for closely spaced timestamps sits far
	// below float64 precision.
	var sxx, sxy, syy float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	if sxx == 0 {
		return regression{Intercept: meanY}
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	rSquared := 0.0
	if syy > 0 {
		rSquared = (sxy * sxy) / (sxx * syy)
	}

	return regression{Slope: slope, Intercept: intercept, RSquared: rSquared}
}

// AnalyzeTrend fits an ordinary least squares regression over
// (timestamp, value) pairs of a single-type series and labels the
// slope. Requires at least TrendMinPoints samples. The forecast fields
// are the regression line evaluated 24 hours, 7 days, and 30 days past
// the last observed timestamp.
func AnalyzeTrend(series models.Series) (*models.TrendAnalysis, error) {
	if len(series) < TrendMinPoints {
		metricType := ""
		if len(series) > 0 {
			metricType = series[0].Type
		}
		return nil, &InsufficientDataError{
			MetricType: metricType,
			Required:   TrendMinPoints,
			Got:        len(series),
		}
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, s := range series {
		xs[i] = float64(s.Timestamp)
		ys[i] = s.Value
	}

	fit := fitOLS(xs, ys)

	label := models.TrendStable
	switch {
	case fit.Slope > slopeLabelThreshold:
		label = models.TrendIncreasing
	case fit.Slope < -slopeLabelThreshold:
		label = models.TrendDecreasing
	}

	lastTs := series[len(series)-1].Timestamp
	at := func(ts int64) float64 {
		return fit.Slope*float64(ts) + fit.Intercept
	}

	return &models.TrendAnalysis{
		Type:       series[0].Type,
		Slope:      fit.Slope,
		Intercept:  fit.Intercept,
		RSquared:   fit.RSquared,
		Label:      label,
		Confidence: fit.RSquared * 100,
		Forecast: models.TrendForecast{
			Next24h: at(lastTs + millis24h),
			Next7d:  at(lastTs + millis7d),
			Next30d: at(lastTs + millis30d),
		},
	}, nil
}
