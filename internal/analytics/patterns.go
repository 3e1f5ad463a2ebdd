package analytics

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/metricadb/metrica/internal/models"
)

// DefaultPatternMinConfidence filters reported patterns.
const DefaultPatternMinConfidence = 0.7

// Volatility detector: a point is a spike/dip when it deviates from the
// local moving average by more than volatilitySigma local standard
// deviations within volatilityWindow points.
const (
	volatilityWindow = 5
	volatilitySigma  = 2.0
)

// Trend segment detector: sliding windows of trendSegmentWindow points
// whose local per-point slope magnitude exceeds trendSegmentSlope.
const (
	trendSegmentWindow = 10
	trendSegmentSlope  = 0.5
)

// Outlier detector: global z-score cutoff.
const outlierSigma = 3.0

// PatternOptions bounds the result set of DetectPatterns.
type PatternOptions struct {
	MinConfidence float64 // default DefaultPatternMinConfidence
	MaxPatterns   int     // 0 = unbounded
}

// DetectPatterns runs the independent detectors (volatility
// spikes/dips, cycles, trend segments, global outliers) over a
// single-type series, unions their findings, filters to the confidence
// floor, and returns them sorted by descending confidence, truncated
// to MaxPatterns.
func DetectPatterns(series models.Series, opts PatternOptions) []models.Pattern {
	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = DefaultPatternMinConfidence
	}

	var all []models.Pattern
	all = append(all, detectVolatility(series)...)
	all = append(all, detectCycle(series)...)
	all = append(all, detectTrendSegments(series)...)
	all = append(all, detectOutliers(series)...)

	filtered := all[:0]
	for _, p := range all {
		if p.Confidence >= minConfidence {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if opts.MaxPatterns > 0 && len(filtered) > opts.MaxPatterns {
		filtered = filtered[:opts.MaxPatterns]
	}
	return filtered
}

// detectVolatility flags points deviating from the mean of their
// window neighbors by more than volatilitySigma neighbor standard
// deviations.
// Confidence scales with how far past the threshold the deviation lies,
// saturating at twice the threshold.
func detectVolatility(series models.Series) []models.Pattern {
	if len(series) < volatilityWindow {
		return nil
	}

	values := series.Values()
	half := volatilityWindow / 2

	var patterns []models.Pattern
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		if hi-lo < 2 {
			continue
		}

		// Baseline from the neighbors only. Including the candidate
		// itself caps its own z-score below the threshold
		localMean := 0.0
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			localMean += values[j]
		}
		localMean /= float64(hi - lo)
		sumSq := 0.0
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			d := values[j] - localMean
			sumSq += d * d
		}
		localStd := math.Sqrt(sumSq / float64(hi-lo))
		if localStd == 0 {
			continue
		}

		deviation := values[i] - localMean
		z := math.Abs(deviation) / localStd
		if z <= volatilitySigma {
			continue
		}

		kind := models.PatternSpike
		if deviation < 0 {
			kind = models.PatternDip
		}

		patterns = append(patterns, models.Pattern{
			ID:         uuid.NewString(),
			Type:       series[i].Type,
			Kind:       kind,
			Confidence: math.Min(1, z/(2*volatilitySigma)),
			StartTime:  series[i].Timestamp,
			EndTime:    series[i].Timestamp,
			Magnitude:  deviation,
		})
	}
	return patterns
}

// detectCycle reports the autocorrelation-maximizing lag of the
// detrended series as a cycle, with the correlation as confidence and
// the lag as frequency (in points).
func detectCycle(series models.Series) []models.Pattern {
	if len(series) < SeasonalityMinPoints {
		return nil
	}

	detrended := detrend(series.Values(), smoothingWindow)
	lag, corr := dominantPeriod(detrended)
	if lag == 0 || corr <= 0 {
		return nil
	}

	// Amplitude of the repeating component
	magnitude := 0.0
	for _, idx := range seasonalIndexes(detrended, lag) {
		if a := math.Abs(idx); a > magnitude {
			magnitude = a
		}
	}

	return []models.Pattern{{
		ID:         uuid.NewString(),
		Type:       series[0].Type,
		Kind:       models.PatternCycle,
		Confidence: math.Min(1, corr),
		StartTime:  series[0].Timestamp,
		EndTime:    series[len(series)-1].Timestamp,
		Magnitude:  magnitude,
		Frequency:  lag,
	}}
}

// detectTrendSegments slides a window over the series and reports
// sub-ranges whose local per-point regression slope magnitude exceeds
// the fixed threshold. Consecutive qualifying windows merge into one
// segment; confidence is the mean local R² of the merged windows.
func detectTrendSegments(series models.Series) []models.Pattern {
	if len(series) < trendSegmentWindow {
		return nil
	}

	values := series.Values()
	xs := make([]float64, trendSegmentWindow)
	for i := range xs {
		xs[i] = float64(i)
	}

	var patterns []models.Pattern
	segStart := -1
	var segSlopes, segR2 []float64

	flush := func(end int) {
		if segStart < 0 {
			return
		}
		meanR2 := 0.0
		meanSlope := 0.0
		for i := range segR2 {
			meanR2 += segR2[i]
			meanSlope += segSlopes[i]
		}
		meanR2 /= float64(len(segR2))
		meanSlope /= float64(len(segSlopes))

		patterns = append(patterns, models.Pattern{
			ID:         uuid.NewString(),
			Type:       series[0].Type,
			Kind:       models.PatternTrend,
			Confidence: math.Min(1, meanR2),
			StartTime:  series[segStart].Timestamp,
			EndTime:    series[end].Timestamp,
			Magnitude:  meanSlope * float64(end-segStart),
		})
		segStart = -1
		segSlopes = segSlopes[:0]
		segR2 = segR2[:0]
	}

	for i := 0; i+trendSegmentWindow <= len(values); i++ {
		fit := fitOLS(xs, values[i:i+trendSegmentWindow])
		if math.Abs(fit.Slope) > trendSegmentSlope {
			if segStart < 0 {
				segStart = i
			}
			segSlopes = append(segSlopes, fit.Slope)
			segR2 = append(segR2, fit.RSquared)
			continue
		}
		flush(i + trendSegmentWindow - 2)
	}
	flush(len(series) - 1)

	return patterns
}

// detectOutliers flags global z-scores above outlierSigma. Confidence
// saturates at z = outlierSigma+1.
func detectOutliers(series models.Series) []models.Pattern {
	if len(series) == 0 {
		return nil
	}

	values := series.Values()
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(len(values)))
	if stdDev == 0 {
		return nil
	}

	var patterns []models.Pattern
	for i, v := range values {
		z := math.Abs(v-mean) / stdDev
		if z <= outlierSigma {
			continue
		}
		patterns = append(patterns, models.Pattern{
			ID:         uuid.NewString(),
			Type:       series[i].Type,
			Kind:       models.PatternOutlier,
			Confidence: math.Min(1, z/(outlierSigma+1)),
			StartTime:  series[i].Timestamp,
			EndTime:    series[i].Timestamp,
			Magnitude:  v - mean,
		})
	}
	return patterns
}
