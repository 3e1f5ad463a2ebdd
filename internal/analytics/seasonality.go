package analytics

import (
	"github.com/metricadb/metrica/internal/models"
)

// SeasonalityMinPoints is the minimum series length for seasonality
// flagging. Shorter series degenerate to "no seasonality" rather than
// erroring.
const SeasonalityMinPoints = 20

// seasonalityScoreThreshold is the flag cutoff for a candidate period's
// lag-product score.
const seasonalityScoreThreshold = 0.7

// candidatePeriods lists the flagged periods, finest first. Pattern
// naming follows this priority: daily over weekly over monthly.
var candidatePeriods = []struct {
	name     string
	periodMs int64
}{
	{"daily", millisPerDay},
	{"weekly", 7 * millisPerDay},
	{"monthly", 30 * millisPerDay},
}

// DetectSeasonality scores each candidate period by averaging
// value[i]*value[j] over index pairs whose timestamps are separated by
// exactly the period. Pairs need an exact timestamp match, not a nearest
// neighbor. A score above 0.7 sets the period's flag; Pattern names the
// finest-grained flagged period.
func DetectSeasonality(series models.Series) *models.Seasonality {
	result := &models.Seasonality{}
	if len(series) < SeasonalityMinPoints {
		return result
	}

	// Exact-match lookup from timestamp to value. A duplicate timestamp
	// keeps the later sample, matching last-write-wins reads.
	byTimestamp := make(map[int64]float64, len(series))
	for _, s := range series {
		byTimestamp[s.Timestamp] = s.Value
	}

	for _, candidate := range candidatePeriods {
		score := lagProductScore(series, byTimestamp, candidate.periodMs)
		if score <= seasonalityScoreThreshold {
			continue
		}
		switch candidate.name {
		case "daily":
			result.Daily = true
		case "weekly":
			result.Weekly = true
		case "monthly":
			result.Monthly = true
		}
		if result.Pattern == "" {
			result.Pattern = candidate.name
		}
	}

	return result
}

// lagProductScore averages value[i]*value[i+P] over pairs separated by
// exactly periodMs. Zero when no exact pairs exist.
func lagProductScore(series models.Series, byTimestamp map[int64]float64, periodMs int64) float64 {
	sum := 0.0
	count := 0
	for _, s := range series {
		if other, ok := byTimestamp[s.Timestamp+periodMs]; ok {
			sum += s.Value * other
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
