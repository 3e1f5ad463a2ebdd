package aggregation

import (
	"math"

	"github.com/metricadb/metrica/internal/models"
)

// DefaultAnomalySigma is the z-score threshold used when the caller does
// not override it.
const DefaultAnomalySigma = 2.0

// AnomaliesByStdDev flags samples whose z-score against their type's
// whole-range mean reaches thresholdSigma. Mean and standard deviation
// are computed over the entire queried range per type, not per
// sub-bucket. The threshold is inclusive: a sample sitting exactly at
// thresholdSigma deviations is an anomaly. A type with zero standard
// deviation never flags anomalies; that is the defined zero-division
// policy, not an error.
func AnomaliesByStdDev(series models.Series, thresholdSigma float64) []models.Sample {
	if thresholdSigma <= 0 {
		thresholdSigma = DefaultAnomalySigma
	}

	var anomalies []models.Sample
	for _, typeSeries := range orderedGroups(series) {
		mean, stdDev := MeanStdDev(typeSeries.Values())
		if stdDev == 0 {
			continue
		}
		for _, s := range typeSeries {
			if math.Abs(s.Value-mean)/stdDev >= thresholdSigma {
				anomalies = append(anomalies, s)
			}
		}
	}
	return anomalies
}

// orderedGroups splits a series by type, yielding groups in first-seen
// order so output is deterministic.
func orderedGroups(series models.Series) []models.Series {
	index := make(map[string]int)
	var groups []models.Series
	for _, s := range series {
		i, ok := index[s.Type]
		if !ok {
			i = len(groups)
			index[s.Type] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}
	return groups
}
