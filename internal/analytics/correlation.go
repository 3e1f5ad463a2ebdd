package analytics

import (
	"math"
	"sort"

	"github.com/metricadb/metrica/internal/models"
)

// DefaultCorrelationMinConfidence filters reported pairs by |r|.
const DefaultCorrelationMinConfidence = 0.5

// AnalyzeCorrelations computes the Pearson correlation for every
// unordered pair of types in the set. The two series are aligned on
// exactly matching timestamps; samples without a timestamp match in the
// other series are dropped. Only pairs with |r| above minConfidence are
// returned, strongest first.
func AnalyzeCorrelations(byType map[string]models.Series, minConfidence float64) []models.Correlation {
	if minConfidence <= 0 {
		minConfidence = DefaultCorrelationMinConfidence
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	var results []models.Correlation
	for i := 0; i < len(types); i++ {
		for j := i + 1; j < len(types); j++ {
			c := correlatePair(types[i], types[j], byType[types[i]], byType[types[j]])
			if math.Abs(c.Coefficient) > minConfidence {
				results = append(results, c)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return math.Abs(results[i].Coefficient) > math.Abs(results[j].Coefficient)
	})

	return results
}

// correlatePair aligns two series on exact timestamps and computes the
// Pearson coefficient with its significance. Fewer than 2 aligned pairs,
// or a zero-variance side, yields coefficient and significance 0. That
// is the zero-variance policy, not an error.
func correlatePair(typeA, typeB string, seriesA, seriesB models.Series) models.Correlation {
	result := models.Correlation{TypeA: typeA, TypeB: typeB}

	byTimestamp := make(map[int64]float64, len(seriesB))
	for _, s := range seriesB {
		byTimestamp[s.Timestamp] = s.Value
	}

	var as, bs []float64
	for _, s := range seriesA {
		if v, ok := byTimestamp[s.Timestamp]; ok {
			as = append(as, s.Value)
			bs = append(bs, v)
		}
	}

	n := len(as)
	if n < 2 {
		return result
	}

	meanA, meanB := 0.0, 0.0
	for i := 0; i < n; i++ {
		meanA += as[i]
		meanB += bs[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := as[i] - meanA
		db := bs[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom == 0 {
		return result
	}

	r := cov / denom
	result.Coefficient = r
	result.Significance = significance(r, n)
	return result
}

// significance converts a Pearson coefficient into 1 − P(T ≤ |t|) for
// t = r·sqrt((n−2)/(1−r²)) under the Student-t distribution with n−2
// degrees of freedom. A perfect correlation saturates t, giving a
// significance of 0.
func significance(r float64, n int) float64 {
	if n <= 2 {
		return 0
	}
	denom := 1 - r*r
	if denom <= 0 {
		// |r| == 1: t is unbounded, the CDF saturates at 1
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	s := 1 - studentTCDF(math.Abs(t), n-2)
	// Clamp against approximation drift
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
