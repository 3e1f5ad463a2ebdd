// Package aggregation groups sample series and computes statistical
// rollups per group. All functions are pure: they operate on an
// already-fetched immutable series and share no state.
package aggregation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/metricadb/metrica/internal/models"
)

// group accumulates the samples that share one grouping key.
type group struct {
	metricType string
	groupKey   map[string]string
	minTs      int64
	maxTs      int64
	values     []float64
}

// GroupAndAggregate groups a series by type, optional metadata
// dimensions, and optional time interval, and computes the statistical
// rollup for each group. Buckets are returned ordered by type, group
// key, then interval start.
//
// The grouping interval uses floor(timestamp/intervalMs)*intervalMs as
// the key, but a bucket's IntervalStart/IntervalEnd report the min/max
// timestamp actually observed in the group, not the grid boundary.
func GroupAndAggregate(series models.Series, opts models.AggregateOptions) []models.AggregateBucket {
	if len(series) == 0 {
		return nil
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, s := range series {
		key, dims := groupingKey(&s, opts)
		g, ok := groups[key]
		if !ok {
			g = &group{
				metricType: s.Type,
				groupKey:   dims,
				minTs:      s.Timestamp,
				maxTs:      s.Timestamp,
			}
			groups[key] = g
			order = append(order, key)
		}
		if s.Timestamp < g.minTs {
			g.minTs = s.Timestamp
		}
		if s.Timestamp > g.maxTs {
			g.maxTs = s.Timestamp
		}
		g.values = append(g.values, s.Value)
	}

	sort.Strings(order)

	buckets := make([]models.AggregateBucket, 0, len(order))
	for _, key := range order {
		buckets = append(buckets, bucketFromGroup(groups[key]))
	}
	return buckets
}

// groupingKey builds the composite key: type + configured dimensions
// (missing dimension value is the literal "unknown") + floored interval
// timestamp when an interval is set.
func groupingKey(s *models.Sample, opts models.AggregateOptions) (string, map[string]string) {
	var sb strings.Builder
	sb.WriteString(s.Type)

	var dims map[string]string
	if len(opts.GroupByDims) > 0 {
		dims = make(map[string]string, len(opts.GroupByDims))
		for _, dim := range opts.GroupByDims {
			v := s.Dimension(dim)
			dims[dim] = v
			sb.WriteByte('|')
			sb.WriteString(dim)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}

	if opts.IntervalMs > 0 {
		bucketTs := floorDiv(s.Timestamp, opts.IntervalMs) * opts.IntervalMs
		sb.WriteByte('|')
		// Fixed width keeps lexicographic and chronological order aligned
		sb.WriteString(pad20(bucketTs))
	}

	return sb.String(), dims
}

// floorDiv divides rounding toward negative infinity so pre-epoch
// timestamps land in the correct bucket.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func pad20(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) >= 20 {
		return s
	}
	return strings.Repeat("0", 20-len(s)) + s
}

func bucketFromGroup(g *group) models.AggregateBucket {
	values := g.values
	count := len(values)

	min, max := values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	avg := sum / float64(count)

	variance := PopulationVariance(values)

	sorted := make([]float64, count)
	copy(sorted, values)
	sort.Float64s(sorted)

	return models.AggregateBucket{
		Type:          g.metricType,
		GroupKey:      g.groupKey,
		IntervalStart: g.minTs,
		IntervalEnd:   g.maxTs,
		Count:         count,
		Min:           min,
		Max:           max,
		Sum:           sum,
		Avg:           avg,
		Variance:      variance,
		StdDev:        StdDev(values),
		P50:           PercentileNearestRank(sorted, 50),
		P90:           PercentileNearestRank(sorted, 90),
		P95:           PercentileNearestRank(sorted, 95),
		P99:           PercentileNearestRank(sorted, 99),
	}
}
