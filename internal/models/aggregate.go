package models

// AggregateBucket is a statistical rollup of samples sharing a grouping
// key. IntervalStart/IntervalEnd are the min/max timestamp actually
// observed in the group, not the grid boundary the group was keyed by.
type AggregateBucket struct {
	Type          string            `json:"type"`
	GroupKey      map[string]string `json:"group_key,omitempty"`
	IntervalStart int64             `json:"interval_start"`
	IntervalEnd   int64             `json:"interval_end"`
	Count         int               `json:"count"`
	Min           float64           `json:"min"`
	Max           float64           `json:"max"`
	Sum           float64           `json:"sum"`
	Avg           float64           `json:"avg"`
	Variance      float64           `json:"variance"`
	StdDev        float64           `json:"std_dev"`
	P50           float64           `json:"p50"`
	P90           float64           `json:"p90"`
	P95           float64           `json:"p95"`
	P99           float64           `json:"p99"`
}

// AggregateOptions controls grouping in GroupAndAggregate. A zero
// IntervalMs disables time-bucketing; empty GroupByDims groups by
// type only.
type AggregateOptions struct {
	IntervalMs  int64    `json:"interval_ms,omitempty"`
	GroupByDims []string `json:"group_by,omitempty"`
}
