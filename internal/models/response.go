package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// WriteResponse represents sample write response
type WriteResponse struct {
	Accepted  bool   `json:"accepted"`
	RequestID string `json:"request_id"`
}

// WriteBatchResponse represents batch write response
type WriteBatchResponse struct {
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
	RequestID string `json:"request_id"`
}

// QueryResponse represents raw series query response
type QueryResponse struct {
	Samples []Sample `json:"samples"`
	Count   int      `json:"count"`
}

// AggregateResponse represents aggregation query response
type AggregateResponse struct {
	Buckets []AggregateBucket `json:"buckets"`
	Count   int               `json:"count"`
}

// AnomalyResponse represents anomaly query response
type AnomalyResponse struct {
	Anomalies []Sample `json:"anomalies"`
	Count     int      `json:"count"`
}

// TrendResponse represents trend analysis response. Errors maps metric
// types whose analysis failed to the failure reason; sibling analyses
// still return their results.
type TrendResponse struct {
	Trends []TrendAnalysis   `json:"trends"`
	Errors map[string]string `json:"errors,omitempty"`
}

// CorrelationResponse represents correlation analysis response
type CorrelationResponse struct {
	Correlations []Correlation `json:"correlations"`
	Count        int           `json:"count"`
}

// PatternResponse represents pattern detection response
type PatternResponse struct {
	Patterns []Pattern `json:"patterns"`
	Count    int       `json:"count"`
}

// StatsResponse reports per-type sample counts held by the store
type StatsResponse struct {
	TotalSamples int64            `json:"total_samples"`
	TypeCounts   map[string]int64 `json:"type_counts"`
}

// ErrorDetail represents error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
