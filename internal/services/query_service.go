package services

import (
	"context"
	"time"

	"github.com/metricadb/metrica/internal/aggregation"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/store"
)

// QueryService handles read-path business logic: raw range queries,
// statistical rollups, and threshold anomaly scans.
type QueryService struct {
	logger       *logging.Logger
	store        store.Store
	anomalySigma float64
}

// NewQueryService creates a new QueryService. anomalySigma is the
// default z-score threshold when a request does not set one.
func NewQueryService(logger *logging.Logger, st store.Store, anomalySigma float64) *QueryService {
	if anomalySigma <= 0 {
		anomalySigma = aggregation.DefaultAnomalySigma
	}
	return &QueryService{
		logger:       logger,
		store:        st,
		anomalySigma: anomalySigma,
	}
}

// QueryRequest bounds a raw or aggregated series read. Zero Start/End
// mean unbounded; an empty Types set matches all types.
type QueryRequest struct {
	Types []string
	Start int64
	End   int64
}

func (r *QueryRequest) bounds() (int64, int64) {
	start := r.Start
	end := r.End
	if start == 0 {
		start = store.UnboundedStart
	}
	if end == 0 {
		end = store.UnboundedEnd
	}
	return start, end
}

// Query returns the raw samples in the request range
func (s *QueryService) Query(ctx context.Context, req *QueryRequest) (*models.QueryResponse, error) {
	series, err := s.querySeries(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.QueryResponse{
		Samples: series,
		Count:   len(series),
	}, nil
}

// Aggregate rolls the request range up into per-group buckets
func (s *QueryService) Aggregate(ctx context.Context, req *QueryRequest, opts models.AggregateOptions) (*models.AggregateResponse, error) {
	startTime := time.Now()

	series, err := s.querySeries(ctx, req)
	if err != nil {
		return nil, err
	}

	buckets := aggregation.GroupAndAggregate(series, opts)

	latency := time.Since(startTime)
	s.logger.Info("Aggregation completed",
		"types", req.Types,
		"samples", len(series),
		"buckets", len(buckets),
		"interval_ms", opts.IntervalMs,
		"latency_ms", latency.Milliseconds())

	return &models.AggregateResponse{
		Buckets: buckets,
		Count:   len(buckets),
	}, nil
}

// Anomalies flags samples whose z-score against their own type's range
// statistics meets the threshold. A non-positive thresholdSigma falls
// back to the service default.
func (s *QueryService) Anomalies(ctx context.Context, req *QueryRequest, thresholdSigma float64) (*models.AnomalyResponse, error) {
	if thresholdSigma <= 0 {
		thresholdSigma = s.anomalySigma
	}

	series, err := s.querySeries(ctx, req)
	if err != nil {
		return nil, err
	}

	anomalies := aggregation.AnomaliesByStdDev(series, thresholdSigma)
	if len(anomalies) > 0 {
		s.logger.Info("Anomalies flagged",
			"types", req.Types,
			"samples", len(series),
			"anomalies", len(anomalies),
			"sigma", thresholdSigma)
	}

	return &models.AnomalyResponse{
		Anomalies: anomalies,
		Count:     len(anomalies),
	}, nil
}

// Stats reports per-type sample counts held by the store
func (s *QueryService) Stats(ctx context.Context) (*models.StatsResponse, error) {
	counts := s.store.Count()
	total := int64(0)
	for _, c := range counts {
		total += c
	}
	return &models.StatsResponse{
		TotalSamples: total,
		TypeCounts:   counts,
	}, nil
}

func (s *QueryService) querySeries(ctx context.Context, req *QueryRequest) (models.Series, error) {
	start, end := req.bounds()

	// A single requested type goes to the store directly; multiple
	// types fetch everything and filter, the store filter is per-type.
	metricType := store.AllTypes
	if len(req.Types) == 1 {
		metricType = req.Types[0]
	}
	series, err := s.store.Query(ctx, metricType, start, end)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeQueryFailed,
			Message: "Failed to query samples",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	if len(req.Types) > 1 {
		series = filterByType(series, req.Types)
	}
	return series, nil
}

// filterByType keeps only samples whose type is in the requested set,
// preserving order.
func filterByType(series models.Series, types []string) models.Series {
	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	filtered := make(models.Series, 0, len(series))
	for _, s := range series {
		if _, ok := wanted[s.Type]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
