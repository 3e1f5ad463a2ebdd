package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metricadb/metrica/internal/analytics"
	"github.com/metricadb/metrica/internal/config"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/store"
)

// AnalysisService orchestrates the analytical operations: trend
// regression, correlation, pattern detection, and forecasting. Per-type
// analyses fan out to one goroutine per metric type; a failure for one
// type is reported alongside the successful siblings instead of failing
// the whole request.
type AnalysisService struct {
	logger *logging.Logger
	store  store.Store
	cfg    config.AnalyticsConfig
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(logger *logging.Logger, st store.Store, cfg config.AnalyticsConfig) *AnalysisService {
	return &AnalysisService{
		logger: logger,
		store:  st,
		cfg:    cfg,
	}
}

// Trends regresses each requested metric type (all types when the set
// is empty) independently and in parallel. Results are sorted by type;
// types with too little data land in the Errors map. Seasonality
// detection only runs when seasonalityCheck is set.
func (s *AnalysisService) Trends(ctx context.Context, start, end int64, types []string, seasonalityCheck bool) (*models.TrendResponse, error) {
	startTime := time.Now()

	byType, err := s.seriesByType(ctx, start, end, types)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		trends []models.TrendAnalysis
		failed = make(map[string]string)
	)

	for metricType, series := range byType {
		wg.Add(1)
		go func(metricType string, series models.Series) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			analysis, err := analytics.AnalyzeTrend(series)
			if err != nil {
				mu.Lock()
				failed[metricType] = err.Error()
				mu.Unlock()
				return
			}
			if seasonalityCheck {
				analysis.Seasonality = analytics.DetectSeasonality(series)
			}

			mu.Lock()
			trends = append(trends, *analysis)
			mu.Unlock()
		}(metricType, series)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{
			Code:    CodeAnalysisCanceled,
			Message: err.Error(),
		}
	}

	sort.Slice(trends, func(i, j int) bool { return trends[i].Type < trends[j].Type })

	latency := time.Since(startTime)
	s.logger.Info("Trend analysis completed",
		"types", len(byType),
		"analyzed", len(trends),
		"failed", len(failed),
		"latency_ms", latency.Milliseconds())

	resp := &models.TrendResponse{Trends: trends}
	if len(failed) > 0 {
		resp.Errors = failed
	}
	return resp, nil
}

// Correlations computes Pearson correlation for every pair of the
// requested metric types (all types when the set is empty), filtered
// to the confidence floor. A non-positive minConfidence falls back to
// the configured default.
func (s *AnalysisService) Correlations(ctx context.Context, start, end int64, types []string, minConfidence float64) (*models.CorrelationResponse, error) {
	startTime := time.Now()

	byType, err := s.seriesByType(ctx, start, end, types)
	if err != nil {
		return nil, err
	}

	if minConfidence <= 0 {
		minConfidence = s.cfg.CorrelationMinConfidence
	}
	correlations := analytics.AnalyzeCorrelations(byType, minConfidence)

	latency := time.Since(startTime)
	s.logger.Info("Correlation analysis completed",
		"types", len(byType),
		"pairs", len(correlations),
		"latency_ms", latency.Milliseconds())

	return &models.CorrelationResponse{
		Correlations: correlations,
		Count:        len(correlations),
	}, nil
}

// Patterns runs the pattern detectors over each requested metric type
// (all types when the set is empty), one goroutine per type, and
// merges the findings sorted by descending confidence. Non-positive
// minConfidence and maxPatterns fall back to the configured defaults.
func (s *AnalysisService) Patterns(ctx context.Context, start, end int64, types []string, minConfidence float64, maxPatterns int) (*models.PatternResponse, error) {
	startTime := time.Now()

	byType, err := s.seriesByType(ctx, start, end, types)
	if err != nil {
		return nil, err
	}

	if minConfidence <= 0 {
		minConfidence = s.cfg.PatternMinConfidence
	}
	if maxPatterns <= 0 {
		maxPatterns = s.cfg.MaxPatterns
	}
	opts := analytics.PatternOptions{
		MinConfidence: minConfidence,
		MaxPatterns:   maxPatterns,
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		patterns []models.Pattern
	)
	for _, series := range byType {
		wg.Add(1)
		go func(series models.Series) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			found := analytics.DetectPatterns(series, opts)
			mu.Lock()
			patterns = append(patterns, found...)
			mu.Unlock()
		}(series)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{
			Code:    CodeAnalysisCanceled,
			Message: err.Error(),
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	if opts.MaxPatterns > 0 && len(patterns) > opts.MaxPatterns {
		patterns = patterns[:opts.MaxPatterns]
	}

	latency := time.Since(startTime)
	s.logger.Info("Pattern detection completed",
		"types", len(byType),
		"patterns", len(patterns),
		"latency_ms", latency.Milliseconds())

	return &models.PatternResponse{
		Patterns: patterns,
		Count:    len(patterns),
	}, nil
}

// Forecast extrapolates one metric type's history steps ahead
func (s *AnalysisService) Forecast(ctx context.Context, metricType string, start, end int64, steps int, seasonal bool) (*models.ForecastResult, error) {
	if metricType == "" {
		return nil, &ServiceError{
			Code:    CodeMissingType,
			Message: "Forecast requires a metric type",
		}
	}

	if start == 0 {
		start = store.UnboundedStart
	}
	if end == 0 {
		end = store.UnboundedEnd
	}
	series, err := s.store.Query(ctx, metricType, start, end)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeQueryFailed,
			Message: "Failed to query samples",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	result, err := analytics.Forecast(series.Values(), steps, seasonal)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeInsufficientData,
			Message: err.Error(),
			Details: map[string]interface{}{"type": metricType},
		}
	}
	return result, nil
}

// seriesByType fetches the range grouped per metric type, restricted
// to the requested set when one is given.
func (s *AnalysisService) seriesByType(ctx context.Context, start, end int64, types []string) (map[string]models.Series, error) {
	if start == 0 {
		start = store.UnboundedStart
	}
	if end == 0 {
		end = store.UnboundedEnd
	}

	metricType := store.AllTypes
	if len(types) == 1 {
		metricType = types[0]
	}
	series, err := s.store.Query(ctx, metricType, start, end)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeQueryFailed,
			Message: "Failed to query samples",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	byType := series.GroupByType()
	if len(types) > 1 {
		wanted := make(map[string]struct{}, len(types))
		for _, t := range types {
			wanted[t] = struct{}{}
		}
		for t := range byType {
			if _, ok := wanted[t]; !ok {
				delete(byType, t)
			}
		}
	}
	return byType, nil
}
