package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/store"
)

// IngestService handles sample write business logic
type IngestService struct {
	logger *logging.Logger
	store  store.Store
}

// NewIngestService creates a new IngestService
func NewIngestService(logger *logging.Logger, st store.Store) *IngestService {
	return &IngestService{
		logger: logger,
		store:  st,
	}
}

// Write validates and stores a single sample
func (s *IngestService) Write(ctx context.Context, sample models.Sample) (*models.WriteResponse, error) {
	requestID := uuid.NewString()

	if err := s.store.Add(ctx, sample); err != nil {
		var validation *store.ValidationError
		if errors.As(err, &validation) {
			return nil, &ServiceError{
				Code:    CodeInvalidSample,
				Message: validation.Error(),
			}
		}
		return nil, &ServiceError{
			Code:    CodeWriteFailed,
			Message: "Failed to store sample",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	return &models.WriteResponse{
		Accepted:  true,
		RequestID: requestID,
	}, nil
}

// WriteBatch stores a batch of samples. Malformed samples are counted as
// rejected without failing the batch; any other store error aborts.
func (s *IngestService) WriteBatch(ctx context.Context, samples []models.Sample) (*models.WriteBatchResponse, error) {
	startTime := time.Now()
	requestID := uuid.NewString()

	accepted := 0
	rejected := 0
	for _, sample := range samples {
		if err := s.store.Add(ctx, sample); err != nil {
			var validation *store.ValidationError
			if errors.As(err, &validation) {
				rejected++
				continue
			}
			return nil, &ServiceError{
				Code:    CodeWriteFailed,
				Message: "Failed to store batch",
				Details: map[string]interface{}{
					"error":    err.Error(),
					"accepted": accepted,
				},
			}
		}
		accepted++
	}

	latency := time.Since(startTime)
	s.logger.Info("Batch write completed",
		"request_id", requestID,
		"accepted", accepted,
		"rejected", rejected,
		"latency_ms", latency.Milliseconds())

	return &models.WriteBatchResponse{
		Accepted:  accepted,
		Rejected:  rejected,
		RequestID: requestID,
	}, nil
}

// Delete removes samples of one type inside [start, end]
func (s *IngestService) Delete(ctx context.Context, metricType string, start, end int64) error {
	if metricType == "" {
		return &ServiceError{
			Code:    CodeMissingType,
			Message: "Delete requires a metric type",
		}
	}
	// Zero bounds mean unbounded, matching the query path
	if start == 0 {
		start = store.UnboundedStart
	}
	if end == 0 {
		end = store.UnboundedEnd
	}
	if err := s.store.DeleteRange(ctx, metricType, start, end); err != nil {
		return &ServiceError{
			Code:    "DELETE_FAILED",
			Message: "Failed to delete range",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	s.logger.Info("Range deleted",
		"type", metricType,
		"start", start,
		"end", end)
	return nil
}
