package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/services"
)

// Query returns raw samples in a time range. An absent type matches all
// types; absent bounds are unbounded.
func (h *Handler) Query(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}

	var types []string
	if t := c.Query("type"); t != "" {
		types = []string{t}
	}
	resp, err := h.queryService.Query(c.UserContext(), &services.QueryRequest{
		Types: types,
		Start: start,
		End:   end,
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Aggregate rolls a range up into per-group statistical buckets.
// types restricts the metric types (comma separated, empty means all),
// interval_ms sets the bucket width (0 disables time-bucketing) and
// group_by lists metadata dimensions, comma separated.
func (h *Handler) Aggregate(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	intervalMs, err := queryInt64(c, "interval_ms")
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	if intervalMs < 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "interval_ms must not be negative")
	}

	resp, err := h.queryService.Aggregate(c.UserContext(), &services.QueryRequest{
		Types: queryList(c, "types"),
		Start: start,
		End:   end,
	}, models.AggregateOptions{
		IntervalMs:  intervalMs,
		GroupByDims: queryList(c, "group_by"),
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Anomalies flags samples deviating from their type's range statistics.
// types restricts the metric types; sigma overrides the configured
// z-score threshold when positive.
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	sigma, err := queryFloat(c, "sigma")
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	if sigma < 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "sigma must not be negative")
	}

	resp, err := h.queryService.Anomalies(c.UserContext(), &services.QueryRequest{
		Types: queryList(c, "types"),
		Start: start,
		End:   end,
	}, sigma)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
