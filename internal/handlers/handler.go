// Package handlers exposes the engine's HTTP surface. Handlers do the
// request parsing and leave validation and orchestration to the
// services layer; service errors bubble up to the app error handler
// which maps them onto HTTP statuses.
package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/config"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/services"
	"github.com/metricadb/metrica/internal/store"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger
	store  store.Store
	// Services
	ingestService   *services.IngestService
	queryService    *services.QueryService
	analysisService *services.AnalysisService
}

// New creates a new handler instance
func New(logger *logging.Logger, st store.Store, cfg config.Config) *Handler {
	return &Handler{
		logger:          logger,
		store:           st,
		ingestService:   services.NewIngestService(logger, st),
		queryService:    services.NewQueryService(logger, st, cfg.Analytics.AnomalySigma),
		analysisService: services.NewAnalysisService(logger, st, cfg.Analytics),
	}
}

// queryInt64 parses an optional int64 query parameter, 0 when absent
func queryInt64(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer, got %q", name, raw)
	}
	return v, nil
}

// queryFloat parses an optional float query parameter, 0 when absent
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a number, got %q", name, raw)
	}
	return v, nil
}

// queryList parses a comma-separated query parameter into its
// non-empty trimmed elements, nil when absent
func queryList(c *fiber.Ctx, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// timeRange parses the optional start/end bounds of a request
func timeRange(c *fiber.Ctx) (start, end int64, err error) {
	start, err = queryInt64(c, "start")
	if err != nil {
		return 0, 0, err
	}
	end, err = queryInt64(c, "end")
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
