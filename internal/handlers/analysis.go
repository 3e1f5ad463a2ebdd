package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/services"
)

// Trends regresses each metric type in the range. types restricts the
// set (comma separated, empty means all); seasonality_check=true also
// runs seasonality detection per type. Types with too little history
// are reported in the response's errors map alongside the successful
// analyses.
func (h *Handler) Trends(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	seasonalityCheck := c.QueryBool("seasonality_check", false)

	resp, err := h.analysisService.Trends(c.UserContext(), start, end, queryList(c, "types"), seasonalityCheck)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Correlations pairs every two requested metric types in the range by
// their Pearson coefficient. min_confidence overrides the configured
// |r| floor when positive.
func (h *Handler) Correlations(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	minConfidence, err := queryFloat(c, "min_confidence")
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	if minConfidence < 0 || minConfidence > 1 {
		return services.NewServiceError(services.CodeInvalidRequest, "min_confidence must be in [0,1]")
	}

	resp, err := h.analysisService.Correlations(c.UserContext(), start, end, queryList(c, "types"), minConfidence)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Patterns runs the pattern detectors over each requested metric type
// in range. min_confidence and max_patterns override the configured
// defaults when positive.
func (h *Handler) Patterns(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	minConfidence, err := queryFloat(c, "min_confidence")
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}
	if minConfidence < 0 || minConfidence > 1 {
		return services.NewServiceError(services.CodeInvalidRequest, "min_confidence must be in [0,1]")
	}
	maxPatterns := c.QueryInt("max_patterns", 0)
	if maxPatterns < 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "max_patterns must not be negative")
	}

	resp, err := h.analysisService.Patterns(c.UserContext(), start, end, queryList(c, "types"), minConfidence, maxPatterns)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Forecast extrapolates one metric type's history. steps sets the
// number of predictions (default 10); seasonal=true adds the detected
// periodic component.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}

	steps := c.QueryInt("steps", 10)
	if steps <= 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "steps must be positive")
	}
	seasonal := c.QueryBool("seasonal", false)

	resp, err := h.analysisService.Forecast(c.UserContext(), c.Query("type"), start, end, steps, seasonal)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
