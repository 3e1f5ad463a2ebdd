package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/services"
	"github.com/metricadb/metrica/internal/utils"
)

// Write handles single sample ingestion
func (h *Handler) Write(c *fiber.Ctx) error {
	var sample models.Sample
	if err := c.BodyParser(&sample); err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, "Failed to parse request body: "+err.Error())
	}

	resp, err := h.ingestService.Write(c.UserContext(), sample)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// WriteBatch handles batch sample ingestion. Malformed samples within
// the batch are counted as rejected without failing the request.
func (h *Handler) WriteBatch(c *fiber.Ctx) error {
	var samples []models.Sample
	if err := c.BodyParser(&samples); err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, "Failed to parse request body: "+err.Error())
	}
	if len(samples) == 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "Batch must contain at least one sample")
	}
	if len(samples) > utils.MaxBatchSize {
		return services.NewServiceError(services.CodeInvalidRequest,
			fmt.Sprintf("Batch exceeds the maximum of %d samples", utils.MaxBatchSize))
	}

	resp, err := h.ingestService.WriteBatch(c.UserContext(), samples)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeletePoints removes samples of one type inside [start, end]
func (h *Handler) DeletePoints(c *fiber.Ctx) error {
	metricType := c.Query("type")
	start, end, err := timeRange(c)
	if err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, err.Error())
	}

	if err := h.ingestService.Delete(c.UserContext(), metricType, start, end); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
