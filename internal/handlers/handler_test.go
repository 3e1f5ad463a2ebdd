package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/metricadb/metrica/internal/config"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/middleware"
	"github.com/metricadb/metrica/internal/models"
	"github.com/metricadb/metrica/internal/store"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, zerolog.Disabled)
}

// newTestApp wires a handler against a fresh in-memory store with the
// same error handler the real app uses, so status mapping is exercised.
func newTestApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()

	logger := testLogger()
	st := store.NewMemoryStore(365*24*time.Hour, time.Hour, 0, logger)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{
		Analytics: config.AnalyticsConfig{
			AnomalySigma:             2.0,
			CorrelationMinConfidence: 0.5,
			PatternMinConfidence:     0.7,
			MaxPatterns:              50,
		},
	}
	h := New(logger, st, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	app.Post("/samples", h.Write)
	app.Post("/samples/batch", h.WriteBatch)
	app.Delete("/samples", h.DeletePoints)
	app.Get("/query", h.Query)
	app.Get("/aggregate", h.Aggregate)
	app.Get("/anomalies", h.Anomalies)
	app.Get("/trends", h.Trends)
	app.Get("/correlations", h.Correlations)
	app.Get("/patterns", h.Patterns)
	app.Get("/forecast", h.Forecast)
	app.Get("/stats", h.Stats)
	app.Get("/health", h.Health)
	app.Use(h.NotFound)
	return app, st
}

func seedSamples(t *testing.T, st store.Store, samples ...models.Sample) {
	t.Helper()
	for _, s := range samples {
		if err := st.Add(context.Background(), s); err != nil {
			t.Fatalf("Failed to seed sample: %v", err)
		}
	}
}

// rampSeries produces n minute-spaced samples with value base+i*step.
func rampSeries(metricType string, n int, base, step float64) []models.Sample {
	samples := make([]models.Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = models.Sample{
			Type:      metricType,
			Value:     base + float64(i)*step,
			Timestamp: int64(i) * 60_000,
		}
	}
	return samples
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", body, err)
	}
}

// expectErrorCode asserts the status and the error code in the body.
func expectErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("Expected status %d, got %d", status, resp.StatusCode)
	}
	var errResp models.ErrorResponse
	decodeResponse(t, resp, &errResp)
	if errResp.Error.Code != code {
		t.Errorf("Expected error code %q, got %q", code, errResp.Error.Code)
	}
}
