package handlers

import (
	"math"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/metricadb/metrica/internal/models"
)

func TestHandler_Trends(t *testing.T) {
	app, st := newTestApp(t)
	seedSamples(t, st, rampSeries("cpu", 60, 0, 1200)...)

	resp := doRequest(t, app, "GET", "/trends", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	var trendResp models.TrendResponse
	decodeResponse(t, resp, &trendResp)

	if len(trendResp.Trends) != 1 {
		t.Fatalf("Expected 1 trend, got %d", len(trendResp.Trends))
	}
	trend := trendResp.Trends[0]
	if trend.Type != "cpu" {
		t.Errorf("Expected trend for cpu, got %s", trend.Type)
	}
	if trend.Label != models.TrendIncreasing {
		t.Errorf("Expected increasing trend, got %s", trend.Label)
	}
}

func TestHandler_Trends_SeasonalityCheck(t *testing.T) {
	app, st := newTestApp(t)
	seedSamples(t, st, rampSeries("cpu", 60, 0, 1200)...)

	resp := doRequest(t, app, "GET", "/trends", nil)
	var trendResp models.TrendResponse
	decodeResponse(t, resp, &trendResp)
	if len(trendResp.Trends) != 1 {
		t.Fatalf("Expected 1 trend, got %d", len(trendResp.Trends))
	}
	if trendResp.Trends[0].Seasonality != nil {
		t.Error("Seasonality must not be computed unless requested")
	}

	resp = doRequest(t, app, "GET", "/trends?seasonality_check=true", nil)
	decodeResponse(t, resp, &trendResp)
	if trendResp.Trends[0].Seasonality == nil {
		t.Error("Expected a seasonality assessment with seasonality_check=true")
	}
}

func TestHandler_Trends_TypeFilter(t *testing.T) {
	app, st := newTestApp(t)
	seedSamples(t, st, rampSeries("cpu", 60, 0, 1200)...)
	seedSamples(t, st, rampSeries("mem", 60, 0, 1200)...)
	seedSamples(t, st, rampSeries("disk", 60, 0, 1200)...)

	resp := doRequest(t, app, "GET", "/trends?types=cpu,disk", nil)
	var trendResp models.TrendResponse
	decodeResponse(t, resp, &trendResp)

	if len(trendResp.Trends) != 2 {
		t.Fatalf("Expected the 2 requested trends, got %d", len(trendResp.Trends))
	}
	if trendResp.Trends[0].Type != "cpu" || trendResp.Trends[1].Type != "disk" {
		t.Errorf("Unexpected types: %s, %s", trendResp.Trends[0].Type, trendResp.Trends[1].Type)
	}
}

func TestHandler_Patterns_Overrides(t *testing.T) {
	app, st := newTestApp(t)
	values := []float64{10, 11, 10, 9, 10, 11, 500, 10, 9, 10, 11, 10}
	for i, v := range values {
		seedSamples(t, st, models.Sample{Type: "cpu", Value: v, Timestamp: int64(i) * 60_000})
	}

	resp := doRequest(t, app, "GET", "/patterns?max_patterns=1", nil)
	var patResp models.PatternResponse
	decodeResponse(t, resp, &patResp)
	if patResp.Count != 1 {
		t.Errorf("Expected the cap of 1 pattern, got %d", patResp.Count)
	}

	resp = doRequest(t, app, "GET", "/patterns?min_confidence=2", nil)
	expectErrorCode(t, resp, fiber.StatusBadRequest, "INVALID_REQUEST")
}

func TestHandler_Trends_PartialFailure(t *testing.T) {
	app, st := newTestApp(t)
	seedSamples(t, st, rampSeries("cpu", 60, 0, 1200)...)
	seedSamples(t, st, rampSeries("mem", 2, 50, 1)...)

	resp := doRequest(t, app, "GET", "/trends", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	var trendResp models.TrendResponse
	decodeResponse(t, resp, &trendResp)

	if len(trendResp.Trends) != 1 || trendResp.Trends[0].Type != "cpu" {
		t.Fatalf("Expected only the cpu trend, got %v", trendResp.Trends)
	}
	if _, ok := trendResp.Errors["mem"]; !ok {
		t.Errorf("Expected a per-type error for mem, got %v", trendResp.Errors)
	}
}

func TestHandler_Correlations(t *testing.T) {
	app, st := newTestApp(t)
	for i := 0; i < 30; i++ {
		a := float64(i%7) + float64(i)*0.5
		seedSamples(t, st,
			models.Sample{Type: "a", Value: a, Timestamp: int64(i) * 60_000},
			models.Sample{Type: "b", Value: 3*a + 7, Timestamp: int64(i) * 60_000},
		)
	}

	resp := doRequest(t, app, "GET", "/correlations", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	var corrResp models.CorrelationResponse
	decodeResponse(t, resp, &corrResp)

	if corrResp.Count != 1 {
		t.Fatalf("Expected 1 correlation pair, got %d", corrResp.Count)
	}
	pair := corrResp.Correlations[0]
	if pair.TypeA != "a" || pair.TypeB != "b" {
		t.Errorf("Unexpected pair: %+v", pair)
	}
	if math.Abs(pair.Coefficient-1) > 1e-9 {
		t.Errorf("Expected coefficient 1, got %v", pair.Coefficient)
	}
}

func TestHandler_Patterns(t *testing.T) {
	app, st := newTestApp(t)
	values := []float64{10, 11, 10, 9, 10, 11, 500, 10, 9, 10, 11, 10}
	for i, v := range values {
		seedSamples(t, st, models.Sample{Type: "cpu", Value: v, Timestamp: int64(i) * 60_000})
	}

	resp := doRequest(t, app, "GET", "/patterns", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	var patResp models.PatternResponse
	decodeResponse(t, resp, &patResp)

	if patResp.Count == 0 {
		t.Fatal("Expected at least one detected pattern")
	}
	found := false
	for _, p := range patResp.Patterns {
		if p.Kind == models.PatternSpike && p.Type == "cpu" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a spike pattern, got %v", patResp.Patterns)
	}
}

func TestHandler_Forecast(t *testing.T) {
	app, st := newTestApp(t)
	seedSamples(t, st, rampSeries("cpu", 20, 1, 3)...)

	resp := doRequest(t, app, "GET", "/forecast?type=cpu&steps=5", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	var forecast models.ForecastResult
	decodeResponse(t, resp, &forecast)

	if len(forecast.Predictions) != 5 {
		t.Fatalf("Expected 5 predictions, got %d", len(forecast.Predictions))
	}
	// Perfectly linear history extrapolates exactly: next value is 61.
	if math.Abs(forecast.Predictions[0]-61) > 1e-6 {
		t.Errorf("Expected first prediction 61, got %v", forecast.Predictions[0])
	}
	if len(forecast.Confidence.Lower) != 5 || len(forecast.Confidence.Upper) != 5 {
		t.Errorf("Expected confidence bands for every step")
	}
}

func TestHandler_Forecast_MissingType(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, "GET", "/forecast", nil)
	expectErrorCode(t, resp, fiber.StatusBadRequest, "MISSING_TYPE")
}

func TestHandler_Forecast_BadSteps(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, "GET", "/forecast?type=cpu&steps=0", nil)
	expectErrorCode(t, resp, fiber.StatusBadRequest, "INVALID_REQUEST")
}

func TestHandler_Forecast_InsufficientData(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, "GET", "/forecast?type=ghost", nil)
	expectErrorCode(t, resp, fiber.StatusUnprocessableEntity, "INSUFFICIENT_DATA")
}
