package analytics

import (
	"errors"
	"math"
	"testing"
)

func TestForecast_LinearTrend(t *testing.T) {
	// y = 3x + 1: the fit is exact, so each step continues the line
	values := make([]float64, 20)
	for i := range values {
		values[i] = 3*float64(i) + 1
	}

	result, err := Forecast(values, 3, false)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(result.Predictions) != 3 {
		t.Fatalf("predictions = %d, want 3", len(result.Predictions))
	}
	for i, p := range result.Predictions {
		want := 3*float64(20+i) + 1
		if math.Abs(p-want) > 1e-9 {
			t.Errorf("prediction[%d] = %v, want %v", i, p, want)
		}
	}
}

func TestForecast_ConfidenceBand(t *testing.T) {
	values := []float64{10, 12, 9, 11, 10, 13, 8, 11, 10, 12}

	result, err := Forecast(values, 4, false)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	margin := 1.96 * math.Sqrt(sumSq/float64(len(values)))

	for i := range result.Predictions {
		p := result.Predictions[i]
		if math.Abs(result.Confidence.Lower[i]-(p-margin)) > 1e-9 {
			t.Errorf("lower[%d] = %v, want %v", i, result.Confidence.Lower[i], p-margin)
		}
		if math.Abs(result.Confidence.Upper[i]-(p+margin)) > 1e-9 {
			t.Errorf("upper[%d] = %v, want %v", i, result.Confidence.Upper[i], p+margin)
		}
	}
}

func TestForecast_SeasonalAddsIndexes(t *testing.T) {
	// Pure repeating shape with no trend. The seasonal component keeps
	// the repeating offsets in the extrapolation
	shape := []float64{10, 30, 50, 30}
	values := make([]float64, 40)
	for i := range values {
		values[i] = shape[i%len(shape)]
	}

	seasonal, err := Forecast(values, 8, true)
	if err != nil {
		t.Fatalf("Forecast seasonal: %v", err)
	}
	flat, err := Forecast(values, 8, false)
	if err != nil {
		t.Fatalf("Forecast flat: %v", err)
	}

	// The flat forecast collapses to the trend line; seasonal must not
	differs := false
	for i := range seasonal.Predictions {
		if math.Abs(seasonal.Predictions[i]-flat.Predictions[i]) > 1e-9 {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("seasonal forecast should diverge from the plain trend on a periodic series")
	}

	// A cyclic series keeps a non-constant prediction shape
	constant := true
	for i := 1; i < len(seasonal.Predictions); i++ {
		if math.Abs(seasonal.Predictions[i]-seasonal.Predictions[0]) > 1e-9 {
			constant = false
			break
		}
	}
	if constant {
		t.Error("seasonal predictions should vary over a cycle")
	}
}

func TestForecast_TooFewPoints(t *testing.T) {
	_, err := Forecast([]float64{5}, 3, false)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientDataError", err)
	}
	if insufficient.Required != ForecastMinPoints || insufficient.Got != 1 {
		t.Errorf("error detail = %+v", insufficient)
	}
}

func TestForecast_ZeroSteps(t *testing.T) {
	result, err := Forecast([]float64{1, 2, 3}, 0, false)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(result.Predictions) != 0 || len(result.Confidence.Lower) != 0 || len(result.Confidence.Upper) != 0 {
		t.Errorf("zero steps must return empty slices, got %+v", result)
	}
}

func TestMovingAverage_ShrinksAtEdges(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	smoothed := movingAverage(values, 5)

	// Full window only fits at the center; edges average what exists
	want := []float64{
		(2 + 4 + 6) / 3.0,
		(2 + 4 + 6 + 8) / 4.0,
		(2 + 4 + 6 + 8 + 10) / 5.0,
		(4 + 6 + 8 + 10) / 4.0,
		(6 + 8 + 10) / 3.0,
	}
	for i := range want {
		if math.Abs(smoothed[i]-want[i]) > 1e-9 {
			t.Errorf("smoothed[%d] = %v, want %v", i, smoothed[i], want[i])
		}
	}
}

func TestDominantPeriod_FindsCycle(t *testing.T) {
	// Period-6 sine sampled over many cycles
	values := make([]float64, 60)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 6)
	}

	lag, corr := dominantPeriod(values)
	if lag != 6 {
		t.Errorf("lag = %d, want 6", lag)
	}
	if corr <= 0 {
		t.Errorf("corr = %v, want positive", corr)
	}
}

func TestDominantPeriod_ConstantSeriesHasNone(t *testing.T) {
	// Zero variance means no usable autocorrelation at any lag
	lag, corr := dominantPeriod([]float64{3, 3})
	if lag != 0 || corr != 0 {
		t.Errorf("two points have no period, got lag=%d corr=%v", lag, corr)
	}
}

func TestSeasonalIndexes(t *testing.T) {
	detrended := []float64{1, -1, 1, -1, 1, -1}
	indexes := seasonalIndexes(detrended, 2)
	if indexes[0] != 1 || indexes[1] != -1 {
		t.Errorf("indexes = %v, want [1 -1]", indexes)
	}
}
