package aggregation

import (
	"math"
	"testing"
)

func TestPercentileNearestRank_OneToHundred(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{50, 50},
		{90, 90},
		{95, 95},
		{99, 99},
		{100, 100},
		{1, 1},
	}

	for _, tt := range tests {
		if got := PercentileNearestRank(values, tt.p); got != tt.want {
			t.Errorf("p%.0f of [1..100] = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPercentileNearestRank_SmallSets(t *testing.T) {
	if got := PercentileNearestRank([]float64{7}, 50); got != 7 {
		t.Errorf("single element p50 = %v, want 7", got)
	}
	if got := PercentileNearestRank(nil, 50); got != 0 {
		t.Errorf("empty set p50 = %v, want 0", got)
	}
	// ceil(50/100*2)-1 = 0 -> first element
	if got := PercentileNearestRank([]float64{1, 2}, 50); got != 1 {
		t.Errorf("two element p50 = %v, want 1", got)
	}
}

func TestStdDev_OneToFive(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	if got := Mean(values); got != 3 {
		t.Errorf("mean = %v, want 3", got)
	}
	// Population variance: divisor is n, not n-1
	if got := PopulationVariance(values); got != 2 {
		t.Errorf("variance = %v, want 2", got)
	}
	if got := StdDev(values); math.Abs(got-1.4142) > 0.0001 {
		t.Errorf("stdDev = %v, want ~1.4142", got)
	}
}

func TestMeanStdDev_MatchesSeparateCalls(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	mean, stdDev := MeanStdDev(values)
	if mean != Mean(values) {
		t.Errorf("mean mismatch: %v vs %v", mean, Mean(values))
	}
	if math.Abs(stdDev-StdDev(values)) > 1e-12 {
		t.Errorf("stdDev mismatch: %v vs %v", stdDev, StdDev(values))
	}
}

func TestStats_EmptyInput(t *testing.T) {
	if Mean(nil) != 0 || PopulationVariance(nil) != 0 || StdDev(nil) != 0 {
		t.Error("empty input must yield zeros")
	}
}
