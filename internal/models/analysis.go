package models

// TrendLabel classifies a regression slope.
type TrendLabel string

const (
	TrendIncreasing TrendLabel = "increasing"
	TrendDecreasing TrendLabel = "decreasing"
	TrendStable     TrendLabel = "stable"
)

// TrendForecast holds linear extrapolations from the trend regression
// evaluated 24 hours, 7 days, and 30 days past the last observed sample.
type TrendForecast struct {
	Next24h float64 `json:"next_24h"`
	Next7d  float64 `json:"next_7d"`
	Next30d float64 `json:"next_30d"`
}

// Seasonality reports detected repeating patterns at fixed candidate
// periods. Pattern names the finest-grained flagged period: daily takes
// priority over weekly over monthly.
type Seasonality struct {
	Daily   bool   `json:"daily"`
	Weekly  bool   `json:"weekly"`
	Monthly bool   `json:"monthly"`
	Pattern string `json:"pattern,omitempty"`
}

// TrendAnalysis is the trend regression result for one metric type.
type TrendAnalysis struct {
	Type        string        `json:"type"`
	Slope       float64       `json:"slope"`
	Intercept   float64       `json:"intercept"`
	RSquared    float64       `json:"r_squared"`
	Label       TrendLabel    `json:"label"`
	Confidence  float64       `json:"confidence"`
	Forecast    TrendForecast `json:"forecast"`
	Seasonality *Seasonality  `json:"seasonality,omitempty"`
}

// Correlation pairs two metric types with their Pearson coefficient and
// the probability that the correlation is not due to chance.
type Correlation struct {
	TypeA        string  `json:"type_a"`
	TypeB        string  `json:"type_b"`
	Coefficient  float64 `json:"coefficient"`
	Significance float64 `json:"significance"`
}

// PatternKind identifies which detector produced a pattern.
type PatternKind string

const (
	PatternSpike   PatternKind = "spike"
	PatternDip     PatternKind = "dip"
	PatternCycle   PatternKind = "cycle"
	PatternTrend   PatternKind = "trend"
	PatternOutlier PatternKind = "outlier"
)

// Pattern is a detected structure in one type's series. Frequency is only
// set for cycle patterns (the autocorrelation-maximizing lag, in points).
type Pattern struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Kind       PatternKind `json:"kind"`
	Confidence float64     `json:"confidence"`
	StartTime  int64       `json:"start_time"`
	EndTime    int64       `json:"end_time"`
	Magnitude  float64     `json:"magnitude"`
	Frequency  int         `json:"frequency,omitempty"`
}

// ForecastResult carries point predictions with a symmetric 95%
// confidence band derived from the historical standard deviation.
type ForecastResult struct {
	Predictions []float64          `json:"predictions"`
	Confidence  ForecastConfidence `json:"confidence"`
}

// ForecastConfidence holds the lower and upper band around predictions.
type ForecastConfidence struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}
