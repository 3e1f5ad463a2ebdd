// Package analytics derives trend, seasonality, correlation, pattern,
// and forecast signals from sample series. Every function operates on an
// already-fetched immutable series and is a pure synchronous
// computation; suspension points belong to the store boundary, not here.
package analytics

import "fmt"

// InsufficientDataError reports that a series holds fewer samples than
// an algorithm's minimum. It is surfaced to the caller and is neither
// retried nor fatal to sibling analyses.
type InsufficientDataError struct {
	MetricType string
	Required   int
	Got        int
}

func (e *InsufficientDataError) Error() string {
	if e.MetricType != "" {
		return fmt.Sprintf("insufficient data for %s: need %d points, have %d", e.MetricType, e.Required, e.Got)
	}
	return fmt.Sprintf("insufficient data: need %d points, have %d", e.Required, e.Got)
}
