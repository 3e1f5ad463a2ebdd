package analytics

import "math"

// studentTCDF approximates P(T <= t) for Student's t-distribution with
// df degrees of freedom. The approximation maps t onto a standard
// normal via a Cornish-Fisher-style correction; it is monotonic in t
// and bounded in [0,1]. Isolated here so an exact implementation can be
// swapped in without touching correlation logic.
func studentTCDF(t float64, df int) float64 {
	if df <= 0 {
		return 0.5
	}

	d := float64(df)
	z := t * (1 - 1/(4*d)) / math.Sqrt(1+t*t/(2*d))

	return normalCDF(z)
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
