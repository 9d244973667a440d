package stats

import "math"

// criticalValues maps two-sided confidence levels to standard normal
// critical values.
var criticalValues = []struct {
	confidence float64
	z          float64
}{
	{0.99, 2.576},
	{0.95, 1.96},
	{0.90, 1.645},
	{0.80, 1.282},
}

// ZScore returns the critical value for confidence. Levels between the
// tabulated ones round down; anything under 80% uses 1.0.
func ZScore(confidence float64) float64 {
	for _, cv := range criticalValues {
		if confidence >= cv.confidence {
			return cv.z
		}
	}
	return 1.0
}

// Interval is a confidence interval for a conversion rate, in [0, 1].
type Interval struct {
	Lower float64
	Upper float64
}

// Wilson returns the Wilson score interval for signups out of visitors.
// Zero visitors yields the empty interval.
func Wilson(signups, visitors int, confidence float64) Interval {
	if visitors <= 0 {
		return Interval{}
	}

	z := ZScore(confidence)
	n := float64(visitors)
	p := float64(signups) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z / denom * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	return Interval{
		Lower: math.Max(0, center-margin),
		Upper: math.Min(1, center+margin),
	}
}
