package stats

import (
	"math"

	"github.com/validateiq/validateiq/internal/store"
)

// Report compares waitlist conversion across traffic sources.
type Report struct {
	Sources    []SourceResult
	Baseline   int // index of the source with the most visitors
	Leader     int // index of the best converting source
	Confidence float64
	Confident  bool // Confidence >= 0.95
}

// SourceResult is one traffic source's conversion with its 95% interval.
type SourceResult struct {
	Source   string
	Visitors int
	Signups  int
	Rate     float64
	CI       Interval
}

// SignificanceTest runs a one-sided two-proportion z-test and returns the
// probability that source A converts better than source B. Without data on
// both sides it returns 0.5.
func SignificanceTest(aSignups, aVisitors, bSignups, bVisitors int) float64 {
	if aVisitors == 0 || bVisitors == 0 {
		return 0.5
	}

	pA := float64(aSignups) / float64(aVisitors)
	pB := float64(bSignups) / float64(bVisitors)
	pooled := float64(aSignups+bSignups) / float64(aVisitors+bVisitors)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(aVisitors) + 1/float64(bVisitors)))

	if se == 0 {
		switch {
		case pA > pB:
			return 1
		case pA < pB:
			return 0
		default:
			return 0.5
		}
	}

	return normalCDF((pA - pB) / se)
}

func normalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// Analyze builds a Report from per-source counts. The leader is compared
// against the baseline; when the baseline leads, it is compared against the
// runner-up instead.
func Analyze(sources []store.SourceStats) *Report {
	r := &Report{Sources: make([]SourceResult, len(sources))}
	if len(sources) == 0 {
		return r
	}

	for i, s := range sources {
		var rate float64
		if s.Visitors > 0 {
			rate = float64(s.Signups) / float64(s.Visitors)
		}
		r.Sources[i] = SourceResult{
			Source:   s.Source,
			Visitors: s.Visitors,
			Signups:  s.Signups,
			Rate:     rate,
			CI:       Wilson(s.Signups, s.Visitors, 0.95),
		}

		if s.Visitors > r.Sources[r.Baseline].Visitors {
			r.Baseline = i
		}
		if rate > r.Sources[r.Leader].Rate {
			r.Leader = i
		}
	}

	if len(r.Sources) < 2 {
		return r
	}

	other := r.Baseline
	if r.Leader == r.Baseline {
		other = runnerUp(r.Sources, r.Baseline)
	}

	a, b := r.Sources[r.Leader], r.Sources[other]
	r.Confidence = SignificanceTest(a.Signups, a.Visitors, b.Signups, b.Visitors)
	r.Confident = r.Confidence >= 0.95

	return r
}

func runnerUp(sources []SourceResult, skip int) int {
	best := -1
	for i, s := range sources {
		if i == skip {
			continue
		}
		if best < 0 || s.Rate > sources[best].Rate {
			best = i
		}
	}
	return best
}
