package waitlist

import "fmt"

// Feature is the product capability a signup wants most.
type Feature string

const (
	FeatureAIResearch   Feature = "ai_research"
	FeatureLandingPages Feature = "landing_pages"
	FeatureAnalytics    Feature = "analytics"
	FeatureWaitlist     Feature = "waitlist"
	FeatureDashboard    Feature = "dashboard"
	FeatureAll          Feature = "all"
)

// Option is a selectable feature with its display label.
type Option struct {
	Value Feature
	Label string
}

var options = []Option{
	{FeatureAIResearch, "AI Research Agent (Reddit, HN, Twitter analysis)"},
	{FeatureLandingPages, "One-Click Landing Page Builder"},
	{FeatureAnalytics, "Built-in Analytics Dashboard"},
	{FeatureWaitlist, "Smart Waitlist & Fake Door Testing"},
	{FeatureDashboard, "Validation Evidence Dashboard"},
	{FeatureAll, "All of them equally"},
}

// Options returns the features in display order.
func Options() []Option {
	return append([]Option(nil), options...)
}

// ParseFeature validates s as a Feature.
func ParseFeature(s string) (Feature, error) {
	for _, o := range options {
		if string(o.Value) == s {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

func (f Feature) Label() string {
	for _, o := range options {
		if o.Value == f {
			return o.Label
		}
	}
	return string(f)
}
