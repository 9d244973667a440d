package server

import (
	"net/http"

	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/site"
	"github.com/validateiq/validateiq/internal/stats"
	"github.com/validateiq/validateiq/internal/store"
)

type OverviewResponse struct {
	TotalVisitors        int     `json:"total_visitors"`
	TotalPageViews       int     `json:"total_page_views"`
	TotalSignups         int     `json:"total_signups"`
	ConversionRate       float64 `json:"conversion_rate"`
	AvgTimeOnPageSeconds float64 `json:"avg_time_on_page_seconds"`
	AvgScrollDepth       float64 `json:"avg_scroll_depth"`
}

type FunnelResponse struct {
	Visitors        int `json:"visitors"`
	ReachedForm     int `json:"reached_form"`
	FilledEmail     int `json:"filled_email"`
	CompletedSignup int `json:"completed_signup"`
}

// DashboardResponse is the body of GET /api/stats/dashboard.
type DashboardResponse struct {
	Overview          OverviewResponse `json:"overview"`
	FeatureVotes      map[string]int   `json:"feature_votes"`
	DeviceBreakdown   map[string]int   `json:"device_breakdown"`
	ReferrerBreakdown map[string]int   `json:"referrer_breakdown"`
	EventsBreakdown   map[string]int   `json:"events_breakdown"`
	SectionEngagement map[string]int   `json:"section_engagement"`
	FormFunnel        FunnelResponse   `json:"form_funnel"`
}

func newDashboardResponse(d *store.Dashboard) DashboardResponse {
	return DashboardResponse{
		Overview: OverviewResponse{
			TotalVisitors:        d.Overview.TotalVisitors,
			TotalPageViews:       d.Overview.TotalPageViews,
			TotalSignups:         d.Overview.TotalSignups,
			ConversionRate:       d.Overview.ConversionRate,
			AvgTimeOnPageSeconds: d.Overview.AvgTimeOnPageSeconds,
			AvgScrollDepth:       d.Overview.AvgScrollDepth,
		},
		FeatureVotes:      nonNil(d.FeatureVotes),
		DeviceBreakdown:   nonNil(d.DeviceBreakdown),
		ReferrerBreakdown: nonNil(d.ReferrerBreakdown),
		EventsBreakdown:   nonNil(d.EventsBreakdown),
		SectionEngagement: nonNil(d.SectionEngagement),
		FormFunnel: FunnelResponse{
			Visitors:        d.Funnel.Visitors,
			ReachedForm:     d.Funnel.ReachedForm,
			FilledEmail:     d.Funnel.FilledEmail,
			CompletedSignup: d.Funnel.CompletedSignup,
		},
	}
}

// Return empty objects instead of null
func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func (s *Server) handleStatsAPI(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Dashboard(r.Context())
	if err != nil {
		s.internalError(w, "failed to compute dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := s.store.Dashboard(ctx)
	if err != nil {
		s.internalError(w, "failed to compute dashboard", err)
		return
	}
	sources, err := s.store.SourceStats(ctx)
	if err != nil {
		s.internalError(w, "failed to compute source stats", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := site.Dashboard(d, stats.Analyze(sources)).Render(w); err != nil {
		s.log.Warn("failed to render dashboard", logger.Error(err))
	}
}
