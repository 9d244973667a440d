package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// Dashboard is the aggregate view of the landing page's performance.
type Dashboard struct {
	Overview          Overview
	FeatureVotes      map[string]int
	DeviceBreakdown   map[string]int
	ReferrerBreakdown map[string]int
	EventsBreakdown   map[string]int
	SectionEngagement map[string]int
	Funnel            Funnel
}

type Overview struct {
	TotalVisitors        int
	TotalPageViews       int
	TotalSignups         int
	ConversionRate       float64 // percent, two decimals
	AvgTimeOnPageSeconds float64
	AvgScrollDepth       float64
}

// Funnel counts distinct visitors at each step towards a signup.
type Funnel struct {
	Visitors        int
	ReachedForm     int
	FilledEmail     int
	CompletedSignup int
}

// Dashboard computes every aggregate in one read transaction.
func (s *SQLiteStore) Dashboard(ctx context.Context) (*Dashboard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	d := &Dashboard{}
	o := &d.Overview

	var avgTime, avgScroll sql.NullFloat64
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM visitors),
			(SELECT COUNT(*) FROM page_views),
			(SELECT COUNT(*) FROM signups),
			(SELECT AVG(time_on_page_seconds) FROM page_views),
			(SELECT AVG(max_scroll_depth) FROM page_views)
	`).Scan(&o.TotalVisitors, &o.TotalPageViews, &o.TotalSignups, &avgTime, &avgScroll)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}

	if o.TotalVisitors > 0 {
		o.ConversionRate = round(float64(o.TotalSignups)/float64(o.TotalVisitors)*100, 2)
	}
	o.AvgTimeOnPageSeconds = round(avgTime.Float64, 1)
	o.AvgScrollDepth = round(avgScroll.Float64, 1)

	breakdowns := []struct {
		dest     *map[string]int
		query    string
		fallback string
	}{
		{&d.FeatureVotes,
			`SELECT most_wanted_feature, COUNT(*) FROM signups GROUP BY most_wanted_feature`, ""},
		{&d.DeviceBreakdown,
			`SELECT device_type, COUNT(*) FROM visitors GROUP BY device_type`, "unknown"},
		{&d.ReferrerBreakdown,
			`SELECT original_referrer, COUNT(*) FROM visitors GROUP BY original_referrer ORDER BY COUNT(*) DESC LIMIT 10`, "direct"},
		{&d.EventsBreakdown,
			`SELECT event_type, COUNT(*) FROM events GROUP BY event_type`, ""},
		{&d.SectionEngagement,
			`SELECT section, COUNT(DISTINCT visitor_id) FROM events WHERE event_type = 'section_view' GROUP BY section`, "unknown"},
	}

	for _, b := range breakdowns {
		m, err := countBy(ctx, tx, b.query, b.fallback)
		if err != nil {
			return nil, err
		}
		*b.dest = m
	}

	d.Funnel.Visitors = o.TotalVisitors
	d.Funnel.CompletedSignup = o.TotalSignups
	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT visitor_id) FROM events WHERE event_type = 'form_focus'),
			(SELECT COUNT(DISTINCT visitor_id) FROM events
				WHERE event_type = 'form_field_blur'
				AND json_extract(properties, '$.field_name') = 'email'
				AND json_extract(properties, '$.has_value') = 1)
	`).Scan(&d.Funnel.ReachedForm, &d.Funnel.FilledEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to load form funnel: %w", err)
	}

	return d, nil
}

// countBy runs a two-column key/count query. NULL keys map to fallback, or
// are skipped when fallback is empty.
func countBy(ctx context.Context, tx *sql.Tx, query, fallback string) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run breakdown: %w", err)
	}
	defer rows.Close()

	m := make(map[string]int)
	for rows.Next() {
		var key sql.NullString
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown: %w", err)
		}
		k := key.String
		if !key.Valid || k == "" {
			if fallback == "" {
				continue
			}
			k = fallback
		}
		m[k] += n
	}
	return m, rows.Err()
}

// SourceStats groups visitors by UTM source, then original referrer, then
// "direct", ordered by traffic.
func (s *SQLiteStore) SourceStats(ctx context.Context) ([]SourceStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			COALESCE(utm_source, original_referrer, 'direct') AS source,
			COUNT(*) AS visitors,
			SUM(converted) AS signups
		FROM visitors
		GROUP BY source
		ORDER BY visitors DESC, source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var st SourceStats
		if err := rows.Scan(&st.Source, &st.Visitors, &st.Signups); err != nil {
			return nil, fmt.Errorf("failed to scan source stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
