package site

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/validateiq/validateiq/internal/stats"
	"github.com/validateiq/validateiq/internal/store"
	"github.com/validateiq/validateiq/internal/waitlist"
)

// funnelSteps label the form funnel in order.
var funnelSteps = []string{"Visitors", "Reached form", "Filled email", "Signed up"}

// Dashboard is the token-protected stats page.
func Dashboard(d *store.Dashboard, report *stats.Report) g.Node {
	o := d.Overview

	return Layout(
		PageConfig{Title: "ValidateIQ Dashboard"},
		Header(
			Class("dashboard-header"),
			H1(g.Text("ValidateIQ")),
			A(Href("/dashboard?logout=1"), g.Text("Log out")),
		),
		Main(
			Class("dashboard"),

			Div(
				Class("metrics"),
				metric("Visitors", humanize.Comma(int64(o.TotalVisitors))),
				metric("Page views", humanize.Comma(int64(o.TotalPageViews))),
				metric("Signups", humanize.Comma(int64(o.TotalSignups))),
				metric("Conversion", fmt.Sprintf("%.2f%%", o.ConversionRate)),
				metric("Avg. time on page", fmt.Sprintf("%.0fs", o.AvgTimeOnPageSeconds)),
				metric("Avg. scroll depth", fmt.Sprintf("%.0f%%", o.AvgScrollDepth)),
			),

			funnel(d.Funnel),
			sourcesTable(report),
			breakdown("Feature votes", "Feature", labelFeatures(d.FeatureVotes)),
			breakdown("Devices", "Device", d.DeviceBreakdown),
			breakdown("Top referrers", "Referrer", d.ReferrerBreakdown),
			breakdown("Section engagement", "Section", d.SectionEngagement),
			breakdown("Events", "Event", d.EventsBreakdown),
		),
	)
}

func metric(label, value string) g.Node {
	return Div(
		Class("metric"),
		Div(Class("metric-value"), g.Text(value)),
		Div(Class("metric-label"), g.Text(label)),
	)
}

func funnel(f store.Funnel) g.Node {
	counts := []int{f.Visitors, f.ReachedForm, f.FilledEmail, f.CompletedSignup}

	rows := make([]g.Node, len(counts))
	for i, n := range counts {
		pct := 0.0
		if f.Visitors > 0 {
			pct = float64(n) / float64(f.Visitors) * 100
		}
		rows[i] = Tr(
			Td(g.Text(funnelSteps[i])),
			Td(g.Text(humanize.Comma(int64(n)))),
			Td(g.Text(fmt.Sprintf("%.1f%%", pct))),
		)
	}

	return Section(
		Class("panel"),
		H2(g.Text("Form funnel")),
		Table(
			THead(Tr(Th(g.Text("Step")), Th(g.Text("Visitors")), Th(g.Text("Of total")))),
			TBody(rows...),
		),
	)
}

func sourcesTable(r *stats.Report) g.Node {
	if r == nil || len(r.Sources) == 0 {
		return Section(Class("panel"), H2(g.Text("Traffic sources")), P(Class("empty"), g.Text("No visitors yet.")))
	}

	var verdict g.Node = g.Group(nil)
	if len(r.Sources) > 1 {
		leader := r.Sources[r.Leader]
		if r.Confident {
			verdict = P(Class("verdict confident"),
				g.Textf("%s converts best (%.0f%% confidence).", leader.Source, r.Confidence*100))
		} else {
			verdict = P(Class("verdict"),
				g.Textf("%s leads so far, %.0f%% confidence. Not significant yet.", leader.Source, r.Confidence*100))
		}
	}

	return Section(
		Class("panel"),
		H2(g.Text("Traffic sources")),
		verdict,
		Table(
			THead(Tr(
				Th(g.Text("Source")),
				Th(g.Text("Visitors")),
				Th(g.Text("Signups")),
				Th(g.Text("Rate")),
				Th(g.Text("95% CI")),
			)),
			TBody(g.Group(g.Map(r.Sources, func(s stats.SourceResult) g.Node {
				return Tr(
					Td(g.Text(s.Source)),
					Td(g.Text(humanize.Comma(int64(s.Visitors)))),
					Td(g.Text(humanize.Comma(int64(s.Signups)))),
					Td(g.Textf("%.1f%%", s.Rate*100)),
					Td(g.Textf("%.1f%% to %.1f%%", s.CI.Lower*100, s.CI.Upper*100)),
				)
			}))),
		),
	)
}

func breakdown(title, keyLabel string, counts map[string]int) g.Node {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	var body g.Node = P(Class("empty"), g.Text("No data yet."))
	if len(keys) > 0 {
		body = Table(
			THead(Tr(Th(g.Text(keyLabel)), Th(g.Text("Count")))),
			TBody(g.Group(g.Map(keys, func(k string) g.Node {
				return Tr(Td(g.Text(k)), Td(g.Text(humanize.Comma(int64(counts[k])))))
			}))),
		)
	}

	return Section(Class("panel"), H2(g.Text(title)), body)
}

func labelFeatures(votes map[string]int) map[string]int {
	out := make(map[string]int, len(votes))
	for k, n := range votes {
		out[waitlist.Feature(k).Label()] += n
	}
	return out
}
