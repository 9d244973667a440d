package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/store"
	"github.com/validateiq/validateiq/internal/waitlist"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show landing page statistics",
	Long:  `Show the overview, form funnel and breakdowns from the dashboard.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		d, err := s.Dashboard(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get dashboard: %w", err)
		}
		printDashboard(d)
		return nil
	})
}

func printDashboard(d *store.Dashboard) {
	o := d.Overview

	fmt.Println("OVERVIEW")
	tw := newTable()
	fmt.Fprintf(tw, "Visitors\t%s\n", humanize.Comma(int64(o.TotalVisitors)))
	fmt.Fprintf(tw, "Page views\t%s\n", humanize.Comma(int64(o.TotalPageViews)))
	fmt.Fprintf(tw, "Signups\t%s\n", humanize.Comma(int64(o.TotalSignups)))
	fmt.Fprintf(tw, "Conversion\t%.2f%%\n", o.ConversionRate)
	fmt.Fprintf(tw, "Avg. time on page\t%.1fs\n", o.AvgTimeOnPageSeconds)
	fmt.Fprintf(tw, "Avg. scroll depth\t%.1f%%\n", o.AvgScrollDepth)
	tw.Flush()
	fmt.Println()

	fmt.Println("FORM FUNNEL")
	tw = newTable()
	f := d.Funnel
	for _, step := range []struct {
		label string
		n     int
	}{
		{"Visitors", f.Visitors},
		{"Reached form", f.ReachedForm},
		{"Filled email", f.FilledEmail},
		{"Signed up", f.CompletedSignup},
	} {
		share := 0.0
		if f.Visitors > 0 {
			share = float64(step.n) / float64(f.Visitors)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", step.label, humanize.Comma(int64(step.n)), formatPercent(share))
	}
	tw.Flush()

	votes := make(map[string]int, len(d.FeatureVotes))
	for k, v := range d.FeatureVotes {
		votes[waitlist.Feature(k).Label()] = v
	}

	printBreakdown("FEATURE VOTES", votes)
	printBreakdown("DEVICES", d.DeviceBreakdown)
	printBreakdown("REFERRERS", d.ReferrerBreakdown)
	printBreakdown("SECTIONS", d.SectionEngagement)
	printBreakdown("EVENTS", d.EventsBreakdown)
}

// printBreakdown lists counts from highest to lowest.
func printBreakdown(title string, counts map[string]int) {
	fmt.Println()
	fmt.Println(title)
	if len(counts) == 0 {
		fmt.Println("  No data yet")
		return
	}

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

	tw := newTable()
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, humanize.Comma(int64(counts[k])))
	}
	tw.Flush()
}
