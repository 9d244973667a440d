package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/stats"
	"github.com/validateiq/validateiq/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Compare conversion by traffic source",
	Long: `Show visitors, signups and conversion per traffic source with 95%
confidence intervals, and how confident we are that the best source
beats the rest.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		sources, err := s.SourceStats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get source stats: %w", err)
		}
		printSources(stats.Analyze(sources))
		return nil
	})
}

func printSources(r *stats.Report) {
	if len(r.Sources) == 0 {
		fmt.Println("No visitors yet.")
		return
	}

	fmt.Println("SOURCE            VISITORS  SIGNUPS  RATE     95% CI")
	fmt.Println(strings.Repeat("─", 64))

	for i, src := range r.Sources {
		indicator := ""
		if i == r.Leader && len(r.Sources) > 1 {
			indicator = " ← LEADING"
		} else if i == r.Baseline {
			indicator = " (baseline)"
		}

		ciStr := fmt.Sprintf("[%.1f%%, %.1f%%]", src.CI.Lower*100, src.CI.Upper*100)
		if src.Visitors == 0 {
			ciStr = "N/A"
		}

		// Truncate name if too long
		name := src.Source
		if len(name) > 16 {
			name = name[:13] + "..."
		}

		fmt.Printf("%-16s  %-8d  %-7d  %-7s  %s%s\n",
			name,
			src.Visitors,
			src.Signups,
			formatPercent(src.Rate),
			ciStr,
			indicator,
		)
	}

	fmt.Println()

	if len(r.Sources) < 2 {
		return
	}

	leader := r.Sources[r.Leader].Source
	confPct := r.Confidence * 100
	switch {
	case r.Confident:
		fmt.Printf("Statistical significance: %.1f%% confident \"%s\" converts best\n", confPct, leader)
	case confPct >= 90:
		fmt.Printf("Statistical significance: %.1f%% confident \"%s\" leads (not yet significant)\n", confPct, leader)
	default:
		fmt.Println("Statistical significance: Not enough data to pick a best source")
	}
}
