package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/store"
	"github.com/validateiq/validateiq/internal/waitlist"
)

var (
	seedVisitors int
	seedRandom   uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo data",
	Long: `Generate visitors, page views, events and signups so the dashboard
and reports have something to show. Roughly one visitor in five signs up.

Example:
  validateiq seed --visitors 50 --db demo.db`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedVisitors, "visitors", "n", 50, "number of visitors to create")
	seedCmd.Flags().Uint64Var(&seedRandom, "seed", 0, "random seed (0 picks one)")
	rootCmd.AddCommand(seedCmd)
}

type seedResult struct {
	Visitors  int
	PageViews int
	Events    int
	Signups   int
}

var (
	seedDevices  = []store.DeviceType{store.DeviceMobile, store.DeviceDesktop, store.DeviceTablet}
	seedBrowsers = []string{"Chrome", "Firefox", "Safari", "Edge"}
	seedOS       = []string{"Windows", "macOS", "Linux", "iOS", "Android"}
	seedSources  = []store.Attribution{
		{},
		{Referrer: "https://google.com"},
		{Referrer: "https://twitter.com", UTMSource: "twitter", UTMMedium: "social"},
		{Referrer: "https://reddit.com", UTMSource: "reddit", UTMMedium: "social"},
		{Referrer: "https://producthunt.com", UTMSource: "producthunt", UTMCampaign: "launch"},
	}
	seedEvents = []struct{ eventType, category string }{
		{"section_view", "engagement"},
		{"scroll_milestone", "scroll"},
		{"cta_click", "navigation"},
		{"form_focus", "form"},
		{"form_field_blur", "form"},
		{"feature_card_hover", "engagement"},
	}
)

func runSeed(cmd *cobra.Command, args []string) error {
	if seedVisitors <= 0 {
		return fmt.Errorf("--visitors must be positive")
	}
	if seedRandom == 0 {
		seedRandom = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seedRandom, seedRandom>>1))

	return withStore(func(s *store.SQLiteStore) error {
		res, err := seed(context.Background(), s, rng, seedVisitors)
		if err != nil {
			return err
		}

		fmt.Println("Seeded database with:")
		fmt.Printf("  - %d visitors\n", res.Visitors)
		fmt.Printf("  - %d page views\n", res.PageViews)
		fmt.Printf("  - %d events\n", res.Events)
		fmt.Printf("  - %d signups\n", res.Signups)
		return nil
	})
}

// seed writes demo traffic through the same store operations the API uses.
func seed(ctx context.Context, s store.Store, rng *rand.Rand, visitors int) (seedResult, error) {
	var res seedResult
	features := waitlist.Options()
	batch := uuid.NewString()[:8]

	for i := 0; i < visitors; i++ {
		ip := fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xff, (i>>8)&0xff, i&0xff)
		attr := seedSources[rng.IntN(len(seedSources))]
		device := store.Device{
			Browser:        seedBrowsers[rng.IntN(len(seedBrowsers))],
			BrowserVersion: fmt.Sprintf("%d.0", 90+rng.IntN(31)),
			OS:             seedOS[rng.IntN(len(seedOS))],
			Type:           seedDevices[rng.IntN(len(seedDevices))],
		}

		var visitor *store.Visitor
		var lastPageView int64
		for visit := 1 + rng.IntN(5); visit > 0; visit-- {
			v, err := s.GetOrCreateVisitor(ctx, ip, device, attr)
			if err != nil {
				return res, fmt.Errorf("failed to create visitor: %w", err)
			}
			visitor = v

			width := []int{1920, 1440, 1366, 390, 414}[rng.IntN(5)]
			height := []int{1080, 900, 768, 844, 896}[rng.IntN(5)]
			pv, err := s.CreatePageView(ctx, v.ID, attr, store.Dimensions{ScreenWidth: &width, ScreenHeight: &height})
			if err != nil {
				return res, fmt.Errorf("failed to create page view: %w", err)
			}
			if _, err := s.FinalizePageView(ctx, pv.ID, 10+rng.IntN(291), 20+rng.IntN(81)); err != nil {
				return res, fmt.Errorf("failed to finalize page view: %w", err)
			}
			lastPageView = pv.ID
			res.PageViews++
		}
		res.Visitors++

		for n := 5 + rng.IntN(16); n > 0; n-- {
			ev := seedEvents[rng.IntN(len(seedEvents))]
			scroll := rng.IntN(3000)
			sinceLoad := 1000 + rng.IntN(299_000)
			e := &store.Event{
				VisitorID:         visitor.ID,
				PageViewID:        &lastPageView,
				EventType:         ev.eventType,
				EventCategory:     ev.category,
				Section:           landing.Sections[rng.IntN(len(landing.Sections))].ID,
				ScrollPosition:    &scroll,
				TimeSincePageLoad: &sinceLoad,
			}
			if ev.eventType == "form_field_blur" {
				e.Properties = map[string]any{"field_name": "email", "has_value": rng.IntN(2) == 0}
			}
			if _, err := s.RecordEvent(ctx, e); err != nil {
				return res, fmt.Errorf("failed to record event: %w", err)
			}
			res.Events++
		}

		if rng.IntN(5) != 0 {
			continue
		}

		timeToSignup := 60 + rng.IntN(241)
		_, err := s.CreateSignup(ctx, &store.Signup{
			VisitorID:           visitor.ID,
			Email:               fmt.Sprintf("founder%d-%s@startup.com", i+1, batch),
			MostWantedFeature:   string(features[rng.IntN(len(features))].Value),
			MarketingConsent:    rng.IntN(10) >= 3,
			SignupSource:        waitlist.SignupSource,
			TimeToSignupSeconds: &timeToSignup,
		})
		if err != nil {
			return res, fmt.Errorf("failed to create signup: %w", err)
		}
		res.Signups++
	}

	return res, nil
}
