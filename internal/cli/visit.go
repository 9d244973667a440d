package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/tracker"
	"github.com/validateiq/validateiq/internal/waitlist"
)

var visitOpts struct {
	url      string
	referrer string
	email    string
	feature  string
	consent  bool
	timeout  time.Duration
}

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Simulate a visitor against a running server",
	Long: `Load the landing page the way a browser would: open a page view,
scroll to the bottom, look at every section, click the hero CTA and,
when --email is given, join the waitlist.

Examples:
  validateiq visit --url "http://localhost:8080/?utm_source=hn"
  validateiq visit --email me@example.com --feature analytics --consent`,
	RunE: runVisit,
}

func init() {
	visitCmd.Flags().StringVar(&visitOpts.url, "url", "", "page URL (default from VIQ_SERVER_URL)")
	visitCmd.Flags().StringVar(&visitOpts.referrer, "referrer", "", "document referrer to report")
	visitCmd.Flags().StringVar(&visitOpts.email, "email", "", "sign up with this email")
	visitCmd.Flags().StringVar(&visitOpts.feature, "feature", string(waitlist.FeatureAll), "most wanted feature")
	visitCmd.Flags().BoolVar(&visitOpts.consent, "consent", false, "accept marketing emails")
	visitCmd.Flags().DurationVar(&visitOpts.timeout, "timeout", 30*time.Second, "overall timeout")
	rootCmd.AddCommand(visitCmd)
}

func runVisit(cmd *cobra.Command, args []string) error {
	pageURL := visitOpts.url
	if pageURL == "" {
		pageURL = cfg.BaseURL() + "/"
	}

	feature, err := waitlist.ParseFeature(visitOpts.feature)
	if err != nil {
		return err
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid url %q", pageURL)
	}
	base := u.Scheme + "://" + u.Host

	env, err := tracker.EnvironmentFromURL(pageURL, visitOpts.referrer, 1440, 900)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), visitOpts.timeout)
	defer cancel()

	page := landing.New(landing.Options{
		API:         api.NewClient(base, log),
		Environment: env,
		Logger:      log,
		Cap:         cfg.WaitlistCap,
	})
	defer func() {
		if err := page.Close(ctx); err != nil {
			fmt.Printf("warning: telemetry not fully delivered: %v\n", err)
		}
	}()

	page.Start(ctx)
	if !page.Tracker().Ready() {
		fmt.Println("Analytics unavailable, continuing without tracking")
	} else {
		session := page.Tracker().Session()
		fmt.Printf("Visitor %d, page view %d\n", session.VisitorID, session.PageViewID)
	}

	simulateBrowsing(page)

	fmt.Printf("Waitlist: %d signed up, %d spots left\n", page.SignupCount(), page.SpotsLeft())

	if visitOpts.email == "" {
		return nil
	}
	return joinWaitlist(ctx, page.Form(), feature)
}

// simulateBrowsing scrolls through the page and looks at every section.
func simulateBrowsing(page *landing.Page) {
	const docHeight, viewport = 4000, 900
	for y := 0; y <= docHeight-viewport; y += viewport / 2 {
		page.Scroll(y, docHeight, viewport)
	}
	page.Scroll(docHeight-viewport, docHeight, viewport)

	for _, s := range landing.Sections {
		page.Intersect(s.ID, 1)
	}
	page.ClickCTA("Join the waitlist", "hero")
	page.HoverFeature("AI Research Agent")
}

func joinWaitlist(ctx context.Context, form *waitlist.Form, feature waitlist.Feature) error {
	form.Focus("email")
	form.SetEmail(visitOpts.email)
	form.Blur("email")
	form.SetFeature(feature)
	form.Blur("feature")
	form.SetConsent(visitOpts.consent)

	result, err := form.Submit(ctx)
	if errors.Is(err, waitlist.ErrValidation) {
		return errors.New(form.Message())
	}
	if err != nil {
		return fmt.Errorf("signup failed: %s", form.Message())
	}

	fmt.Printf("Joined the waitlist at position #%d\n", result.Position)
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}
