// Package landing composes the tracker, the section detectors and the
// waitlist form into one page load.
package landing

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/tracker"
	"github.com/validateiq/validateiq/internal/visibility"
	"github.com/validateiq/validateiq/internal/waitlist"
)

// DefaultCap is the number of early-access spots.
const DefaultCap = 100

// WaitlistAnchor is the element id the CTAs scroll to.
const WaitlistAnchor = "waitlist"

// Section is an observed part of the page.
type Section struct {
	ID        string
	Threshold float64
	// Tracked sections report a section_view the first time they are seen.
	Tracked bool
}

var Sections = []Section{
	{ID: "hero", Threshold: 0.1},
	{ID: "problem", Threshold: 0.2, Tracked: true},
	{ID: "features", Threshold: 0.1, Tracked: true},
	{ID: "social_proof", Threshold: 0.2, Tracked: true},
	{ID: "waitlist_form", Threshold: 0.2, Tracked: true},
}

// API is everything a page load talks to.
type API interface {
	tracker.Transport
	waitlist.Submitter
	SignupCount(ctx context.Context) (*api.CountResponse, error)
}

type Options struct {
	API         API
	Environment tracker.Environment
	Logger      *slog.Logger
	Cap         int
}

type Page struct {
	api     API
	log     *slog.Logger
	tracker *tracker.Tracker
	seen    *visibility.Seen
	form    *waitlist.Form
	cap     int

	mu        sync.Mutex
	detectors map[string]*visibility.Detector
	count     int
	spotsLeft *int
}

func New(opts Options) *Page {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}

	p := &Page{
		api:       opts.API,
		log:       opts.Logger.With(logger.Scope("landing")),
		seen:      visibility.NewSeen(),
		cap:       opts.Cap,
		detectors: make(map[string]*visibility.Detector, len(Sections)),
	}
	p.tracker = tracker.New(tracker.Options{
		Transport:   opts.API,
		Environment: opts.Environment,
		Logger:      opts.Logger,
	})
	for _, s := range Sections {
		p.detectors[s.ID] = visibility.NewDetector(s.Threshold)
	}
	p.form = waitlist.New(waitlist.Config{
		Submitter: opts.API,
		Session:   p.tracker,
		Reporter:  p.tracker,
		OnSuccess: p.RefreshCount,
		Logger:    opts.Logger,
	})
	return p
}

func (p *Page) Tracker() *tracker.Tracker { return p.tracker }
func (p *Page) Form() *waitlist.Form      { return p.form }

// Start initializes analytics and loads the signup count. An analytics
// failure leaves the page usable without tracking.
func (p *Page) Start(ctx context.Context) {
	if _, err := p.tracker.Init(ctx); err != nil {
		p.log.Warn("continuing without analytics", logger.Error(err))
	}
	p.RefreshCount(ctx)
}

// Scroll reports the window position and returns the scroll depth in
// percent. A page that cannot scroll is fully read.
func (p *Page) Scroll(scrollY, documentHeight, viewportHeight int) int {
	depth := 100
	if scrollable := documentHeight - viewportHeight; scrollable > 0 {
		depth = int(math.Round(float64(scrollY) / float64(scrollable) * 100))
	}
	p.tracker.SetScrollPosition(scrollY)
	p.tracker.UpdateScrollDepth(depth)
	return depth
}

// Intersect reports a section's visible fraction. It returns true when the
// section became visible on this call.
func (p *Page) Intersect(sectionID string, ratio float64) bool {
	p.mu.Lock()
	d, ok := p.detectors[sectionID]
	p.mu.Unlock()
	if !ok {
		return false
	}

	if !d.Observe(ratio) {
		return false
	}
	if tracked(sectionID) && p.seen.Mark(sectionID) {
		p.tracker.TrackSectionView(sectionID)
	}
	return true
}

// Remount replaces a section's detector, as when the section is rendered
// again. The section is not reported a second time.
func (p *Page) Remount(sectionID string) {
	for _, s := range Sections {
		if s.ID == sectionID {
			p.mu.Lock()
			p.detectors[sectionID] = visibility.NewDetector(s.Threshold)
			p.mu.Unlock()
			return
		}
	}
}

// ClickCTA records a call-to-action click and returns the anchor to scroll to.
func (p *Page) ClickCTA(text, position string) string {
	p.tracker.TrackCTAClick(text, position)
	return WaitlistAnchor
}

func (p *Page) HoverFeature(name string) {
	p.tracker.TrackFeatureHover(name)
}

// RefreshCount reloads the signup count. Failures keep the previous value.
func (p *Page) RefreshCount(ctx context.Context) {
	resp, err := p.api.SignupCount(ctx)
	if err != nil {
		p.log.Warn("failed to refresh signup count", logger.Error(err))
		return
	}

	p.mu.Lock()
	p.count = resp.Count
	p.spotsLeft = resp.SpotsLeft
	p.mu.Unlock()
}

func (p *Page) SignupCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// SpotsLeft prefers the server's figure and otherwise derives it from the
// count.
func (p *Page) SpotsLeft() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spotsLeft != nil {
		return *p.spotsLeft
	}
	return max(p.cap-p.count, 0)
}

func (p *Page) Hide() { p.tracker.VisibilityChanged(true) }
func (p *Page) Show() { p.tracker.VisibilityChanged(false) }

// Close sends the unload beacon and drains telemetry until ctx is done.
func (p *Page) Close(ctx context.Context) error {
	p.tracker.Unload()
	return p.tracker.Close(ctx)
}

func tracked(sectionID string) bool {
	for _, s := range Sections {
		if s.ID == sectionID {
			return s.Tracked
		}
	}
	return false
}
