// Package tracker records a visitor's engagement with the landing page.
//
// A Tracker owns the page load's Session. Nothing is sent until Init has
// registered the visitor; events before that are dropped. All telemetry goes
// through a Dispatcher, so no tracking call blocks on the network.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
)

// Transport is the analytics API.
type Transport interface {
	InitVisitor(ctx context.Context, req api.InitRequest) (*api.InitResponse, error)
	TrackEvent(ctx context.Context, visitorID, pageViewID int64, e api.Event) error
	SendBeacon(ctx context.Context, b api.Beacon) error
}

// EventOptions are the optional fields of an event.
type EventOptions struct {
	Category     string
	ElementID    string
	ElementClass string
	ElementText  string
	Section      string
	Properties   map[string]any
	// ScrollPosition overrides the last position given to SetScrollPosition.
	ScrollPosition *int
}

type Options struct {
	Transport   Transport
	Environment Environment
	Logger      *slog.Logger
	Now         func() time.Time
	QueueSize   int
}

type Tracker struct {
	transport Transport
	env       Environment
	log       *slog.Logger
	now       func() time.Time
	dispatch  *Dispatcher

	initMu sync.Mutex

	mu      sync.Mutex
	session Session
}

// New creates a tracker and starts the page load clock.
func New(opts Options) *Tracker {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.With(logger.Scope("tracker"))
	return &Tracker{
		transport: opts.Transport,
		env:       opts.Environment,
		log:       log,
		now:       opts.Now,
		dispatch:  NewDispatcher(opts.Logger, opts.QueueSize),
		session:   Session{PageLoadTime: opts.Now()},
	}
}

// Init registers the visitor and opens a page view. On failure the tracker
// stays uninitialized and every later event is dropped. Init on a ready
// tracker returns the existing session.
func (t *Tracker) Init(ctx context.Context) (Session, error) {
	t.initMu.Lock()
	defer t.initMu.Unlock()

	if s := t.Session(); s.Ready() {
		return s, nil
	}

	utm := t.env.UTM()
	resp, err := t.transport.InitVisitor(ctx, api.InitRequest{
		Referrer:       t.env.Referrer,
		UTMSource:      utm.Source,
		UTMMedium:      utm.Medium,
		UTMCampaign:    utm.Campaign,
		UTMContent:     utm.Content,
		ScreenWidth:    positive(t.env.ScreenWidth),
		ScreenHeight:   positive(t.env.ScreenHeight),
		ViewportWidth:  positive(t.env.ViewportWidth),
		ViewportHeight: positive(t.env.ViewportHeight),
	})
	if err != nil {
		t.log.Error("analytics init failed", logger.Error(err))
		return t.Session(), fmt.Errorf("failed to init analytics: %w", err)
	}

	t.mu.Lock()
	t.session.VisitorID = resp.VisitorID
	t.session.PageViewID = resp.PageViewID
	s := t.session
	t.mu.Unlock()

	t.log.Debug("analytics initialized",
		slog.Int64("visitor_id", resp.VisitorID),
		slog.Int64("page_view_id", resp.PageViewID),
		slog.Bool("returning", resp.IsReturning),
	)
	return s, nil
}

// Session returns a snapshot of the current session.
func (t *Tracker) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

func (t *Tracker) Ready() bool {
	return t.Session().Ready()
}

func (t *Tracker) VisitorID() int64 {
	return t.Session().VisitorID
}

func (t *Tracker) PageLoadTime() time.Time {
	return t.Session().PageLoadTime
}

// SetScrollPosition records the current scroll offset in pixels.
func (t *Tracker) SetScrollPosition(px int) {
	t.mu.Lock()
	t.session.ScrollPosition = px
	t.mu.Unlock()
}

// TrackEvent sends an event without waiting for it. It is a no-op until Init
// has succeeded.
func (t *Tracker) TrackEvent(eventType string, opts EventOptions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trackLocked(eventType, opts)
}

func (t *Tracker) trackLocked(eventType string, opts EventOptions) {
	if !t.session.Ready() {
		t.log.Debug("analytics not initialized, dropping event", slog.String("event_type", eventType))
		return
	}

	scroll := t.session.ScrollPosition
	if opts.ScrollPosition != nil {
		scroll = *opts.ScrollPosition
	}
	sinceLoad := int(t.now().Sub(t.session.PageLoadTime).Milliseconds())

	e := api.Event{
		EventType:         eventType,
		EventCategory:     opts.Category,
		ElementID:         opts.ElementID,
		ElementClass:      opts.ElementClass,
		ElementText:       opts.ElementText,
		Section:           opts.Section,
		Properties:        opts.Properties,
		ScrollPosition:    &scroll,
		TimeSincePageLoad: &sinceLoad,
	}
	visitorID, pageViewID := t.session.VisitorID, t.session.PageViewID

	// Enqueued under the lock so delivery order matches emission order.
	if t.dispatch.Go(eventType, func(ctx context.Context) error {
		return t.transport.TrackEvent(ctx, visitorID, pageViewID, e)
	}) {
		t.session.EventsCount++
	}
}

func (t *Tracker) TrackSectionView(sectionID string) {
	t.TrackEvent("section_view", EventOptions{Category: "engagement", Section: sectionID})
}

func (t *Tracker) TrackFormFocus() {
	t.TrackEvent("form_focus", EventOptions{Category: "form", Section: "waitlist_form"})
}

func (t *Tracker) TrackFormFieldBlur(field string, hasValue bool) {
	t.TrackEvent("form_field_blur", EventOptions{
		Category:   "form",
		Section:    "waitlist_form",
		Properties: map[string]any{"field_name": field, "has_value": hasValue},
	})
}

func (t *Tracker) TrackFormSubmit(success bool, feature string) {
	eventType := "form_submit_error"
	if success {
		eventType = "form_submit_success"
	}
	t.TrackEvent(eventType, EventOptions{
		Category:   "form",
		Section:    "waitlist_form",
		Properties: map[string]any{"feature_selected": feature},
	})
}

func (t *Tracker) TrackCTAClick(text, position string) {
	t.TrackEvent("cta_click", EventOptions{
		Category:    "navigation",
		ElementText: text,
		Properties:  map[string]any{"position": position},
	})
}

func (t *Tracker) TrackFeatureHover(name string) {
	t.TrackEvent("feature_card_hover", EventOptions{
		Category:   "engagement",
		Section:    "features",
		Properties: map[string]any{"feature_name": name},
	})
}

// UpdateScrollDepth raises the session's max depth and reports every
// milestone the new maximum passes, in increasing order. Milestones advance
// even before Init; their events are dropped like any other.
func (t *Tracker) UpdateScrollDepth(depth int) {
	depth = min(max(depth, 0), 100)

	t.mu.Lock()
	defer t.mu.Unlock()

	if depth <= t.session.MaxScrollDepth {
		return
	}
	t.session.MaxScrollDepth = depth

	for _, m := range Milestones {
		if m > depth || m <= t.session.LastTrackedMilestone {
			continue
		}
		t.session.LastTrackedMilestone = m
		t.trackLocked("scroll_milestone", EventOptions{
			Category:   "scroll",
			Properties: map[string]any{"depth": m},
		})
	}
}

// VisibilityChanged handles the page being hidden or shown again. Hiding
// sends the beacon first, since the page may never come back.
func (t *Tracker) VisibilityChanged(hidden bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if hidden {
		t.beaconLocked()
		t.trackLocked("tab_hidden", EventOptions{Category: "engagement"})
		return
	}
	t.trackLocked("tab_visible", EventOptions{Category: "engagement"})
}

// Unload sends the final beacon.
func (t *Tracker) Unload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.beaconLocked()
}

func (t *Tracker) beaconLocked() {
	if t.session.PageViewID == 0 {
		return
	}
	b := api.Beacon{
		PageViewID:        t.session.PageViewID,
		TimeOnPageSeconds: int(t.now().Sub(t.session.PageLoadTime) / time.Second),
		MaxScrollDepth:    t.session.MaxScrollDepth,
		EventsCount:       t.session.EventsCount,
	}
	t.dispatch.Go("beacon", func(ctx context.Context) error {
		return t.transport.SendBeacon(ctx, b)
	})
}

// Flush waits for queued telemetry to be delivered.
func (t *Tracker) Flush(ctx context.Context) error {
	return t.dispatch.Flush(ctx)
}

// Close drains queued telemetry until ctx is done. Tracking calls after Close
// are dropped.
func (t *Tracker) Close(ctx context.Context) error {
	return t.dispatch.Close(ctx)
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
