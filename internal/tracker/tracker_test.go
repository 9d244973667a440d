package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/tracker"
)

type sentEvent struct {
	visitorID, pageViewID int64
	event                 api.Event
}

type fakeTransport struct {
	mu       sync.Mutex
	initReq  *api.InitRequest
	initErr  error
	inits    int
	events   []sentEvent
	beacons  []api.Beacon
	eventErr error
}

func (f *fakeTransport) InitVisitor(_ context.Context, req api.InitRequest) (*api.InitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	f.initReq = &req
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &api.InitResponse{VisitorID: 11, PageViewID: 22, VisitCount: 1}, nil
}

func (f *fakeTransport) TrackEvent(_ context.Context, visitorID, pageViewID int64, e api.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{visitorID, pageViewID, e})
	return f.eventErr
}

func (f *fakeTransport) SendBeacon(_ context.Context, b api.Beacon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beacons = append(f.beacons, b)
	return nil
}

func (f *fakeTransport) sent() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvent(nil), f.events...)
}

func (f *fakeTransport) types() []string {
	var out []string
	for _, e := range f.sent() {
		out = append(out, e.event.EventType)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTracker(t *testing.T, ft *fakeTransport) (*tracker.Tracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tr := tracker.New(tracker.Options{
		Transport: ft,
		Environment: tracker.Environment{
			Referrer:       "https://news.ycombinator.com/",
			Query:          "utm_source=hn&utm_campaign=launch",
			ScreenWidth:    1920,
			ScreenHeight:   1080,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Logger: logger.Discard(),
		Now:    clock.Now,
	})
	t.Cleanup(func() { tr.Close(context.Background()) })
	return tr, clock
}

func flush(t *testing.T, tr *tracker.Tracker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Flush(ctx))
}

func milestones(events []sentEvent) []int {
	var out []int
	for _, e := range events {
		if e.event.EventType == "scroll_milestone" {
			out = append(out, e.event.Properties["depth"].(int))
		}
	}
	return out
}

func TestInit(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)

	assert.False(t, tr.Ready())

	s, err := tr.Init(context.Background())
	require.NoError(t, err)

	assert.True(t, s.Ready())
	assert.Equal(t, int64(11), s.VisitorID)
	assert.Equal(t, int64(22), s.PageViewID)

	require.NotNil(t, ft.initReq)
	assert.Equal(t, "https://news.ycombinator.com/", ft.initReq.Referrer)
	assert.Equal(t, "hn", ft.initReq.UTMSource)
	assert.Equal(t, "launch", ft.initReq.UTMCampaign)
	assert.Empty(t, ft.initReq.UTMMedium)
	assert.Equal(t, 1280, *ft.initReq.ViewportWidth)
	assert.Equal(t, 1080, *ft.initReq.ScreenHeight)
}

func TestInit_Idempotent(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)

	_, err := tr.Init(context.Background())
	require.NoError(t, err)
	s, err := tr.Init(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ft.inits)
	assert.Equal(t, int64(11), s.VisitorID)
}

func TestInit_FailureDegradesToNoTracking(t *testing.T) {
	ft := &fakeTransport{initErr: errors.New("connection refused")}
	tr, _ := newTracker(t, ft)

	_, err := tr.Init(context.Background())
	require.Error(t, err)
	assert.False(t, tr.Ready())

	tr.TrackCTAClick("Join the Waitlist", "hero")
	tr.UpdateScrollDepth(100)
	tr.Unload()
	flush(t, tr)

	assert.Empty(t, ft.sent())
	assert.Empty(t, ft.beacons)
}

func TestTrackEvent_DroppedBeforeInit(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)

	tr.TrackSectionView("problem")
	tr.TrackFormFocus()
	flush(t, tr)
	assert.Empty(t, ft.sent(), "events before init must not be queued")

	_, err := tr.Init(context.Background())
	require.NoError(t, err)
	flush(t, tr)
	assert.Empty(t, ft.sent(), "dropped events are not replayed")
	assert.Zero(t, tr.Session().EventsCount)
}

func TestTrackEvent_Fields(t *testing.T) {
	ft := &fakeTransport{}
	tr, clock := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	clock.Advance(1500 * time.Millisecond)
	tr.SetScrollPosition(640)
	tr.TrackFeatureHover("analytics")

	override := 10
	tr.TrackEvent("custom", tracker.EventOptions{ScrollPosition: &override})
	flush(t, tr)

	sent := ft.sent()
	require.Len(t, sent, 2)

	hover := sent[0]
	assert.Equal(t, int64(11), hover.visitorID)
	assert.Equal(t, int64(22), hover.pageViewID)
	assert.Equal(t, "feature_card_hover", hover.event.EventType)
	assert.Equal(t, "engagement", hover.event.EventCategory)
	assert.Equal(t, "features", hover.event.Section)
	assert.Equal(t, "analytics", hover.event.Properties["feature_name"])
	assert.Equal(t, 640, *hover.event.ScrollPosition)
	assert.Equal(t, 1500, *hover.event.TimeSincePageLoad)

	assert.Equal(t, 10, *sent[1].event.ScrollPosition)
	assert.Equal(t, 2, tr.Session().EventsCount)
}

func TestHelpers_Tags(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	tr.TrackSectionView("social_proof")
	tr.TrackFormFocus()
	tr.TrackFormFieldBlur("email", true)
	tr.TrackFormSubmit(true, "waitlist")
	tr.TrackFormSubmit(false, "waitlist")
	tr.TrackCTAClick("Join the Waitlist", "hero")
	flush(t, tr)

	sent := ft.sent()
	require.Len(t, sent, 6)

	tests := []struct {
		eventType, category, section string
		props                        map[string]any
	}{
		{"section_view", "engagement", "social_proof", nil},
		{"form_focus", "form", "waitlist_form", nil},
		{"form_field_blur", "form", "waitlist_form", map[string]any{"field_name": "email", "has_value": true}},
		{"form_submit_success", "form", "waitlist_form", map[string]any{"feature_selected": "waitlist"}},
		{"form_submit_error", "form", "waitlist_form", map[string]any{"feature_selected": "waitlist"}},
		{"cta_click", "navigation", "", map[string]any{"position": "hero"}},
	}
	for i, tt := range tests {
		e := sent[i].event
		assert.Equal(t, tt.eventType, e.EventType)
		assert.Equal(t, tt.category, e.EventCategory, tt.eventType)
		assert.Equal(t, tt.section, e.Section, tt.eventType)
		assert.Equal(t, tt.props, e.Properties, tt.eventType)
	}
	assert.Equal(t, "Join the Waitlist", sent[5].event.ElementText)
}

func TestUpdateScrollDepth_Milestones(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	for _, d := range []int{10, 30, 30, 80} {
		tr.UpdateScrollDepth(d)
	}
	flush(t, tr)

	assert.Equal(t, []int{25, 50, 75}, milestones(ft.sent()))
	s := tr.Session()
	assert.Equal(t, 80, s.MaxScrollDepth)
	assert.Equal(t, 75, s.LastTrackedMilestone)
	for _, e := range ft.sent() {
		assert.Equal(t, "scroll", e.event.EventCategory)
	}
}

func TestUpdateScrollDepth_Properties(t *testing.T) {
	tests := []struct {
		name   string
		depths []int
		want   []int
	}{
		{"jump to bottom", []int{100}, []int{25, 50, 75, 90, 100}},
		{"never decreases", []int{60, 20, 55, 60}, []int{25, 50}},
		{"exact thresholds", []int{25, 50, 75, 90}, []int{25, 50, 75, 90}},
		{"clamped", []int{-10, 250}, []int{25, 50, 75, 90, 100}},
		{"below first", []int{5, 24}, nil},
		{"repeat bottom", []int{100, 100, 99}, []int{25, 50, 75, 90, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{}
			tr, _ := newTracker(t, ft)
			_, err := tr.Init(context.Background())
			require.NoError(t, err)

			for _, d := range tt.depths {
				tr.UpdateScrollDepth(d)
			}
			flush(t, tr)

			assert.Equal(t, tt.want, milestones(ft.sent()))
		})
	}
}

func TestUpdateScrollDepth_Concurrent(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i <= 100; i++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			tr.UpdateScrollDepth(d)
		}(i)
	}
	wg.Wait()
	flush(t, tr)

	assert.Equal(t, []int{25, 50, 75, 90, 100}, milestones(ft.sent()))
}

func TestUpdateScrollDepth_BeforeInitAdvancesSilently(t *testing.T) {
	ft := &fakeTransport{}
	tr, _ := newTracker(t, ft)

	tr.UpdateScrollDepth(60)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)
	tr.UpdateScrollDepth(80)
	flush(t, tr)

	assert.Equal(t, []int{75}, milestones(ft.sent()))
}

func TestVisibilityChanged(t *testing.T) {
	ft := &fakeTransport{}
	tr, clock := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	tr.UpdateScrollDepth(30)
	clock.Advance(42 * time.Second)
	tr.VisibilityChanged(true)
	tr.VisibilityChanged(false)
	flush(t, tr)

	assert.Equal(t, []string{"scroll_milestone", "tab_hidden", "tab_visible"}, ft.types())
	require.Len(t, ft.beacons, 1)
	assert.Equal(t, api.Beacon{PageViewID: 22, TimeOnPageSeconds: 42, MaxScrollDepth: 30, EventsCount: 1}, ft.beacons[0])
}

func TestUnload_SurvivesClose(t *testing.T) {
	ft := &fakeTransport{}
	tr, clock := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	tr.UpdateScrollDepth(90)
	clock.Advance(1999 * time.Millisecond)
	tr.Unload()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Close(ctx))

	require.Len(t, ft.beacons, 1)
	assert.Equal(t, 1, ft.beacons[0].TimeOnPageSeconds)
	assert.Equal(t, 90, ft.beacons[0].MaxScrollDepth)
	assert.Equal(t, 4, ft.beacons[0].EventsCount)

	tr.TrackFormFocus()
	assert.Len(t, ft.sent(), 4, "events after Close are dropped")
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	ft := &fakeTransport{eventErr: errors.New("503")}
	tr, _ := newTracker(t, ft)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	tr.TrackFormFocus()
	tr.TrackFormFocus()
	flush(t, tr)

	assert.Len(t, ft.sent(), 2)
}

func TestEnvironment(t *testing.T) {
	env, err := tracker.EnvironmentFromURL("https://validateiq.com/?utm_source=reddit&utm_medium=social&utm_content=post", "", 390, 844)
	require.NoError(t, err)

	assert.Equal(t, tracker.UTM{Source: "reddit", Medium: "social", Content: "post"}, env.UTM())
	assert.Equal(t, 390, env.ViewportWidth)
}
