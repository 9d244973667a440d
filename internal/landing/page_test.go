package landing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/waitlist"
)

type fakeAPI struct {
	mu         sync.Mutex
	initErr    error
	countErr   error
	count      int
	spotsLeft  *int
	countCalls int
	events     []api.Event
	beacons    []api.Beacon
	signup     *api.SignupResponse
	signupErr  error
}

func (f *fakeAPI) InitVisitor(context.Context, api.InitRequest) (*api.InitResponse, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &api.InitResponse{VisitorID: 1, PageViewID: 2}, nil
}

func (f *fakeAPI) TrackEvent(_ context.Context, _, _ int64, e api.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAPI) SendBeacon(_ context.Context, b api.Beacon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beacons = append(f.beacons, b)
	return nil
}

func (f *fakeAPI) SubmitSignup(context.Context, api.SignupRequest) (*api.SignupResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	f.count++
	return f.signup, nil
}

func (f *fakeAPI) SignupCount(context.Context) (*api.CountResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return nil, f.countErr
	}
	return &api.CountResponse{Count: f.count, SpotsLeft: f.spotsLeft}, nil
}

func (f *fakeAPI) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

func (f *fakeAPI) sectionViews() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		if e.EventType == "section_view" {
			out = append(out, e.Section)
		}
	}
	return out
}

func newPage(t *testing.T, f *fakeAPI) *landing.Page {
	t.Helper()
	p := landing.New(landing.Options{API: f, Logger: logger.Discard()})
	t.Cleanup(func() { p.Close(context.Background()) })
	return p
}

func flush(t *testing.T, p *landing.Page) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Tracker().Flush(ctx))
}

func TestStart(t *testing.T) {
	f := &fakeAPI{count: 12}
	p := newPage(t, f)

	p.Start(context.Background())

	assert.True(t, p.Tracker().Ready())
	assert.Equal(t, 12, p.SignupCount())
	assert.Equal(t, 88, p.SpotsLeft())
}

func TestStart_AnalyticsFailureIsNonFatal(t *testing.T) {
	f := &fakeAPI{initErr: errors.New("down"), count: 3}
	p := newPage(t, f)

	p.Start(context.Background())

	assert.False(t, p.Tracker().Ready())
	assert.Equal(t, 3, p.SignupCount())

	p.Intersect("problem", 1)
	p.Scroll(500, 2000, 1000)
	flush(t, p)
	assert.Empty(t, f.eventTypes())
}

func TestScroll(t *testing.T) {
	f := &fakeAPI{}
	p := newPage(t, f)
	p.Start(context.Background())

	assert.Equal(t, 10, p.Scroll(100, 2000, 1000))
	assert.Equal(t, 30, p.Scroll(300, 2000, 1000))
	assert.Equal(t, 30, p.Scroll(300, 2000, 1000))
	assert.Equal(t, 80, p.Scroll(800, 2000, 1000))
	assert.Equal(t, 100, p.Scroll(0, 600, 800), "non-scrollable page")
	flush(t, p)

	s := p.Tracker().Session()
	assert.Equal(t, 100, s.MaxScrollDepth)
	assert.Equal(t, 0, s.ScrollPosition)
	assert.Len(t, f.eventTypes(), 5)
}

func TestIntersect_SectionViewOncePerSection(t *testing.T) {
	f := &fakeAPI{}
	p := newPage(t, f)
	p.Start(context.Background())

	assert.False(t, p.Intersect("problem", 0.1), "below threshold")
	assert.True(t, p.Intersect("problem", 0.25))
	assert.False(t, p.Intersect("problem", 0.9))
	assert.True(t, p.Intersect("hero", 0.5))
	assert.True(t, p.Intersect("features", 0.1))
	assert.False(t, p.Intersect("pricing", 1), "unknown section")

	p.Remount("problem")
	assert.True(t, p.Intersect("problem", 1), "a remounted detector flips again")
	flush(t, p)

	assert.Equal(t, []string{"problem", "features"}, f.sectionViews(), "hero is untracked, remounts are deduplicated")
}

func TestClickCTAAndHover(t *testing.T) {
	f := &fakeAPI{}
	p := newPage(t, f)
	p.Start(context.Background())

	assert.Equal(t, "waitlist", p.ClickCTA("Join the Waitlist", "hero"))
	p.HoverFeature("AI Research Agent")
	flush(t, p)

	assert.Equal(t, []string{"cta_click", "feature_card_hover"}, f.eventTypes())
}

func TestSignup_RefreshesCount(t *testing.T) {
	left := 93
	f := &fakeAPI{count: 6, signup: &api.SignupResponse{Success: true, Position: 7, SpotsLeft: &left}}
	p := newPage(t, f)
	p.Start(context.Background())
	require.Equal(t, 1, f.countCalls)

	form := p.Form()
	form.Focus("email")
	form.SetEmail("founder@example.com")
	form.Blur("email")
	form.Focus("feature")
	form.SetFeature(waitlist.FeatureAnalytics)

	res, err := form.Submit(context.Background())
	require.NoError(t, err)
	flush(t, p)

	assert.Equal(t, 7, res.Position)
	assert.Equal(t, 93, *res.SpotsLeft)
	assert.Equal(t, 2, f.countCalls, "exactly one refresh after success")
	assert.Equal(t, 7, p.SignupCount())
	assert.Equal(t, []string{"form_focus", "form_field_blur", "form_submit_success"}, f.eventTypes())
}

func TestSpotsLeft(t *testing.T) {
	left := 40
	f := &fakeAPI{count: 120}
	p := newPage(t, f)
	p.RefreshCount(context.Background())
	assert.Equal(t, 0, p.SpotsLeft(), "never negative")

	f.spotsLeft = &left
	p.RefreshCount(context.Background())
	assert.Equal(t, 40, p.SpotsLeft(), "server figure wins")

	f.countErr = errors.New("down")
	p.RefreshCount(context.Background())
	assert.Equal(t, 120, p.SignupCount(), "failure keeps the last value")
}

func TestHideShowClose(t *testing.T) {
	f := &fakeAPI{}
	p := newPage(t, f)
	p.Start(context.Background())

	p.Hide()
	p.Show()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Close(ctx))

	assert.Equal(t, []string{"tab_hidden", "tab_visible"}, f.eventTypes())
	require.Len(t, f.beacons, 2)
	assert.Equal(t, 2, f.beacons[1].EventsCount)
}
