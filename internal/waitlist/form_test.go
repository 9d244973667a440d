package waitlist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/waitlist"
)

var loadTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSession struct{ ready bool }

func (s fakeSession) Ready() bool             { return s.ready }
func (s fakeSession) VisitorID() int64        { return 5 }
func (s fakeSession) PageLoadTime() time.Time { return loadTime }

type submitEvent struct {
	success bool
	feature string
}

type fakeReporter struct {
	focuses int
	blurs   map[string]bool
	submits []submitEvent
}

func (r *fakeReporter) TrackFormFocus() { r.focuses++ }

func (r *fakeReporter) TrackFormFieldBlur(field string, hasValue bool) {
	if r.blurs == nil {
		r.blurs = map[string]bool{}
	}
	r.blurs[field] = hasValue
}

func (r *fakeReporter) TrackFormSubmit(success bool, feature string) {
	r.submits = append(r.submits, submitEvent{success, feature})
}

type fakeSubmitter struct {
	calls []api.SignupRequest
	resp  *api.SignupResponse
	err   error
	// inside runs during the call, while the form is submitting
	inside func()
}

func (s *fakeSubmitter) SubmitSignup(_ context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	s.calls = append(s.calls, req)
	if s.inside != nil {
		s.inside()
	}
	return s.resp, s.err
}

type harness struct {
	form       *waitlist.Form
	submitter  *fakeSubmitter
	reporter   *fakeReporter
	refreshes  int
	refreshCtx context.Context
}

func newHarness(t *testing.T, ready bool, sub *fakeSubmitter) *harness {
	t.Helper()
	h := &harness{submitter: sub, reporter: &fakeReporter{}}
	h.form = waitlist.New(waitlist.Config{
		Submitter: sub,
		Session:   fakeSession{ready: ready},
		Reporter:  h.reporter,
		OnSuccess: func(ctx context.Context) {
			h.refreshes++
			h.refreshCtx = ctx
		},
		Logger: logger.Discard(),
		Now:    func() time.Time { return loadTime.Add(95500 * time.Millisecond) },
	})
	return h
}

func spots(n int) *int { return &n }

func TestSubmit_EmptyEmail(t *testing.T) {
	h := newHarness(t, true, &fakeSubmitter{})
	h.form.SetFeature(waitlist.FeatureAnalytics)

	_, err := h.form.Submit(context.Background())

	assert.ErrorIs(t, err, waitlist.ErrValidation)
	assert.Equal(t, waitlist.MsgEmailRequired, h.form.Message())
	assert.Equal(t, waitlist.StateError, h.form.State())
	assert.True(t, h.form.Editable())
	assert.Empty(t, h.submitter.calls, "no network call on validation failure")
	assert.Empty(t, h.reporter.submits)
}

func TestSubmit_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		feature waitlist.Feature
		ready   bool
		want    string
	}{
		{"everything missing", "", "", false, waitlist.MsgEmailRequired},
		{"whitespace email", "   ", waitlist.FeatureAll, true, waitlist.MsgEmailRequired},
		{"feature before session", "a@b.co", "", false, waitlist.MsgFeatureRequired},
		{"session not ready", "a@b.co", waitlist.FeatureAll, false, waitlist.MsgSessionNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.ready, &fakeSubmitter{})
			h.form.SetEmail(tt.email)
			h.form.SetFeature(tt.feature)

			_, err := h.form.Submit(context.Background())

			assert.ErrorIs(t, err, waitlist.ErrValidation)
			assert.Equal(t, tt.want, h.form.Message())
			assert.Empty(t, h.submitter.calls)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	sub := &fakeSubmitter{resp: &api.SignupResponse{Success: true, Position: 7, SpotsLeft: spots(93)}}
	h := newHarness(t, true, sub)
	h.form.SetEmail(" founder@example.com ")
	h.form.SetFeature(waitlist.FeatureWaitlist)
	h.form.SetConsent(true)

	res, err := h.form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, waitlist.StateSuccess, h.form.State())
	assert.Equal(t, 7, res.Position)
	assert.Equal(t, 93, *res.SpotsLeft)
	assert.Equal(t, res, h.form.Result())
	assert.False(t, h.form.Editable())

	assert.Equal(t, 1, h.refreshes)
	assert.Equal(t, []submitEvent{{true, "waitlist"}}, h.reporter.submits)

	require.Len(t, sub.calls, 1)
	assert.Equal(t, api.SignupRequest{
		VisitorID:           5,
		Email:               "founder@example.com",
		MostWantedFeature:   "waitlist",
		MarketingConsent:    true,
		SignupSource:        "main_form",
		TimeToSignupSeconds: intp(95),
	}, sub.calls[0])
}

func TestSubmit_AfterSuccess(t *testing.T) {
	sub := &fakeSubmitter{resp: &api.SignupResponse{Success: true, Position: 1}}
	h := newHarness(t, true, sub)
	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureAll)

	_, err := h.form.Submit(context.Background())
	require.NoError(t, err)
	_, err = h.form.Submit(context.Background())

	assert.ErrorIs(t, err, waitlist.ErrCompleted)
	assert.Len(t, sub.calls, 1)
	assert.Equal(t, 1, h.refreshes)
}

func TestSubmit_WhileSubmitting(t *testing.T) {
	sub := &fakeSubmitter{resp: &api.SignupResponse{Success: true, Position: 2}}
	h := newHarness(t, true, sub)
	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureAll)

	var inner error
	sub.inside = func() {
		assert.Equal(t, waitlist.StateSubmitting, h.form.State())
		assert.False(t, h.form.Editable())
		_, inner = h.form.Submit(context.Background())
	}

	_, err := h.form.Submit(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, inner, waitlist.ErrBusy)
	assert.Len(t, sub.calls, 1)
}

func TestSubmit_APIErrorDetail(t *testing.T) {
	sub := &fakeSubmitter{err: &api.Error{Status: 400, Detail: "Email already registered"}}
	h := newHarness(t, true, sub)
	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureDashboard)

	_, err := h.form.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, "Email already registered", h.form.Message())
	assert.Equal(t, waitlist.StateError, h.form.State())
	assert.True(t, h.form.Editable())
	assert.Equal(t, []submitEvent{{false, "dashboard"}}, h.reporter.submits)
	assert.Zero(t, h.refreshes)

	// resubmit after fixing the input
	sub.err = nil
	sub.resp = &api.SignupResponse{Success: true, Position: 3}
	h.form.SetEmail("other@b.co")
	_, err = h.form.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.form.Message())
	assert.Equal(t, 1, h.refreshes)
}

func TestSubmit_TransportError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp: connection refused")}
	h := newHarness(t, true, sub)
	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureAll)

	_, err := h.form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, waitlist.MsgSubmitFailed, h.form.Message())
}

func TestFocus_OnlyFirstIsReported(t *testing.T) {
	h := newHarness(t, true, &fakeSubmitter{})

	h.form.Focus("email")
	h.form.Focus("feature")
	h.form.Focus("email")
	h.form.Focus("consent")

	assert.Equal(t, 1, h.reporter.focuses)
}

func TestBlur_ReportsValue(t *testing.T) {
	h := newHarness(t, true, &fakeSubmitter{})

	h.form.Blur("email")
	assert.False(t, h.reporter.blurs["email"])

	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureAIResearch)
	h.form.Blur("email")
	h.form.Blur("feature")
	h.form.Blur("consent")

	assert.True(t, h.reporter.blurs["email"])
	assert.True(t, h.reporter.blurs["feature"])
	assert.False(t, h.reporter.blurs["consent"])
}

func TestParseFeature(t *testing.T) {
	for _, o := range waitlist.Options() {
		f, err := waitlist.ParseFeature(string(o.Value))
		require.NoError(t, err)
		assert.Equal(t, o.Value, f)
		assert.Equal(t, o.Label, f.Label())
	}

	_, err := waitlist.ParseFeature("teleportation")
	assert.Error(t, err)

	assert.Len(t, waitlist.Options(), 6)
	assert.Equal(t, "All of them equally", waitlist.FeatureAll.Label())
}

func TestSubmit_SuccessRefreshUsesSubmitContext(t *testing.T) {
	sub := &fakeSubmitter{resp: &api.SignupResponse{Success: true, Position: 1}}
	h := newHarness(t, true, sub)
	h.form.SetEmail("a@b.co")
	h.form.SetFeature(waitlist.FeatureAll)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err := h.form.Submit(ctx)
	require.NoError(t, err)

	require.NotNil(t, h.refreshCtx)
	deadline, ok := h.refreshCtx.Deadline()
	require.True(t, ok, "expected the refresh to inherit the submit deadline")
	want, _ := ctx.Deadline()
	assert.Equal(t, want, deadline)
}

func intp(n int) *int { return &n }
