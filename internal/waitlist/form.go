// Package waitlist implements the signup form's state machine.
package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
)

const SignupSource = "main_form"

// User-facing messages.
const (
	MsgEmailRequired   = "Please enter your email"
	MsgFeatureRequired = "Please select a feature"
	MsgSessionNotReady = "Something went wrong. Please refresh and try again."
	MsgSubmitFailed    = "Something went wrong"
)

var (
	// ErrValidation is returned when input is incomplete; Message has the reason.
	ErrValidation = errors.New("invalid signup")
	ErrBusy       = errors.New("signup already in progress")
	ErrCompleted  = errors.New("signup already completed")
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Session is the visitor identity a signup is attributed to.
type Session interface {
	Ready() bool
	VisitorID() int64
	PageLoadTime() time.Time
}

// Reporter receives the form's analytics.
type Reporter interface {
	TrackFormFocus()
	TrackFormFieldBlur(field string, hasValue bool)
	TrackFormSubmit(success bool, feature string)
}

// Submitter is the signup API.
type Submitter interface {
	SubmitSignup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error)
}

// Result is a successful signup.
type Result struct {
	Position  int
	SpotsLeft *int
	Message   string
}

type Config struct {
	Submitter Submitter
	Session   Session
	Reporter  Reporter
	// OnSuccess runs once after a successful signup, typically to refresh
	// the signup count. It receives the context Submit was called with.
	OnSuccess func(ctx context.Context)
	Logger    *slog.Logger
	Now       func() time.Time
}

// Form is one lifecycle of the waitlist form.
type Form struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	state   State
	email   string
	feature Feature
	consent bool
	message string
	result  *Result
	focused bool
}

func New(cfg Config) *Form {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Form{cfg: cfg, log: cfg.Logger.With(logger.Scope("waitlist"))}
}

func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
}

func (f *Form) SetFeature(feature Feature) {
	f.mu.Lock()
	f.feature = feature
	f.mu.Unlock()
}

func (f *Form) SetConsent(consent bool) {
	f.mu.Lock()
	f.consent = consent
	f.mu.Unlock()
}

// Focus reports the first field focus of the form's lifecycle.
func (f *Form) Focus(field string) {
	f.mu.Lock()
	first := !f.focused
	f.focused = true
	f.mu.Unlock()

	if first {
		f.cfg.Reporter.TrackFormFocus()
	}
}

// Blur reports whether field held a value when it lost focus.
func (f *Form) Blur(field string) {
	f.mu.Lock()
	var hasValue bool
	switch field {
	case "email":
		hasValue = strings.TrimSpace(f.email) != ""
	case "feature":
		hasValue = f.feature != ""
	case "consent":
		hasValue = f.consent
	}
	f.mu.Unlock()

	f.cfg.Reporter.TrackFormFieldBlur(field, hasValue)
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the error shown inline, if any.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Result is set once the form has succeeded.
func (f *Form) Result() *Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Editable reports whether the inputs accept changes.
func (f *Form) Editable() bool {
	s := f.State()
	return s != StateSubmitting && s != StateSuccess
}

// Submit validates the input and posts the signup. Validation failures and
// API errors leave the form editable; the message is available from Message.
func (f *Form) Submit(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrBusy
	case StateSuccess:
		f.mu.Unlock()
		return nil, ErrCompleted
	}
	f.state = StateValidating
	f.message = ""

	email := strings.TrimSpace(f.email)
	feature := f.feature
	var msg string
	switch {
	case email == "":
		msg = MsgEmailRequired
	case feature == "":
		msg = MsgFeatureRequired
	case !f.cfg.Session.Ready():
		msg = MsgSessionNotReady
	}
	if msg != "" {
		f.state = StateError
		f.message = msg
		f.mu.Unlock()
		return nil, ErrValidation
	}

	elapsed := int(f.cfg.Now().Sub(f.cfg.Session.PageLoadTime()) / time.Second)
	req := api.SignupRequest{
		VisitorID:           f.cfg.Session.VisitorID(),
		Email:               email,
		MostWantedFeature:   string(feature),
		MarketingConsent:    f.consent,
		SignupSource:        SignupSource,
		TimeToSignupSeconds: &elapsed,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	resp, err := f.cfg.Submitter.SubmitSignup(ctx, req)
	if err != nil {
		msg := api.DetailOf(err)
		if msg == "" {
			msg = MsgSubmitFailed
		}
		f.log.Warn("signup failed", logger.Error(err))

		f.mu.Lock()
		f.state = StateError
		f.message = msg
		f.mu.Unlock()

		f.cfg.Reporter.TrackFormSubmit(false, string(feature))
		return nil, err
	}

	result := &Result{Position: resp.Position, SpotsLeft: resp.SpotsLeft, Message: resp.Message}
	f.mu.Lock()
	f.state = StateSuccess
	f.result = result
	f.mu.Unlock()

	f.cfg.Reporter.TrackFormSubmit(true, string(feature))
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess(ctx)
	}
	return result, nil
}
