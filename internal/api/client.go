package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// Detail used when a non-2xx response carries none.
const (
	DefaultSignupError = "Failed to submit signup"
	DefaultCountError  = "Failed to get signup count"
)

// Error is a non-2xx response from the API. Detail is safe to show to users.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

// DetailOf returns the user-facing detail of an API error, or "" when err is
// not one (for example a transport failure).
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Client talks to the ValidateIQ API. It never retries; callers bound each
// call with their context.
type Client struct {
	http *resty.Client
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetLogger(restyLogger{log})
	return &Client{http: c}
}

// SubmitSignup posts a waitlist signup.
func (c *Client) SubmitSignup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var out SignupResponse
	if err := c.post(ctx, "/api/signups/", req, &out, nil, DefaultSignupError); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignupCount fetches the current waitlist size.
func (c *Client) SignupCount(ctx context.Context) (*CountResponse, error) {
	var out CountResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/signups/count")
	if err != nil {
		return nil, fmt.Errorf("failed to get signup count: %w", err)
	}
	if resp.IsError() {
		// The count endpoint's detail is not shown to users.
		return nil, &Error{Status: resp.StatusCode(), Detail: DefaultCountError}
	}
	return &out, nil
}

// InitVisitor registers the visitor and opens a page view.
func (c *Client) InitVisitor(ctx context.Context, req InitRequest) (*InitResponse, error) {
	var out InitResponse
	if err := c.post(ctx, "/api/analytics/init", req, &out, nil, "Failed to initialize analytics"); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackEvent records one analytics event for the visitor's page view.
func (c *Client) TrackEvent(ctx context.Context, visitorID, pageViewID int64, e Event) error {
	params := map[string]string{"visitor_id": strconv.FormatInt(visitorID, 10)}
	if pageViewID != 0 {
		params["page_view_id"] = strconv.FormatInt(pageViewID, 10)
	}
	return c.post(ctx, "/api/analytics/event", e, &EventResponse{}, params, "Failed to track event")
}

// UpdatePageView sends interim engagement metrics.
func (c *Client) UpdatePageView(ctx context.Context, u PageViewUpdate) error {
	return c.post(ctx, "/api/analytics/pageview/update", u, &SuccessResponse{}, nil, "Failed to update page view")
}

// SendBeacon posts the final page view metrics.
func (c *Client) SendBeacon(ctx context.Context, b Beacon) error {
	return c.post(ctx, "/api/analytics/beacon", b, &SuccessResponse{}, nil, "Failed to send beacon")
}

func (c *Client) post(ctx context.Context, path string, body, result any, query map[string]string, fallback string) error {
	var apiErr ErrorResponse
	r := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&apiErr)
	if len(query) > 0 {
		r.SetQueryParams(query)
	}

	resp, err := r.Post(path)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	if resp.IsError() {
		detail := apiErr.Detail
		if detail == "" {
			detail = fallback
		}
		return &Error{Status: resp.StatusCode(), Detail: detail}
	}
	return nil
}

// restyLogger routes resty's own diagnostics through slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error(fmt.Sprintf(format, v...)) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug(fmt.Sprintf(format, v...)) }
