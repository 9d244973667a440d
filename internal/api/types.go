package api

// InitRequest opens a page view for the current visitor.
type InitRequest struct {
	Referrer       string `json:"referrer,omitempty"`
	UTMSource      string `json:"utm_source,omitempty"`
	UTMMedium      string `json:"utm_medium,omitempty"`
	UTMCampaign    string `json:"utm_campaign,omitempty"`
	UTMContent     string `json:"utm_content,omitempty"`
	ScreenWidth    *int   `json:"screen_width,omitempty"`
	ScreenHeight   *int   `json:"screen_height,omitempty"`
	ViewportWidth  *int   `json:"viewport_width,omitempty"`
	ViewportHeight *int   `json:"viewport_height,omitempty"`
}

type InitResponse struct {
	VisitorID   int64 `json:"visitor_id"`
	PageViewID  int64 `json:"page_view_id"`
	IsReturning bool  `json:"is_returning"`
	VisitCount  int   `json:"visit_count"`
}

// Event is the body of POST /api/analytics/event.
type Event struct {
	EventType         string         `json:"event_type"`
	EventCategory     string         `json:"event_category,omitempty"`
	ElementID         string         `json:"element_id,omitempty"`
	ElementClass      string         `json:"element_class,omitempty"`
	ElementText       string         `json:"element_text,omitempty"`
	Section           string         `json:"section,omitempty"`
	Properties        map[string]any `json:"properties,omitempty"`
	ScrollPosition    *int           `json:"scroll_position,omitempty"`
	TimeSincePageLoad *int           `json:"time_since_page_load,omitempty"`
}

type EventResponse struct {
	EventID int64 `json:"event_id"`
}

// Beacon carries the final metrics of a page view.
type Beacon struct {
	PageViewID        int64 `json:"page_view_id"`
	TimeOnPageSeconds int   `json:"time_on_page_seconds"`
	MaxScrollDepth    int   `json:"max_scroll_depth"`
	EventsCount       int   `json:"events_count"`
}

// PageViewUpdate is a partial update of a page view's engagement metrics.
type PageViewUpdate struct {
	PageViewID        int64 `json:"page_view_id"`
	TimeOnPageSeconds *int  `json:"time_on_page_seconds,omitempty"`
	MaxScrollDepth    *int  `json:"max_scroll_depth,omitempty"`
	ReachedForm       *bool `json:"reached_form,omitempty"`
}

type SignupRequest struct {
	VisitorID           int64  `json:"visitor_id"`
	Email               string `json:"email"`
	MostWantedFeature   string `json:"most_wanted_feature"`
	MarketingConsent    bool   `json:"marketing_consent"`
	SignupSource        string `json:"signup_source"`
	TimeToSignupSeconds *int   `json:"time_to_signup_seconds,omitempty"`
}

type SignupResponse struct {
	Success   bool   `json:"success"`
	Position  int    `json:"position"`
	SpotsLeft *int   `json:"spots_left,omitempty"`
	Message   string `json:"message"`
}

type CountResponse struct {
	Count     int  `json:"count"`
	SpotsLeft *int `json:"spots_left,omitempty"`
}

// SuccessResponse acknowledges telemetry writes.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
