package store

import "time"

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
	DeviceBot     DeviceType = "bot"
	DeviceUnknown DeviceType = "unknown"
)

// Device is what the server could learn from a User-Agent header.
type Device struct {
	UserAgent      string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Type           DeviceType
	IsBot          bool
}

// Attribution is where a visit came from.
type Attribution struct {
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
}

// Dimensions are the screen and viewport sizes reported by the browser.
type Dimensions struct {
	ScreenWidth    *int
	ScreenHeight   *int
	ViewportWidth  *int
	ViewportHeight *int
}

// Visitor is one unique client IP.
type Visitor struct {
	ID               int64
	IPAddress        string
	Device           Device
	OriginalReferrer string
	UTMSource        string
	UTMMedium        string
	UTMCampaign      string
	TotalVisits      int
	TotalEvents      int
	TotalTimeSeconds int
	Converted        bool
	ConvertedAt      *time.Time
	FirstSeen        time.Time
	LastSeen         time.Time
}

type PageView struct {
	ID                int64
	VisitorID         int64
	SessionID         string
	Attribution       Attribution
	Dimensions        Dimensions
	TimeOnPageSeconds *int
	MaxScrollDepth    *int
	ReachedForm       bool
	CreatedAt         time.Time
}

// Event is a single tracked interaction. Optional columns are empty
// strings or nil.
type Event struct {
	ID                int64
	VisitorID         int64
	PageViewID        *int64
	EventType         string
	EventCategory     string
	ElementID         string
	ElementClass      string
	ElementText       string
	Section           string
	Properties        map[string]any
	ScrollPosition    *int
	TimeSincePageLoad *int
	CreatedAt         time.Time
}

type Signup struct {
	ID                    int64
	VisitorID             int64
	Email                 string
	MostWantedFeature     string
	MarketingConsent      bool
	SignupSource          string
	TimeToSignupSeconds   *int
	PageViewsBeforeSignup int
	EventsBeforeSignup    int
	WaitlistPosition      int
	CreatedAt             time.Time
}

// PageViewUpdate carries optional metric changes for a page view.
type PageViewUpdate struct {
	TimeOnPageSeconds *int
	MaxScrollDepth    *int
	ReachedForm       *bool
}

// SourceStats is visitors and signups for one traffic source.
type SourceStats struct {
	Source   string
	Visitors int
	Signups  int
}
