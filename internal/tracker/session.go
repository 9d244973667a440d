package tracker

import (
	"net/url"
	"time"
)

// Milestones are the scroll depths, in percent, reported once per page load.
var Milestones = []int{25, 50, 75, 90, 100}

// Session is the analytics identity of one page load. The ids are zero until
// the tracker has been initialized.
type Session struct {
	VisitorID            int64
	PageViewID           int64
	PageLoadTime         time.Time
	MaxScrollDepth       int
	LastTrackedMilestone int
	ScrollPosition       int
	EventsCount          int
}

func (s Session) Ready() bool {
	return s.VisitorID != 0
}

// Environment describes the page the tracker runs on.
type Environment struct {
	Referrer       string
	Query          string // raw query string of the page URL
	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
}

// EnvironmentFromURL builds an Environment for pageURL with the given
// referrer and viewport.
func EnvironmentFromURL(pageURL, referrer string, viewportWidth, viewportHeight int) (Environment, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Environment{}, err
	}
	return Environment{
		Referrer:       referrer,
		Query:          u.RawQuery,
		ScreenWidth:    viewportWidth,
		ScreenHeight:   viewportHeight,
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
	}, nil
}

// UTM holds the campaign parameters of a page URL.
type UTM struct {
	Source, Medium, Campaign, Content string
}

func (e Environment) UTM() UTM {
	q, _ := url.ParseQuery(e.Query)
	return UTM{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Content:  q.Get("utm_content"),
	}
}
