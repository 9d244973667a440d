package store

import "context"

// Store defines the persistence operations behind the waitlist API
type Store interface {
	// Visitor tracking
	GetOrCreateVisitor(ctx context.Context, ip string, device Device, attr Attribution) (*Visitor, error)
	GetVisitor(ctx context.Context, id int64) (*Visitor, error)
	CreatePageView(ctx context.Context, visitorID int64, attr Attribution, dims Dimensions) (*PageView, error)
	UpdatePageView(ctx context.Context, id int64, update PageViewUpdate) (*PageView, error)
	FinalizePageView(ctx context.Context, id int64, timeOnPageSeconds, maxScrollDepth int) (*PageView, error)
	RecordEvent(ctx context.Context, e *Event) (int64, error)
	ListEvents(ctx context.Context) ([]*Event, error)

	// Waitlist
	CreateSignup(ctx context.Context, s *Signup) (*Signup, error)
	CountSignups(ctx context.Context) (int, error)
	ListSignups(ctx context.Context) ([]*Signup, error)

	// Reporting
	Dashboard(ctx context.Context) (*Dashboard, error)
	SourceStats(ctx context.Context) ([]SourceStats, error)

	// Lifecycle
	Close() error
}
