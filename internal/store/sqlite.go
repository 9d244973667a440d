package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type SQLiteStore struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ip_address TEXT UNIQUE NOT NULL,
    user_agent TEXT,
    browser TEXT,
    browser_version TEXT,
    os TEXT,
    os_version TEXT,
    device_type TEXT,
    is_bot INTEGER NOT NULL DEFAULT 0,
    original_referrer TEXT,
    utm_source TEXT,
    utm_medium TEXT,
    utm_campaign TEXT,
    total_visits INTEGER NOT NULL DEFAULT 1,
    total_events INTEGER NOT NULL DEFAULT 0,
    total_time_seconds INTEGER NOT NULL DEFAULT 0,
    converted INTEGER NOT NULL DEFAULT 0,
    converted_at INTEGER,
    first_seen INTEGER NOT NULL DEFAULT (unixepoch()),
    last_seen INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS page_views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id INTEGER NOT NULL,
    session_id TEXT,
    referrer TEXT,
    utm_source TEXT,
    utm_medium TEXT,
    utm_campaign TEXT,
    utm_content TEXT,
    screen_width INTEGER,
    screen_height INTEGER,
    viewport_width INTEGER,
    viewport_height INTEGER,
    time_on_page_seconds INTEGER,
    max_scroll_depth INTEGER,
    reached_form INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (visitor_id) REFERENCES visitors(id)
);

CREATE INDEX IF NOT EXISTS idx_page_views_visitor ON page_views(visitor_id);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id INTEGER NOT NULL,
    page_view_id INTEGER,
    event_type TEXT NOT NULL,
    event_category TEXT,
    element_id TEXT,
    element_class TEXT,
    element_text TEXT,
    section TEXT,
    properties TEXT,
    scroll_position INTEGER,
    time_since_page_load INTEGER,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (visitor_id) REFERENCES visitors(id),
    FOREIGN KEY (page_view_id) REFERENCES page_views(id)
);

CREATE INDEX IF NOT EXISTS idx_events_visitor ON events(visitor_id);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);

CREATE TABLE IF NOT EXISTS signups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor_id INTEGER NOT NULL,
    email TEXT UNIQUE NOT NULL COLLATE NOCASE,
    most_wanted_feature TEXT NOT NULL,
    marketing_consent INTEGER NOT NULL DEFAULT 0,
    signup_source TEXT,
    time_to_signup_seconds INTEGER,
    page_views_before_signup INTEGER NOT NULL DEFAULT 0,
    events_before_signup INTEGER NOT NULL DEFAULT 0,
    waitlist_position INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (visitor_id) REFERENCES visitors(id)
);

CREATE INDEX IF NOT EXISTS idx_signups_feature ON signups(most_wanted_feature);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Signup positions are count+1, so writers must be serialized.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Path is the file the store was opened from.
func (s *SQLiteStore) Path() string {
	return s.path
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const visitorColumns = `id, ip_address, user_agent, browser, browser_version, os, os_version, device_type, is_bot,
	original_referrer, utm_source, utm_medium, utm_campaign, total_visits, total_events, total_time_seconds,
	converted, converted_at, first_seen, last_seen`

func scanVisitor(row rowScanner) (*Visitor, error) {
	var v Visitor
	var ua, browser, browserVersion, os, osVersion, deviceType sql.NullString
	var referrer, utmSource, utmMedium, utmCampaign sql.NullString
	var convertedAt sql.NullInt64
	var firstSeen, lastSeen int64

	err := row.Scan(&v.ID, &v.IPAddress, &ua, &browser, &browserVersion, &os, &osVersion, &deviceType, &v.Device.IsBot,
		&referrer, &utmSource, &utmMedium, &utmCampaign, &v.TotalVisits, &v.TotalEvents, &v.TotalTimeSeconds,
		&v.Converted, &convertedAt, &firstSeen, &lastSeen)
	if err != nil {
		return nil, err
	}

	v.Device.UserAgent = ua.String
	v.Device.Browser = browser.String
	v.Device.BrowserVersion = browserVersion.String
	v.Device.OS = os.String
	v.Device.OSVersion = osVersion.String
	v.Device.Type = DeviceType(deviceType.String)
	v.OriginalReferrer = referrer.String
	v.UTMSource = utmSource.String
	v.UTMMedium = utmMedium.String
	v.UTMCampaign = utmCampaign.String
	if convertedAt.Valid {
		t := time.Unix(convertedAt.Int64, 0)
		v.ConvertedAt = &t
	}
	v.FirstSeen = time.Unix(firstSeen, 0)
	v.LastSeen = time.Unix(lastSeen, 0)

	return &v, nil
}

// GetOrCreateVisitor returns the visitor for ip, creating it on first sight.
// Returning visitors get total_visits bumped; their original attribution
// and device are kept.
func (s *SQLiteStore) GetOrCreateVisitor(ctx context.Context, ip string, device Device, attr Attribution) (*Visitor, error) {
	now := time.Now().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (ip_address, user_agent, browser, browser_version, os, os_version, device_type, is_bot,
			original_referrer, utm_source, utm_medium, utm_campaign, first_seen, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ip_address) DO UPDATE SET
			total_visits = total_visits + 1,
			last_seen = excluded.last_seen`,
		ip, nullableString(device.UserAgent), nullableString(device.Browser), nullableString(device.BrowserVersion),
		nullableString(device.OS), nullableString(device.OSVersion), nullableString(string(device.Type)), device.IsBot,
		nullableString(attr.Referrer), nullableString(attr.UTMSource), nullableString(attr.UTMMedium),
		nullableString(attr.UTMCampaign), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert visitor: %w", err)
	}

	v, err := scanVisitor(s.db.QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE ip_address = ?`, ip))
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) GetVisitor(ctx context.Context, id int64) (*Visitor, error) {
	v, err := scanVisitor(s.db.QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return v, nil
}

const pageViewColumns = `id, visitor_id, session_id, referrer, utm_source, utm_medium, utm_campaign, utm_content,
	screen_width, screen_height, viewport_width, viewport_height, time_on_page_seconds, max_scroll_depth,
	reached_form, created_at`

func scanPageView(row rowScanner) (*PageView, error) {
	var pv PageView
	var sessionID, referrer, utmSource, utmMedium, utmCampaign, utmContent sql.NullString
	var sw, sh, vw, vh, timeOnPage, depth sql.NullInt64
	var createdAt int64

	err := row.Scan(&pv.ID, &pv.VisitorID, &sessionID, &referrer, &utmSource, &utmMedium, &utmCampaign, &utmContent,
		&sw, &sh, &vw, &vh, &timeOnPage, &depth, &pv.ReachedForm, &createdAt)
	if err != nil {
		return nil, err
	}

	pv.SessionID = sessionID.String
	pv.Attribution = Attribution{
		Referrer:    referrer.String,
		UTMSource:   utmSource.String,
		UTMMedium:   utmMedium.String,
		UTMCampaign: utmCampaign.String,
		UTMContent:  utmContent.String,
	}
	pv.Dimensions = Dimensions{
		ScreenWidth:    intPtr(sw),
		ScreenHeight:   intPtr(sh),
		ViewportWidth:  intPtr(vw),
		ViewportHeight: intPtr(vh),
	}
	pv.TimeOnPageSeconds = intPtr(timeOnPage)
	pv.MaxScrollDepth = intPtr(depth)
	pv.CreatedAt = time.Unix(createdAt, 0)

	return &pv, nil
}

func (s *SQLiteStore) CreatePageView(ctx context.Context, visitorID int64, attr Attribution, dims Dimensions) (*PageView, error) {
	now := time.Now().Unix()
	sessionID := uuid.NewString()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO page_views (visitor_id, session_id, referrer, utm_source, utm_medium, utm_campaign, utm_content,
			screen_width, screen_height, viewport_width, viewport_height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		visitorID, sessionID, nullableString(attr.Referrer), nullableString(attr.UTMSource),
		nullableString(attr.UTMMedium), nullableString(attr.UTMCampaign), nullableString(attr.UTMContent),
		nullableInt(dims.ScreenWidth), nullableInt(dims.ScreenHeight),
		nullableInt(dims.ViewportWidth), nullableInt(dims.ViewportHeight), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert page view: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &PageView{
		ID:          id,
		VisitorID:   visitorID,
		SessionID:   sessionID,
		Attribution: attr,
		Dimensions:  dims,
		CreatedAt:   time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) getPageView(ctx context.Context, q querier, id int64) (*PageView, error) {
	pv, err := scanPageView(q.QueryRowContext(ctx, `SELECT `+pageViewColumns+` FROM page_views WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page view: %w", err)
	}
	return pv, nil
}

// UpdatePageView applies the non-nil fields of update. The recorded max
// scroll depth never decreases.
func (s *SQLiteStore) UpdatePageView(ctx context.Context, id int64, update PageViewUpdate) (*PageView, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE page_views SET
			time_on_page_seconds = COALESCE(?, time_on_page_seconds),
			max_scroll_depth = CASE
				WHEN ? IS NULL THEN max_scroll_depth
				WHEN max_scroll_depth IS NULL OR ? > max_scroll_depth THEN ?
				ELSE max_scroll_depth END,
			reached_form = COALESCE(?, reached_form)
		 WHERE id = ?`,
		nullableInt(update.TimeOnPageSeconds),
		nullableInt(update.MaxScrollDepth), nullableInt(update.MaxScrollDepth), nullableInt(update.MaxScrollDepth),
		nullableBool(update.ReachedForm), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update page view: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.getPageView(ctx, s.db, id)
}

// FinalizePageView stores the beacon metrics. A page view can be finalized
// more than once (tab hidden, then closed); the visitor's total time only
// grows by the difference.
func (s *SQLiteStore) FinalizePageView(ctx context.Context, id int64, timeOnPageSeconds, maxScrollDepth int) (*PageView, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pv, err := s.getPageView(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	previous := 0
	if pv.TimeOnPageSeconds != nil {
		previous = *pv.TimeOnPageSeconds
	}
	depth := maxScrollDepth
	if pv.MaxScrollDepth != nil && *pv.MaxScrollDepth > depth {
		depth = *pv.MaxScrollDepth
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE page_views SET time_on_page_seconds = ?, max_scroll_depth = ? WHERE id = ?`,
		timeOnPageSeconds, depth, id,
	); err != nil {
		return nil, fmt.Errorf("failed to finalize page view: %w", err)
	}

	if delta := timeOnPageSeconds - previous; delta > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE visitors SET total_time_seconds = total_time_seconds + ? WHERE id = ?`,
			delta, pv.VisitorID,
		); err != nil {
			return nil, fmt.Errorf("failed to update visitor time: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	pv.TimeOnPageSeconds = &timeOnPageSeconds
	pv.MaxScrollDepth = &depth
	return pv, nil
}

// RecordEvent stores e and bumps the visitor's event counter. Form
// engagement also marks the page view as having reached the form.
func (s *SQLiteStore) RecordEvent(ctx context.Context, e *Event) (int64, error) {
	var propsJSON sql.NullString
	if len(e.Properties) > 0 {
		b, err := json.Marshal(e.Properties)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal properties: %w", err)
		}
		propsJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE visitors SET total_events = total_events + 1, last_seen = ? WHERE id = ?`,
		time.Now().Unix(), e.VisitorID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update visitor: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return 0, ErrNotFound
	}

	// A stale page view id from the client is dropped rather than failing the event.
	if e.PageViewID != nil {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM page_views WHERE id = ?`, *e.PageViewID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			e.PageViewID = nil
		} else if err != nil {
			return 0, fmt.Errorf("failed to look up page view: %w", err)
		}
	}

	now := time.Now().Unix()
	result, err = tx.ExecContext(ctx,
		`INSERT INTO events (visitor_id, page_view_id, event_type, event_category, element_id, element_class,
			element_text, section, properties, scroll_position, time_since_page_load, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VisitorID, nullableInt64(e.PageViewID), e.EventType, nullableString(e.EventCategory),
		nullableString(e.ElementID), nullableString(e.ElementClass), nullableString(e.ElementText),
		nullableString(e.Section), propsJSON, nullableInt(e.ScrollPosition), nullableInt(e.TimeSincePageLoad), now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if e.PageViewID != nil && reachesForm(e) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE page_views SET reached_form = 1 WHERE id = ? AND visitor_id = ?`,
			*e.PageViewID, e.VisitorID,
		); err != nil {
			return 0, fmt.Errorf("failed to mark form reached: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	e.ID = id
	e.CreatedAt = time.Unix(now, 0)
	return id, nil
}

func reachesForm(e *Event) bool {
	if e.EventType == "form_focus" {
		return true
	}
	return e.EventType == "section_view" && e.Section == "waitlist_form"
}

func (s *SQLiteStore) ListEvents(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visitor_id, page_view_id, event_type, event_category, element_id, element_class, element_text,
			section, properties, scroll_position, time_since_page_load, created_at
		 FROM events ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var pageViewID, scroll, sinceLoad sql.NullInt64
		var category, elementID, elementClass, elementText, section, props sql.NullString
		var createdAt int64

		if err := rows.Scan(&e.ID, &e.VisitorID, &pageViewID, &e.EventType, &category, &elementID, &elementClass,
			&elementText, &section, &props, &scroll, &sinceLoad, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if pageViewID.Valid {
			id := pageViewID.Int64
			e.PageViewID = &id
		}
		e.EventCategory = category.String
		e.ElementID = elementID.String
		e.ElementClass = elementClass.String
		e.ElementText = elementText.String
		e.Section = section.String
		if props.Valid && props.String != "" {
			if err := json.Unmarshal([]byte(props.String), &e.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal properties: %w", err)
			}
		}
		e.ScrollPosition = intPtr(scroll)
		e.TimeSincePageLoad = intPtr(sinceLoad)
		e.CreatedAt = time.Unix(createdAt, 0)

		events = append(events, &e)
	}

	return events, rows.Err()
}

// CreateSignup adds s to the waitlist at the next position and marks its
// visitor converted.
func (s *SQLiteStore) CreateSignup(ctx context.Context, signup *Signup) (*Signup, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM signups WHERE email = ?`, signup.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return nil, ErrDuplicateEmail
	}

	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitors WHERE id = ?`, signup.VisitorID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check visitor: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	var pageViews, events, current int
	err = tx.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM page_views WHERE visitor_id = ?),
			(SELECT COUNT(*) FROM events WHERE visitor_id = ?),
			(SELECT COUNT(*) FROM signups)`,
		signup.VisitorID, signup.VisitorID,
	).Scan(&pageViews, &events, &current)
	if err != nil {
		return nil, fmt.Errorf("failed to count visitor activity: %w", err)
	}

	now := time.Now().Unix()
	created := *signup
	created.PageViewsBeforeSignup = pageViews
	created.EventsBeforeSignup = events
	created.WaitlistPosition = current + 1
	created.CreatedAt = time.Unix(now, 0)

	result, err := tx.ExecContext(ctx,
		`INSERT INTO signups (visitor_id, email, most_wanted_feature, marketing_consent, signup_source,
			time_to_signup_seconds, page_views_before_signup, events_before_signup, waitlist_position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.VisitorID, created.Email, created.MostWantedFeature, created.MarketingConsent,
		nullableString(created.SignupSource), nullableInt(created.TimeToSignupSeconds),
		created.PageViewsBeforeSignup, created.EventsBeforeSignup, created.WaitlistPosition, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert signup: %w", err)
	}

	created.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE visitors SET converted = 1, converted_at = ? WHERE id = ?`, now, created.VisitorID,
	); err != nil {
		return nil, fmt.Errorf("failed to mark visitor converted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &created, nil
}

func (s *SQLiteStore) CountSignups(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signups`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count signups: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) ListSignups(ctx context.Context) ([]*Signup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visitor_id, email, most_wanted_feature, marketing_consent, signup_source, time_to_signup_seconds,
			page_views_before_signup, events_before_signup, waitlist_position, created_at
		 FROM signups ORDER BY waitlist_position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	defer rows.Close()

	var signups []*Signup
	for rows.Next() {
		var su Signup
		var source sql.NullString
		var timeToSignup sql.NullInt64
		var createdAt int64

		if err := rows.Scan(&su.ID, &su.VisitorID, &su.Email, &su.MostWantedFeature, &su.MarketingConsent, &source,
			&timeToSignup, &su.PageViewsBeforeSignup, &su.EventsBeforeSignup, &su.WaitlistPosition, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		su.SignupSource = source.String
		su.TimeToSignupSeconds = intPtr(timeToSignup)
		su.CreatedAt = time.Unix(createdAt, 0)

		signups = append(signups, &su)
	}

	return signups, rows.Err()
}

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullableInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullableBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
