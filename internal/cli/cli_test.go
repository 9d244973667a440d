package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math/rand/v2"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/config"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/server"
	"github.com/validateiq/validateiq/internal/stats"
	"github.com/validateiq/validateiq/internal/store"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// useTestConfig points the package globals at a temp database.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()

	oldCfg, oldDB, oldLog := cfg, dbPath, log
	t.Cleanup(func() { cfg, dbPath, log = oldCfg, oldDB, oldLog })

	cfg = &config.Config{
		Port:             8080,
		DBPath:           filepath.Join(t.TempDir(), "test.db"),
		WaitlistCap:      100,
		SignupsPerMinute: 60,
		SignupBurst:      20,
	}
	dbPath = cfg.DBPath
	log = logger.Discard()
	return cfg
}

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetupEnvValues(t *testing.T) {
	values := setup{Port: 9000, DBPath: "/data/viq.db", WaitlistCap: 250}.envValues()

	expected := map[string]string{
		"VIQ_PORT":         "9000",
		"VIQ_DB_PATH":      "/data/viq.db",
		"VIQ_WAITLIST_CAP": "250",
	}
	for k, v := range expected {
		if values[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, values[k])
		}
	}
	if _, ok := values["VIQ_DASHBOARD_TOKEN"]; ok {
		t.Error("empty token should not be written")
	}

	values = setup{Port: 1, DashboardToken: "tok", ServerURL: "https://viq.example.com"}.envValues()
	if values["VIQ_DASHBOARD_TOKEN"] != "tok" || values["VIQ_SERVER_URL"] != "https://viq.example.com" {
		t.Errorf("expected token and url, got %v", values)
	}
}

func TestPrintSources(t *testing.T) {
	report := stats.Analyze([]store.SourceStats{
		{Source: "direct", Visitors: 400, Signups: 20},
		{Source: "https://news.ycombinator.com", Visitors: 200, Signups: 40},
	})

	output := captureOutput(func() { printSources(report) })

	expectations := []string{
		"SOURCE",
		"direct",
		"(baseline)",
		"https://news....",
		"← LEADING",
		`confident "https://news.ycombinator.com" converts best`,
	}
	for _, expected := range expectations {
		if !strings.Contains(output, expected) {
			t.Errorf("output missing %q\n\nGot:\n%s", expected, output)
		}
	}
}

func TestPrintSources_Empty(t *testing.T) {
	output := captureOutput(func() { printSources(stats.Analyze(nil)) })
	if !strings.Contains(output, "No visitors yet.") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestSeedAndStats(t *testing.T) {
	useTestConfig(t)
	s := openStore(t)
	ctx := context.Background()

	res, err := seed(ctx, s, rand.New(rand.NewPCG(1, 2)), 30)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if res.Visitors != 30 {
		t.Errorf("expected 30 visitors, got %d", res.Visitors)
	}
	if res.PageViews < 30 || res.Events < 150 {
		t.Errorf("expected page views and events, got %+v", res)
	}

	d, err := s.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if d.Overview.TotalVisitors != 30 || d.Overview.TotalPageViews != res.PageViews {
		t.Errorf("dashboard does not match seed: %+v vs %+v", d.Overview, res)
	}
	if d.Overview.TotalSignups != res.Signups {
		t.Errorf("expected %d signups, got %d", res.Signups, d.Overview.TotalSignups)
	}

	output := captureOutput(func() { printDashboard(d) })
	for _, expected := range []string{"OVERVIEW", "FORM FUNNEL", "DEVICES", "EVENTS", "section_view"} {
		if !strings.Contains(output, expected) {
			t.Errorf("stats output missing %q", expected)
		}
	}

	// A second run adds to the same database.
	if _, err := seed(ctx, s, rand.New(rand.NewPCG(3, 4)), 5); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	useTestConfig(t)
	s := openStore(t)
	ctx := context.Background()

	v, err := s.GetOrCreateVisitor(ctx, "10.0.0.1", store.Device{}, store.Attribution{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordEvent(ctx, &store.Event{VisitorID: v.ID, EventType: "cta_click", Properties: map[string]any{"position": "hero"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSignup(ctx, &store.Signup{VisitorID: v.ID, Email: "a@example.com", MostWantedFeature: "analytics"}); err != nil {
		t.Fatal(err)
	}

	signups, _ := s.ListSignups(ctx)
	var buf bytes.Buffer
	if err := exportSignupsCSV(&buf, signups); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "1" || rows[1][3] != "a@example.com" {
		t.Errorf("unexpected signup rows: %v", rows)
	}

	events, _ := s.ListEvents(ctx)
	buf.Reset()
	if err := exportEventsCSV(&buf, events); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	rows, err = csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "cta_click" || rows[1][7] != `{"position":"hero"}` {
		t.Errorf("unexpected event rows: %v", rows)
	}
}

func TestRunExport_InvalidArgs(t *testing.T) {
	useTestConfig(t)

	exportFormat = "xml"
	defer func() { exportFormat = "csv" }()
	if err := runExport(exportCmd, []string{"signups"}); err == nil {
		t.Error("expected error for invalid format")
	}

	exportFormat = "json"
	if err := runExport(exportCmd, []string{"tests"}); err == nil {
		t.Error("expected error for invalid export")
	}
}

func TestRunExport_JSON(t *testing.T) {
	useTestConfig(t)
	openStore(t)

	exportFormat = "json"
	defer func() { exportFormat = "csv" }()

	output := captureOutput(func() {
		if err := runExport(exportCmd, []string{"signups"}); err != nil {
			t.Errorf("export failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != "{}" {
		t.Errorf("expected empty export, got %q", output)
	}
}

func TestReadToken(t *testing.T) {
	c := useTestConfig(t)

	if _, err := readToken(); err == nil || !strings.Contains(err.Error(), "no server running") {
		t.Errorf("expected missing token error, got %v", err)
	}

	if err := os.WriteFile(c.TokenFile(), []byte("abc123\n"), 0600); err != nil {
		t.Fatal(err)
	}
	token, err := readToken()
	if err != nil || token != "abc123" {
		t.Errorf("expected token from file, got %q, %v", token, err)
	}

	c.DashboardToken = "configured"
	if token, _ := readToken(); token != "configured" {
		t.Errorf("expected configured token, got %q", token)
	}

	output := captureOutput(func() {
		if err := runToken(tokenCmd, nil); err != nil {
			t.Errorf("token failed: %v", err)
		}
	})
	if !strings.Contains(output, "http://localhost:8080/dashboard?token=configured") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestRunVisit(t *testing.T) {
	c := useTestConfig(t)
	s := openStore(t)

	srv := server.New(server.Options{Store: s, Config: c, Logger: logger.Discard()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	old := visitOpts
	defer func() { visitOpts = old }()
	visitOpts.url = ts.URL + "/?utm_source=reddit"
	visitOpts.referrer = "https://reddit.com"
	visitOpts.email = "visitor@example.com"
	visitOpts.feature = "dashboard"
	visitOpts.consent = true
	visitOpts.timeout = 10 * time.Second

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	output := captureOutput(func() {
		if err := runVisit(cmd, nil); err != nil {
			t.Errorf("visit failed: %v", err)
		}
	})

	if !strings.Contains(output, "Joined the waitlist at position #1") {
		t.Errorf("unexpected output: %s", output)
	}

	signups, err := s.ListSignups(context.Background())
	if err != nil || len(signups) != 1 {
		t.Fatalf("expected one signup, got %d (%v)", len(signups), err)
	}
	if signups[0].MostWantedFeature != "dashboard" || !signups[0].MarketingConsent {
		t.Errorf("unexpected signup: %+v", signups[0])
	}

	d, err := s.Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.SectionEngagement["features"] != 1 {
		t.Errorf("expected features section view, got %v", d.SectionEngagement)
	}
}

func TestRunSnippet(t *testing.T) {
	useTestConfig(t)
	cfg.ServerURL = "https://waitlist.example.com"

	output := captureOutput(func() {
		if err := runSnippet(snippetCmd, []string{"vue"}); err != nil {
			t.Errorf("runSnippet failed: %v", err)
		}
	})

	for _, expected := range []string{
		"Waitlist.vue",
		`src="https://waitlist.example.com/vq.js"`,
		"data-vq-form",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("output missing %q\n\nGot:\n%s", expected, output)
		}
	}
}

func TestRunSnippet_UnknownFramework(t *testing.T) {
	useTestConfig(t)

	if err := runSnippet(snippetCmd, []string{"svelte"}); err == nil {
		t.Error("expected error for unknown framework")
	}
}
